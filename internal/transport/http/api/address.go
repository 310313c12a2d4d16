package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/domain/address"
	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// AddressService exposes the mailing-address endpoint.
type AddressService struct {
	addresses *address.Service
	resolver  *auth.BearerResolver
	logger    *logging.Logger
}

func NewAddressService(
	addresses *address.Service,
	resolver *auth.BearerResolver,
	logger *logging.Logger,
) (*AddressService, error) {
	if addresses == nil {
		return nil, errors.New("address service requires the address domain service")
	}
	if resolver == nil {
		return nil, errors.New("address service requires a bearer resolver")
	}
	return &AddressService{addresses: addresses, resolver: resolver, logger: logger}, nil
}

func (s *AddressService) Register(ctx context.Context, group *gin.RouterGroup) error {
	addressGroup := group.Group("/address")
	addressGroup.Use(httptransport.RequireBearer(s.resolver, s.logger))
	addressGroup.POST("", s.handleCreate)

	s.logger.InfoTag("HTTP", "address API routes registered")
	return nil
}

type addressRequest struct {
	Address1   string `json:"address1" binding:"required"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalcode"`
	AptNum     string `json:"apt_num"`
}

func (s *AddressService) handleCreate(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid address payload", nil)
		return
	}

	record, err := s.addresses.CreateForUser(c.Request.Context(), httptransport.IdentityFrom(c), address.Input{
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
		AptNum:     req.AptNum,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			httptransport.RespondUnauthenticated(c)
			return
		}
		s.logger.ErrorTag("HTTP", "address creation failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "address creation failed", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{"id": record.ID}, "address saved successfully")
}
