package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/domain/user"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// UserService exposes the profile endpoints: public listing and
// lookup, plus self-service password change and account deletion.
type UserService struct {
	users    *user.Service
	resolver *auth.BearerResolver
	logger   *logging.Logger
}

func NewUserService(
	users *user.Service,
	resolver *auth.BearerResolver,
	logger *logging.Logger,
) (*UserService, error) {
	if users == nil {
		return nil, errors.New("user service requires the user domain service")
	}
	if resolver == nil {
		return nil, errors.New("user service requires a bearer resolver")
	}
	return &UserService{users: users, resolver: resolver, logger: logger}, nil
}

func (s *UserService) Register(ctx context.Context, group *gin.RouterGroup) error {
	usersGroup := group.Group("/users")
	usersGroup.GET("", s.handleListAll)
	usersGroup.GET("/user/:user_id", s.handleGet)

	authed := usersGroup.Group("/user")
	authed.Use(httptransport.RequireBearer(s.resolver, s.logger))
	{
		authed.PUT("/password", s.handleChangePassword)
		authed.DELETE("/delete_account", s.handleDeleteAccount)
	}

	s.logger.InfoTag("HTTP", "user API routes registered")
	return nil
}

func (s *UserService) handleListAll(c *gin.Context) {
	records, err := s.users.List(c.Request.Context())
	if err != nil {
		s.logger.ErrorTag("HTTP", "user list failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list users", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, records, "")
}

func (s *UserService) handleGet(c *gin.Context) {
	raw := c.Param("user_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	record, err := s.users.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			httptransport.RespondError(c, http.StatusNotFound, "item not found", nil)
			return
		}
		s.logger.ErrorTag("HTTP", "user lookup failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "user lookup failed", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, record, "")
}

// passwordChangeRequest re-states the username so a stolen token alone
// is not enough to rotate the password.
type passwordChangeRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (s *UserService) handleChangePassword(c *gin.Context) {
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid password change payload", nil)
		return
	}

	err := s.users.ChangePassword(
		c.Request.Context(),
		httptransport.IdentityFrom(c),
		req.Username,
		req.Password,
		req.NewPassword,
	)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidRequest):
			httptransport.RespondError(c, http.StatusBadRequest, "invalid user or request", nil)
		case errors.Is(err, auth.ErrUnauthenticated):
			httptransport.RespondUnauthenticated(c)
		default:
			s.logger.ErrorTag("HTTP", "password change failed: %v", err)
			httptransport.RespondError(c, http.StatusInternalServerError, "password change failed", nil)
		}
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "password updated successfully")
}

func (s *UserService) handleDeleteAccount(c *gin.Context) {
	err := s.users.DeleteAccount(c.Request.Context(), httptransport.IdentityFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			httptransport.RespondUnauthenticated(c)
		case errors.Is(err, auth.ErrUnauthenticated):
			httptransport.RespondUnauthenticated(c)
		default:
			s.logger.ErrorTag("HTTP", "account deletion failed: %v", err)
			httptransport.RespondError(c, http.StatusInternalServerError, "account deletion failed", nil)
		}
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "your profile deleted successfully")
}
