package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/platform/config"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// CompanyService exposes internal-only company facts behind the shared
// header token.
type CompanyService struct {
	company config.CompanyConfig
	logger  *logging.Logger
}

func NewCompanyService(company config.CompanyConfig, logger *logging.Logger) (*CompanyService, error) {
	if company.Name == "" {
		return nil, errors.New("company service requires a company name")
	}
	return &CompanyService{company: company, logger: logger}, nil
}

func (s *CompanyService) Register(ctx context.Context, group *gin.RouterGroup) error {
	companyGroup := group.Group("/companyapis")
	companyGroup.Use(httptransport.RequireInternalToken(s.company.InternalToken))
	companyGroup.GET("", s.handleName)
	companyGroup.GET("/employees", s.handleEmployees)

	s.logger.InfoTag("HTTP", "company API routes registered")
	return nil
}

func (s *CompanyService) handleName(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"company_name": s.company.Name}, "")
}

func (s *CompanyService) handleEmployees(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"employees": s.company.Employees}, "")
}
