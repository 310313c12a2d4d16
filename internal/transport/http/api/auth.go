package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/domain/user"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// AuthService exposes the login and account-creation endpoints.
type AuthService struct {
	authenticator *auth.Authenticator
	users         *user.Service
	logger        *logging.Logger
}

func NewAuthService(
	authenticator *auth.Authenticator,
	users *user.Service,
	logger *logging.Logger,
) (*AuthService, error) {
	if authenticator == nil {
		return nil, errors.New("auth service requires an authenticator")
	}
	if users == nil {
		return nil, errors.New("auth service requires a user service")
	}
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		logger:        logger,
	}, nil
}

// Register mounts the auth routes. The bare /create_user alias is kept
// for clients of the original flat layout.
func (s *AuthService) Register(ctx context.Context, group *gin.RouterGroup) error {
	authGroup := group.Group("/auth")
	authGroup.POST("/token", s.handleToken)
	authGroup.POST("/create_user", s.handleCreateUser)

	group.POST("/create_user", s.handleCreateUser)

	s.logger.InfoTag("HTTP", "auth API routes registered")
	return nil
}

// loginForm mirrors the OAuth2 password grant shape: credentials
// arrive form-encoded, not as JSON.
type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (s *AuthService) handleToken(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "username and password are required", nil)
		return
	}

	token, err := s.authenticator.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailure) {
			httptransport.RespondUnauthenticated(c)
			return
		}
		s.logger.ErrorTag("HTTP", "login failed for %q: %v", form.Username, err)
		httptransport.RespondError(c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"token": token}, "login successful")
}

type createUserRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required"`
}

func (s *AuthService) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid create_user payload", nil)
		return
	}

	record, err := s.users.Create(c.Request.Context(), user.CreateInput{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		s.logger.ErrorTag("HTTP", "create_user failed for %q: %v", req.Username, err)
		httptransport.RespondError(c, http.StatusConflict, "could not create user", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{
		"id":       record.ID,
		"username": record.Username,
	}, "user created successfully")
}
