package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/domain/user"
	"todo-server-go/internal/platform/config"
	"todo-server-go/internal/platform/logging"
)

// AuthPages serves the login, logout and registration pages. The
// browser session is an http-only cookie carrying the same token the
// JSON API hands out.
type AuthPages struct {
	authenticator *auth.Authenticator
	users         *user.Service
	auth          config.AuthConfig
	logger        *logging.Logger
}

func NewAuthPages(
	authenticator *auth.Authenticator,
	users *user.Service,
	authCfg config.AuthConfig,
	logger *logging.Logger,
) (*AuthPages, error) {
	if authenticator == nil {
		return nil, errors.New("auth pages require an authenticator")
	}
	if users == nil {
		return nil, errors.New("auth pages require a user service")
	}
	return &AuthPages{
		authenticator: authenticator,
		users:         users,
		auth:          authCfg,
		logger:        logger,
	}, nil
}

func (p *AuthPages) Register(ctx context.Context, group *gin.RouterGroup) error {
	authGroup := group.Group("/auth")
	authGroup.GET("", p.handleLoginPage)
	authGroup.POST("", p.handleLogin)
	authGroup.GET("/logout", p.handleLogout)
	authGroup.GET("/register", p.handleRegisterPage)
	authGroup.POST("/register", p.handleRegister)

	p.logger.InfoTag("HTTP", "auth pages registered")
	return nil
}

func (p *AuthPages) handleLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// The login form posts the username in a field named "email"; the
// templates label it that way even though accounts log in by username.
type loginPageForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (p *AuthPages) handleLogin(c *gin.Context) {
	var form loginPageForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"msg": "Incorrect username or password"})
		return
	}

	token, err := p.authenticator.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailure) {
			c.HTML(http.StatusOK, "login.html", gin.H{"msg": "Incorrect username or password"})
			return
		}
		p.logger.ErrorTag("HTTP", "browser login failed: %v", err)
		c.HTML(http.StatusOK, "login.html", gin.H{"msg": "Unknown error"})
		return
	}

	setSessionCookie(c, p.auth.CookieName, token)
	c.Redirect(http.StatusFound, "/todos")
}

func (p *AuthPages) handleLogout(c *gin.Context) {
	clearSessionCookie(c, p.auth.CookieName)
	c.HTML(http.StatusOK, "login.html", gin.H{"msg": "Logout Successful"})
}

func (p *AuthPages) handleRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

type registerForm struct {
	Email     string `form:"email"`
	Username  string `form:"username" binding:"required"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Password  string `form:"password" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

func (p *AuthPages) handleRegister(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{"msg": "All required fields must be filled"})
		return
	}

	_, err := p.users.Register(c.Request.Context(), user.CreateInput{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  form.Password,
	}, form.Password2)
	if err != nil {
		msg := "Unknown error"
		switch {
		case errors.Is(err, user.ErrPasswordMismatch):
			msg = "Passwords do not match"
		case errors.Is(err, user.ErrUsernameTaken):
			msg = "This username already taken"
		case errors.Is(err, user.ErrEmailTaken):
			msg = "This email already taken"
		default:
			p.logger.ErrorTag("HTTP", "registration failed for %q: %v", form.Username, err)
		}
		c.HTML(http.StatusOK, "register.html", gin.H{"msg": msg})
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{"msg": "Account successfully created"})
}

func setSessionCookie(c *gin.Context, name, token string) {
	c.SetCookie(name, token, 0, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", false, true)
}
