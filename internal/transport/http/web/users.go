package web

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

// UserPages serves the browser password-change page.
type UserPages struct {
	users      *user.Service
	resolver   *auth.CookieResolver
	cookieName string
	logger     *logging.Logger
}

func NewUserPages(
	users *user.Service,
	resolver *auth.CookieResolver,
	cookieName string,
	logger *logging.Logger,
) (*UserPages, error) {
	if users == nil {
		return nil, errors.New("user pages require the user domain service")
	}
	if resolver == nil {
		return nil, errors.New("user pages require a cookie resolver")
	}
	return &UserPages{
		users:      users,
		resolver:   resolver,
		cookieName: cookieName,
		logger:     logger,
	}, nil
}

func (p *UserPages) Register(ctx context.Context, group *gin.RouterGroup) error {
	usersGroup := group.Group("/users")
	usersGroup.Use(httptransport.ResolveCookie(p.resolver, p.cookieName))
	{
		usersGroup.GET("/edit-password", p.handleEditPasswordForm)
		usersGroup.POST("/edit-password", p.handleEditPassword)
	}

	p.logger.InfoTag("HTTP", "user pages registered")
	return nil
}

func (p *UserPages) sessionIdentity(c *gin.Context) (auth.Identity, bool) {
	if httptransport.TokenWasInvalid(c) {
		clearSessionCookie(c, p.cookieName)
	}
	identity := httptransport.IdentityFrom(c)
	if identity.IsAnonymous() {
		c.Redirect(http.StatusFound, "/auth")
		return auth.Anonymous, false
	}
	return identity, true
}

func (p *UserPages) handleEditPasswordForm(c *gin.Context) {
	if _, ok := p.sessionIdentity(c); !ok {
		return
	}
	c.HTML(http.StatusOK, "edit-user-password.html", gin.H{})
}

type editPasswordForm struct {
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

func (p *UserPages) handleEditPassword(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	var form editPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "edit-user-password.html", gin.H{"msg": "All fields are required"})
		return
	}
	if form.Password == form.Password2 {
		c.HTML(http.StatusOK, "edit-user-password.html",
			gin.H{"user": identity, "msg": "New password must differ from the current one"})
		return
	}

	err := p.users.ChangePassword(
		c.Request.Context(), identity, form.Username, form.Password, form.Password2)
	if err != nil {
		msg := "Wrong username or password"
		if !errors.Is(err, user.ErrInvalidRequest) && !errors.Is(err, auth.ErrUnauthenticated) {
			p.logger.ErrorTag("HTTP", "password page update failed: %v", err)
			msg = "Unknown error"
		}
		c.HTML(http.StatusOK, "edit-user-password.html", gin.H{"user": identity, "msg": msg})
		return
	}

	c.HTML(http.StatusOK, "edit-user-password.html",
		gin.H{"user": identity, "msg": "Password updated successfully!"})
}
