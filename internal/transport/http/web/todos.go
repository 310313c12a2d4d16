package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/domain/todo"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// TodoPages serves the browser todo flow. Every page requires a valid
// session cookie; anonymous visitors are redirected to the login page
// and a stale cookie is cleared on the way out.
type TodoPages struct {
	todos      *todo.Service
	resolver   *auth.CookieResolver
	cookieName string
	logger     *logging.Logger
}

func NewTodoPages(
	todos *todo.Service,
	resolver *auth.CookieResolver,
	cookieName string,
	logger *logging.Logger,
) (*TodoPages, error) {
	if todos == nil {
		return nil, errors.New("todo pages require the todo domain service")
	}
	if resolver == nil {
		return nil, errors.New("todo pages require a cookie resolver")
	}
	return &TodoPages{
		todos:      todos,
		resolver:   resolver,
		cookieName: cookieName,
		logger:     logger,
	}, nil
}

func (p *TodoPages) Register(ctx context.Context, group *gin.RouterGroup) error {
	todosGroup := group.Group("/todos")
	todosGroup.Use(httptransport.ResolveCookie(p.resolver, p.cookieName))
	{
		todosGroup.GET("", p.handleHome)
		todosGroup.GET("/add-todo", p.handleAddForm)
		todosGroup.POST("/add-todo", p.handleAdd)
		todosGroup.GET("/edit-todo/:todo_id", p.handleEditForm)
		todosGroup.POST("/edit-todo/:todo_id", p.handleEdit)
		todosGroup.GET("/delete-todo/:todo_id", p.handleDelete)
		todosGroup.GET("/complete/:todo_id", p.handleComplete)
	}

	p.logger.InfoTag("HTTP", "todo pages registered")
	return nil
}

// sessionIdentity enforces the login requirement shared by every todo
// page. It clears a broken cookie before redirecting so the browser
// does not keep replaying it.
func (p *TodoPages) sessionIdentity(c *gin.Context) (auth.Identity, bool) {
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

func pageTodoID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("todo_id"), 10, 32)
	if err != nil || id == 0 {
		c.Redirect(http.StatusFound, "/todos")
		return 0, false
	}
	return uint(id), true
}

func (p *TodoPages) handleHome(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	items, err := p.todos.ListFor(c.Request.Context(), identity)
	if err != nil {
		p.logger.ErrorTag("HTTP", "todo page listing failed: %v", err)
		items = nil
	}
	c.HTML(http.StatusOK, "home.html", gin.H{"todos": items, "user": identity})
}

func (p *TodoPages) handleAddForm(c *gin.Context) {
	if _, ok := p.sessionIdentity(c); !ok {
		return
	}
	c.HTML(http.StatusOK, "add-todo.html", gin.H{})
}

type todoForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Priority    int    `form:"priority" binding:"required"`
}

func (p *TodoPages) handleAdd(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	var form todoForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "add-todo.html", gin.H{"msg": "Title and priority are required"})
		return
	}

	_, err := p.todos.Create(c.Request.Context(), identity, todo.Input{
		Title:       form.Title,
		Description: form.Description,
		Priority:    form.Priority,
	})
	if err != nil {
		msg := "Could not save the todo"
		if errors.Is(err, todo.ErrInvalidPriority) {
			msg = "Priority must be between 1 and 5"
		} else {
			p.logger.ErrorTag("HTTP", "todo page create failed: %v", err)
		}
		c.HTML(http.StatusOK, "add-todo.html", gin.H{"msg": msg})
		return
	}
	c.Redirect(http.StatusFound, "/todos")
}

func (p *TodoPages) handleEditForm(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	id, ok := pageTodoID(c)
	if !ok {
		return
	}
	item, err := p.todos.Get(c.Request.Context(), identity, id)
	if err != nil {
		c.Redirect(http.StatusFound, "/todos")
		return
	}
	c.HTML(http.StatusOK, "edit-todo.html", gin.H{"todo": item, "user": identity})
}

func (p *TodoPages) handleEdit(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	id, ok := pageTodoID(c)
	if !ok {
		return
	}
	var form todoForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, "/todos")
		return
	}

	// Editing keeps the completion state; the form has no checkbox.
	item, err := p.todos.Get(c.Request.Context(), identity, id)
	if err != nil {
		c.Redirect(http.StatusFound, "/todos")
		return
	}
	err = p.todos.Update(c.Request.Context(), identity, id, todo.Input{
		Title:       form.Title,
		Description: form.Description,
		Priority:    form.Priority,
		Completed:   item.Completed,
	})
	if err != nil && !errors.Is(err, todo.ErrItemNotFound) && !errors.Is(err, todo.ErrInvalidPriority) {
		p.logger.ErrorTag("HTTP", "todo page edit failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/todos")
}

func (p *TodoPages) handleDelete(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	id, ok := pageTodoID(c)
	if !ok {
		return
	}
	// Missing or foreign todos fall through to the same redirect.
	if err := p.todos.Delete(c.Request.Context(), identity, id); err != nil &&
		!errors.Is(err, todo.ErrItemNotFound) {
		p.logger.ErrorTag("HTTP", "todo page delete failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/todos")
}

func (p *TodoPages) handleComplete(c *gin.Context) {
	identity, ok := p.sessionIdentity(c)
	if !ok {
		return
	}
	id, ok := pageTodoID(c)
	if !ok {
		return
	}
	item, err := p.todos.Get(c.Request.Context(), identity, id)
	if err != nil {
		c.Redirect(http.StatusFound, "/todos")
		return
	}
	if err := p.todos.SetCompleted(c.Request.Context(), identity, id, !item.Completed); err != nil {
		p.logger.ErrorTag("HTTP", "todo page completion toggle failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/todos")
}
