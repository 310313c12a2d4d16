package api

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

// TodoService exposes the todo CRUD endpoints. Listing everything is
// public; anything owner-scoped sits behind the bearer middleware.
type TodoService struct {
	todos    *todo.Service
	resolver *auth.BearerResolver
	logger   *logging.Logger
}

func NewTodoService(
	todos *todo.Service,
	resolver *auth.BearerResolver,
	logger *logging.Logger,
) (*TodoService, error) {
	if todos == nil {
		return nil, errors.New("todo service requires the todo domain service")
	}
	if resolver == nil {
		return nil, errors.New("todo service requires a bearer resolver")
	}
	return &TodoService{todos: todos, resolver: resolver, logger: logger}, nil
}

func (s *TodoService) Register(ctx context.Context, group *gin.RouterGroup) error {
	todosGroup := group.Group("/todos")
	todosGroup.GET("", s.handleListAll)

	authed := todosGroup.Group("")
	authed.Use(httptransport.RequireBearer(s.resolver, s.logger))
	{
		authed.GET("/user", s.handleListByUser)
		authed.GET("/:todo_id", s.handleGet)
		authed.POST("", s.handleCreate)
		authed.PUT("/:todo_id", s.handleUpdate)
		authed.DELETE("/:todo_id", s.handleDelete)
	}

	s.logger.InfoTag("HTTP", "todo API routes registered")
	return nil
}

type todoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    int    `json:"priority" binding:"required"`
	Completed   bool   `json:"completed"`
}

func todoID(c *gin.Context) (uint, bool) {
	raw := c.Param("todo_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid todo id", nil)
		return 0, false
	}
	return uint(id), true
}

func (s *TodoService) handleListAll(c *gin.Context) {
	items, err := s.todos.ListAll(c.Request.Context())
	if err != nil {
		s.logger.ErrorTag("HTTP", "todo list failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "failed to list todos", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, items, "")
}

func (s *TodoService) handleListByUser(c *gin.Context) {
	items, err := s.todos.ListFor(c.Request.Context(), httptransport.IdentityFrom(c))
	if err != nil {
		s.respondTodoError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, items, "")
}

func (s *TodoService) handleGet(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	item, err := s.todos.Get(c.Request.Context(), httptransport.IdentityFrom(c), id)
	if err != nil {
		s.respondTodoError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, item, "")
}

func (s *TodoService) handleCreate(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid todo payload", nil)
		return
	}
	item, err := s.todos.Create(c.Request.Context(), httptransport.IdentityFrom(c), todo.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	})
	if err != nil {
		s.respondTodoError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusCreated, gin.H{"id": item.ID}, "todo created successfully")
}

func (s *TodoService) handleUpdate(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid todo payload", nil)
		return
	}
	err := s.todos.Update(c.Request.Context(), httptransport.IdentityFrom(c), id, todo.Input{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	})
	if err != nil {
		s.respondTodoError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "todo updated successfully")
}

func (s *TodoService) handleDelete(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}
	if err := s.todos.Delete(c.Request.Context(), httptransport.IdentityFrom(c), id); err != nil {
		s.respondTodoError(c, err)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "todo deleted successfully")
}

func (s *TodoService) respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, todo.ErrItemNotFound):
		httptransport.RespondError(c, http.StatusNotFound, "item not found", nil)
	case errors.Is(err, todo.ErrInvalidPriority):
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrUnauthenticated):
		httptransport.RespondUnauthenticated(c)
	default:
		s.logger.ErrorTag("HTTP", "todo operation failed: %v", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "todo operation failed", nil)
	}
}
