// Package handler はtodoフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todo_backend/internal/api"
	"todo_backend/internal/feature/todo/domain/entity"
	"todo_backend/internal/feature/todo/usecase"
	"todo_backend/internal/platform/http/respond"
)

// TodoUsecase はTodo操作のユースケースを定義します。
type TodoUsecase interface {
	Create(ctx context.Context, in usecase.CreateTodoInput) (*entity.Todo, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Todo, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Todo, error)
	ListForUserByStatus(ctx context.Context, userID uuid.UUID, status entity.Status) ([]entity.Todo, error)
	Update(ctx context.Context, id uuid.UUID, in usecase.UpdateTodoInput) (*entity.Todo, error)
	Complete(ctx context.Context, id uuid.UUID) (*entity.Todo, error)
	Start(ctx context.Context, id uuid.UUID) (*entity.Todo, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// TodoHandler はTodo操作のHTTPリクエストを処理します。
type TodoHandler struct {
	todos TodoUsecase
}

// NewTodoHandler はTodoHandlerの新しいインスタンスを生成します。
func NewTodoHandler(todos TodoUsecase) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// Create は POST /todos を処理します。
// 所有者が存在しない場合は404、成功時は201です。
func (h *TodoHandler) Create(c *gin.Context) {
	var req api.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	todo, err := h.todos.Create(c.Request.Context(), usecase.CreateTodoInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTodoResponse(todo))
}

// Get は GET /todos/:id を処理します。
func (h *TodoHandler) Get(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	todo, err := h.todos.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// ListForUser は GET /users/:id/todos[?status=] を処理します。
func (h *TodoHandler) ListForUser(c *gin.Context) {
	userID, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}

	var (
		todos []entity.Todo
		err   error
	)
	if raw, filtered := c.GetQuery("status"); filtered {
		status, perr := fromAPIStatus(api.TodoStatus(raw))
		if perr != nil {
			respond.BadRequest(c, perr)
			return
		}
		todos, err = h.todos.ListForUserByStatus(c.Request.Context(), userID, status)
	} else {
		todos, err = h.todos.ListForUser(c.Request.Context(), userID)
	}
	if err != nil {
		respond.Error(c, err)
		return
	}

	out := make([]api.Todo, 0, len(todos))
	for i := range todos {
		out = append(out, toTodoResponse(&todos[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Update は PATCH /todos/:id を処理します。
func (h *TodoHandler) Update(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req api.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return
	}
	in := usecase.UpdateTodoInput{Title: req.Title, Description: req.Description}
	if req.Status != nil {
		status, err := fromAPIStatus(*req.Status)
		if err != nil {
			respond.BadRequest(c, err)
			return
		}
		in.Status = &status
	}
	todo, err := h.todos.Update(c.Request.Context(), id, in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}

// Start は POST /todos/:id/start を処理します。
func (h *TodoHandler) Start(c *gin.Context) {
	h.transition(c, h.todos.Start)
}

// Complete は POST /todos/:id/complete を処理します。
func (h *TodoHandler) Complete(c *gin.Context) {
	h.transition(c, h.todos.Complete)
}

// Delete は DELETE /todos/:id を処理します。
func (h *TodoHandler) Delete(c *gin.Context) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.todos.Delete(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, api.DeletedResponse{Deleted: deleted})
}

func (h *TodoHandler) transition(c *gin.Context, fn func(context.Context, uuid.UUID) (*entity.Todo, error)) {
	id, ok := respond.ParamUUID(c, "id")
	if !ok {
		return
	}
	todo, err := fn(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}

func toTodoResponse(t *entity.Todo) api.Todo {
	return api.Todo{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      toAPIStatus(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toAPIStatus(s entity.Status) api.TodoStatus {
	switch s {
	case entity.StatusInProgress:
		return api.TodoStatusInProgress
	case entity.StatusCompleted:
		return api.TodoStatusCompleted
	default:
		return api.TodoStatusPending
	}
}

func fromAPIStatus(s api.TodoStatus) (entity.Status, error) {
	switch s {
	case api.TodoStatusPending:
		return entity.StatusPending, nil
	case api.TodoStatusInProgress:
		return entity.StatusInProgress, nil
	case api.TodoStatusCompleted:
		return entity.StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of PENDING, IN_PROGRESS, COMPLETED", s)
}
