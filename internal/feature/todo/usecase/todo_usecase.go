// Package usecase はtodoフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo_backend/internal/feature/todo/domain/entity"
	"todo_backend/internal/platform/logger"
	"todo_backend/internal/shared/apperror"
)

// todoUsecase はTodoの作成・状態遷移・部分更新を実装します。
type todoUsecase struct {
	todos TodoRepository
	users UserFinder
}

// NewTodoUsecase はtodoUsecaseの新しいインスタンスを生成します。
func NewTodoUsecase(todos TodoRepository, users UserFinder) *todoUsecase {
	return &todoUsecase{
		todos: todos,
		users: users,
	}
}

// Create は所有者の存在を確認してからPending状態のTodoを作成します。
// 所有者が存在しない場合はUserNotFoundErrorを返し、行は作成しません。
func (u *todoUsecase) Create(ctx context.Context, in CreateTodoInput) (*entity.Todo, error) {
	owner, err := u.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, &apperror.UserNotFoundError{UserID: in.UserID}
	}

	todo, err := u.todos.Create(ctx, in.UserID, in.Title, in.Description)
	if err != nil {
		return nil, err
	}
	logger.L().Info("todo created",
		zap.String("todo_id", todo.ID.String()),
		zap.String("user_id", todo.UserID.String()),
	)
	return todo, nil
}

// Get はIDでTodoを取得します。存在しない場合はNotFoundErrorを返します。
func (u *todoUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.Todo, error) {
	todo, err := u.todos.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, apperror.NotFound("todo", id)
	}
	return todo, nil
}

// ListForUser はユーザーのTodoを作成日時の降順で返します。
// ユーザーが存在しない場合も空のリストを返します。
func (u *todoUsecase) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Todo, error) {
	return u.todos.ListByUser(ctx, userID)
}

// ListForUserByStatus はユーザーのTodoのうち指定状態のものを作成日時の降順で返します。
func (u *todoUsecase) ListForUserByStatus(ctx context.Context, userID uuid.UUID, status entity.Status) ([]entity.Todo, error) {
	return u.todos.ListByUserAndStatus(ctx, userID, status)
}

// Update はTodoを部分更新します。優先順位は次のとおりです。
//  1. Statusが指定され現在と異なる場合、状態のみ更新する（Title/Descriptionは無視される）
//  2. TitleまたはDescriptionが指定された場合、未指定側は既存値を引き継いで内容を更新する
//  3. どちらでもない場合、書き込みせず既存のTodoを返す
func (u *todoUsecase) Update(ctx context.Context, id uuid.UUID, in UpdateTodoInput) (*entity.Todo, error) {
	existing, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != existing.Status {
		return u.setStatus(ctx, id, *in.Status)
	}

	if in.Title != nil || in.Description != nil {
		title := existing.Title
		if in.Title != nil {
			title = *in.Title
		}
		description := existing.Description
		if in.Description != nil {
			description = in.Description
		}
		todo, err := u.todos.UpdateContent(ctx, id, title, description)
		if err != nil {
			return nil, err
		}
		if todo == nil {
			return nil, apperror.NotFound("todo", id)
		}
		return todo, nil
	}

	return existing, nil
}

// Complete はTodoをCompletedにします。現在の状態は問いません。
func (u *todoUsecase) Complete(ctx context.Context, id uuid.UUID) (*entity.Todo, error) {
	return u.setStatus(ctx, id, entity.StatusCompleted)
}

// Start はTodoをInProgressにします。現在の状態は問いません。
func (u *todoUsecase) Start(ctx context.Context, id uuid.UUID) (*entity.Todo, error) {
	return u.setStatus(ctx, id, entity.StatusInProgress)
}

// Delete はTodoを削除し、削除した行があればtrueを返します。
func (u *todoUsecase) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return u.todos.Delete(ctx, id)
}

func (u *todoUsecase) setStatus(ctx context.Context, id uuid.UUID, status entity.Status) (*entity.Todo, error) {
	todo, err := u.todos.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, apperror.NotFound("todo", id)
	}
	logger.L().Debug("todo status changed",
		zap.String("todo_id", id.String()),
		zap.String("status", string(status)),
	)
	return todo, nil
}
