// Package adapters はuserフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo_backend/internal/feature/user/domain/entity"
	"todo_backend/internal/feature/user/usecase"
	"todo_backend/internal/platform/db"
	"todo_backend/internal/shared/apperror"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// dbはプール接続でもトランザクションでもよく、後者の場合すべての操作がそのトランザクションに参加します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DBでuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、一意制約違反のStorageErrorを返します。
func (r *userGorm) Create(ctx context.Context, email, name string) (*entity.User, error) {
	now := r.db.NowFunc()
	m := &UserModel{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperror.NewUniqueViolation("users.create", err)
		}
		return nil, apperror.NewStorageError("users.create", err)
	}
	return m.ToEntity(), nil
}

// FindByID はIDでユーザーを取得します。存在しない場合は (nil, nil) を返します。
func (r *userGorm) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.take(ctx, "users.find_by_id", "id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合は (nil, nil) を返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.take(ctx, "users.find_by_email", "email = ?", email)
}

// List は作成日時の降順で全ユーザーを返します。
func (r *userGorm) List(ctx context.Context) ([]entity.User, error) {
	var rows []UserModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperror.NewStorageError("users.list", err)
	}
	users := make([]entity.User, 0, len(rows))
	for i := range rows {
		users = append(users, *rows[i].ToEntity())
	}
	return users, nil
}

// UpdateName は名前とupdated_atを更新し、更新後のレコードを返します。
// 対象行が存在しない場合は (nil, nil) を返します。
func (r *userGorm) UpdateName(ctx context.Context, id uuid.UUID, name string) (*entity.User, error) {
	res := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": r.db.NowFunc()})
	if res.Error != nil {
		return nil, apperror.NewStorageError("users.update_name", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.take(ctx, "users.update_name", "id = ?", id)
}

// Delete はユーザーを削除し、行が削除された場合にtrueを返します。
func (r *userGorm) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return false, apperror.NewStorageError("users.delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userGorm) take(ctx context.Context, op string, query string, args ...any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewStorageError(op, err)
	}
	return m.ToEntity(), nil
}
