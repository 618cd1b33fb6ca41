package adapters

import (
	"time"

	"github.com/google/uuid"

	"todo_backend/internal/feature/user/domain/entity"
)

// UserModel はusersテーブルのGORMモデルです。
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:uk_users_email"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null;index:idx_users_created_at"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName はテーブル名を明示します。
func (UserModel) TableName() string { return "users" }

// ToEntity はGORMモデルをドメインエンティティへ変換します。
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
