package adapters

import (
	"time"

	"github.com/google/uuid"

	"todo_backend/internal/feature/todo/domain/entity"
	useradapters "todo_backend/internal/feature/user/adapters"
)

// TodoModel はtodosテーブルのGORMモデルです。
// ユーザー削除時にはON DELETE CASCADEで所有するTodoも削除されます。
type TodoModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_todos_user_id"`
	Title       string    `gorm:"size:255;not null"`
	Description *string   `gorm:"type:text"`
	Status      string    `gorm:"size:20;not null;check:chk_todos_status,status IN ('pending','in_progress','completed')"`
	CreatedAt   time.Time `gorm:"not null;index:idx_todos_created_at"`
	UpdatedAt   time.Time `gorm:"not null"`

	User useradapters.UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName はテーブル名を明示します。
func (TodoModel) TableName() string { return "todos" }

// ToEntity はGORMモデルをドメインエンティティへ変換します。
// CHECK制約があるため、未知の状態はストレージ破損として扱います。
func (m *TodoModel) ToEntity() (*entity.Todo, error) {
	status, err := entity.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &entity.Todo{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Status:      status,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}
