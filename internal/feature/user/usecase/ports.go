package usecase

import (
	"context"

	"github.com/google/uuid"

	"todo_backend/internal/feature/user/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
// 存在しない場合の戻り値は (nil, nil) で、エラーはストレージ障害のみを表します。
type UserRepository interface {
	// Create はIDとタイムスタンプを採番してユーザーを保存します。
	// メールアドレスが重複する場合、一意制約違反のStorageErrorを返します。
	Create(ctx context.Context, email, name string) (*entity.User, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// List は作成日時の降順で全ユーザーを返します。
	List(ctx context.Context) ([]entity.User, error)

	// UpdateName は名前を更新し、updated_atを進めた最新のレコードを返します。
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*entity.User, error)

	// Delete は削除した行があればtrueを返します。
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// WelcomeEmailEnqueuer はウェルカムメール送信ジョブをエンキューします。
type WelcomeEmailEnqueuer interface {
	EnqueueWelcomeEmail(ctx context.Context, user *entity.User) error
}

// TxRepositories は1つのトランザクションに束縛された協調オブジェクトです。
type TxRepositories struct {
	Users UserRepository
	Jobs  WelcomeEmailEnqueuer
}

// UnitOfWork はfnを単一トランザクション内で実行します。
// fnがエラーを返した場合、ユーザー行とジョブ行はどちらも残りません。
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}

// JobNotifier はコミット後にワーカーを起こすための通知を送ります。
// 通知は最適化であり、失敗してもジョブはポーリングで処理されます。
type JobNotifier interface {
	Notify(ctx context.Context, channel string) error
}
