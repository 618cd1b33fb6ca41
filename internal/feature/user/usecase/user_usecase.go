// Package usecase はuserフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo_backend/internal/feature/user/domain/entity"
	"todo_backend/internal/feature/user/jobs"
	"todo_backend/internal/platform/logger"
	"todo_backend/internal/shared/apperror"
)

// userUsecase はユーザー登録と管理のビジネスロジックを実装します。
type userUsecase struct {
	users    UserRepository
	uow      UnitOfWork
	notifier JobNotifier
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
// usersはプール接続上のリポジトリ、uowは登録用のトランザクション境界です。
// notifierがnilの場合、コミット後の通知は行いません。
func NewUserUsecase(users UserRepository, uow UnitOfWork, notifier JobNotifier) *userUsecase {
	return &userUsecase{
		users:    users,
		uow:      uow,
		notifier: notifier,
	}
}

// Register はユーザーを登録し、同じトランザクション内でウェルカムメールジョブをエンキューします。
// ユーザー行とジョブ行は両方とも保存されるか、どちらも保存されません。
func (u *userUsecase) Register(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	// 事前チェック。最終的な保証はDBの一意制約が担う
	existing, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperror.EmailExistsError{Email: in.Email}
	}

	var created *entity.User
	err = u.uow.Do(ctx, func(ctx context.Context, tx TxRepositories) error {
		user, err := tx.Users.Create(ctx, in.Email, in.Name)
		if err != nil {
			return err
		}
		if err := tx.Jobs.EnqueueWelcomeEmail(ctx, user); err != nil {
			return &apperror.QueueError{Err: err}
		}
		created = user
		return nil
	})
	if err != nil {
		// 同時登録で事前チェックをすり抜けた場合
		if apperror.IsUniqueViolation(err) {
			return nil, &apperror.EmailExistsError{Email: in.Email}
		}
		return nil, err
	}

	logger.L().Info("user registered",
		zap.String("user_id", created.ID.String()),
		zap.String("email", created.Email),
	)
	u.notify(ctx, jobs.WelcomeEmailChannel)

	return created, nil
}

// Get はIDでユーザーを取得します。存在しない場合はNotFoundErrorを返します。
func (u *userUsecase) Get(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

// GetByEmail はメールアドレスでユーザーを取得します。存在しない場合は (nil, nil) です。
func (u *userUsecase) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return u.users.FindByEmail(ctx, email)
}

// List は作成日時の降順で全ユーザーを返します。
func (u *userUsecase) List(ctx context.Context) ([]entity.User, error) {
	return u.users.List(ctx)
}

// Update はユーザーを部分更新します。
// Nameが指定されていない場合は書き込みを行わず現在のレコードを返します。
func (u *userUsecase) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*entity.User, error) {
	if in.Name == nil {
		return u.Get(ctx, id)
	}
	user, err := u.users.UpdateName(ctx, id, *in.Name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

// Delete はユーザーを削除し、削除した行があればtrueを返します。
// 所有するTodoはON DELETE CASCADEで削除されます。
func (u *userUsecase) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := u.users.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.L().Info("user deleted", zap.String("user_id", id.String()))
	}
	return deleted, nil
}

func (u *userUsecase) notify(ctx context.Context, channel string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, channel); err != nil {
		logger.L().Warn("job notify failed", zap.String("channel", channel), zap.Error(err))
	}
}
