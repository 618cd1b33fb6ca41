package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"todo_backend/internal/feature/user/jobs"
	"todo_backend/internal/feature/user/usecase"
	"todo_backend/internal/platform/db"
	"todo_backend/internal/platform/jobqueue"
	"todo_backend/internal/shared/apperror"
)

// EnqueuerFactory はトランザクションハンドルからジョブのエンキュー先を生成します。
type EnqueuerFactory func(tx *gorm.DB) usecase.WelcomeEmailEnqueuer

// DefaultEnqueuer はjobsテーブルへエンキューするEnqueuerFactoryです。
func DefaultEnqueuer(tx *gorm.DB) usecase.WelcomeEmailEnqueuer {
	return jobs.NewEnqueuer(jobqueue.NewQueue(tx))
}

// unitOfWork はusecase.UnitOfWorkのGORM実装です。
// 1つのトランザクションを開き、それに束縛したリポジトリとエンキュー先をfnに渡します。
type unitOfWork struct {
	db       *gorm.DB
	enqueuer EnqueuerFactory
}

var _ usecase.UnitOfWork = (*unitOfWork)(nil)

// NewUnitOfWork はunitOfWorkの新しいインスタンスを生成します。
// enqueuerがnilの場合はDefaultEnqueuerを使います。
func NewUnitOfWork(db *gorm.DB, enqueuer EnqueuerFactory) *unitOfWork {
	if enqueuer == nil {
		enqueuer = DefaultEnqueuer
	}
	return &unitOfWork{db: db, enqueuer: enqueuer}
}

// Do はfnをトランザクション内で実行します。
// fnのエラーはそのまま返し、開始・コミットの失敗はStorageErrorに包みます。
func (u *unitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx usecase.TxRepositories) error) error {
	var fnErr error
	err := db.WithTransaction(ctx, u.db, func(tx *gorm.DB) error {
		fnErr = fn(ctx, usecase.TxRepositories{
			Users: NewUserGorm(tx),
			Jobs:  u.enqueuer(tx),
		})
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && errors.Is(err, fnErr) {
		return fnErr
	}
	return apperror.NewStorageError("transaction", err)
}
