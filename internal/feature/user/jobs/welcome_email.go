// Package jobs はuserフィーチャーのバックグラウンドジョブを定義します。
package jobs

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"todo_backend/internal/feature/user/domain/entity"
	"todo_backend/internal/platform/jobqueue"
	"todo_backend/internal/platform/logger"
)

const (
	// WelcomeEmailChannel はウェルカムメールジョブを流すチャネル名です。
	WelcomeEmailChannel = "emails"
	// WelcomeEmailJob はジョブ名です。ワーカーはこの名前でハンドラーを引きます。
	WelcomeEmailJob = "send_welcome_email"
)

// WelcomeEmailArgs はウェルカムメールジョブのペイロードです。
type WelcomeEmailArgs struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}

// Enqueuer はjobqueue.Queueを通じてウェルカムメールジョブを登録します。
// トランザクション上のQueueを渡すと、ジョブはそのトランザクションと一緒にコミットされます。
type Enqueuer struct {
	queue *jobqueue.Queue
}

// NewEnqueuer はEnqueuerの新しいインスタンスを生成します。
func NewEnqueuer(queue *jobqueue.Queue) *Enqueuer {
	return &Enqueuer{queue: queue}
}

// EnqueueWelcomeEmail はユーザーへのウェルカムメールジョブをエンキューします。
func (e *Enqueuer) EnqueueWelcomeEmail(ctx context.Context, user *entity.User) error {
	_, err := e.queue.Enqueue(ctx, jobqueue.Spec{
		Channel: WelcomeEmailChannel,
		Name:    WelcomeEmailJob,
		Payload: WelcomeEmailArgs{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.Name,
		},
	})
	return err
}

// HandleWelcomeEmail はウェルカムメールジョブを処理します。
// メール送信基盤は持たないため、送信内容をログに記録します。
func HandleWelcomeEmail(_ context.Context, job *jobqueue.Job) error {
	var args WelcomeEmailArgs
	if err := job.Decode(&args); err != nil {
		return err
	}
	logger.L().Info("sending welcome email",
		zap.String("user_id", args.UserID.String()),
		zap.String("email", args.Email),
		zap.String("name", args.Name),
	)
	return nil
}
