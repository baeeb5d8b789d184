package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"
	TypeSend     = "mail:send"
	maxRetry     = 5
)

// Dispatcher hands a message off for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) error
}

func NewSendTask(msg Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSend, payload, asynq.Queue(QueueDefault), asynq.MaxRetry(maxRetry)), nil
}

// Enqueuer is the part of *asynq.Client the queue needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher enqueues messages for the mail worker.
type QueueDispatcher struct {
	client Enqueuer
	logger *slog.Logger
}

func NewQueueDispatcher(client Enqueuer, logger *slog.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, logger: logger}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, msg Message) error {
	task, err := NewSendTask(msg)
	if err != nil {
		return fmt.Errorf("build mail task: %w", err)
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	d.logger.Info("mail enqueued", "task_id", info.ID, "subject", msg.Subject)
	return nil
}

// InlineDispatcher sends right away. It serves deployments without redis.
type InlineDispatcher struct {
	sender Sender
	logger *slog.Logger
}

func NewInlineDispatcher(sender Sender, logger *slog.Logger) *InlineDispatcher {
	return &InlineDispatcher{sender: sender, logger: logger}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if err := d.sender.Send(ctx, msg); err != nil {
		return err
	}
	d.logger.Info("mail sent inline", "subject", msg.Subject)
	return nil
}

// HandleSendTask delivers a TypeSend task. A payload that does not decode
// is dropped without retry.
func HandleSendTask(sender Sender, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var msg Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			logger.Error("undecodable mail task", "error", err)
			return fmt.Errorf("decode mail task: %v: %w", err, asynq.SkipRetry)
		}
		if err := sender.Send(ctx, msg); err != nil {
			logger.Warn("mail delivery failed", "subject", msg.Subject, "error", err)
			return err
		}
		logger.Info("mail delivered", "subject", msg.Subject)
		return nil
	}
}

// NewWorker builds the asynq server and mux that run the mail queue.
func NewWorker(redisOpts asynq.RedisClientOpt, sender Sender, logger *slog.Logger, concurrency int) (*asynq.Server, *asynq.ServeMux) {
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		Logger:      newAsynqLogger(logger),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSend, HandleSendTask(sender, logger))
	return srv, mux
}

// asynqLogger adapts slog to asynq.Logger.
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) asynq.Logger {
	return asynqLogger{logger: logger.With("component", "asynq")}
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }
