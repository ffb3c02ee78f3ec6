package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ragfilechat/internal/platform/rabbitmq"
)

// RemoteFileDeleter is the slice of the Gemini client the worker needs.
type RemoteFileDeleter interface {
	Delete(ctx context.Context, name string) error
}

// FileCleanupWorker consumes cleanup jobs and deletes provider file copies.
// Deletion is best-effort: a failed delete is logged and the job is dropped,
// never retried or surfaced to the request that soft-deleted the document.
type FileCleanupWorker struct {
	conn      *amqp.Connection
	deleter   RemoteFileDeleter
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileCleanupWorker(conn *amqp.Connection, deleter RemoteFileDeleter, queueName string, log *zap.Logger) *FileCleanupWorker {
	return &FileCleanupWorker{
		conn:      conn,
		deleter:   deleter,
		queueName: queueName,
		log:       log,
	}
}

func (w *FileCleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job rabbitmq.FileCleanupJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.log.Warn("decode cleanup job failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := w.deleter.Delete(workerCtx, job.GeminiName); err != nil {
					w.log.Warn("could not delete file from gemini",
						zap.Uint("document_id", job.DocumentID),
						zap.String("gemini_name", job.GeminiName),
						zap.Error(err),
					)
				} else {
					w.log.Info("deleted file from gemini",
						zap.Uint("document_id", job.DocumentID),
						zap.String("gemini_name", job.GeminiName),
					)
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *FileCleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
