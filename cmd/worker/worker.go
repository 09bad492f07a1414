package worker

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	appkafka "example.com/clyqfeed/internal/broker"
	"example.com/clyqfeed/internal/logger"
	"example.com/clyqfeed/internal/metrics"
	"example.com/clyqfeed/internal/models"
	"example.com/clyqfeed/internal/store"
	"github.com/segmentio/kafka-go"
)

var logg = logger.New()

// Worker consumes post_created events and writes them to the archive concurrently.
type Worker struct {
	archive      store.Archive
	reader       appkafka.KafkaReader
	metrics      *metrics.Metrics
	workerCount  int
	jobQueueSize int
}

// New creates a new concurrent Worker using pre-initialized dependencies.
func New(archive store.Archive, reader appkafka.KafkaReader, m *metrics.Metrics, workerCount, jobQueueSize int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	if m == nil {
		m = metrics.New()
	}
	return &Worker{
		archive:      archive,
		reader:       reader,
		metrics:      m,
		workerCount:  workerCount,
		jobQueueSize: jobQueueSize,
	}
}

// jobTimeout bounds one archive write and its commit. It does not depend on the
// Run context, so jobs already fetched finish during shutdown.
const jobTimeout = 10 * time.Second

const archiveAttempts = 3

// Run starts message reading and concurrent processing. After ctx is canceled it
// stops fetching, archives every queued message and then returns.
func (w *Worker) Run(ctx context.Context) {
	if w.workerCount <= 0 {
		w.workerCount = 1
	}
	if w.jobQueueSize <= 0 {
		w.jobQueueSize = 10
	}
	if w.metrics == nil {
		w.metrics = metrics.New()
	}

	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	jobs := make(chan kafka.Message, w.jobQueueSize)
	jobCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(jobCtx, jobs)
		}()
	}

	w.readLoop(ctx, jobs)

	close(jobs)
	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// readLoop fetches Kafka messages and pushes them into a job queue.
func (w *Worker) readLoop(ctx context.Context, jobs chan<- kafka.Message) {
	var retry int
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
			logg.Debug("worker", "Kafka read error, backing off: "+err.Error())
			if !waitWithContext(ctx, backoff) {
				return
			}
			retry++
			continue
		}
		retry = 0

		// a message that is fetched but never queued stays uncommitted and is redelivered
		select {
		case jobs <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// processLoop handles queued messages until the queue is closed.
func (w *Worker) processLoop(ctx context.Context, jobs <-chan kafka.Message) {
	for msg := range jobs {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		if err := w.handle(jobCtx, msg); err != nil {
			logg.Error("worker", "Failed to archive post event", err)
		}
		cancel()
	}
}

// handle archives a single message and commits its offset. A message whose
// archive write fails is left uncommitted.
func (w *Worker) handle(ctx context.Context, msg kafka.Message) error {
	if len(msg.Value) == 0 {
		return w.commit(ctx, msg)
	}

	ev, err := appkafka.DecodePostEvent(msg.Value)
	if err != nil {
		w.metrics.PostsArchived.WithLabelValues("invalid").Inc()
		// malformed events can never succeed, skip past them
		if cerr := w.commit(ctx, msg); cerr != nil {
			return cerr
		}
		return err
	}

	err = w.archiveWithRetry(ctx, ev)
	w.metrics.PostsArchived.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	if err := w.commit(ctx, msg); err != nil {
		return err
	}
	logg.Info("worker", fmt.Sprintf("Post %d archived", ev.Post.ID))
	return nil
}

// archiveWithRetry tries the write archiveAttempts times with a linear backoff.
func (w *Worker) archiveWithRetry(ctx context.Context, ev models.PostEvent) error {
	var err error
	for attempt := 0; attempt < archiveAttempts; attempt++ {
		if attempt > 0 && !waitWithContext(ctx, time.Duration(attempt)*100*time.Millisecond) {
			break
		}
		if err = w.archive.ArchivePost(ctx, ev); err == nil {
			return nil
		}
	}
	return err
}

func (w *Worker) commit(ctx context.Context, msg kafka.Message) error {
	if err := w.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
	}
	return nil
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka reader, flushing pending commits, and the archive.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka reader")
	if err := w.reader.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka reader", err)
		return err
	}

	logg.Info("worker", "Closing archive")
	w.archive.Close()
	return nil
}
