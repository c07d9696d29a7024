package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 1

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second
)

// Manager runs worker goroutines that consume the activity stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	log         *logrus.Entry

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
		log:         logrus.WithField("component", "worker_manager"),
	}
}

// Start ensures the consumer group exists and launches the workers.
// Call Stop to shut them down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamActivity, queue.ConsumerGroupAudit); err != nil {
		m.cancel()
		return err
	}

	for i := 0; i < m.workerCount; i++ {
		workerID := i + 1
		m.wg.Add(1)
		go m.runWorker(workerID, ConsumerName(workerID))
	}

	m.log.WithFields(logrus.Fields{
		"workers": m.workerCount,
		"stream":  queue.StreamActivity,
		"group":   queue.ConsumerGroupAudit,
	}).Info("Workers started")
	return nil
}

// Stop cancels the workers and waits for them to finish.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.log.Info("Workers stopped")
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()
	log := m.log.WithField("worker", workerID)

	// Replay anything left unacknowledged by a previous run first.
	m.processPending(log, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.processMessages(log, consumerName)
		}
	}
}

func (m *Manager) processPending(log *logrus.Entry, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamActivity, queue.ConsumerGroupAudit, consumerName, m.batchSize)
		if err != nil {
			if m.ctx.Err() == nil {
				log.WithError(err).Warn("Failed to read pending messages")
			}
			return
		}
		if len(messages) == 0 {
			return
		}
		// An unacked entry would come back on the next read.
		if !m.handleMessages(log, messages) {
			return
		}
	}
}

func (m *Manager) processMessages(log *logrus.Entry, consumerName string) {
	messages, err := m.consumer.Read(m.ctx, queue.StreamActivity, queue.ConsumerGroupAudit, consumerName, m.batchSize, m.blockTime)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.WithError(err).Warn("Failed to read messages")
		select {
		case <-m.ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	m.handleMessages(log, messages)
}

// handleMessages acks every message, including rejected and unparseable ones.
// It reports false if any ack failed.
func (m *Manager) handleMessages(log *logrus.Entry, messages []queue.Message) bool {
	acked := true
	for _, msg := range messages {
		if err := m.handler.HandleMessage(m.ctx, msg); err != nil {
			log.WithError(err).WithField("message_id", msg.ID).Warn("Event rejected")
		}

		if err := m.consumer.Ack(m.ctx, queue.StreamActivity, queue.ConsumerGroupAudit, msg.ID); err != nil {
			log.WithError(err).WithField("message_id", msg.ID).Warn("Failed to ack message")
			acked = false
		}
	}
	return acked
}

// ConsumerName is the consumer name worker workerID registers under.
func ConsumerName(workerID int) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-worker-%d", hostname, workerID)
}
