package notification

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 100
	defaultSendTimeout = 10 * time.Second
)

// Config параметры диспетчера
type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher асинхронная доставка уведомлений по всем каналам
// Notify никогда не блокирует: при переполненной очереди событие отбрасывается.
// Ошибки каналов только логируются и учитываются в метриках.
type Dispatcher struct {
	channels    []Channel
	queue       chan domain.NotificationEvent
	sendTimeout time.Duration
	metrics     Metrics
	logger      Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher создает диспетчер и запускает воркеры
func NewDispatcher(cfg Config, metrics Metrics, logger Logger, channels ...Channel) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	d := &Dispatcher{
		channels:    channels,
		queue:       make(chan domain.NotificationEvent, cfg.QueueSize),
		sendTimeout: cfg.SendTimeout,
		metrics:     metrics,
		logger:      logger,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Notify ставит событие в очередь, false если событие отброшено
func (d *Dispatcher) Notify(event domain.NotificationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("Notify: dispatcher closed, dropping event id=%s type=%s", event.ID, event.Type)
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		d.logger.Error("Notify: queue is full, dropping event id=%s type=%s booking=%s",
			event.ID, event.Type, event.Booking.ID)
		return false
	}
}

// Close перестает принимать события и дожидается отправки очереди
// Каналы, реализующие io.Closer, закрываются после остановки воркеров.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, ch := range d.channels {
		if closer, ok := ch.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				d.logger.Warn("Close: failed to close channel %s: %v", ch.Name(), err)
			}
		}
	}
	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event domain.NotificationEvent) {
	for _, ch := range d.channels {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		err := ch.Send(ctx, event)
		cancel()

		if d.metrics != nil {
			d.metrics.ObserveNotification(ch.Name(), err)
		}
		if err != nil {
			d.logger.Error("deliver: channel %s failed for event id=%s type=%s booking=%s: %v",
				ch.Name(), event.ID, event.Type, event.Booking.ID, err)
			continue
		}
		d.logger.Info("deliver: channel %s sent event id=%s type=%s", ch.Name(), event.ID, event.Type)
	}
}
