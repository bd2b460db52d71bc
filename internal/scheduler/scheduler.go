package scheduler

import (
	"context"
	"sync"
	"time"
)

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Metrics учет запусков задач
type Metrics interface {
	ObserveSchedulerRun(task string, err error)
}

// Task периодическая задача
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler запускает задачи по тикеру, каждую в своей горутине
type Scheduler struct {
	tasks   []Task
	metrics Metrics
	logger  Logger
	wg      sync.WaitGroup
}

func New(metrics Metrics, logger Logger, tasks ...Task) *Scheduler {
	return &Scheduler{
		tasks:   tasks,
		metrics: metrics,
		logger:  logger,
	}
}

// Start запускает все задачи и возвращается сразу
// Задачи с неположительным интервалом пропускаются.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		if task.Interval <= 0 || task.Run == nil {
			s.logger.Info("scheduler: task %s disabled", task.Name)
			continue
		}
		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()
			s.loop(ctx, t)
		}(task)
	}
}

// Wait дожидается остановки всех задач после отмены контекста
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	s.logger.Info("scheduler: task %s started, interval=%s", task.Name, task.Interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler: task %s stopped", task.Name)
			return
		case <-ticker.C:
			s.tick(ctx, task)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, task Task) {
	err := task.Run(ctx)
	if s.metrics != nil {
		s.metrics.ObserveSchedulerRun(task.Name, err)
	}
	if err != nil {
		s.logger.Error("scheduler: task %s failed: %v", task.Name, err)
	}
}
