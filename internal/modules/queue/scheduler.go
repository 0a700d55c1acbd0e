package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// NotificationCleaner trims old notification records.
type NotificationCleaner interface {
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Scheduler drives the periodic work: the expiry sweep on a short
// interval and the notification cleanup on a cron schedule.
type Scheduler struct {
	queue   *Service
	cleaner NotificationCleaner
	cron    *cron.Cron

	sweepEvery      time.Duration
	cleanupSchedule string
	cleanupEnabled  bool
	retention       time.Duration
}

func NewScheduler(queue *Service, cleaner NotificationCleaner, sweepEvery time.Duration, cleanupSchedule string, cleanupEnabled bool, retentionDays int) *Scheduler {
	// a panicking job must not take the process down with it
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{
		queue:           queue,
		cleaner:         cleaner,
		cron:            c,
		sweepEvery:      sweepEvery,
		cleanupSchedule: cleanupSchedule,
		cleanupEnabled:  cleanupEnabled,
		retention:       time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.sweepEvery), s.runSweep); err != nil {
		return fmt.Errorf("scheduler: register sweep: %w", err)
	}
	if s.cleanupEnabled && s.cleaner != nil {
		if _, err := s.cron.AddFunc(s.cleanupSchedule, s.runCleanup); err != nil {
			return fmt.Errorf("scheduler: register cleanup: %w", err)
		}
	}
	s.cron.Start()
	log.Printf("level=info msg=\"scheduler started\" sweep_every=%s cleanup=%s cleanup_enabled=%t", s.sweepEvery, s.cleanupSchedule, s.cleanupEnabled)
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Printf("level=info msg=\"scheduler stopped\"")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sweepEvery)
	defer cancel()

	forced, err := s.queue.SweepExpired(ctx)
	if err != nil {
		log.Printf("level=error msg=\"expiry sweep\" forced=%d err=%v", forced, err)
		return
	}
	if forced > 0 {
		log.Printf("level=info msg=\"expiry sweep\" forced=%d", forced)
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.cleaner.DeleteOlderThan(ctx, s.retention)
	if err != nil {
		log.Printf("level=error msg=\"notification cleanup\" err=%v", err)
		return
	}
	log.Printf("level=info msg=\"notification cleanup\" deleted=%d retention=%s", deleted, s.retention)
}
