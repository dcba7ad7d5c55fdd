// workers/daily_fact_worker.go
package workers

import (
	"context"
	"fmt"
	"time"

	"creature-training-system/logger"
	"creature-training-system/models"

	"github.com/go-co-op/gocron/v2"
)

// FactRotator picks and caches the fact of the day.
type FactRotator interface {
	Rotate(ctx context.Context, now time.Time) (*models.Fact, error)
}

// DailyFactWorker rotates the fact of the day on a crontab.
type DailyFactWorker struct {
	rotator FactRotator
	cron    string
	loc     *time.Location
	log     *logger.Logger
	sched   gocron.Scheduler
}

func NewDailyFactWorker(rotator FactRotator, cron string, loc *time.Location, log *logger.Logger) *DailyFactWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyFactWorker{
		rotator: rotator,
		cron:    cron,
		loc:     loc,
		log:     log.With("worker", "DailyFactWorker"),
	}
}

// Start warms the cache once, then schedules the rotation.
func (w *DailyFactWorker) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLocation(w.loc))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	w.rotate(ctx)

	_, err = sched.NewJob(
		gocron.CronJob(w.cron, false),
		gocron.NewTask(func() { w.rotate(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule daily fact job: %w", err)
	}

	sched.Start()
	w.sched = sched
	w.log.Info("🔁 [DAILY FACT] worker started", "cron", w.cron, "tz", w.loc.String())
	return nil
}

func (w *DailyFactWorker) rotate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	f, err := w.rotator.Rotate(ctx, time.Now())
	if err != nil {
		w.log.Warn("[DAILY FACT] rotation failed", "error", err)
		return
	}
	w.log.Info("✅ [DAILY FACT] rotated", "fact_id", f.ID, "title", f.Title)
}

func (w *DailyFactWorker) Stop() error {
	if w.sched == nil {
		return nil
	}
	return w.sched.Shutdown()
}
