package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/yrdnv/TelegramWeatherBot/internal/domain"
	"github.com/yrdnv/TelegramWeatherBot/internal/service"
	"github.com/yrdnv/TelegramWeatherBot/internal/store"
)

// Sender is a minimal interface the scheduler needs to deliver a report.
// telegram.Router implements it.
type Sender interface {
	SendReport(chatID int64, text string) error
}

// Scheduler periodically scans subscribed users and re-notifies each whose
// personal period has elapsed, within the daily active window only.
type Scheduler struct {
	repo     store.Repo
	svc      *service.Weather
	sender   Sender
	log      *zap.Logger
	interval time.Duration
	fromHour int
	toHour   int

	cron gocron.Scheduler
}

// New creates a Scheduler. The tick interval and the [fromHour, toHour]
// active window come from configuration.
func New(repo store.Repo, svc *service.Weather, sender Sender, log *zap.Logger,
	interval time.Duration, fromHour, toHour int) *Scheduler {
	return &Scheduler{
		repo:     repo,
		svc:      svc,
		sender:   sender,
		log:      log,
		interval: interval,
		fromHour: fromHour,
		toHour:   toHour,
	}
}

// Start registers the periodic tick and starts the underlying scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = cron.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.tick(ctx, time.Now())
		}),
	)
	if err != nil {
		return err
	}

	s.cron = cron
	cron.Start()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop shuts the underlying scheduler down.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		if err := s.cron.Shutdown(); err != nil {
			s.log.Warn("scheduler shutdown error", zap.Error(err))
		}
	}
}

// tick performs one scan-and-notify cycle. Every per-user failure is logged
// and that user skipped; a tick is never fatal.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if !domain.InActiveWindow(now.Hour(), s.fromHour, s.toHour) {
		return
	}

	users, err := s.repo.ListSubscribed(ctx)
	if err != nil {
		s.log.Error("list subscribed failed", zap.Error(err))
		return
	}

	for _, u := range users {
		s.notify(ctx, u)
	}
}

// notify refreshes one user if the personal period has elapsed and delivers
// the new report. Work is bounded by its own timeout so one hung fetch does
// not stall the rest of the batch indefinitely.
func (s *Scheduler) notify(ctx context.Context, u domain.User) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.svc.RefreshDue(ctx, u.ChatID, u.Period())
	if err != nil {
		s.log.Error("scheduled refresh failed", zap.Error(err), zap.Int64("chat_id", u.ChatID))
		return
	}
	if res.Cached {
		// Period not elapsed yet.
		return
	}

	if err := s.sender.SendReport(u.ChatID, res.Text); err != nil {
		s.log.Error("send failed", zap.Error(err), zap.Int64("chat_id", u.ChatID))
	}
}
