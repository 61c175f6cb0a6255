package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/config"
	"staycation/models"
)

const (
	JobCancelExpired = "cancel-expired"
	JobReminders     = "reminders"
	JobComplete      = "complete"
)

type SweepResult struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

var ErrSweepRunning = NewAppError(http.StatusConflict, "sweep already running")

// CronService runs the periodic booking sweeps. Each job holds its own lock so overlapping
// runs of the same job inside one process are refused. Deployments with several instances
// must schedule the sweeps from a single place.
type CronService struct {
	db       *gorm.DB
	bookings *BookingService
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	running map[string]bool
}

func NewCronService(db *gorm.DB, bookings *BookingService, notifier Notifier, log *zap.Logger) *CronService {
	return &CronService{
		db:       db,
		bookings: bookings,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		running:  map[string]bool{},
	}
}

func (s *CronService) tryLock(job string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[job] {
		return false
	}
	s.running[job] = true
	return true
}

func (s *CronService) unlock(job string) {
	s.mu.Lock()
	delete(s.running, job)
	s.mu.Unlock()
}

func (s *CronService) run(ctx context.Context, job string, fn func(ctx context.Context, res *SweepResult) error) (*SweepResult, error) {
	if !s.tryLock(job) {
		SweepRunsTotal.WithLabelValues(job, "skipped").Inc()
		return nil, ErrSweepRunning
	}
	defer s.unlock(job)

	start := time.Now()
	res := &SweepResult{Job: job}
	if err := fn(ctx, res); err != nil {
		SweepRunsTotal.WithLabelValues(job, "error").Inc()
		s.log.Error("sweep failed", zap.String("job", job), zap.Error(err))
		return nil, err
	}
	SweepRunsTotal.WithLabelValues(job, "ok").Inc()
	s.log.Info("sweep finished",
		zap.String("job", job),
		zap.Int("processed", res.Processed),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}

// CancelExpired cancels unpaid bookings whose payment deadline has passed.
func (s *CronService) CancelExpired(ctx context.Context) (*SweepResult, error) {
	return s.run(ctx, JobCancelExpired, func(ctx context.Context, res *SweepResult) error {
		var ids []uint
		err := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("status = ? AND payment_deadline < ?", models.BookingPendingPayment, s.now()).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		for _, id := range ids {
			res.Processed++
			b, err := s.bookings.load(ctx, id)
			if err == nil {
				_, err = s.bookings.cancel(ctx, b, models.CancelledBySystem, models.CancelReasonPaymentTimeout, models.BookingPendingPayment)
			}
			if err != nil {
				res.Failed++
				s.log.Warn("auto cancel failed", zap.Uint("booking_id", id), zap.Error(err))
				continue
			}
			res.Succeeded++
		}
		return nil
	})
}

// SendReminders mails guests of confirmed bookings starting tomorrow. A booking whose mail
// fails is retried on the next run.
func (s *CronService) SendReminders(ctx context.Context) (*SweepResult, error) {
	return s.run(ctx, JobReminders, func(ctx context.Context, res *SweepResult) error {
		tomorrow := TruncateDay(s.now()).AddDate(0, 0, 1)
		var ids []uint
		err := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("status = ? AND check_in >= ? AND check_in < ? AND reminder_sent_at IS NULL",
				models.BookingConfirmed, tomorrow, tomorrow.AddDate(0, 0, 1)).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		for _, id := range ids {
			res.Processed++
			b, err := s.bookings.load(ctx, id)
			if err == nil {
				err = s.notifier.SendCheckInReminder(ctx, b)
			}
			if err == nil {
				err = s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("reminder_sent_at", s.now()).Error
			}
			if err != nil {
				res.Failed++
				s.log.Warn("check-in reminder failed", zap.Uint("booking_id", id), zap.Error(err))
				continue
			}
			res.Succeeded++
		}
		return nil
	})
}

// CompleteStays marks confirmed bookings whose checkout day has come as completed.
func (s *CronService) CompleteStays(ctx context.Context) (*SweepResult, error) {
	return s.run(ctx, JobComplete, func(ctx context.Context, res *SweepResult) error {
		today := TruncateDay(s.now())
		var ids []uint
		err := s.db.WithContext(ctx).Model(&models.Booking{}).
			Where("status = ? AND check_out <= ?", models.BookingConfirmed, today).
			Order("id").
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		for _, id := range ids {
			res.Processed++
			err := s.bookings.transition(ctx, &models.Booking{ID: id}, models.BookingCompleted, nil, models.BookingConfirmed)
			if err != nil {
				res.Failed++
				s.log.Warn("complete booking failed", zap.Uint("booking_id", id), zap.Error(err))
				continue
			}
			res.Succeeded++
		}
		return nil
	})
}

// RunAll runs every sweep once, in order.
func (s *CronService) RunAll(ctx context.Context) ([]*SweepResult, error) {
	var out []*SweepResult
	for _, fn := range []func(context.Context) (*SweepResult, error){s.CancelExpired, s.CompleteStays, s.SendReminders} {
		res, err := fn(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Scheduler registers the sweeps on a robfig/cron scheduler. Start and Stop are left to the caller.
func (s *CronService) Scheduler(cfg config.CronConfig) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	jobs := []struct {
		spec string
		fn   func(context.Context) (*SweepResult, error)
	}{
		{cfg.CancelSpec, s.CancelExpired},
		{cfg.CompleteSpec, s.CompleteStays},
		{cfg.ReminderSpec, s.SendReminders},
	}
	for _, j := range jobs {
		fn := j.fn
		if _, err := c.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			_, _ = fn(ctx)
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}
