package rate

import (
	"context"
	"fxconvert/internal/domain"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultRefreshTimeout = 2 * time.Minute

type Refresher interface {
	Refresh(ctx context.Context) (domain.RateTable, error)
}

// DailyAt is the wall-clock time of the daily refresh.
type DailyAt struct {
	Hour     uint
	Minute   uint
	Location *time.Location
}

// Scheduler triggers Refresh once a day. It owns all timing, the service has none.
type Scheduler struct {
	refresher      Refresher
	at             DailyAt
	refreshTimeout time.Duration
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
	job   gocron.Job
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(s.at.Location))
	if err != nil {
		return err
	}

	job, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(s.at.Hour, s.at.Minute, 0))),
		gocron.NewTask(s.runRefresh),
		gocron.WithName("refresh-currency-rates"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.job = job
	s.mu.Unlock()

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// NextRun reports when the refresh job fires next.
func (s *Scheduler) NextRun() (time.Time, error) {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job == nil {
		return time.Time{}, nil
	}
	return job.NextRun()
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	execID := uuid.NewString()
	started := time.Now()
	log := logrus.WithField("exec_id", execID)
	log.WithField("started_at", started.Format(time.RFC3339)).Info("Start currency rates refresh")

	jobCtx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	rates, err := s.refresher.Refresh(jobCtx)
	finished := time.Now()
	if err != nil {
		log.WithError(err).WithField("finished_at", finished.Format(time.RFC3339)).Error("Currency rates refresh failed")
		return
	}
	log.WithFields(logrus.Fields{
		"finished_at": finished.Format(time.RFC3339),
		"duration":    finished.Sub(started).String(),
		"currencies":  len(rates),
	}).Info("Finish currency rates refresh")
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.job = nil
	s.mu.Unlock()

	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func NewScheduler(refresher Refresher, at DailyAt, refreshTimeout time.Duration) *Scheduler {
	if at.Location == nil {
		at.Location = time.UTC
	}
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	return &Scheduler{refresher: refresher, at: at, refreshTimeout: refreshTimeout}
}
