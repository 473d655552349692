package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/platewise/platewise/internal/clock"
	"github.com/platewise/platewise/internal/observability"
	policydomain "github.com/platewise/platewise/internal/policy/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log       *zap.Logger
	PolicySvc policydomain.Service
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	policySvc policydomain.Service

	lastRun map[string]time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.PolicySvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		policySvc: p.PolicySvc,
		lastRun:   make(map[string]time.Time),
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	fn func(ctx context.Context) (int, error),
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	observability.IncJobRun(name)
	log.Info("job started")

	processed, err := fn(ctx)
	observability.ObserveJobDuration(name, time.Since(start))
	observability.AddJobProcessed(name, processed)

	if err == nil {
		log.Info("job finished", zap.Int("processed", processed))
		return nil
	}

	observability.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Int("processed", processed),
			zap.Error(err),
		)
		return nil
	}
	log.Error("job failed", zap.Int("processed", processed), zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

// due reports whether a job's cadence has elapsed since its last run,
// and records the run when it has.
func (s *Scheduler) due(name string, interval time.Duration) bool {
	now := s.clock.Now()
	last, ok := s.lastRun[name]
	if ok && now.Sub(last) < interval {
		return false
	}
	s.lastRun[name] = now
	return true
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name     string
		Interval time.Duration
		Run      func(context.Context) (int, error)
	}{
		{"cooldown_sweep", s.cfg.CooldownSweepInterval, s.policySvc.ProcessCooldownExpirations},
		{"deviation_refresh", s.cfg.DeviationInterval, s.policySvc.RefreshDeviationTargets},
		{"time_decay_refresh", s.cfg.TimeDecayInterval, s.policySvc.RecalculateStoresForTimeDecay},
		{"tier_evaluation", s.cfg.TierEvaluationInterval, s.policySvc.RunTierEvaluation},
	}

	for _, job := range jobs {
		if !s.due(job.Name, job.Interval) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
