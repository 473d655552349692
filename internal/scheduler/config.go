package scheduler

import (
	"time"

	"github.com/platewise/platewise/internal/config"
)

type Config struct {
	// RunInterval is how often the run loop wakes up to check for due
	// jobs; each job then has its own cadence.
	RunInterval time.Duration
	JobTimeout  time.Duration

	CooldownSweepInterval  time.Duration
	DeviationInterval      time.Duration
	TimeDecayInterval      time.Duration
	TierEvaluationInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:            time.Minute,
		JobTimeout:             5 * time.Minute,
		CooldownSweepInterval:  10 * time.Minute,
		DeviationInterval:      24 * time.Hour,
		TimeDecayInterval:      24 * time.Hour,
		TierEvaluationInterval: 24 * time.Hour,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.CooldownSweepInterval <= 0 {
		c.CooldownSweepInterval = defaults.CooldownSweepInterval
	}
	if c.DeviationInterval <= 0 {
		c.DeviationInterval = defaults.DeviationInterval
	}
	if c.TimeDecayInterval <= 0 {
		c.TimeDecayInterval = defaults.TimeDecayInterval
	}
	if c.TierEvaluationInterval <= 0 {
		c.TierEvaluationInterval = defaults.TierEvaluationInterval
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:            cfg.Scheduler.RunInterval,
		JobTimeout:             cfg.Scheduler.JobTimeout,
		CooldownSweepInterval:  cfg.Scheduler.CooldownSweepInterval,
		DeviationInterval:      cfg.Scheduler.DeviationInterval,
		TimeDecayInterval:      cfg.Scheduler.TimeDecayInterval,
		TierEvaluationInterval: cfg.Scheduler.TierEvaluationInterval,
	}
}
