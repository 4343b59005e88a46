package services

import (
	"sync"

	"github.com/robfig/cron/v3"

	"postpilot/internal/checkpoint"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

type SchedulerInterface interface {
	Init() error
	Stop()
}

// Scheduler runs the background maintenance jobs: purging expired
// checkpoints and refreshing the live-checkpoint gauge.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   checkpoint.StoreInterface
	metrics providers.MetricsProviderInterface
	cron    *cron.Cron
	opsMu   sync.Mutex
}

func NewScheduler(config *structures.Config, logger providers.Logger, store checkpoint.StoreInterface, metrics providers.MetricsProviderInterface) SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		store:   store,
		metrics: metrics,
	}
}

func (s *Scheduler) Init() error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.config.Checkpoint.SweepSpec, func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		purged := s.store.Sweep()
		live := len(s.store.ListAll())
		s.metrics.SetLiveCheckpoints(live)
		if purged > 0 {
			s.logger.Infof(providers.TypeApp, "Checkpoint sweep purged %d expired records, %d live", purged, live)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Maintenance scheduler started (sweep spec %q)", s.config.Checkpoint.SweepSpec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
