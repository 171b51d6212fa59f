package scheduler

import (
	"context"

	"github.com/brandsignal/attribution-dashboard/internal/config"
	"github.com/brandsignal/attribution-dashboard/internal/dashboard"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service handles scheduling of dashboard refresh and report tasks
type Service struct {
	config           *config.Config
	dashboardService *dashboard.Service
	cron             *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, dashboardService *dashboard.Service) *Service {
	return &Service{
		config:           cfg,
		dashboardService: dashboardService,
		cron:             cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled refresh and report runs
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.RefreshSchedule {
	case "daily":
		// Run daily at 9 AM UTC
		cronExpression = "0 0 9 * * *"
	case "weekly":
		// Run weekly on Monday at 9 AM UTC
		cronExpression = "0 0 9 * * MON"
	default:
		cronExpression = "0 0 9 * * *"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled source refresh")
		if err := s.dashboardService.RefreshAll(context.Background()); err != nil {
			logrus.Errorf("Scheduled source refresh failed: %v", err)
		}
		if err := s.dashboardService.SendReport(); err != nil {
			logrus.Errorf("Scheduled attribution report failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	// Also snapshot state to backup storage every night at 2 AM UTC
	_, err = s.cron.AddFunc("0 0 2 * * *", func() {
		logrus.Info("Starting nightly state backup")
		if _, _, err := s.dashboardService.Backup(); err != nil {
			logrus.Errorf("Nightly state backup failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s refresh schedule (plus nightly backups)", s.config.RefreshSchedule)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
