package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"CommissionFlow/internal/logger"
	"CommissionFlow/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "jobs"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	reaperConfig := NewDefaultReaperConfig()
	if s.config != nil {
		if schedule, ok := s.config["reaper_schedule"].(string); ok && schedule != "" {
			reaperConfig.Schedule = schedule
		}
		if cutoff, ok := s.config["correction_cutoff_minutes"].(int); ok && cutoff > 0 {
			reaperConfig.CutoffMinutes = cutoff
		}
	}

	if err := RunCorrectionReaper(reaperConfig, s.db); err != nil {
		return fmt.Errorf("failed to start correction reaper: %v", err)
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started with correction reaper")
	}
	log.Println("Cron service started: correction reaper scheduled")
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
