package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"CommissionFlow/api/statement"
	"CommissionFlow/internal/config"
	"CommissionFlow/internal/logger"
)

// ReaperConfig controls the stale-correction sweep. Documents stuck in
// correction_pending longer than the cutoff are reverted so their failed
// transactions become correctable again.
type ReaperConfig struct {
	Schedule      string
	CutoffMinutes int
	TimeZone      string
}

func NewDefaultReaperConfig() ReaperConfig {
	return ReaperConfig{
		Schedule:      config.DefaultReaperSchedule,
		CutoffMinutes: config.DefaultCorrectionCutoff,
		TimeZone:      config.DefaultTimeZone,
	}
}

func RunCorrectionReaper(cfg ReaperConfig, db *pgxpool.Pool) error {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %v", cfg.TimeZone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := sweepStaleCorrections(cfg, db); err != nil {
			log.Printf("Correction reaper sweep failed: %v", err)
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogError(fmt.Sprintf("Correction reaper sweep failed: %v", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %v", cfg.Schedule, err)
	}

	c.Start()
	log.Printf("Correction reaper scheduled (%s, cutoff %dm)", cfg.Schedule, cfg.CutoffMinutes)
	return nil
}

func sweepStaleCorrections(cfg ReaperConfig, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := statement.NewPostgresDocumentStore(db)
	cutoff := time.Now().UTC().Add(-time.Duration(cfg.CutoffMinutes) * time.Minute)

	ids, err := store.StaleCorrections(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing stale corrections: %v", err)
	}
	if len(ids) == 0 {
		return nil
	}

	if len(ids) > config.ReaperBatchSize {
		ids = ids[:config.ReaperBatchSize]
	}

	reverted := 0
	for _, id := range ids {
		_, err := store.Mutate(ctx, id, func(doc *statement.Document) error {
			if doc.Status != statement.StatusCorrectionPending {
				return nil
			}
			if len(doc.FailedTransactions) > 0 {
				doc.Status = statement.StatusCompletedWithErrors
			} else {
				doc.Status = statement.StatusCompleted
			}
			return nil
		})
		if err != nil {
			log.Printf("Correction reaper: failed to revert document %d: %v", id, err)
			continue
		}
		reverted++
	}

	if reverted > 0 {
		msg := fmt.Sprintf("Correction reaper reverted %d stale document(s)", reverted)
		log.Println(msg)
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(msg)
		}
	}
	return nil
}
