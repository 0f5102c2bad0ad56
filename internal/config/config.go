package config

const (
	DefaultTimeZone = "UTC"

	// Correction reaper: documents stuck in correction_pending longer than
	// the cutoff are handed back to the review UI.
	DefaultReaperSchedule   = "*/5 * * * *"
	DefaultCorrectionCutoff = 30 // minutes

	ReaperBatchSize = 100
)
