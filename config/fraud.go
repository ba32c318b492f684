package config

import (
	"os"
	"strconv"
)

// FraudConfig holds the tunable thresholds of the fraud validation engine.
// Every value can be overridden per deployment through the environment.
type FraudConfig struct {
	// GPSToleranceMeters is the maximum allowed distance between a new
	// photo and the surveyor's previous photo at the same site.
	GPSToleranceMeters float64

	// DuplicateHammingThreshold is the maximum perceptual-hash Hamming
	// distance at which two photos count as duplicates.
	DuplicateHammingThreshold int

	// DaysPerStage is the expected minimum number of days a construction
	// stage takes; used by the progress velocity check.
	DaysPerStage int

	// MaxStageJumps is the maximum number of stages a site may skip
	// between two consecutive submissions.
	MaxStageJumps int

	// SiteHashWindow and SurveyorHashWindow bound the recent-history
	// windows scanned by the duplicate check. VelocityWindow bounds the
	// submissions examined by the velocity check.
	SiteHashWindow     int
	SurveyorHashWindow int
	VelocityWindow     int
}

// DefaultFraudConfig returns the engine defaults without consulting the
// environment. Useful for tests.
func DefaultFraudConfig() *FraudConfig {
	return &FraudConfig{
		GPSToleranceMeters:        20,
		DuplicateHammingThreshold: 5,
		DaysPerStage:              7,
		MaxStageJumps:             2,
		SiteHashWindow:            2,
		SurveyorHashWindow:        3,
		VelocityWindow:            10,
	}
}

// LoadFraudConfig builds the fraud configuration from environment
// variables, falling back to the defaults for anything unset.
func LoadFraudConfig() *FraudConfig {
	cfg := DefaultFraudConfig()

	if v := os.Getenv("GPS_TOLERANCE_METERS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			cfg.GPSToleranceMeters = parsed
		}
	}
	cfg.DuplicateHammingThreshold = envInt("DUPLICATE_HAMMING_THRESHOLD", cfg.DuplicateHammingThreshold)
	cfg.DaysPerStage = envInt("DAYS_PER_STAGE", cfg.DaysPerStage)
	cfg.MaxStageJumps = envInt("MAX_STAGE_JUMPS", cfg.MaxStageJumps)
	cfg.SiteHashWindow = envInt("SITE_HASH_WINDOW", cfg.SiteHashWindow)
	cfg.SurveyorHashWindow = envInt("SURVEYOR_HASH_WINDOW", cfg.SurveyorHashWindow)
	cfg.VelocityWindow = envInt("VELOCITY_WINDOW", cfg.VelocityWindow)

	return cfg
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
