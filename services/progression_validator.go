package services

import (
	"errors"
	"fmt"
	"log"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"

	"gorm.io/gorm"
)

// ProgressionResult describes the outcome of validating a site's stage
// progression against its submission history.
type ProgressionResult struct {
	Valid    bool
	FlagType string // set when Valid is false
	Message  string
	// Degraded marks the fail-open path: an internal error prevented the
	// check from running and the result defaulted to valid.
	Degraded       bool
	DegradedReason string
}

// ProgressionValidator enforces the construction-stage state machine:
// no regressions, no implausible jumps, no progress faster than the
// configured construction pace.
type ProgressionValidator struct {
	db  *gorm.DB
	cfg *config.FraudConfig
}

func NewProgressionValidator(db *gorm.DB, cfg *config.FraudConfig) *ProgressionValidator {
	return &ProgressionValidator{db: db, cfg: cfg}
}

// ValidateProgression checks the newly classified stage against the
// previous approved submission's stage and the recent submission pace.
// Internal errors degrade to valid: the engine fails open on this check,
// prioritizing availability over strict enforcement.
func (v *ProgressionValidator) ValidateProgression(siteID int, currentStage ConstructionStage) ProgressionResult {
	previousStage, found, err := v.previousApprovedStage(siteID)
	if err != nil {
		log.Printf("Progression validation error: %v", err)
		return ProgressionResult{Valid: true, Degraded: true, DegradedReason: err.Error()}
	}
	if !found {
		// First submission for the site, always valid.
		return ProgressionResult{Valid: true}
	}

	if result := v.checkRegression(previousStage, currentStage); !result.Valid {
		return result
	}

	result, err := v.checkVelocity(siteID)
	if err != nil {
		log.Printf("Progression validation error: %v", err)
		return ProgressionResult{Valid: true, Degraded: true, DegradedReason: err.Error()}
	}
	if !result.Valid {
		return result
	}

	if result := v.checkStageJump(previousStage, currentStage); !result.Valid {
		return result
	}

	return ProgressionResult{Valid: true}
}

// previousApprovedStage finds the stage recorded for the site's most
// recent approved submission. found is false when the site has no
// approved submission or that submission has no stage result yet.
func (v *ProgressionValidator) previousApprovedStage(siteID int) (ConstructionStage, bool, error) {
	var previous models.Submission
	err := v.db.
		Where("site_id = ? AND is_approved = ?", siteID, true).
		Order("create_at DESC").
		First(&previous).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var stageResult models.StageResult
	err = v.db.
		Where("submission_id = ?", previous.SubmissionID).
		Order("create_at DESC").
		First(&stageResult).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if stageResult.Stage == "" {
		return "", false, nil
	}

	return ConstructionStage(stageResult.Stage), true, nil
}

func (v *ProgressionValidator) checkRegression(previous, current ConstructionStage) ProgressionResult {
	prevRank, prevOK := StageRank(previous)
	currRank, currOK := StageRank(current)
	if !prevOK || !currOK {
		// Unknown stage values cannot be ordered; treat as valid.
		return ProgressionResult{Valid: true}
	}

	if currRank < prevRank {
		return ProgressionResult{
			Valid:    false,
			FlagType: models.FlagTypeProgressionViolation,
			Message:  fmt.Sprintf("Stage regression detected: %s → %s", previous, current),
		}
	}

	return ProgressionResult{Valid: true}
}

// checkVelocity flags when three or more of the site's recent
// submissions arrived within a span shorter than the expected days per
// stage: construction simply does not move that fast.
func (v *ProgressionValidator) checkVelocity(siteID int) (ProgressionResult, error) {
	var recent []models.Submission
	err := v.db.
		Where("site_id = ?", siteID).
		Order("create_at DESC").
		Limit(v.cfg.VelocityWindow).
		Find(&recent).Error
	if err != nil {
		return ProgressionResult{}, err
	}

	if len(recent) < 3 {
		return ProgressionResult{Valid: true}, nil
	}

	span := recent[0].CreateAt.Sub(recent[len(recent)-1].CreateAt)
	spanDays := int(span.Hours() / 24)

	if spanDays < v.cfg.DaysPerStage {
		return ProgressionResult{
			Valid:    false,
			FlagType: models.FlagTypeImpossibleProgress,
			Message:  fmt.Sprintf("Unrealistic progress speed: %d submissions in %d days", len(recent), spanDays),
		}, nil
	}

	return ProgressionResult{Valid: true}, nil
}

func (v *ProgressionValidator) checkStageJump(previous, current ConstructionStage) ProgressionResult {
	prevRank, prevOK := StageRank(previous)
	currRank, currOK := StageRank(current)
	if !prevOK || !currOK {
		return ProgressionResult{Valid: true}
	}

	jump := currRank - prevRank
	if jump < 0 {
		jump = -jump
	}

	if jump > v.cfg.MaxStageJumps {
		return ProgressionResult{
			Valid:    false,
			FlagType: models.FlagTypeProgressionViolation,
			Message:  fmt.Sprintf("Impossible stage jump: skipped %d stages (%s → %s)", jump, previous, current),
		}
	}

	return ProgressionResult{Valid: true}
}
