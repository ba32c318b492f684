package services

import (
	"context"
	"time"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"

	"gorm.io/gorm"
)

// ValidationInput carries everything a single validation pass needs. The
// photo must already be stored; PhotoURL is its stored path.
type ValidationInput struct {
	SiteID     int
	SurveyorID int
	GpsLat     float64
	GpsLon     float64
	Photo      []byte
	PhotoURL   string
	Detections []Detection
}

// ValidationResult is the outcome of one validation pass. Submission,
// Flags and StageResult are the rows persisted for the pass.
type ValidationResult struct {
	Submission         *models.Submission
	Flags              []models.FraudFlag
	StageResult        *models.StageResult
	Approved           bool
	ProgressionOK      bool
	ProgressionMessage string
}

// ValidationService runs the full fraud and progression validation pass
// for a new submission and persists its outcome atomically.
type ValidationService struct {
	db          *gorm.DB
	cfg         *config.FraudConfig
	detector    *FraudDetector
	progression *ProgressionValidator
}

func NewValidationService(db *gorm.DB, cfg *config.FraudConfig) *ValidationService {
	return &ValidationService{
		db:          db,
		cfg:         cfg,
		detector:    NewFraudDetector(db, cfg),
		progression: NewProgressionValidator(db, cfg),
	}
}

// ValidateSubmission fingerprints the photo, runs the duplicate and GPS
// checks against submission history, classifies the construction stage
// from the supplied detections, validates stage progression, and writes
// the submission with its flags and stage result in one transaction.
//
// A photo that cannot be decoded or a failed history lookup aborts the
// pass with an error and nothing is persisted. Stage classification and
// progression checking never abort: they degrade to their documented
// conservative defaults.
func (s *ValidationService) ValidateSubmission(ctx context.Context, input *ValidationInput) (*ValidationResult, error) {
	phash, err := GeneratePhash(input.Photo)
	if err != nil {
		return nil, err
	}

	// Both fraud checks always run so that simultaneous indicators are
	// all recorded, not just the first detected.
	duplicate, dupMsg, dupErr := s.detector.CheckDuplicatePhoto(phash, input.SiteID, input.SurveyorID)
	gpsOK, gpsMsg, gpsErr := s.detector.CheckDistanceToLastPhoto(input.SiteID, input.SurveyorID, input.GpsLat, input.GpsLon)
	if dupErr != nil {
		return nil, dupErr
	}
	if gpsErr != nil {
		return nil, gpsErr
	}

	classification := ClassifyStage(input.Detections)
	progression := s.progression.ValidateProgression(input.SiteID, classification.Stage)

	now := time.Now()

	var flags []models.FraudFlag
	if !gpsOK {
		flags = append(flags, models.FraudFlag{
			FlagType: models.FlagTypeGPSMismatch,
			Details:  gpsMsg,
			CreateAt: now,
		})
	}
	if duplicate {
		flags = append(flags, models.FraudFlag{
			FlagType: models.FlagTypeDuplicatePhoto,
			Details:  dupMsg,
			CreateAt: now,
		})
	}
	if !progression.Valid {
		flags = append(flags, models.FraudFlag{
			FlagType: progression.FlagType,
			Details:  progression.Message,
			CreateAt: now,
		})
	}

	status := models.SubmissionStatusCompleted
	if len(flags) > 0 {
		status = models.SubmissionStatusFlagged
	}

	submission := models.Submission{
		SiteID:     input.SiteID,
		SurveyorID: input.SurveyorID,
		PhotoURL:   input.PhotoURL,
		GpsLat:     input.GpsLat,
		GpsLon:     input.GpsLon,
		Phash:      &phash,
		Status:     status,
		IsApproved: len(flags) == 0,
		CreateAt:   now,
	}

	stageResult := models.StageResult{
		Stage:         string(classification.Stage),
		Confidence:    classification.Confidence,
		CompletionPct: CompletionPercent(classification.Stage),
		TriggeredBy:   "auto",
		CreateAt:      now,
	}
	if err := stageResult.SetMatchedElements(classification.MatchedElements); err != nil {
		return nil, err
	}

	// The submission, its flags and its stage result become visible
	// together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		for i := range flags {
			flags[i].SubmissionID = submission.SubmissionID
			if err := tx.Create(&flags[i]).Error; err != nil {
				return err
			}
		}
		stageResult.SubmissionID = submission.SubmissionID
		return tx.Create(&stageResult).Error
	})
	if err != nil {
		return nil, err
	}

	return &ValidationResult{
		Submission:         &submission,
		Flags:              flags,
		StageResult:        &stageResult,
		Approved:           submission.IsApproved,
		ProgressionOK:      progression.Valid,
		ProgressionMessage: progression.Message,
	}, nil
}

// AnalysisResult is the outcome of re-analyzing an existing submission.
type AnalysisResult struct {
	StageResult        *models.StageResult
	ProgressionOK      bool
	ProgressionMessage string
}

// AnalyzeSubmission re-classifies the construction stage of an existing
// submission from a fresh detection feed, re-validates progression, and
// stores a new stage result. The submission row itself is never edited.
func (s *ValidationService) AnalyzeSubmission(ctx context.Context, submission *models.Submission, detections []Detection) (*AnalysisResult, error) {
	classification := ClassifyStage(detections)
	progression := s.progression.ValidateProgression(submission.SiteID, classification.Stage)

	stageResult := models.StageResult{
		SubmissionID:  submission.SubmissionID,
		Stage:         string(classification.Stage),
		Confidence:    classification.Confidence,
		CompletionPct: CompletionPercent(classification.Stage),
		TriggeredBy:   "admin",
		CreateAt:      time.Now(),
	}
	if err := stageResult.SetMatchedElements(classification.MatchedElements); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&stageResult).Error; err != nil {
		return nil, err
	}

	return &AnalysisResult{
		StageResult:        &stageResult,
		ProgressionOK:      progression.Valid,
		ProgressionMessage: progression.Message,
	}, nil
}
