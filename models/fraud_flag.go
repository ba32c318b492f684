package models

import (
	"time"
)

// Fraud flag types (exact match with fraud_flags.flag_type column values)
const (
	FlagTypeGPSMismatch          = "GPS_MISMATCH"
	FlagTypeDuplicatePhoto       = "DUPLICATE_PHOTO"
	FlagTypeImpossibleProgress   = "IMPOSSIBLE_PROGRESS"
	FlagTypeProgressionViolation = "PROGRESSION_VIOLATION"
)

// FraudFlag records one fraud indicator raised against a submission.
// Flags are written by the validation pass and only touched again by the
// review workflow, which may mark them resolved.
type FraudFlag struct {
	FlagID       int        `gorm:"primaryKey;column:flag_id" json:"flag_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	FlagType     string     `gorm:"column:flag_type;index" json:"flag_type"`
	Details      string     `gorm:"column:details" json:"details"`
	Resolved     bool       `gorm:"column:resolved;index" json:"resolved"`
	ResolvedBy   *int       `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt   *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`

	// Relations
	Submission Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

func (FraudFlag) TableName() string {
	return "fraud_flags"
}
