package models

import (
	"time"
)

// Submission statuses (exact match with submissions.status column values)
const (
	SubmissionStatusPending   = "PENDING"
	SubmissionStatusCompleted = "COMPLETED"
	SubmissionStatusFailed    = "FAILED"
	SubmissionStatusFlagged   = "FLAGGED"
)

// Submission represents a geotagged photo submission for a site.
// Rows are append-only: the validation engine writes each submission once
// together with its flags and stage result, and never edits it afterwards.
type Submission struct {
	SubmissionID int       `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SiteID       int       `gorm:"column:site_id;index" json:"site_id"`
	SurveyorID   int       `gorm:"column:surveyor_id;index" json:"surveyor_id"`
	PhotoURL     string    `gorm:"column:photo_url" json:"photo_url"`
	GpsLat       float64   `gorm:"column:gps_lat;type:decimal(10,8)" json:"gps_lat"`
	GpsLon       float64   `gorm:"column:gps_lon;type:decimal(11,8)" json:"gps_lon"`
	Phash        *string   `gorm:"column:phash" json:"phash,omitempty"`
	Status       string    `gorm:"column:status;index" json:"status"`
	IsApproved   bool      `gorm:"column:is_approved" json:"is_approved"`
	CreateAt     time.Time `gorm:"column:create_at;index" json:"create_at"`

	// Relations
	Site        Site          `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	Surveyor    User          `gorm:"foreignKey:SurveyorID" json:"surveyor,omitempty"`
	FraudFlags  []FraudFlag   `gorm:"foreignKey:SubmissionID" json:"fraud_flags,omitempty"`
	StageResult []StageResult `gorm:"foreignKey:SubmissionID" json:"stage_results,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
