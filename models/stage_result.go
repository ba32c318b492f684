package models

import (
	"encoding/json"
	"time"
)

// StageResult stores the construction stage classified for a submission.
// MatchedElements holds the matched keyword list JSON-encoded, the way the
// detector output is stored as a JSON column.
type StageResult struct {
	StageResultID   int       `gorm:"primaryKey;column:stage_result_id" json:"stage_result_id"`
	SubmissionID    int       `gorm:"column:submission_id;index" json:"submission_id"`
	Stage           string    `gorm:"column:stage;index" json:"stage"`
	Confidence      float64   `gorm:"column:confidence;type:decimal(5,4)" json:"confidence"`
	MatchedElements *string   `gorm:"column:matched_elements" json:"matched_elements,omitempty"`
	CompletionPct   float64   `gorm:"column:completion_pct;type:decimal(5,2)" json:"completion_pct"`
	TriggeredBy     string    `gorm:"column:triggered_by" json:"triggered_by"`
	CreateAt        time.Time `gorm:"column:create_at" json:"create_at"`

	// Relations
	Submission Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

func (StageResult) TableName() string {
	return "stage_results"
}

// SetMatchedElements JSON-encodes the matched keyword list into the column.
func (r *StageResult) SetMatchedElements(elements []string) error {
	if len(elements) == 0 {
		r.MatchedElements = nil
		return nil
	}
	raw, err := json.Marshal(elements)
	if err != nil {
		return err
	}
	encoded := string(raw)
	r.MatchedElements = &encoded
	return nil
}

// GetMatchedElements decodes the stored keyword list.
func (r *StageResult) GetMatchedElements() []string {
	if r.MatchedElements == nil {
		return nil
	}
	var elements []string
	if err := json.Unmarshal([]byte(*r.MatchedElements), &elements); err != nil {
		return nil
	}
	return elements
}
