package models

import (
	"time"
)

// Site represents a construction site under monitoring
type Site struct {
	SiteID                 int        `gorm:"primaryKey;column:site_id" json:"site_id"`
	SiteCode               string     `gorm:"column:site_code;unique" json:"site_code"`
	GpsLat                 float64    `gorm:"column:gps_lat;type:decimal(10,8)" json:"gps_lat"`
	GpsLon                 float64    `gorm:"column:gps_lon;type:decimal(11,8)" json:"gps_lon"`
	Contractor             *string    `gorm:"column:contractor" json:"contractor,omitempty"`
	ExpectedCompletionDate *time.Time `gorm:"column:expected_completion_date" json:"expected_completion_date,omitempty"`
	CreateAt               time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt               time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt               *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Submissions []Submission `gorm:"foreignKey:SiteID" json:"submissions,omitempty"`
}

func (Site) TableName() string {
	return "sites"
}
