package services

import (
	"errors"
	"fmt"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"

	"gorm.io/gorm"
)

// FraudDetector runs the per-submission fraud checks: duplicate photo
// detection via perceptual-hash comparison, and GPS consistency against
// the surveyor's previous submission at the site. Both checks read
// bounded windows of submission history, so cost is constant regardless
// of site age.
type FraudDetector struct {
	db  *gorm.DB
	cfg *config.FraudConfig
}

func NewFraudDetector(db *gorm.DB, cfg *config.FraudConfig) *FraudDetector {
	return &FraudDetector{db: db, cfg: cfg}
}

// CheckDistanceToLastPhoto compares the current coordinates against the
// surveyor's most recent submission at the same site. With no previous
// submission the check passes trivially. Returns ok=false with a message
// when the distance exceeds the configured tolerance.
func (d *FraudDetector) CheckDistanceToLastPhoto(siteID, surveyorID int, gpsLat, gpsLon float64) (bool, string, error) {
	var last models.Submission
	err := d.db.
		Where("site_id = ? AND surveyor_id = ?", siteID, surveyorID).
		Order("create_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No previous photo to compare, accept by default.
		return true, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrHistoryLookup, err)
	}

	dist := Haversine(gpsLat, gpsLon, last.GpsLat, last.GpsLon)
	if dist > d.cfg.GPSToleranceMeters {
		msg := fmt.Sprintf("GPS discrepancy too large: %.2f meters; maximum allowed is %g meters.",
			dist, d.cfg.GPSToleranceMeters)
		return false, msg, nil
	}

	return true, "", nil
}

// CheckDuplicatePhoto compares a new fingerprint against the most recent
// approved fingerprints for the site and the most recent fingerprints by
// the surveyor across any site. Returns duplicate=true with a message
// when any candidate is within the Hamming threshold.
func (d *FraudDetector) CheckDuplicatePhoto(phash string, siteID, surveyorID int) (bool, string, error) {
	var siteHashes []string
	err := d.db.Model(&models.Submission{}).
		Where("site_id = ? AND is_approved = ? AND phash IS NOT NULL", siteID, true).
		Order("create_at DESC").
		Limit(d.cfg.SiteHashWindow).
		Pluck("phash", &siteHashes).Error
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrHistoryLookup, err)
	}

	var surveyorHashes []string
	err = d.db.Model(&models.Submission{}).
		Where("surveyor_id = ? AND phash IS NOT NULL", surveyorID).
		Order("create_at DESC").
		Limit(d.cfg.SurveyorHashWindow).
		Pluck("phash", &surveyorHashes).Error
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrHistoryLookup, err)
	}

	// Union the two windows; duplicates within the union collapse.
	candidates := make(map[string]struct{}, len(siteHashes)+len(surveyorHashes))
	for _, h := range siteHashes {
		candidates[h] = struct{}{}
	}
	for _, h := range surveyorHashes {
		candidates[h] = struct{}{}
	}

	for candidate := range candidates {
		dist, err := HammingDistance(phash, candidate)
		if err != nil {
			// A malformed stored fingerprint cannot be a duplicate match.
			continue
		}
		if dist <= d.cfg.DuplicateHammingThreshold {
			msg := fmt.Sprintf("Duplicate photo detected with hamming distance %d (threshold %d)",
				dist, d.cfg.DuplicateHammingThreshold)
			return true, msg, nil
		}
	}

	return false, "", nil
}
