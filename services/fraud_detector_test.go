package services

import (
	"database/sql/driver"
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"construction-monitoring-api/config"
)

var (
	lastPhotoPattern = regexp.MustCompile(`SELECT \* FROM .submissions. WHERE site_id = \? AND surveyor_id = \? ORDER BY create_at DESC`)
	siteHashPattern  = regexp.MustCompile(`SELECT .phash. FROM .submissions. WHERE site_id = \? AND is_approved = \? AND phash IS NOT NULL ORDER BY create_at DESC`)
	survHashPattern  = regexp.MustCompile(`SELECT .phash. FROM .submissions. WHERE surveyor_id = \? AND phash IS NOT NULL ORDER BY create_at DESC`)
)

func TestCheckDistanceToLastPhotoFlagsFarAwaySubmission(t *testing.T) {
	const lat = 13.7563
	const lon = 100.5018
	lastLat := lat + 150.0/earthRadiusMeters*180/math.Pi

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: lastPhotoPattern,
			columns: []string{"submission_id", "site_id", "surveyor_id", "gps_lat", "gps_lon", "status", "is_approved", "create_at"},
			rows: [][]driver.Value{
				{int64(41), int64(7), int64(3), lastLat, lon, "COMPLETED", true, time.Now().Add(-48 * time.Hour)},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	ok, msg, err := detector.CheckDistanceToLastPhoto(7, 3, lat, lon)
	if err != nil {
		t.Fatalf("CheckDistanceToLastPhoto returned error: %v", err)
	}
	if ok {
		t.Fatal("expected GPS mismatch for 150 meter discrepancy")
	}
	if !strings.Contains(msg, "150.00 meters") {
		t.Fatalf("expected distance in message, got %q", msg)
	}
	if !strings.Contains(msg, "maximum allowed is 20 meters") {
		t.Fatalf("expected threshold in message, got %q", msg)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckDistanceToLastPhotoPassesWithinTolerance(t *testing.T) {
	const lat = 13.7563
	const lon = 100.5018
	lastLat := lat + 10.0/earthRadiusMeters*180/math.Pi

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: lastPhotoPattern,
			columns: []string{"submission_id", "gps_lat", "gps_lon"},
			rows: [][]driver.Value{
				{int64(41), lastLat, lon},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	ok, msg, err := detector.CheckDistanceToLastPhoto(7, 3, lat, lon)
	if err != nil {
		t.Fatalf("CheckDistanceToLastPhoto returned error: %v", err)
	}
	if !ok || msg != "" {
		t.Fatalf("expected pass within tolerance, got ok=%v msg=%q", ok, msg)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckDistanceToLastPhotoPassesWithoutHistory(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: lastPhotoPattern,
			columns: []string{"submission_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	ok, _, err := detector.CheckDistanceToLastPhoto(7, 3, 13.7563, 100.5018)
	if err != nil {
		t.Fatalf("CheckDistanceToLastPhoto returned error: %v", err)
	}
	if !ok {
		t.Fatal("first submission must pass the GPS check")
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckDistanceToLastPhotoPropagatesLookupErrors(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: lastPhotoPattern,
			err:     errors.New("connection refused"),
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	_, _, err := detector.CheckDistanceToLastPhoto(7, 3, 13.7563, 100.5018)
	if !errors.Is(err, ErrHistoryLookup) {
		t.Fatalf("expected ErrHistoryLookup, got %v", err)
	}
}

func TestCheckDuplicatePhotoFlagsCloseFingerprint(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: siteHashPattern,
			columns: []string{"phash"},
			rows: [][]driver.Value{
				{"0000000000000007"}, // hamming distance 3 from the new hash
			},
		},
		{
			kind:    kindQuery,
			pattern: survHashPattern,
			columns: []string{"phash"},
			rows: [][]driver.Value{
				{"0000000000000007"}, // same photo; the union collapses it
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	duplicate, msg, err := detector.CheckDuplicatePhoto("0000000000000000", 7, 3)
	if err != nil {
		t.Fatalf("CheckDuplicatePhoto returned error: %v", err)
	}
	if !duplicate {
		t.Fatal("expected duplicate for hamming distance 3 with threshold 5")
	}
	if !strings.Contains(msg, "hamming distance 3") || !strings.Contains(msg, "threshold 5") {
		t.Fatalf("unexpected duplicate message: %q", msg)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckDuplicatePhotoPassesDistantFingerprints(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: siteHashPattern,
			columns: []string{"phash"},
			rows: [][]driver.Value{
				{"00000000000000ff"}, // distance 8
				{"ffff000000000000"}, // distance 16
			},
		},
		{
			kind:    kindQuery,
			pattern: survHashPattern,
			columns: []string{"phash"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	duplicate, msg, err := detector.CheckDuplicatePhoto("0000000000000000", 7, 3)
	if err != nil {
		t.Fatalf("CheckDuplicatePhoto returned error: %v", err)
	}
	if duplicate {
		t.Fatalf("expected no duplicate, got message %q", msg)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckDuplicatePhotoPropagatesLookupErrors(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: siteHashPattern,
			err:     errors.New("connection refused"),
		},
	}

	db, _, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	detector := NewFraudDetector(db, config.DefaultFraudConfig())

	_, _, err := detector.CheckDuplicatePhoto("0000000000000000", 7, 3)
	if !errors.Is(err, ErrHistoryLookup) {
		t.Fatalf("expected ErrHistoryLookup, got %v", err)
	}
}
