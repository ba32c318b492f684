package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"
	"construction-monitoring-api/services"
	"construction-monitoring-api/utils"

	"github.com/gin-gonic/gin"
)

// SubmissionController wires the validation engine, the detection
// provider and photo storage into the submission endpoints. Dependencies
// are injected so tests can substitute a fake detector.
type SubmissionController struct {
	validation *services.ValidationService
	detector   services.DetectionProvider
	storage    *services.StorageService
}

func NewSubmissionController(validation *services.ValidationService, detector services.DetectionProvider, storage *services.StorageService) *SubmissionController {
	return &SubmissionController{
		validation: validation,
		detector:   detector,
		storage:    storage,
	}
}

type createSubmissionForm struct {
	SiteID int     `form:"site_id" binding:"required"`
	GpsLat float64 `form:"gps_lat" binding:"min=-90,max=90"`
	GpsLon float64 `form:"gps_lon" binding:"min=-180,max=180"`
}

// CreateSubmission accepts a geotagged photo, runs the full fraud and
// progression validation pass, and persists the outcome.
func (ctrl *SubmissionController) CreateSubmission(c *gin.Context) {
	var form createSubmissionForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.ValidateCoordinates(form.GpsLat, form.GpsLon) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GPS coordinates"})
		return
	}

	surveyorID := c.GetInt("userID")

	var site models.Site
	if err := config.DB.Where("site_id = ? AND delete_at IS NULL", form.SiteID).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Photo file is required"})
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
		return
	}

	photoURL, err := ctrl.storage.SavePhoto(form.SiteID, photo, header.Filename)
	if err != nil {
		log.Printf("Failed to store photo for site %d: %v", form.SiteID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
		return
	}

	// The detection feed is best effort: a dead model service must not
	// block submissions, the classifier falls back to its early-stage
	// default on an empty feed.
	var detections []services.Detection
	if ctrl.detector != nil {
		detections, err = ctrl.detector.Detect(c.Request.Context(), photo, header.Filename)
		if err != nil {
			log.Printf("Detection feed error for site %d: %v", form.SiteID, err)
			detections = nil
		}
	}

	result, err := ctrl.validation.ValidateSubmission(c.Request.Context(), &services.ValidationInput{
		SiteID:     form.SiteID,
		SurveyorID: surveyorID,
		GpsLat:     form.GpsLat,
		GpsLon:     form.GpsLon,
		Photo:      photo,
		PhotoURL:   photoURL,
		Detections: detections,
	})
	if errors.Is(err, services.ErrImageDecode) {
		ctrl.recordFailedSubmission(c, form, surveyorID, photoURL)
		return
	}
	if err != nil {
		log.Printf("Validation pass failed for site %d: %v", form.SiteID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Validation failed"})
		return
	}

	var alerts []string
	if len(result.Flags) > 0 {
		alerts = append(alerts, "Fraud detected: please recapture the photo.")
		if mailErr := services.SendFraudAlert(&site, result.Submission, result.Flags); mailErr != nil {
			log.Printf("Failed to send fraud alert for submission %d: %v", result.Submission.SubmissionID, mailErr)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"submission_id": result.Submission.SubmissionID,
		"validation_result": gin.H{
			"approved":            result.Approved,
			"flags":               result.Flags,
			"stage_result":        result.StageResult,
			"progression_ok":      result.ProgressionOK,
			"progression_message": result.ProgressionMessage,
		},
		"alerts": alerts,
	})
}

// recordFailedSubmission persists an explicit FAILED row for a photo
// that could not be decoded, so the upload attempt stays auditable.
func (ctrl *SubmissionController) recordFailedSubmission(c *gin.Context, form createSubmissionForm, surveyorID int, photoURL string) {
	submission := models.Submission{
		SiteID:     form.SiteID,
		SurveyorID: surveyorID,
		PhotoURL:   photoURL,
		GpsLat:     form.GpsLat,
		GpsLon:     form.GpsLon,
		Status:     models.SubmissionStatusFailed,
		IsApproved: false,
		CreateAt:   time.Now(),
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		log.Printf("Failed to record failed submission: %v", err)
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":         "Photo could not be decoded",
		"submission_id": submission.SubmissionID,
	})
}

// GetSubmission returns one submission with its flags and stage results
func (ctrl *SubmissionController) GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("FraudFlags").Preload("StageResult").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetSiteSubmissions lists a site's submissions, newest first
func (ctrl *SubmissionController) GetSiteSubmissions(c *gin.Context) {
	siteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site id"})
		return
	}

	var submissions []models.Submission
	if err := config.DB.Preload("FraudFlags").
		Where("site_id = ?", siteID).
		Order("create_at DESC").
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
	})
}

// AnalyzeSubmission re-runs detection, stage classification and
// progression validation for an existing submission and stores a fresh
// stage result (admin only).
func (ctrl *SubmissionController) AnalyzeSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return
	}

	var submission models.Submission
	if err := config.DB.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	photo, err := os.ReadFile(submission.PhotoURL)
	if err != nil {
		log.Printf("Failed to read stored photo %s: %v", submission.PhotoURL, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored photo unavailable"})
		return
	}

	var detections []services.Detection
	if ctrl.detector != nil {
		detections, err = ctrl.detector.Detect(c.Request.Context(), photo, submission.PhotoURL)
		if err != nil {
			log.Printf("Detection feed error for submission %d: %v", submissionID, err)
			detections = nil
		}
	}

	analysis, err := ctrl.validation.AnalyzeSubmission(c.Request.Context(), &submission, detections)
	if err != nil {
		log.Printf("Analysis failed for submission %d: %v", submissionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	response := gin.H{
		"submission_id":  submissionID,
		"stage_result":   analysis.StageResult,
		"completion_pct": analysis.StageResult.CompletionPct,
		"progression": gin.H{
			"is_valid": analysis.ProgressionOK,
			"message":  analysis.ProgressionMessage,
		},
	}
	c.JSON(http.StatusOK, response)
}
