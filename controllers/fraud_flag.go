package controllers

import (
	"net/http"
	"strconv"
	"time"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"

	"github.com/gin-gonic/gin"
)

// GetFraudFlags lists fraud flags, optionally filtered by resolution
// state (?resolved=true|false) or site (?site_id=N). Admin only.
func GetFraudFlags(c *gin.Context) {
	query := config.DB.Preload("Submission").Order("create_at DESC")

	if resolved := c.Query("resolved"); resolved != "" {
		value, err := strconv.ParseBool(resolved)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resolved filter"})
			return
		}
		query = query.Where("resolved = ?", value)
	}

	if siteID := c.Query("site_id"); siteID != "" {
		id, err := strconv.Atoi(siteID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site_id filter"})
			return
		}
		query = query.Joins("JOIN submissions ON submissions.submission_id = fraud_flags.submission_id").
			Where("submissions.site_id = ?", id)
	}

	var flags []models.FraudFlag
	if err := query.Find(&flags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fraud flags"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flags":   flags,
	})
}

// ResolveFraudFlag marks a flag as reviewed and resolved (admin only).
// The validation engine never edits flags; this is the only mutation
// path after creation.
func ResolveFraudFlag(c *gin.Context) {
	flagID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid flag id"})
		return
	}

	var flag models.FraudFlag
	if err := config.DB.Where("flag_id = ?", flagID).First(&flag).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fraud flag not found"})
		return
	}

	if flag.Resolved {
		c.JSON(http.StatusConflict, gin.H{"error": "Flag already resolved"})
		return
	}

	userID := c.GetInt("userID")
	now := time.Now()
	flag.Resolved = true
	flag.ResolvedBy = &userID
	flag.ResolvedAt = &now

	if err := config.DB.Save(&flag).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve flag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flag":    flag,
	})
}
