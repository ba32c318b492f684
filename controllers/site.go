package controllers

import (
	"net/http"
	"strconv"
	"time"

	"construction-monitoring-api/config"
	"construction-monitoring-api/models"
	"construction-monitoring-api/utils"

	"github.com/gin-gonic/gin"
)

type CreateSiteRequest struct {
	SiteCode               string     `json:"site_code" binding:"required"`
	GpsLat                 float64    `json:"gps_lat" binding:"required"`
	GpsLon                 float64    `json:"gps_lon" binding:"required"`
	Contractor             *string    `json:"contractor"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
}

// CreateSite registers a new construction site (admin only)
func CreateSite(c *gin.Context) {
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.ValidateCoordinates(req.GpsLat, req.GpsLon) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GPS coordinates"})
		return
	}

	now := time.Now()
	site := models.Site{
		SiteCode:               utils.SanitizeInput(req.SiteCode),
		GpsLat:                 req.GpsLat,
		GpsLon:                 req.GpsLon,
		Contractor:             req.Contractor,
		ExpectedCompletionDate: req.ExpectedCompletionDate,
		CreateAt:               now,
		UpdateAt:               now,
	}

	if err := config.DB.Create(&site).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"site":    site,
	})
}

// GetSites lists all active sites
func GetSites(c *gin.Context) {
	var sites []models.Site
	if err := config.DB.Where("delete_at IS NULL").Order("site_code ASC").Find(&sites).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sites":   sites,
	})
}

// GetSite returns one site by id
func GetSite(c *gin.Context) {
	siteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site id"})
		return
	}

	var site models.Site
	if err := config.DB.Where("site_id = ? AND delete_at IS NULL", siteID).First(&site).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"site":    site,
	})
}
