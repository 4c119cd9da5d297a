package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parkonomy/kiosk-backend/internal/models"
)

// Days handles GET /api/days
func Days(c *gin.Context) {
	c.JSON(http.StatusOK, models.Days)
}

// ParkingFees handles GET /api/parking-fee
func ParkingFees(c *gin.Context) {
	c.JSON(http.StatusOK, models.ParkingFees)
}

// ParkingFeesWithoutHours handles GET /api/parking-fee-without-hours
func ParkingFeesWithoutHours(c *gin.Context) {
	c.JSON(http.StatusOK, models.ParkingFeesWithoutHours)
}
