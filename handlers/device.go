package handlers

import (
	"errors"
	"net/http"

	guestRepo "remindly/database/repository/guest"
	tokenRepo "remindly/database/repository/token"
	"remindly/models"
	"remindly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler exposes token registration and guest-device endpoints.
type DeviceHandler struct {
	Tokens tokenRepo.DeviceTokenRepository
	Guests guestRepo.GuestDeviceRepository
}

func NewDeviceHandler(tokens tokenRepo.DeviceTokenRepository, guests guestRepo.GuestDeviceRepository) *DeviceHandler {
	return &DeviceHandler{Tokens: tokens, Guests: guests}
}

type registerTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"deviceType" binding:"required,oneof=ios android web"`
}

// RegisterTokenHandler handles POST /api/devices/:userId/tokens.
func (h *DeviceHandler) RegisterTokenHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.Param("userId")

	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := h.Tokens.Save(c.Request.Context(), userID, req.Token, models.DeviceType(req.DeviceType))
	if err != nil {
		if errors.Is(err, tokenRepo.ErrInvalidTokenFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to save device token", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register token"})
		return
	}
	c.JSON(http.StatusOK, row)
}

type deactivateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// DeactivateTokenHandler handles POST /api/devices/:userId/tokens/deactivate
// (client-initiated, e.g. logout).
func (h *DeviceHandler) DeactivateTokenHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.Param("userId")

	var req deactivateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tokens.DeactivateForUser(c.Request.Context(), userID, req.Token); err != nil {
		logger.Error("Failed to deactivate token", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token deactivated"})
}

type guestDeviceRequest struct {
	DeviceID      string `json:"deviceId" binding:"required"`
	FirebaseToken string `json:"firebaseToken"`
	Timezone      string `json:"timezone"`
}

// UpsertGuestDeviceHandler handles PUT /api/guests.
func (h *DeviceHandler) UpsertGuestDeviceHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req guestDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.Guests.Upsert(c.Request.Context(), req.DeviceID, req.FirebaseToken, req.Timezone)
	if err != nil {
		logger.Error("Failed to upsert guest device", zap.String("deviceId", req.DeviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save guest device"})
		return
	}
	c.JSON(http.StatusOK, device)
}
