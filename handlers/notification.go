package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	notificationRepo "remindly/database/repository/notification"
	"remindly/models"
	"remindly/services/push"
	"remindly/services/tasks"
	"remindly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationHandler exposes dispatch and feed endpoints.
type NotificationHandler struct {
	Dispatcher  push.DispatchService
	AsynqClient *asynq.Client
}

func NewNotificationHandler(dispatcher push.DispatchService, asynqClient *asynq.Client) *NotificationHandler {
	return &NotificationHandler{Dispatcher: dispatcher, AsynqClient: asynqClient}
}

type sendRequest struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body" binding:"required"`
	Data  map[string]string `json:"data"`
}

func (r sendRequest) payload() models.NotificationPayload {
	return models.NotificationPayload{Title: r.Title, Body: r.Body, Data: r.Data}
}

func writeResult(c *gin.Context, res *models.DispatchResult) {
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SendToUserHandler handles POST /api/notifications/users/:userId.
func (h *NotificationHandler) SendToUserHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, h.Dispatcher.SendNotificationToUser(c.Request.Context(), c.Param("userId"), req.payload()))
}

type sendBatchRequest struct {
	UserIDs []string          `json:"userIds" binding:"required"`
	Title   string            `json:"title" binding:"required"`
	Body    string            `json:"body" binding:"required"`
	Data    map[string]string `json:"data"`
}

// SendToUsersHandler handles POST /api/notifications/users.
func (h *NotificationHandler) SendToUsersHandler(c *gin.Context) {
	var req sendBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload := models.NotificationPayload{Title: req.Title, Body: req.Body, Data: req.Data}
	writeResult(c, h.Dispatcher.SendNotificationToUsers(c.Request.Context(), req.UserIDs, payload))
}

// BroadcastHandler handles POST /api/notifications/broadcast.
func (h *NotificationHandler) BroadcastHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, h.Dispatcher.BroadcastNotification(c.Request.Context(), req.payload()))
}

// SendToDeviceHandler handles POST /api/notifications/guests/:deviceId.
func (h *NotificationHandler) SendToDeviceHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, h.Dispatcher.SendNotificationToDevice(c.Request.Context(), c.Param("deviceId"), req.Title, req.Body, req.Data))
}

// SendToTopicHandler handles POST /api/notifications/topics/:topic.
func (h *NotificationHandler) SendToTopicHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, h.Dispatcher.SendTopicNotification(c.Request.Context(), c.Param("topic"), req.payload()))
}

type scheduleReminderRequest struct {
	Target     string `json:"target" binding:"required,oneof=user guest"`
	ID         string `json:"id" binding:"required"`
	ReminderID string `json:"reminderId"`
	EventID    string `json:"eventId"`
	Title      string `json:"title" binding:"required"`
	Body       string `json:"body" binding:"required"`
	FireAt     string `json:"fireAt" binding:"required"` // RFC 3339
}

// ScheduleReminderHandler handles POST /api/notifications/reminders: enqueues
// a delayed reminder task processed by the async worker.
func (h *NotificationHandler) ScheduleReminderHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req scheduleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fireAt, err := time.Parse(time.RFC3339, req.FireAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fireAt must be RFC 3339"})
		return
	}

	payload := models.ReminderPayload{
		Target:     req.Target,
		ID:         req.ID,
		ReminderID: req.ReminderID,
		EventID:    req.EventID,
		Title:      req.Title,
		Body:       req.Body,
		FireDate:   req.FireAt,
	}
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		logger.Error("Failed to build reminder task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule reminder"})
		return
	}
	info, err := h.AsynqClient.Enqueue(task, opts...)
	if err != nil {
		logger.Error("Failed to enqueue reminder task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule reminder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"taskId": info.ID, "queue": info.Queue})
}

func listOptions(c *gin.Context) models.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return models.ListOptions{Page: page, Limit: limit, Status: c.Query("status")}
}

// ListUserNotificationsHandler handles GET /api/notifications/users/:userId.
func (h *NotificationHandler) ListUserNotificationsHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.Param("userId")

	notifications, err := h.Dispatcher.GetUserNotifications(c.Request.Context(), userID, listOptions(c))
	if err != nil {
		logger.Error("Failed to list notifications", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// ListGuestNotificationsHandler handles GET /api/notifications/guests/:deviceId.
func (h *NotificationHandler) ListGuestNotificationsHandler(c *gin.Context) {
	logger := utils.GetLogger()
	deviceID := c.Param("deviceId")

	notifications, err := h.Dispatcher.GetGuestNotifications(c.Request.Context(), deviceID, listOptions(c))
	if err != nil {
		logger.Error("Failed to list guest notifications", zap.String("deviceId", deviceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkReadHandler handles PUT /api/notifications/users/:userId/:notificationId/read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	updated, err := h.Dispatcher.MarkAsRead(c.Request.Context(), c.Param("userId"), c.Param("notificationId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// MarkGuestReadHandler handles PUT /api/notifications/guests/:deviceId/:notificationId/read.
func (h *NotificationHandler) MarkGuestReadHandler(c *gin.Context) {
	updated, err := h.Dispatcher.MarkGuestNotificationAsRead(c.Request.Context(), c.Param("deviceId"), c.Param("notificationId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}
	if updated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// MarkAllReadHandler handles PUT /api/notifications/users/:userId/read-all.
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	count, err := h.Dispatcher.MarkAllAsRead(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}

// SendEventReminderHandler handles POST /api/notifications/users/:userId/events/:eventId.
// This is the one surface whose failures arrive as errors rather than a
// DispatchResult, because the transactional write propagates after retry
// exhaustion.
func (h *NotificationHandler) SendEventReminderHandler(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Dispatcher.SendEventReminder(c.Request.Context(), c.Param("userId"), c.Param("eventId"), req.payload())
	if err != nil {
		switch {
		case errors.Is(err, notificationRepo.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, notificationRepo.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to record event reminder", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, created)
}
