package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/notification-service/models"
	"github.com/yashrajoria/stayshop/services/notification-service/services"
)

type NotificationController struct {
	service services.NotificationService
}

func NewNotificationController(svc services.NotificationService) *NotificationController {
	return &NotificationController{service: svc}
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// GetNotificationLogs handles GET /notifications/log.
func (nc *NotificationController) GetNotificationLogs(c *gin.Context) {
	filter := models.NotificationFilter{
		Recipient: c.Query("recipient"),
		Status:    c.Query("status"),
		EventType: c.Query("event_type"),
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "page_size"),
	}.Normalize()

	logs, total, err := nc.service.GetLogs(c.Request.Context(), filter)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	pages := (total + int64(filter.PageSize) - 1) / int64(filter.PageSize)
	c.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total":       total,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
		"total_pages": pages,
	})
}

// GetNotificationLog handles GET /notifications/log/:id.
func (nc *NotificationController) GetNotificationLog(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperrors.Respond(c, apperrors.ErrBadRequest)
		return
	}
	log, err := nc.service.GetLog(c.Request.Context(), uint(id))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// GetStats handles GET /notifications/stats.
func (nc *NotificationController) GetStats(c *gin.Context) {
	stats, err := nc.service.Stats(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
