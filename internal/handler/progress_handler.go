package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/logger"
	"github.com/cursolab/cursolab/pkg/response"
)

// ProgressHandler is the JSON endpoint the lesson player calls to record
// where the viewer stopped
type ProgressHandler struct {
	lastViewed service.LastViewedService
	log        *logger.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(lastViewed service.LastViewedService, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{lastViewed: lastViewed, log: log}
}

// Record handles POST /api/progress
func (h *ProgressHandler) Record(c *gin.Context) {
	sess := session.FromGin(c)
	user := sess.User()
	if user == nil {
		response.Unauthorized(c, "Sign in to track progress")
		return
	}

	var req dto.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "courseId and lessonId are required")
		return
	}

	if err := h.lastViewed.Set(c.Request.Context(), user.ID, req.CourseID, req.LessonID); err != nil {
		h.log.Error("could not record progress", zap.Int64("user_id", user.ID), zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"recorded": true})
}
