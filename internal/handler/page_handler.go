package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/logger"
)

const coursesPerPage = 9

// PageHandler renders the public catalog pages
type PageHandler struct {
	courses    service.CourseService
	lessons    service.LessonService
	lastViewed service.LastViewedService
	log        *logger.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(courses service.CourseService, lessons service.LessonService, lastViewed service.LastViewedService, log *logger.Logger) *PageHandler {
	return &PageHandler{
		courses:    courses,
		lessons:    lessons,
		lastViewed: lastViewed,
		log:        log,
	}
}

// Home handles GET / - published courses plus a continue-watching shortcut
// for signed-in visitors
func (h *PageHandler) Home(c *gin.Context) {
	sess := session.FromGin(c)

	courses, err := h.courses.PublicCourses(c.Request.Context())
	if err != nil {
		h.log.Error("could not load public courses", zap.Error(err))
		c.HTML(http.StatusBadGateway, "home.html", gin.H{
			"Title": "Cursos",
			"User":  sess.User(),
			"Error": "Não foi possível carregar os cursos",
		})
		return
	}

	page := parsePage(c.Query("page"))
	paged, totalPages := paginate(courses, page, coursesPerPage)

	data := gin.H{
		"Title":      "Cursos",
		"User":       sess.User(),
		"Courses":    paged,
		"Page":       page,
		"TotalPages": totalPages,
	}

	if user := sess.User(); user != nil {
		// Best effort: a Redis hiccup must not take the home page down.
		if lv, err := h.lastViewed.Get(c.Request.Context(), user.ID); err != nil {
			h.log.Warn("could not load continue-watching marker", zap.Int64("user_id", user.ID), zap.Error(err))
		} else if lv != nil {
			data["LastViewed"] = lv
		}
	}

	c.HTML(http.StatusOK, "home.html", data)
}

// Course handles GET /curso/:id - one course with its published lessons
func (h *PageHandler) Course(c *gin.Context) {
	sess := session.FromGin(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Curso não encontrado", "User": sess.User()})
		return
	}

	course, err := h.courses.Course(c.Request.Context(), sess.Token(), id)
	if err != nil {
		h.renderCourseError(c, err)
		return
	}

	lessons, err := h.lessons.PublicLessons(c.Request.Context(), id)
	if err != nil {
		h.log.Warn("could not load lessons", zap.Int64("course_id", id), zap.Error(err))
		lessons = nil
	}

	c.HTML(http.StatusOK, "course.html", gin.H{
		"Title":   course.Title,
		"User":    sess.User(),
		"Course":  course,
		"Lessons": lessons,
	})
}

// Lesson handles GET /curso/:id/aula/:lessonID - plays a lesson and, for
// signed-in visitors, records it as the continue-watching point
func (h *PageHandler) Lesson(c *gin.Context) {
	sess := session.FromGin(c)
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Curso não encontrado", "User": sess.User()})
		return
	}
	lessonID, err := strconv.ParseInt(c.Param("lessonID"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Aula não encontrada", "User": sess.User()})
		return
	}

	lesson, err := h.lessons.Lesson(c.Request.Context(), sess.Token(), lessonID)
	if err != nil {
		h.renderCourseError(c, err)
		return
	}

	lessons, err := h.lessons.PublicLessons(c.Request.Context(), courseID)
	if err != nil {
		lessons = nil
	}

	if user := sess.User(); user != nil {
		if err := h.lastViewed.Set(c.Request.Context(), user.ID, courseID, lessonID); err != nil {
			h.log.Warn("could not record continue-watching marker", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	c.HTML(http.StatusOK, "lesson.html", gin.H{
		"Title":    lesson.Name,
		"User":     sess.User(),
		"CourseID": courseID,
		"Lesson":   lesson,
		"Lessons":  lessons,
	})
}

// NotFound handles every unmatched route
func (h *PageHandler) NotFound(c *gin.Context) {
	sess := session.FromGin(c)
	c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Página não encontrada", "User": sess.User()})
}

func (h *PageHandler) renderCourseError(c *gin.Context, err error) {
	sess := session.FromGin(c)
	switch err {
	case service.ErrCourseNotFound, service.ErrLessonNotFound:
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Não encontrado", "User": sess.User()})
	default:
		h.log.Error("catalog page failed", zap.Error(err))
		c.HTML(http.StatusBadGateway, "error.html", gin.H{"Title": "Erro", "User": sess.User(), "Error": "Serviço indisponível"})
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// paginate slices items for 1-based page numbers. A page past the end
// returns the last page rather than an empty one.
func paginate(courses []domain.Course, page, perPage int) ([]domain.Course, int) {
	if len(courses) == 0 {
		return nil, 1
	}
	totalPages := (len(courses) + perPage - 1) / perPage
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > len(courses) {
		end = len(courses)
	}
	return courses[start:end], totalPages
}
