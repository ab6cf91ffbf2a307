package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/logger"
)

// DashboardHandler is the admin area: course and lesson management
type DashboardHandler struct {
	auth    service.AuthService
	courses service.CourseService
	lessons service.LessonService
	log     *logger.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(auth service.AuthService, courses service.CourseService, lessons service.LessonService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{auth: auth, courses: courses, lessons: lessons, log: log}
}

// Index handles GET /dashboard - lists the admin's courses and the total
// number of registered students
func (h *DashboardHandler) Index(c *gin.Context) {
	sess := session.FromGin(c)

	courses, err := h.courses.UserCourses(c.Request.Context(), sess.Token())
	if err != nil {
		h.log.Error("could not load dashboard courses", zap.Error(err))
		c.HTML(http.StatusBadGateway, "dashboard.html", gin.H{
			"Title": "Dashboard",
			"User":  sess.User(),
			"Error": "Não foi possível carregar seus cursos",
		})
		return
	}

	data := gin.H{
		"Title":   "Dashboard",
		"User":    sess.User(),
		"Courses": courses,
	}

	// Best effort: the headline figure is decoration, not a dependency.
	if count, err := h.auth.Count(c.Request.Context(), sess.Token()); err != nil {
		h.log.Warn("could not load user count", zap.Error(err))
	} else {
		data["UserCount"] = count
	}

	c.HTML(http.StatusOK, "dashboard.html", data)
}

// NewCourse handles GET /dashboard/cursos/novo - empty course form
func (h *DashboardHandler) NewCourse(c *gin.Context) {
	sess := session.FromGin(c)
	c.HTML(http.StatusOK, "course_form.html", gin.H{
		"Title": "Novo curso",
		"User":  sess.User(),
	})
}

// CreateCourse handles POST /dashboard/cursos
func (h *DashboardHandler) CreateCourse(c *gin.Context) {
	sess := session.FromGin(c)

	var req dto.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderCourseForm(c, http.StatusBadRequest, nil, &req, "Preencha os campos obrigatórios")
		return
	}
	if ok, msg := req.Validate(); !ok {
		h.renderCourseForm(c, http.StatusBadRequest, nil, &req, msg)
		return
	}

	if _, err := h.courses.Create(c.Request.Context(), sess.Token(), &req); err != nil {
		h.log.Error("course creation failed", zap.Error(err))
		h.renderCourseForm(c, http.StatusBadGateway, nil, &req, "Serviço indisponível, tente novamente")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// EditCourse handles GET /dashboard/cursos/:id - course form plus its lessons
func (h *DashboardHandler) EditCourse(c *gin.Context) {
	sess := session.FromGin(c)
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	course, err := h.courses.Course(c.Request.Context(), sess.Token(), id)
	if err != nil {
		h.dashboardError(c, err)
		return
	}
	lessons, err := h.lessons.CourseLessons(c.Request.Context(), sess.Token(), id)
	if err != nil {
		h.log.Warn("could not load course lessons", zap.Int64("course_id", id), zap.Error(err))
		lessons = nil
	}

	c.HTML(http.StatusOK, "course_form.html", gin.H{
		"Title":   "Editar curso",
		"User":    sess.User(),
		"Course":  course,
		"Lessons": lessons,
	})
}

// UpdateCourse handles POST /dashboard/cursos/:id
func (h *DashboardHandler) UpdateCourse(c *gin.Context) {
	sess := session.FromGin(c)
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderCourseForm(c, http.StatusBadRequest, &id, &req, "Preencha os campos obrigatórios")
		return
	}
	if ok, msg := req.Validate(); !ok {
		h.renderCourseForm(c, http.StatusBadRequest, &id, &req, msg)
		return
	}

	if _, err := h.courses.Update(c.Request.Context(), sess.Token(), id, &req); err != nil {
		h.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// DeleteCourse handles POST /dashboard/cursos/:id/excluir
func (h *DashboardHandler) DeleteCourse(c *gin.Context) {
	sess := session.FromGin(c)
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	if err := h.courses.Delete(c.Request.Context(), sess.Token(), id); err != nil && !errors.Is(err, service.ErrCourseNotFound) {
		h.dashboardError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// CreateLesson handles POST /dashboard/aulas
func (h *DashboardHandler) CreateLesson(c *gin.Context) {
	sess := session.FromGin(c)

	var req dto.CreateLessonRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	if ok, _ := req.Validate(); !ok {
		c.Redirect(http.StatusFound, backToCourse(req.CourseID))
		return
	}

	if _, err := h.lessons.Create(c.Request.Context(), sess.Token(), &req); err != nil {
		h.log.Error("lesson creation failed", zap.Int64("course_id", req.CourseID), zap.Error(err))
	}
	c.Redirect(http.StatusFound, backToCourse(req.CourseID))
}

// UpdateLesson handles POST /dashboard/aulas/:id
func (h *DashboardHandler) UpdateLesson(c *gin.Context) {
	sess := session.FromGin(c)
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	var req dto.CreateLessonRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	if _, err := h.lessons.Update(c.Request.Context(), sess.Token(), id, &req); err != nil {
		h.log.Error("lesson update failed", zap.Int64("lesson_id", id), zap.Error(err))
	}
	c.Redirect(http.StatusFound, backToCourse(req.CourseID))
}

// DeleteLesson handles POST /dashboard/aulas/:id/excluir
func (h *DashboardHandler) DeleteLesson(c *gin.Context) {
	sess := session.FromGin(c)
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	courseID, _ := strconv.ParseInt(c.PostForm("courseId"), 10, 64)
	if err := h.lessons.Delete(c.Request.Context(), sess.Token(), id); err != nil && !errors.Is(err, service.ErrLessonNotFound) {
		h.log.Error("lesson deletion failed", zap.Int64("lesson_id", id), zap.Error(err))
	}
	c.Redirect(http.StatusFound, backToCourse(courseID))
}

func (h *DashboardHandler) renderCourseForm(c *gin.Context, status int, id *int64, req *dto.CreateCourseRequest, msg string) {
	sess := session.FromGin(c)
	data := gin.H{
		"Title": "Curso",
		"User":  sess.User(),
		"Form":  req,
		"Error": msg,
	}
	if id != nil {
		data["CourseID"] = *id
	}
	c.HTML(status, "course_form.html", data)
}

func (h *DashboardHandler) dashboardError(c *gin.Context, err error) {
	sess := session.FromGin(c)
	if errors.Is(err, service.ErrCourseNotFound) || errors.Is(err, service.ErrLessonNotFound) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{"Title": "Não encontrado", "User": sess.User()})
		return
	}
	h.log.Error("dashboard operation failed", zap.Error(err))
	c.HTML(http.StatusBadGateway, "error.html", gin.H{"Title": "Erro", "User": sess.User(), "Error": "Serviço indisponível"})
}

func backToCourse(courseID int64) string {
	if courseID <= 0 {
		return "/dashboard"
	}
	return "/dashboard/cursos/" + strconv.FormatInt(courseID, 10)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
