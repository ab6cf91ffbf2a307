package handler

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/internal/service"
	"github.com/cursolab/cursolab/internal/session"
	"github.com/cursolab/cursolab/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testTemplates registers a stub for every template the handlers render,
// so page tests exercise routing and data flow without the real HTML.
var testTemplates = template.Must(template.New("t").Parse(`
{{define "home.html"}}home:{{len .Courses}}{{if .LastViewed}}:continue{{end}}{{end}}
{{define "course.html"}}course:{{.Course.Title}}{{end}}
{{define "lesson.html"}}lesson:{{.Lesson.Name}}{{end}}
{{define "login.html"}}login{{if .Error}}:{{.Error}}{{end}}{{end}}
{{define "register.html"}}register{{if .Error}}:{{.Error}}{{end}}{{end}}
{{define "account.html"}}account:{{.User.Email}}{{end}}
{{define "dashboard.html"}}dashboard:{{len .Courses}}{{end}}
{{define "course_form.html"}}form{{end}}
{{define "404.html"}}404{{end}}
{{define "error.html"}}error{{end}}
`))

func signToken(t *testing.T, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    int64(7),
		"email": "maria@exemplo.com",
		"name":  "Maria",
		"role":  role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type fakeAuthService struct {
	loginResp    *dto.AuthResponse
	loginErr     error
	registerResp *dto.AuthResponse
	registerErr  error
	profile      *domain.UserProfile
}

func (f *fakeAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	return f.registerResp, f.registerErr
}

func (f *fakeAuthService) Me(ctx context.Context, token string) (*domain.UserProfile, error) {
	if f.profile == nil {
		return nil, service.ErrUnauthorized
	}
	return f.profile, nil
}

func (f *fakeAuthService) Count(ctx context.Context, token string) (int64, error) {
	return 42, nil
}

type fakeCourseService struct {
	public []domain.Course
	owned  []domain.Course
	course *domain.Course
	err    error
}

func (f *fakeCourseService) PublicCourses(ctx context.Context) ([]domain.Course, error) {
	return f.public, f.err
}

func (f *fakeCourseService) UserCourses(ctx context.Context, token string) ([]domain.Course, error) {
	return f.owned, f.err
}

func (f *fakeCourseService) Course(ctx context.Context, token string, id int64) (*domain.Course, error) {
	if f.course == nil {
		return nil, service.ErrCourseNotFound
	}
	return f.course, f.err
}

func (f *fakeCourseService) Create(ctx context.Context, token string, req *dto.CreateCourseRequest) (*domain.Course, error) {
	return &domain.Course{ID: 1, Title: req.Title}, f.err
}

func (f *fakeCourseService) Update(ctx context.Context, token string, id int64, req *dto.CreateCourseRequest) (*domain.Course, error) {
	return &domain.Course{ID: id, Title: req.Title}, f.err
}

func (f *fakeCourseService) Delete(ctx context.Context, token string, id int64) error {
	return f.err
}

type fakeLessonService struct {
	lessons []domain.Lesson
	lesson  *domain.Lesson
}

func (f *fakeLessonService) PublicLessons(ctx context.Context, courseID int64) ([]domain.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeLessonService) CourseLessons(ctx context.Context, token string, courseID int64) ([]domain.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeLessonService) Lesson(ctx context.Context, token string, id int64) (*domain.Lesson, error) {
	if f.lesson == nil {
		return nil, service.ErrLessonNotFound
	}
	return f.lesson, nil
}

func (f *fakeLessonService) Create(ctx context.Context, token string, req *dto.CreateLessonRequest) (*domain.Lesson, error) {
	return &domain.Lesson{ID: 1, CourseID: req.CourseID, Name: req.Name}, nil
}

func (f *fakeLessonService) Update(ctx context.Context, token string, id int64, req *dto.CreateLessonRequest) (*domain.Lesson, error) {
	return &domain.Lesson{ID: id, CourseID: req.CourseID, Name: req.Name}, nil
}

func (f *fakeLessonService) Delete(ctx context.Context, token string, id int64) error {
	return nil
}

type fakeLastViewed struct {
	marker  *domain.LastViewed
	sets    []domain.LastViewed
	cleared []int64
}

func (f *fakeLastViewed) Get(ctx context.Context, userID int64) (*domain.LastViewed, error) {
	return f.marker, nil
}

func (f *fakeLastViewed) Set(ctx context.Context, userID, courseID, lessonID int64) error {
	f.sets = append(f.sets, domain.LastViewed{CourseID: courseID, LessonID: lessonID})
	return nil
}

func (f *fakeLastViewed) Clear(ctx context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func newRouter(fetcher session.ProfileFetcher) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(testTemplates)
	router.Use(session.Provider(fetcher, zap.NewNop()))
	return router
}

func TestLoginOpensSession(t *testing.T) {
	auth := &fakeAuthService{loginResp: &dto.AuthResponse{
		Token: signToken(t, "USER"),
		User:  dto.UserResponse{ID: 7, Email: "maria@exemplo.com", Name: "Maria", Role: "USER"},
	}}
	h := NewAuthHandler(auth, &fakeLastViewed{}, 7, logger.Get())

	router := newRouter(auth)
	router.POST("/login", h.Login)

	form := strings.NewReader("email=maria@exemplo.com&password=123456")
	r := httptest.NewRequest(http.MethodPost, "/login", form)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
	cookies := w.Result().Cookies()
	var found bool
	for _, ck := range cookies {
		if ck.Name == "token" && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("login did not set the token cookie")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := &fakeAuthService{loginErr: service.ErrInvalidCredentials}
	h := NewAuthHandler(auth, &fakeLastViewed{}, 7, logger.Get())

	router := newRouter(auth)
	router.POST("/login", h.Login)

	form := strings.NewReader("email=maria@exemplo.com&password=errada")
	r := httptest.NewRequest(http.MethodPost, "/login", form)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("failed login must not write a cookie")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	profile := &domain.UserProfile{ID: 7, Email: "maria@exemplo.com", Role: domain.RoleUser}
	auth := &fakeAuthService{profile: profile}
	lastViewed := &fakeLastViewed{}
	h := NewAuthHandler(auth, lastViewed, 7, logger.Get())

	router := newRouter(auth)
	router.POST("/logout", h.Logout)

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "USER")})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, location = %q", w.Code, w.Header().Get("Location"))
	}
	if len(lastViewed.cleared) != 1 || lastViewed.cleared[0] != 7 {
		t.Errorf("cleared = %v, want [7]", lastViewed.cleared)
	}

	var purged bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "token" && ck.MaxAge < 0 {
			purged = true
		}
	}
	if !purged {
		t.Error("logout did not purge the token cookie")
	}
}

func TestHomeListsCoursesAndContinueWatching(t *testing.T) {
	auth := &fakeAuthService{profile: &domain.UserProfile{ID: 7, Role: domain.RoleUser}}
	courses := &fakeCourseService{public: []domain.Course{{ID: 1, Title: "Go"}, {ID: 2, Title: "Redis"}}}
	lastViewed := &fakeLastViewed{marker: &domain.LastViewed{CourseID: 1, LessonID: 3}}
	h := NewPageHandler(courses, &fakeLessonService{}, lastViewed, logger.Get())

	router := newRouter(auth)
	router.GET("/", h.Home)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK || w.Body.String() != "home:2" {
			t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
		}
	})

	t.Run("signed in sees continue watching", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "USER")})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Body.String() != "home:2:continue" {
			t.Errorf("body = %q", w.Body.String())
		}
	})
}

func TestLessonRecordsProgress(t *testing.T) {
	auth := &fakeAuthService{profile: &domain.UserProfile{ID: 7, Role: domain.RoleUser}}
	lessons := &fakeLessonService{lesson: &domain.Lesson{ID: 3, CourseID: 1, Name: "Aula 1"}}
	lastViewed := &fakeLastViewed{}
	h := NewPageHandler(&fakeCourseService{}, lessons, lastViewed, logger.Get())

	router := newRouter(auth)
	router.GET("/curso/:id/aula/:lessonID", h.Lesson)

	r := httptest.NewRequest(http.MethodGet, "/curso/1/aula/3", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "USER")})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(lastViewed.sets) != 1 || lastViewed.sets[0].LessonID != 3 {
		t.Errorf("sets = %v, want one marker for lesson 3", lastViewed.sets)
	}
}

func TestCourseNotFoundRenders404(t *testing.T) {
	auth := &fakeAuthService{}
	h := NewPageHandler(&fakeCourseService{}, &fakeLessonService{}, &fakeLastViewed{}, logger.Get())

	router := newRouter(auth)
	router.GET("/curso/:id", h.Course)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/curso/99", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestProgressEndpoint(t *testing.T) {
	auth := &fakeAuthService{profile: &domain.UserProfile{ID: 7, Role: domain.RoleUser}}
	lastViewed := &fakeLastViewed{}
	h := NewProgressHandler(lastViewed, logger.Get())

	router := newRouter(auth)
	router.POST("/api/progress", h.Record)

	t.Run("requires auth", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/progress", strings.NewReader(`{"courseId":1,"lessonId":3}`))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("records for signed-in user", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/progress", strings.NewReader(`{"courseId":1,"lessonId":3}`))
		r.Header.Set("Content-Type", "application/json")
		r.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "USER")})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
		if len(lastViewed.sets) != 1 {
			t.Errorf("sets = %v, want one", lastViewed.sets)
		}
		if body := w.Body.String(); !strings.Contains(body, `"ok":true`) {
			t.Errorf("body = %s, want the ok envelope", body)
		}
	})
}

func TestPaginate(t *testing.T) {
	courses := make([]domain.Course, 20)
	for i := range courses {
		courses[i] = domain.Course{ID: int64(i + 1)}
	}

	tests := []struct {
		name       string
		page       int
		wantLen    int
		wantFirst  int64
		wantTotals int
	}{
		{"first page", 1, 9, 1, 3},
		{"middle page", 2, 9, 10, 3},
		{"last partial page", 3, 2, 19, 3},
		{"past the end clamps", 9, 2, 19, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, totals := paginate(courses, tt.page, coursesPerPage)
			if len(got) != tt.wantLen || totals != tt.wantTotals {
				t.Fatalf("paginate() len = %d, totals = %d", len(got), totals)
			}
			if got[0].ID != tt.wantFirst {
				t.Errorf("first id = %d, want %d", got[0].ID, tt.wantFirst)
			}
		})
	}

	t.Run("empty", func(t *testing.T) {
		got, totals := paginate(nil, 1, coursesPerPage)
		if got != nil || totals != 1 {
			t.Errorf("paginate(nil) = %v, %d", got, totals)
		}
	})
}

func TestDashboardIndex(t *testing.T) {
	auth := &fakeAuthService{profile: &domain.UserProfile{ID: 1, Role: domain.RoleAdmin}}
	courses := &fakeCourseService{owned: []domain.Course{{ID: 1, Title: "Go"}}}
	h := NewDashboardHandler(auth, courses, &fakeLessonService{}, logger.Get())

	router := newRouter(auth)
	router.GET("/dashboard", h.Index)

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, "ADMIN")})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK || w.Body.String() != "dashboard:1" {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
}
