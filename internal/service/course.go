package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cursolab/cursolab/internal/api"
	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/internal/dto"
	"github.com/cursolab/cursolab/pkg/telemetry"
)

// CourseService reads and manages courses on the remote API. Public reads
// take no token; owner operations require one.
type CourseService interface {
	// PublicCourses lists published courses for the catalog pages
	PublicCourses(ctx context.Context) ([]domain.Course, error)
	// UserCourses lists the courses owned by the token's user
	UserCourses(ctx context.Context, token string) ([]domain.Course, error)
	// Course fetches one course by id
	Course(ctx context.Context, token string, id int64) (*domain.Course, error)
	// Create adds a course owned by the token's user
	Create(ctx context.Context, token string, req *dto.CreateCourseRequest) (*domain.Course, error)
	// Update overwrites a course's editable fields
	Update(ctx context.Context, token string, id int64, req *dto.CreateCourseRequest) (*domain.Course, error)
	// Delete removes a course and its lessons
	Delete(ctx context.Context, token string, id int64) error
}

type courseService struct {
	api *api.Client
}

// NewCourseService creates a CourseService backed by the remote API
func NewCourseService(client *api.Client) CourseService {
	return &courseService{api: client}
}

func (s *courseService) PublicCourses(ctx context.Context) ([]domain.Course, error) {
	ctx, span := telemetry.StartSpan(ctx, "course.public_list")
	defer span.End()

	var courses []domain.Course
	if err := s.api.Get(ctx, "/courses/public", "", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *courseService) UserCourses(ctx context.Context, token string) ([]domain.Course, error) {
	ctx, span := telemetry.StartSpan(ctx, "course.user_list")
	defer span.End()

	var courses []domain.Course
	if err := s.api.Get(ctx, "/courses", token, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *courseService) Course(ctx context.Context, token string, id int64) (*domain.Course, error) {
	ctx, span := telemetry.StartSpan(ctx, "course.get")
	defer span.End()

	var course domain.Course
	if err := s.api.Get(ctx, fmt.Sprintf("/courses/%d", id), token, &course); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *courseService) Create(ctx context.Context, token string, req *dto.CreateCourseRequest) (*domain.Course, error) {
	ctx, span := telemetry.StartSpan(ctx, "course.create")
	defer span.End()

	var course domain.Course
	if err := s.api.Post(ctx, "/courses", token, req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *courseService) Update(ctx context.Context, token string, id int64, req *dto.CreateCourseRequest) (*domain.Course, error) {
	ctx, span := telemetry.StartSpan(ctx, "course.update")
	defer span.End()

	var course domain.Course
	if err := s.api.Put(ctx, fmt.Sprintf("/courses/%d", id), token, req, &course); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *courseService) Delete(ctx context.Context, token string, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "course.delete")
	defer span.End()

	if err := s.api.Delete(ctx, fmt.Sprintf("/courses/%d", id), token); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return nil
}
