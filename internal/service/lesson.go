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

// LessonService reads and manages lessons on the remote API
type LessonService interface {
	// PublicLessons lists the published lessons of a course
	PublicLessons(ctx context.Context, courseID int64) ([]domain.Lesson, error)
	// CourseLessons lists all lessons of a course the token's user owns
	CourseLessons(ctx context.Context, token string, courseID int64) ([]domain.Lesson, error)
	// Lesson fetches one lesson by id
	Lesson(ctx context.Context, token string, id int64) (*domain.Lesson, error)
	// Create adds a lesson to a course
	Create(ctx context.Context, token string, req *dto.CreateLessonRequest) (*domain.Lesson, error)
	// Update overwrites a lesson's editable fields
	Update(ctx context.Context, token string, id int64, req *dto.CreateLessonRequest) (*domain.Lesson, error)
	// Delete removes a lesson
	Delete(ctx context.Context, token string, id int64) error
}

type lessonService struct {
	api *api.Client
}

// NewLessonService creates a LessonService backed by the remote API
func NewLessonService(client *api.Client) LessonService {
	return &lessonService{api: client}
}

func (s *lessonService) PublicLessons(ctx context.Context, courseID int64) ([]domain.Lesson, error) {
	ctx, span := telemetry.StartSpan(ctx, "lesson.public_list")
	defer span.End()

	var lessons []domain.Lesson
	if err := s.api.Get(ctx, fmt.Sprintf("/lessons/public/course/%d", courseID), "", &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *lessonService) CourseLessons(ctx context.Context, token string, courseID int64) ([]domain.Lesson, error) {
	ctx, span := telemetry.StartSpan(ctx, "lesson.course_list")
	defer span.End()

	var lessons []domain.Lesson
	if err := s.api.Get(ctx, fmt.Sprintf("/lessons/course/%d", courseID), token, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *lessonService) Lesson(ctx context.Context, token string, id int64) (*domain.Lesson, error) {
	ctx, span := telemetry.StartSpan(ctx, "lesson.get")
	defer span.End()

	var lesson domain.Lesson
	if err := s.api.Get(ctx, fmt.Sprintf("/lessons/%d", id), token, &lesson); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func (s *lessonService) Create(ctx context.Context, token string, req *dto.CreateLessonRequest) (*domain.Lesson, error) {
	ctx, span := telemetry.StartSpan(ctx, "lesson.create")
	defer span.End()

	var lesson domain.Lesson
	if err := s.api.Post(ctx, "/lessons", token, req, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *lessonService) Update(ctx context.Context, token string, id int64, req *dto.CreateLessonRequest) (*domain.Lesson, error) {
	ctx, span := telemetry.StartSpan(ctx, "lesson.update")
	defer span.End()

	var lesson domain.Lesson
	if err := s.api.Put(ctx, fmt.Sprintf("/lessons/%d", id), token, req, &lesson); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func (s *lessonService) Delete(ctx context.Context, token string, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "lesson.delete")
	defer span.End()

	if err := s.api.Delete(ctx, fmt.Sprintf("/lessons/%d", id), token); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}
