package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cursolab/cursolab/internal/domain"
	"github.com/cursolab/cursolab/pkg/redis"
	"github.com/cursolab/cursolab/pkg/telemetry"
)

const lastViewedTTL = 30 * 24 * time.Hour

// LastViewedService remembers where each user stopped watching so the home
// page can offer a continue-watching shortcut. Backed by Redis; a miss or
// an unreachable Redis degrades to "nothing to continue", never an error
// the page has to surface.
type LastViewedService interface {
	// Get returns the user's last viewed lesson, or nil when none
	Get(ctx context.Context, userID int64) (*domain.LastViewed, error)
	// Set records the lesson the user is watching now
	Set(ctx context.Context, userID, courseID, lessonID int64) error
	// Clear forgets the user's progress marker
	Clear(ctx context.Context, userID int64) error
}

type lastViewedService struct {
	redis *redis.Client
}

// NewLastViewedService creates a LastViewedService on the given Redis client
func NewLastViewedService(client *redis.Client) LastViewedService {
	return &lastViewedService{redis: client}
}

func lastViewedKey(userID int64) string {
	return fmt.Sprintf("lastviewed:%d", userID)
}

func (s *lastViewedService) Get(ctx context.Context, userID int64) (*domain.LastViewed, error) {
	ctx, span := telemetry.StartSpan(ctx, "lastviewed.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, lastViewedKey(userID)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lastviewed: get: %w", err)
	}

	var lv domain.LastViewed
	if err := json.Unmarshal([]byte(raw), &lv); err != nil {
		// A corrupt marker is worthless; drop it.
		s.redis.Del(ctx, lastViewedKey(userID))
		return nil, nil
	}
	return &lv, nil
}

func (s *lastViewedService) Set(ctx context.Context, userID, courseID, lessonID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "lastviewed.set")
	defer span.End()

	lv := domain.LastViewed{CourseID: courseID, LessonID: lessonID, UpdatedAt: time.Now().UTC()}
	raw, err := json.Marshal(lv)
	if err != nil {
		return fmt.Errorf("lastviewed: encode: %w", err)
	}
	if err := s.redis.Set(ctx, lastViewedKey(userID), raw, lastViewedTTL).Err(); err != nil {
		return fmt.Errorf("lastviewed: set: %w", err)
	}
	return nil
}

func (s *lastViewedService) Clear(ctx context.Context, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "lastviewed.clear")
	defer span.End()

	if err := s.redis.Del(ctx, lastViewedKey(userID)).Err(); err != nil {
		return fmt.Errorf("lastviewed: clear: %w", err)
	}
	return nil
}
