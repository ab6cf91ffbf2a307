package domain

import "time"

// Course is a catalog entry owned by the remote API.
// Status=true means the course is published and visible to visitors.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"` // minutes
	ImageURL    string    `json:"imageUrl,omitempty"`
	Status      bool      `json:"status"`
	UserID      int64     `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Lesson belongs to a course. Status=true means published.
type Lesson struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"courseId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage,omitempty"`
	VideoURL    string    `json:"videoUrl"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// LastViewed records where a user stopped watching. It is a convenience
// cache tied to the session; logging out discards it.
type LastViewed struct {
	CourseID  int64     `json:"courseId"`
	LessonID  int64     `json:"lessonId"`
	UpdatedAt time.Time `json:"updatedAt"`
}
