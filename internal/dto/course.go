package dto

// CreateCourseRequest carries the dashboard's course form. The same shape
// serves updates; zero-value optional fields are sent as-is.
type CreateCourseRequest struct {
	Title       string `form:"title" json:"title" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
	Duration    int    `form:"duration" json:"duration" binding:"required"`
	ImageURL    string `form:"imageUrl" json:"imageUrl,omitempty"`
	Status      bool   `form:"status" json:"status"`
}

// Validate checks the course fields beyond presence
func (r *CreateCourseRequest) Validate() (bool, string) {
	if len(r.Title) < 3 {
		return false, "Title must be at least 3 characters"
	}
	if r.Description == "" {
		return false, "Description is required"
	}
	if r.Duration <= 0 {
		return false, "Duration must be a positive number of minutes"
	}
	return true, ""
}

// CreateLessonRequest carries the dashboard's lesson form
type CreateLessonRequest struct {
	CourseID    int64  `form:"courseId" json:"courseId" binding:"required"`
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
	CoverImage  string `form:"coverImage" json:"coverImage,omitempty"`
	VideoURL    string `form:"videoUrl" json:"videoUrl" binding:"required"`
	Status      bool   `form:"status" json:"status"`
}

// Validate checks the lesson fields beyond presence
func (r *CreateLessonRequest) Validate() (bool, string) {
	if r.CourseID <= 0 {
		return false, "A course is required"
	}
	if len(r.Name) < 2 {
		return false, "Name must be at least 2 characters"
	}
	if r.VideoURL == "" {
		return false, "Video URL is required"
	}
	return true, ""
}

// ProgressRequest records where the viewer stopped watching
type ProgressRequest struct {
	CourseID int64 `json:"courseId" binding:"required"`
	LessonID int64 `json:"lessonId" binding:"required"`
}
