package ports

import (
	"context"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// CreateCourseInput carries instructor-supplied course data.
type CreateCourseInput struct {
	Title     string
	Category  string
	Price     int64
	Credits   int
	CreatorID string
}

// UpdateCourseInput carries a course edit plus the requester identity used
// for the creator-or-admin permission check.
type UpdateCourseInput struct {
	CourseID      string
	Title         string
	Category      string
	Price         int64
	Credits       int
	RequesterID   string
	RequesterRole string
}

// CreateItemInput carries admin-supplied shop item data.
type CreateItemInput struct {
	Name        string
	Description string
	Price       int64
	Category    string
	Icon        string
}

// CatalogService exposes catalog reads to everyone and mutations to
// instructors and admins.
type CatalogService interface {
	ListItems(ctx context.Context) ([]*domain.Item, error)
	ListCourses(ctx context.Context, filter ListCoursesFilter) ([]*domain.Course, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	CreateItem(ctx context.Context, in CreateItemInput) (*domain.Item, error)
	CreateCourse(ctx context.Context, in CreateCourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, in UpdateCourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, courseID, requesterID, requesterRole string) error
}
