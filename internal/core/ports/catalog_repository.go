package ports

import (
	"context"

	"github.com/learnquest/gamification-system/internal/core/domain"
)

// ListCoursesFilter carries query parameters for listing courses.
type ListCoursesFilter struct {
	CreatorID string // non-empty = only courses owned by this creator
	Category  string // optional
}

// CatalogRepository is read-mostly access to shop items and courses.
// Admin edits go through the same interface but carry no correctness
// contract beyond single-row update semantics.
type CatalogRepository interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	// ListItems returns all shop items ordered by price ascending.
	ListItems(ctx context.Context) ([]*domain.Item, error)
	ListCourses(ctx context.Context, filter ListCoursesFilter) ([]*domain.Course, error)

	CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	CreateCourse(ctx context.Context, course *domain.Course) (*domain.Course, error)
	UpdateCourse(ctx context.Context, course *domain.Course) error
	DeleteCourse(ctx context.Context, id string) error
}
