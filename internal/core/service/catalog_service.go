package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// CatalogService exposes catalog reads and instructor/admin mutations.
// Mutations are outside the ledger's correctness contract; prices already
// referenced by entitlements are never rewritten retroactively.
type CatalogService struct {
	catalog ports.CatalogRepository
	logger  zerolog.Logger
}

func NewCatalogService(catalog ports.CatalogRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: logger}
}

func (s *CatalogService) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return s.catalog.ListItems(ctx)
}

func (s *CatalogService) ListCourses(ctx context.Context, filter ports.ListCoursesFilter) ([]*domain.Course, error) {
	return s.catalog.ListCourses(ctx, filter)
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return s.catalog.GetCourse(ctx, id)
}

func (s *CatalogService) CreateItem(ctx context.Context, in ports.CreateItemInput) (*domain.Item, error) {
	category := domain.ItemCategory(in.Category)
	if category != domain.CategoryCosmetic && category != domain.CategoryConsumable {
		return nil, fmt.Errorf("create item: unknown category %q", in.Category)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("create item: price must be non-negative")
	}

	item := &domain.Item{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    category,
		Icon:        in.Icon,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.catalog.CreateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	s.logger.Info().Str("item_id", created.ID).Str("name", created.Name).Msg("item created")
	return created, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, in ports.CreateCourseInput) (*domain.Course, error) {
	if in.Price < 0 {
		return nil, fmt.Errorf("create course: price must be non-negative")
	}
	credits := in.Credits
	if credits <= 0 {
		credits = 1
	}
	category := in.Category
	if category == "" {
		category = "General"
	}

	course := &domain.Course{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Category:  category,
		Price:     in.Price,
		Credits:   credits,
		CreatorID: in.CreatorID,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.catalog.CreateCourse(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.logger.Info().Str("course_id", created.ID).Str("title", created.Title).Msg("course created")
	return created, nil
}

// UpdateCourse applies an edit after the creator-or-admin check.
func (s *CatalogService) UpdateCourse(ctx context.Context, in ports.UpdateCourseInput) (*domain.Course, error) {
	course, err := s.catalog.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if !canEditCourse(course, in.RequesterID, in.RequesterRole) {
		return nil, domain.ErrForbidden
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("update course: price must be non-negative")
	}

	course.Title = in.Title
	course.Category = in.Category
	course.Price = in.Price
	if in.Credits > 0 {
		course.Credits = in.Credits
	}
	if err := s.catalog.UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, courseID, requesterID, requesterRole string) error {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if !canEditCourse(course, requesterID, requesterRole) {
		return domain.ErrForbidden
	}
	if err := s.catalog.DeleteCourse(ctx, courseID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	s.logger.Info().Str("course_id", courseID).Str("requester_id", requesterID).Msg("course deleted")
	return nil
}

func canEditCourse(course *domain.Course, requesterID, requesterRole string) bool {
	return requesterRole == domain.RoleAdmin || course.CreatorID == requesterID
}
