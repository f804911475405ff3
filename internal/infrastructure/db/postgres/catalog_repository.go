package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// CatalogRepository persists shop items and courses. Read-mostly.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, category, icon, created_at
		FROM items WHERE id = $1
	`, id)

	var it domain.Item
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Icon, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("get item: %w", err))
	}
	return &it, nil
}

func (r *CatalogRepository) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, category, price, credits, COALESCE(creator_id, ''), created_at
		FROM courses WHERE id = $1
	`, id)

	var c domain.Course
	err := row.Scan(&c.ID, &c.Title, &c.Category, &c.Price, &c.Credits, &c.CreatorID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, mapStoreErr(fmt.Errorf("get course: %w", err))
	}
	return &c, nil
}

func (r *CatalogRepository) ListItems(ctx context.Context) ([]*domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, icon, created_at
		FROM items ORDER BY price ASC, name ASC
	`)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("list items: %w", err))
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.Icon, &it.CreatedAt); err != nil {
			return nil, mapStoreErr(fmt.Errorf("list items: %w", err))
		}
		out = append(out, &it)
	}
	return out, mapStoreErr(rows.Err())
}

func (r *CatalogRepository) ListCourses(ctx context.Context, filter ports.ListCoursesFilter) ([]*domain.Course, error) {
	query := `
		SELECT id, title, category, price, credits, COALESCE(creator_id, ''), created_at
		FROM courses`
	var (
		args  []any
		where []string
	)
	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		where = append(where, "creator_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("list courses: %w", err))
	}
	defer rows.Close()

	var out []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &c.Price, &c.Credits, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, mapStoreErr(fmt.Errorf("list courses: %w", err))
		}
		out = append(out, &c)
	}
	return out, mapStoreErr(rows.Err())
}

func (r *CatalogRepository) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, price, category, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.Name, item.Description, item.Price, item.Category, item.Icon, item.CreatedAt)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return nil, domain.ErrDuplicateEntitlement
		}
		return nil, mapStoreErr(fmt.Errorf("insert item: %w", err))
	}
	return item, nil
}

func (r *CatalogRepository) CreateCourse(ctx context.Context, course *domain.Course) (*domain.Course, error) {
	creator := sql.NullString{String: course.CreatorID, Valid: course.CreatorID != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, title, category, price, credits, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, course.ID, course.Title, course.Category, course.Price, course.Credits, creator, course.CreatedAt)
	if err != nil {
		return nil, mapStoreErr(fmt.Errorf("insert course: %w", err))
	}
	return course, nil
}

func (r *CatalogRepository) UpdateCourse(ctx context.Context, course *domain.Course) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE courses SET title = $2, category = $3, price = $4, credits = $5
		WHERE id = $1
	`, course.ID, course.Title, course.Category, course.Price, course.Credits)
	if err != nil {
		return mapStoreErr(fmt.Errorf("update course: %w", err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *CatalogRepository) DeleteCourse(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapStoreErr(fmt.Errorf("delete course: %w", err))
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}
