package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
//
// One struct implements AccountRepository, CatalogRepository, and
// EntitlementRepository behind a single mutex, so the atomicity contract of
// the real Postgres store (conditional debit + insert as one unit) holds in
// tests too, including the concurrency ones.
// ---------------------------------------------------------------------------

type memStore struct {
	mu sync.Mutex

	accounts map[string]*domain.Account
	items    map[string]*domain.Item
	courses  map[string]*domain.Course

	owned       map[string]map[string]*domain.OwnedItem   // userID → itemID
	enrollments map[string]map[string]*domain.Enrollment  // userID → courseID
	certs       map[string]map[string]*domain.Certificate // userID → course title
	progress    map[string]map[string]*domain.Progress    // userID → courseID

	// fault injection
	adjustErr   error
	progressErr error
	certErr     error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[string]*domain.Account),
		items:       make(map[string]*domain.Item),
		courses:     make(map[string]*domain.Course),
		owned:       make(map[string]map[string]*domain.OwnedItem),
		enrollments: make(map[string]map[string]*domain.Enrollment),
		certs:       make(map[string]map[string]*domain.Certificate),
		progress:    make(map[string]map[string]*domain.Progress),
	}
}

var _ ports.AccountRepository = (*memStore)(nil)
var _ ports.CatalogRepository = (*memStore)(nil)
var _ ports.EntitlementRepository = (*memStore)(nil)

// --- seeding helpers -------------------------------------------------------

func (m *memStore) seedAccount(id string, coins, xp int64) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &domain.Account{
		ID:       id,
		Username: id,
		Name:     "User " + id,
		Role:     domain.RoleStudent,
		Coins:    coins,
		XP:       xp,
		Level:    domain.LevelForXP(xp),
		Streak:   0,
	}
	m.accounts[id] = a
	return a
}

func (m *memStore) seedItem(id string, price int64, category domain.ItemCategory) *domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := &domain.Item{ID: id, Name: "Item " + id, Price: price, Category: category}
	m.items[id] = it
	return it
}

func (m *memStore) seedCourse(id, title string, price int64, credits int) *domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &domain.Course{ID: id, Title: title, Category: "General", Price: price, Credits: credits}
	m.courses[id] = c
	return c
}

func (m *memStore) coins(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id].Coins
}

// --- AccountRepository -----------------------------------------------------

func (m *memStore) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return nil, domain.ErrUserExists
		}
	}
	clone := *a
	m.accounts[a.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *memStore) AdjustBalance(_ context.Context, id string, coinsDelta, xpDelta int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adjustErr != nil {
		return nil, m.adjustErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if a.Coins+coinsDelta < 0 {
		return nil, domain.ErrInsufficientFunds
	}
	a.Coins += coinsDelta
	a.XP += xpDelta
	a.Level = domain.LevelForXP(a.XP)
	clone := *a
	return &clone, nil
}

func (m *memStore) RecordLogin(_ context.Context, id string, streak int, bonusCoins int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Streak = streak
	a.Coins += bonusCoins
	t := at
	a.LastLoginAt = &t
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, id)
	delete(m.owned, id)
	delete(m.enrollments, id)
	delete(m.certs, id)
	delete(m.progress, id)
	return nil
}

func (m *memStore) CountWithMoreXP(_ context.Context, xp int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if a.XP > xp {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

func (m *memStore) TopByXP(_ context.Context, limit int) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		clone := *a
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].XP != all[j].XP {
			return all[i].XP > all[j].XP
		}
		return all[i].ID < all[j].ID
	})
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// --- CatalogRepository -----------------------------------------------------

func (m *memStore) GetItem(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := *it
	return &clone, nil
}

func (m *memStore) GetCourse(_ context.Context, id string) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memStore) ListItems(_ context.Context) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Item, 0, len(m.items))
	for _, it := range m.items {
		clone := *it
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (m *memStore) ListCourses(_ context.Context, filter ports.ListCoursesFilter) ([]*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Course
	for _, c := range m.courses {
		if filter.CreatorID != "" && c.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *item
	m.items[item.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memStore) CreateCourse(_ context.Context, course *domain.Course) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *course
	m.courses[course.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memStore) UpdateCourse(_ context.Context, course *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[course.ID]; !ok {
		return domain.ErrCourseNotFound
	}
	clone := *course
	m.courses[course.ID] = &clone
	return nil
}

func (m *memStore) DeleteCourse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return domain.ErrCourseNotFound
	}
	delete(m.courses, id)
	return nil
}

// --- EntitlementRepository -------------------------------------------------

func (m *memStore) GrantItem(_ context.Context, userID, itemID string, price int64, repeatable bool) (*ports.GrantOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	if existing := m.owned[userID][itemID]; existing != nil && !repeatable {
		return &ports.GrantOutcome{AlreadyGranted: true, NewBalance: a.Coins}, nil
	}
	if a.Coins < price {
		return nil, domain.ErrInsufficientFunds
	}

	a.Coins -= price
	if m.owned[userID] == nil {
		m.owned[userID] = make(map[string]*domain.OwnedItem)
	}
	if existing := m.owned[userID][itemID]; existing != nil {
		existing.Quantity++
	} else {
		m.owned[userID][itemID] = &domain.OwnedItem{
			UserID:     userID,
			ItemID:     itemID,
			Quantity:   1,
			AcquiredAt: time.Now().UTC(),
		}
	}
	return &ports.GrantOutcome{NewBalance: a.Coins}, nil
}

func (m *memStore) GrantEnrollment(_ context.Context, userID, courseID string, price int64) (*ports.GrantOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if existing := m.enrollments[userID][courseID]; existing != nil {
		return &ports.GrantOutcome{AlreadyGranted: true, NewBalance: a.Coins}, nil
	}
	if a.Coins < price {
		return nil, domain.ErrInsufficientFunds
	}

	a.Coins -= price
	if m.enrollments[userID] == nil {
		m.enrollments[userID] = make(map[string]*domain.Enrollment)
	}
	m.enrollments[userID][courseID] = &domain.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	return &ports.GrantOutcome{NewBalance: a.Coins}, nil
}

func (m *memStore) RecordProgress(_ context.Context, p *domain.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progressErr != nil {
		return m.progressErr
	}
	if m.progress[p.UserID] == nil {
		m.progress[p.UserID] = make(map[string]*domain.Progress)
	}
	// best attempt wins, mirrors the real upsert
	if existing := m.progress[p.UserID][p.CourseID]; existing != nil && existing.Score >= p.Score {
		return nil
	}
	clone := *p
	m.progress[p.UserID][p.CourseID] = &clone
	return nil
}

func (m *memStore) IssueCertificate(_ context.Context, cert *domain.Certificate) (*domain.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.certErr != nil {
		return nil, m.certErr
	}
	if existing := m.certs[cert.UserID][cert.CourseTitle]; existing != nil {
		clone := *existing
		return &clone, nil
	}
	if m.certs[cert.UserID] == nil {
		m.certs[cert.UserID] = make(map[string]*domain.Certificate)
	}
	clone := *cert
	m.certs[cert.UserID][cert.CourseTitle] = &clone
	out := clone
	return &out, nil
}

func (m *memStore) ListOwnedItems(_ context.Context, userID string) ([]*domain.OwnedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OwnedItem
	for _, o := range m.owned[userID] {
		clone := *o
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (m *memStore) ListProgress(_ context.Context, userID string) ([]*domain.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Progress
	for _, p := range m.progress[userID] {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (m *memStore) ListCertificates(_ context.Context, userID string) ([]*domain.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Certificate
	for _, c := range m.certs[userID] {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseTitle < out[j].CourseTitle })
	return out, nil
}
