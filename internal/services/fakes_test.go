package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tbourn/go-bootcamp-backend/internal/domain"
	"github.com/tbourn/go-bootcamp-backend/internal/geo"
	"github.com/tbourn/go-bootcamp-backend/internal/geocoder"
)

// memStore is an in-memory Store. WithinFn, when set, replaces the radius
// query so tests can capture its arguments.
type memStore struct {
	mu        sync.Mutex
	bootcamps map[string]domain.Bootcamp
	courses   map[string]domain.Course
	users     map[string]domain.User
	idem      []domain.Idempotency

	WithinFn func(ctx context.Context, c geo.Circle) ([]domain.Bootcamp, error)
	PhotoErr error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		bootcamps: map[string]domain.Bootcamp{},
		courses:   map[string]domain.Course{},
		users:     map[string]domain.User{},
	}
}

func (m *memStore) ListBootcamps(_ context.Context, q domain.ListQuery) ([]domain.Bootcamp, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Bootcamp, 0, len(m.bootcamps))
	for _, b := range m.bootcamps {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	lo := min(q.Offset(), len(out))
	hi := min(lo+q.Limit, len(out))
	return out[lo:hi], total, nil
}

func (m *memStore) GetBootcamp(_ context.Context, id string) (*domain.Bootcamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bootcamps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b.Careers = append([]string(nil), b.Careers...)
	return &b, nil
}

func (m *memStore) CreateBootcamp(_ context.Context, b *domain.Bootcamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.bootcamps {
		if other.Name == b.Name {
			return domain.ErrDuplicate
		}
	}
	if b.ID == "" {
		b.ID = domain.NewID()
	}
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	m.bootcamps[b.ID] = *b
	return nil
}

func (m *memStore) UpdateBootcamp(_ context.Context, b *domain.Bootcamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bootcamps[b.ID]; !ok {
		return domain.ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	m.bootcamps[b.ID] = *b
	return nil
}

func (m *memStore) DeleteBootcamp(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bootcamps[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.bootcamps, id)
	for cid, c := range m.courses {
		if c.BootcampID == id {
			delete(m.courses, cid)
		}
	}
	return nil
}

func (m *memStore) BootcampsWithin(ctx context.Context, c geo.Circle) ([]domain.Bootcamp, error) {
	if m.WithinFn != nil {
		return m.WithinFn(ctx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Bootcamp
	for _, b := range m.bootcamps {
		if lat, lng, ok := b.Location.LatLng(); ok && c.Contains(lat, lng) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) SetBootcampPhoto(_ context.Context, id, photo string) error {
	if m.PhotoErr != nil {
		return m.PhotoErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bootcamps[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Photo = photo
	m.bootcamps[id] = b
	return nil
}

func (m *memStore) ListCourses(_ context.Context, q domain.ListQuery) ([]domain.Course, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Course
	for _, c := range m.courses {
		keep := true
		for _, f := range q.Filters {
			if f.Field == "bootcamp" && c.BootcampID != f.Values[0] {
				keep = false
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memStore) GetCourse(_ context.Context, id string) (*domain.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateCourse(_ context.Context, c *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = domain.NewID()
	}
	m.courses[c.ID] = *c
	return nil
}

func (m *memStore) UpdateCourse(_ context.Context, c *domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[c.ID]; !ok {
		return domain.ErrNotFound
	}
	m.courses[c.ID] = *c
	return nil
}

func (m *memStore) DeleteCourse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = domain.NewID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetIdempotency(_ context.Context, userID, scope, key string, now time.Time) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.idem {
		if r.UserID == userID && r.Scope == scope && r.Key == key && !r.Expired(now) {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateIdempotency(_ context.Context, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	r := domain.Idempotency{ID: domain.NewID(), UserID: userID, Scope: scope, Key: key, ResourceID: resourceID, Status: status, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	m.idem = append(m.idem, r)
	return &r, nil
}

// staticGeocoder answers every address with the same locations.
func staticGeocoder(locs ...geocoder.Location) geocoder.Geocoder {
	return geocoder.Func(func(context.Context, string) ([]geocoder.Location, error) {
		return locs, nil
	})
}

// recordingMover captures what was moved.
type recordingMover struct {
	name        string
	contentType string
	body        []byte
	err         error
}

func (r *recordingMover) Move(_ context.Context, name string, src io.Reader, _ int64, contentType string) error {
	if r.err != nil {
		return r.err
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	r.name, r.contentType, r.body = name, contentType, b
	return nil
}

var errBoom = errors.New("boom")
