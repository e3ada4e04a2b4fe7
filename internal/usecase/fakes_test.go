package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
)

type fakeAmenities struct {
	byID map[string]entity.Amenity
}

func (f *fakeAmenities) FindByID(_ context.Context, propertyID, amenityID string) (*entity.Amenity, error) {
	a, ok := f.byID[amenityID]
	if !ok || a.PropertyID != propertyID {
		return nil, entity.ErrNotFound
	}
	return &a, nil
}

type fakeBookings struct {
	created []*entity.Booking
	status  map[entity.BookingKey]entity.BookingStatus
}

func (f *fakeBookings) Create(_ context.Context, b *entity.Booking) error {
	b.ID = fmt.Sprintf("b%d", len(f.created)+1)
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBookings) UpdateStatus(_ context.Context, _ string, key entity.BookingKey, status entity.BookingStatus) error {
	if _, ok := f.status[key]; !ok {
		return entity.ErrNotFound
	}
	f.status[key] = status
	return nil
}

type fakeUnits struct {
	units map[string]*entity.Unit
}

func (f *fakeUnits) Create(_ context.Context, u *entity.Unit) error {
	u.ID = fmt.Sprintf("u%d", len(f.units)+1)
	f.units[u.ID] = u
	return nil
}

func (f *fakeUnits) Update(_ context.Context, u *entity.Unit) error {
	cur, ok := f.units[u.ID]
	if !ok {
		return entity.ErrNotFound
	}
	cur.UnitLabel, cur.ResidentNames, cur.Notes = u.UnitLabel, u.ResidentNames, u.Notes
	*u = *cur
	return nil
}

func (f *fakeUnits) ToggleActive(_ context.Context, _, unitID string) (bool, error) {
	u, ok := f.units[unitID]
	if !ok {
		return false, entity.ErrNotFound
	}
	u.Active = !u.Active
	return u.Active, nil
}

type fakeProperties struct {
	mu        sync.Mutex
	slides    map[string][]string
	summaries map[string]string
	lookups   int
	beforeAdd func()
}

func newFakeProperties() *fakeProperties {
	return &fakeProperties{slides: map[string][]string{}, summaries: map[string]string{}}
}

func (f *fakeProperties) FindByID(context.Context, string) (*entity.Property, error) {
	return nil, entity.ErrNotFound
}

func (f *fakeProperties) FindSummaries(_ context.Context, ids []string) ([]entity.PropertySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	out := make([]entity.PropertySummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.PropertySummary{ID: id, Name: f.summaries[id]})
	}
	return out, nil
}

func (f *fakeProperties) SlideURLs(_ context.Context, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.slides[id]...), nil
}

func (f *fakeProperties) AddSlideURLs(_ context.Context, id string, urls []string, limit int) error {
	if f.beforeAdd != nil {
		f.beforeAdd()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.slides[id])+len(urls) > limit {
		return entity.ErrSlideLimit
	}
	f.slides[id] = append(f.slides[id], urls...)
	return nil
}

func (f *fakeProperties) RemoveSlideURL(_ context.Context, id string, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []string
	for _, u := range f.slides[id] {
		if u != url {
			kept = append(kept, u)
		}
	}
	f.slides[id] = kept
	return nil
}

func (f *fakeProperties) SeedReasons(context.Context, string, repository.ReasonSeed) error {
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	fail    string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) Upload(_ context.Context, path, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.fail != "" && strings.Contains(path, f.fail) {
		return "", fmt.Errorf("upload %s: quota exceeded", path)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = data
	return "http://media.test/media/" + path, nil
}

func (f *fakeBlobs) Open(_ context.Context, path string) (*repository.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &repository.Blob{ReadCloser: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (f *fakeBlobs) DeleteByURL(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(url, "http://media.test/media/")
	if _, ok := f.objects[path]; !ok {
		return entity.ErrNotFound
	}
	delete(f.objects, path)
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeEvents struct {
	events map[string]*entity.Event
}

func (f *fakeEvents) FindByID(_ context.Context, propertyID, eventID string) (*entity.Event, error) {
	e, ok := f.events[eventID]
	if !ok || e.PropertyID != propertyID {
		return nil, entity.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEvents) Create(_ context.Context, e *entity.Event) error {
	e.ID = fmt.Sprintf("e%d", len(f.events)+1)
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEvents) Update(_ context.Context, e *entity.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return entity.ErrNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeEvents) Delete(_ context.Context, _, eventID string) error {
	if _, ok := f.events[eventID]; !ok {
		return entity.ErrNotFound
	}
	delete(f.events, eventID)
	return nil
}

type fakeAdmins struct {
	profiles map[string]*entity.AdminProfile
}

func (f *fakeAdmins) GetByUID(_ context.Context, uid string) (*entity.AdminProfile, error) {
	p, ok := f.profiles[uid]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeAdmins) Upsert(_ context.Context, p *entity.AdminProfile) error {
	f.profiles[p.UID] = p
	return nil
}

type mapCache struct {
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func upload(name, body string) Upload {
	return Upload{
		Filename:    name,
		ContentType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}
