package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"convoy-api/config"
	"convoy-api/models"
	"convoy-api/repositories"
	"convoy-api/utils"
)

// stubEventStore keeps events in memory; the *Fn fields override behaviour.
type stubEventStore struct {
	mu     sync.Mutex
	events []models.Event

	ListFn          func(ctx context.Context, opts repositories.ListEventsOptions) ([]models.Event, error)
	GetByIDFn       func(ctx context.Context, id string) (*models.Event, error)
	GetActiveFn     func(ctx context.Context) (*models.Event, error)
	SetActiveFn     func(ctx context.Context, id string) error
	CreateFn        func(ctx context.Context, event *models.Event) error
	setActiveCalls  int
	listCalls       int
	setInactiveCall int
}

func (s *stubEventStore) Create(ctx context.Context, event *models.Event) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, event)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Slug = utils.Slugify(event.Title)
	for _, e := range s.events {
		if e.Slug == event.Slug {
			return repositories.ErrSlugTaken
		}
	}
	event.ID = "evt-" + event.Slug
	s.events = append(s.events, *event)
	return nil
}

func (s *stubEventStore) Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			if upd.Title != nil {
				s.events[i].Title = *upd.Title
			}
			if upd.Published != nil {
				s.events[i].Published = *upd.Published
			}
			e := s.events[i]
			return &e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (s *stubEventStore) List(ctx context.Context, opts repositories.ListEventsOptions) ([]models.Event, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	if s.ListFn != nil {
		return s.ListFn(ctx, opts)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, e := range s.events {
		if opts.PublishedOnly && !e.Published {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateValue() > out[j].DateValue() })
	return out, nil
}

func (s *stubEventStore) ListSlugs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var slugs []string
	for _, e := range s.events {
		slugs = append(slugs, e.Slug)
	}
	return slugs, nil
}

func (s *stubEventStore) GetByID(ctx context.Context, id string) (*models.Event, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (s *stubEventStore) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Slug == slug && (!publishedOnly || e.Published) {
			e := e
			return &e, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (s *stubEventStore) GetActive(ctx context.Context) (*models.Event, error) {
	if s.GetActiveFn != nil {
		return s.GetActiveFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Active && e.Published {
			e := e
			return &e, nil
		}
	}
	return nil, repositories.ErrNoActiveEvent
}

func (s *stubEventStore) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	s.setActiveCalls++
	s.mu.Unlock()
	if s.SetActiveFn != nil {
		return s.SetActiveFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.events {
		s.events[i].Active = s.events[i].ID == id
		found = found || s.events[i].ID == id
	}
	if !found {
		return repositories.ErrEventNotFound
	}
	return nil
}

func (s *stubEventStore) SetInactive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setInactiveCall++
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Active = false
			return nil
		}
	}
	return repositories.ErrEventNotFound
}

func (s *stubEventStore) ActiveState(ctx context.Context) (models.ActiveStateReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := models.ActiveStateReport{ActiveIDs: []string{}}
	for _, e := range s.events {
		if e.Active {
			report.ActiveIDs = append(report.ActiveIDs, e.ID)
		}
	}
	report.Count = int64(len(report.ActiveIDs))
	switch report.Count {
	case 0:
		report.Status = models.ActiveNone
	case 1:
		report.Status = models.ActiveOne
	default:
		report.Status = models.ActiveMultiple
	}
	return report, nil
}

type stubRegistrationStore struct {
	mu      sync.Mutex
	created []models.Registration
	regs    map[string]*models.Registration

	CreateFn    func(ctx context.Context, reg *models.Registration) error
	SetStatusFn func(ctx context.Context, id string, status models.RegistrationStatus) error
	CountErr    error
	lastFilter  models.RegistrationFilter
	listCalls   int
}

func newStubRegistrationStore() *stubRegistrationStore {
	return &stubRegistrationStore{regs: map[string]*models.Registration{}}
}

func (s *stubRegistrationStore) Create(ctx context.Context, reg *models.Registration) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, reg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reg.ID = "reg-" + strings.ToLower(reg.FullName)
	s.created = append(s.created, *reg)
	r := *reg
	s.regs[reg.ID] = &r
	return nil
}

func (s *stubRegistrationStore) SetStatus(ctx context.Context, id string, status models.RegistrationStatus) error {
	if s.SetStatusFn != nil {
		return s.SetStatusFn(ctx, id, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (s *stubRegistrationStore) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	s.listCalls++
	var out []models.Registration
	for _, reg := range s.regs {
		if slug, ok := filter.SlugFilter(); ok && reg.EventSlug != slug {
			continue
		}
		if status, ok := filter.StatusFilter(); ok && string(reg.Status) != status {
			continue
		}
		out = append(out, *reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubRegistrationStore) GetByID(ctx context.Context, id string) (*models.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	r := *reg
	return &r, nil
}

func (s *stubRegistrationStore) CountByStatus(ctx context.Context) (map[models.RegistrationStatus]int64, error) {
	if s.CountErr != nil {
		return nil, s.CountErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[models.RegistrationStatus]int64{}
	for _, status := range models.RegistrationStatuses {
		counts[status] = 0
	}
	for _, reg := range s.regs {
		counts[reg.Status]++
	}
	return counts, nil
}

func (s *stubRegistrationStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

// fakeStorage records uploads; UploadFn can inject failures or delays.
type fakeStorage struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	removed  []string

	UploadFn func(ctx context.Context, bucket, key string) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (string, error) {
	if f.UploadFn != nil {
		if err := f.UploadFn(ctx, bucket, key); err != nil {
			return "", err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded[bucket+"/"+key] = data
	return key, nil
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "https://cdn.example.org/" + bucket + "/" + path
}

func (f *fakeStorage) Remove(ctx context.Context, bucket, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, bucket+"/"+path)
	delete(f.uploaded, bucket+"/"+path)
	return nil
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploaded)
}

func (f *fakeStorage) removedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

type stubNotifier struct {
	mu       sync.Mutex
	received []string
	statuses []models.RegistrationStatus
	err      error
}

func (n *stubNotifier) SendRegistrationReceived(reg *models.Registration, eventTitle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.received = append(n.received, reg.Email+"|"+eventTitle)
	return n.err
}

func (n *stubNotifier) SendStatusUpdate(reg *models.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, reg.Status)
	return n.err
}

var errBackend = errors.New("backend unavailable")

// testNow is the fixed "today" used by service tests.
var testNow = time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)

func testDates() *utils.DateFormatter {
	f := utils.NewDateFormatter(time.UTC)
	f.Now = func() time.Time { return testNow }
	return f
}

func photo(name, contentType string, size int) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(size),
		Content:     bytes.NewReader(make([]byte, size)),
	}
}

func testConfig() *config.Config {
	return &config.Config{PhotoBucket: "car-photos", CoverBucket: "blog-covers", DefaultEventSlug: "monterey-car-week-2025"}
}
