package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/repository"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.Local)

func ptr[T any](v T) *T { return &v }

// memDB is an in-memory stand-in for the database. A single mutex plays the
// part of the event row lock.
type memDB struct {
	mu           sync.Mutex
	users        map[string]model.User
	categories   map[string]model.Category
	events       map[string]model.Event
	requests     map[string]model.ParticipationRequest
	comments     map[string]model.Comment
	compilations map[string]model.Compilation

	countErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[string]model.User{},
		categories:   map[string]model.Category{},
		events:       map[string]model.Event{},
		requests:     map[string]model.ParticipationRequest{},
		comments:     map[string]model.Comment{},
		compilations: map[string]model.Compilation{},
	}
}

func (db *memDB) confirmed(eventID string) int {
	n := 0
	for _, r := range db.requests {
		if r.EventID == eventID && r.Status == model.RequestConfirmed {
			n++
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type memUsers struct{ *memDB }

func (s memUsers) Create(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s memUsers) List(_ context.Context, ids []string, page model.Page) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, k := range sortedKeys(s.users) {
		if len(ids) == 0 || contains(ids, k) {
			out = append(out, s.users[k])
		}
	}
	return model.Apply(page, out), nil
}

func (s memUsers) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type memCategories struct{ *memDB }

func (s memCategories) Create(_ context.Context, c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	s.categories[c.ID] = c
	return nil
}

func (s memCategories) Update(_ context.Context, c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range s.categories {
		if other.Name == c.Name && other.ID != c.ID {
			return repository.ErrDuplicate
		}
	}
	s.categories[c.ID] = c
	return nil
}

func (s memCategories) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s memCategories) GetByID(_ context.Context, id string) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return model.Category{}, repository.ErrNotFound
	}
	return c, nil
}

func (s memCategories) List(_ context.Context, page model.Page) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Category{}
	for _, k := range sortedKeys(s.categories) {
		out = append(out, s.categories[k])
	}
	return model.Apply(page, out), nil
}

type memEvents struct{ *memDB }

func (s memEvents) Create(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return nil
}

func (s memEvents) GetByID(_ context.Context, id string) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (s memEvents) ListByInitiator(_ context.Context, userID string, page model.Page) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, k := range sortedKeys(s.events) {
		if s.events[k].Initiator.ID == userID {
			out = append(out, s.events[k])
		}
	}
	return model.Apply(page, out), nil
}

func (s memEvents) ListByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, k := range sortedKeys(s.events) {
		if contains(ids, k) {
			out = append(out, s.events[k])
		}
	}
	return out, nil
}

func (s memEvents) Search(_ context.Context, q model.EventQuery) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Event{}
	for _, k := range sortedKeys(s.events) {
		e := s.events[k]
		switch {
		case len(q.Users) > 0 && !contains(q.Users, e.Initiator.ID),
			len(q.Categories) > 0 && !contains(q.Categories, e.Category.ID),
			len(q.States) > 0 && !containsState(q.States, e.State),
			q.RangeStart != nil && e.EventDate.Before(*q.RangeStart),
			q.RangeEnd != nil && e.EventDate.After(*q.RangeEnd),
			q.Paid != nil && e.Paid != *q.Paid,
			q.OnlyAvailable && !e.HasCapacity(s.confirmed(e.ID)),
			q.Text != "" && !strings.Contains(strings.ToLower(e.Annotation+" "+e.Description), strings.ToLower(q.Text)):
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.DateDesc {
			return out[i].EventDate.After(out[j].EventDate)
		}
		return out[i].EventDate.Before(out[j].EventDate)
	})
	if q.Limit == 0 {
		return out, nil
	}
	return model.Apply(model.Page{From: q.Offset, Size: q.Limit}, out), nil
}

func (s memEvents) ExistsByCategory(_ context.Context, categoryID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.Category.ID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (s memEvents) Update(_ context.Context, id string, mutate func(e *model.Event, confirmed int) error) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	if err := mutate(&e, s.confirmed(id)); err != nil {
		return model.Event{}, err
	}
	s.events[id] = e
	return e, nil
}

type memRequests struct{ *memDB }

func (s memRequests) Create(_ context.Context, pr model.ParticipationRequest, admit repository.AdmitFunc) (model.ParticipationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[pr.EventID]
	if !ok {
		return model.ParticipationRequest{}, repository.ErrNotFound
	}
	duplicate := false
	for _, r := range s.requests {
		if r.EventID == pr.EventID && r.RequesterID == pr.RequesterID {
			duplicate = true
		}
	}
	status, err := admit(ev, s.confirmed(ev.ID), duplicate)
	if err != nil {
		return model.ParticipationRequest{}, err
	}
	pr.Status = status
	s.requests[pr.ID] = pr
	return pr, nil
}

func (s memRequests) UpdateStatuses(_ context.Context, eventID string, ids []string, decide repository.DecideFunc) (model.StatusUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[eventID]
	if !ok {
		return model.StatusUpdate{}, repository.ErrNotFound
	}
	ordered := make([]model.ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		pr, ok := s.requests[id]
		if !ok || pr.EventID != eventID {
			return model.StatusUpdate{}, repository.ErrNotFound
		}
		ordered = append(ordered, pr)
	}
	result, err := decide(ev, s.confirmed(eventID), ordered)
	if err != nil {
		return model.StatusUpdate{}, err
	}
	for _, group := range [][]model.ParticipationRequest{result.Confirmed, result.Rejected} {
		for _, pr := range group {
			s.requests[pr.ID] = pr
		}
	}
	return result, nil
}

func (s memRequests) GetByID(_ context.Context, id string) (model.ParticipationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.requests[id]
	if !ok {
		return model.ParticipationRequest{}, repository.ErrNotFound
	}
	return pr, nil
}

func (s memRequests) SetStatus(_ context.Context, id string, status model.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	pr.Status = status
	s.requests[id] = pr
	return nil
}

func (s memRequests) ListByRequester(_ context.Context, userID string) ([]model.ParticipationRequest, error) {
	return s.list(func(pr model.ParticipationRequest) bool { return pr.RequesterID == userID }), nil
}

func (s memRequests) ListByEvent(_ context.Context, eventID string) ([]model.ParticipationRequest, error) {
	return s.list(func(pr model.ParticipationRequest) bool { return pr.EventID == eventID }), nil
}

func (s memRequests) list(keep func(model.ParticipationRequest) bool) []model.ParticipationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ParticipationRequest{}
	for _, k := range sortedKeys(s.requests) {
		if keep(s.requests[k]) {
			out = append(out, s.requests[k])
		}
	}
	return out
}

func (s memRequests) CountConfirmed(_ context.Context, eventIDs []string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return nil, s.countErr
	}
	counts := map[string]int{}
	for _, id := range eventIDs {
		if n := s.confirmed(id); n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

type memComments struct{ *memDB }

func (s memComments) Create(_ context.Context, c model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = c
	return nil
}

func (s memComments) UpdateText(_ context.Context, c model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comments[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Text, stored.UpdatedAt = c.Text, c.UpdatedAt
	s.comments[c.ID] = stored
	return nil
}

func (s memComments) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s memComments) GetByID(_ context.Context, id string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return model.Comment{}, repository.ErrNotFound
	}
	return c, nil
}

func (s memComments) ListByEvent(_ context.Context, eventID string) ([]model.Comment, error) {
	return s.filter(func(c model.Comment) bool { return c.EventID == eventID }), nil
}

func (s memComments) ListByAuthor(_ context.Context, userID string) ([]model.Comment, error) {
	return s.filter(func(c model.Comment) bool { return c.Author.ID == userID }), nil
}

func (s memComments) Search(_ context.Context, q model.CommentQuery) ([]model.Comment, error) {
	out := s.filter(func(c model.Comment) bool {
		return (q.Text == "" || strings.Contains(strings.ToLower(c.Text), strings.ToLower(q.Text))) &&
			(len(q.Users) == 0 || contains(q.Users, c.Author.ID)) &&
			(len(q.Events) == 0 || contains(q.Events, c.EventID))
	})
	return model.Apply(model.Page{From: q.Offset, Size: q.Limit}, out), nil
}

func (s memComments) filter(keep func(model.Comment) bool) []model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Comment{}
	for _, k := range sortedKeys(s.comments) {
		if keep(s.comments[k]) {
			out = append(out, s.comments[k])
		}
	}
	return out
}

type memCompilations struct{ *memDB }

func (s memCompilations) Create(_ context.Context, c model.Compilation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.compilations {
		if other.Title == c.Title {
			return repository.ErrDuplicate
		}
	}
	s.compilations[c.ID] = c
	return nil
}

func (s memCompilations) Update(_ context.Context, c model.Compilation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.compilations[c.ID]; !ok {
		return repository.ErrNotFound
	}
	s.compilations[c.ID] = c
	return nil
}

func (s memCompilations) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.compilations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.compilations, id)
	return nil
}

func (s memCompilations) GetByID(_ context.Context, id string) (model.Compilation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.compilations[id]
	if !ok {
		return model.Compilation{}, repository.ErrNotFound
	}
	return c, nil
}

func (s memCompilations) List(_ context.Context, pinned *bool, page model.Page) ([]model.Compilation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Compilation{}
	for _, k := range sortedKeys(s.compilations) {
		if pinned == nil || s.compilations[k].Pinned == *pinned {
			out = append(out, s.compilations[k])
		}
	}
	return model.Apply(page, out), nil
}

// fakeViews serves fixed view counts and remembers the last window.
type fakeViews struct {
	mu    sync.Mutex
	hits  map[string]int64
	other map[string]int64 // hits recorded by another app
	err   error
	calls int
	start time.Time
	uris  []string
}

func (f *fakeViews) GetViews(_ context.Context, uris []string, start, _ time.Time, _ bool) ([]stats.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.start = start
	f.uris = uris
	if f.err != nil {
		return nil, f.err
	}
	var out []stats.ViewStats
	for _, u := range uris {
		if n, ok := f.hits[u]; ok {
			out = append(out, stats.ViewStats{App: "ewm-main-service", URI: u, Hits: n})
		}
		if n, ok := f.other[u]; ok {
			out = append(out, stats.ViewStats{App: "ewm-admin-service", URI: u, Hits: n})
		}
	}
	return out, nil
}

type fakeHits struct {
	mu   sync.Mutex
	hits []stats.EndpointHit
}

func (f *fakeHits) Record(_ context.Context, hit stats.EndpointHit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, hit)
}

func (f *fakeHits) uris() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.hits))
	for _, h := range f.hits {
		out = append(out, h.URI)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsState(list []model.EventState, v model.EventState) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sequentialIDs() idGen {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%03d", n.Add(1)) }
}

func fixedClock() time.Time { return now }

// fixture wires every service over one memDB.
type fixture struct {
	db           *memDB
	views        *fakeViews
	hits         *fakeHits
	projector    *Projector
	events       *EventService
	requests     *RequestService
	users        *UserService
	categories   *CategoryService
	compilations *CompilationService
	comments     *CommentService
}

func newFixture() *fixture {
	db := newMemDB()
	views := &fakeViews{hits: map[string]int64{}}
	hits := &fakeHits{}
	log := zap.NewNop()
	ids := sequentialIDs()

	projector := NewProjector(memRequests{db}, views, "ewm-main-service", log)
	projector.now = fixedClock

	f := &fixture{
		db:           db,
		views:        views,
		hits:         hits,
		projector:    projector,
		events:       NewEventService(memEvents{db}, memUsers{db}, memCategories{db}, memComments{db}, projector, hits, "ewm-main-service", log),
		requests:     NewRequestService(memRequests{db}, memEvents{db}, memUsers{db}, log),
		users:        NewUserService(memUsers{db}, log),
		categories:   NewCategoryService(memCategories{db}, memEvents{db}, log),
		compilations: NewCompilationService(memCompilations{db}, memEvents{db}, projector, log),
		comments:     NewCommentService(memComments{db}, memEvents{db}, memUsers{db}, log),
	}
	f.events.now, f.events.newID = fixedClock, ids
	f.requests.now, f.requests.newID = fixedClock, ids
	f.users.newID = ids
	f.categories.newID = ids
	f.compilations.newID = ids
	f.comments.now, f.comments.newID = fixedClock, ids
	return f
}

func (f *fixture) addUser(id string) model.User {
	u := model.User{ID: id, Name: "user " + id, Email: id + "@example.com"}
	f.db.users[id] = u
	return u
}

func (f *fixture) addCategory(id string) model.Category {
	c := model.Category{ID: id, Name: "category " + id}
	f.db.categories[id] = c
	return c
}

// addEvent stores an event of initiator in category "c1" starting in days.
func (f *fixture) addEvent(id, initiator string, state model.EventState, limit int, days int) model.Event {
	e := model.Event{
		ID:                id,
		Title:             "event " + id,
		Annotation:        "an annotation long enough for " + id,
		Description:       "a description long enough for " + id,
		Category:          model.Category{ID: "c1", Name: "category c1"},
		Initiator:         model.UserShort{ID: initiator, Name: "user " + initiator},
		EventDate:         now.AddDate(0, 0, days),
		State:             state,
		CreatedOn:         now.Add(-48 * time.Hour),
		ParticipantLimit:  limit,
		RequestModeration: true,
	}
	if state == model.StatePublished {
		published := now.Add(-24 * time.Hour)
		e.PublishedOn = &published
	}
	f.db.events[id] = e
	return e
}

func (f *fixture) addRequest(id, eventID, requester string, status model.RequestStatus) {
	f.db.requests[id] = model.ParticipationRequest{
		ID: id, EventID: eventID, RequesterID: requester, Status: status, Created: now,
	}
}

var errBoom = errors.New("boom")
