package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/apperror"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
	"github.com/Shivanand-hulikatti/explore-with-me/internal/stats"
)

// AdminEventFilter narrows the administrator's event search.
type AdminEventFilter struct {
	Users      []string
	States     []model.EventState
	Categories []string
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       model.Page
}

// PublicEventFilter narrows the public event search.
type PublicEventFilter struct {
	Text          string
	Categories    []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          model.EventSort
	Page          model.Page
}

// EventService orchestrates event operations for initiators, administrators
// and anonymous visitors.
type EventService struct {
	events     EventStore
	users      UserStore
	categories CategoryStore
	comments   CommentStore
	projector  *Projector
	hits       stats.HitRecorder
	app        string
	log        *zap.Logger
	now        clock
	newID      idGen
}

// NewEventService constructs an EventService. app is the application name
// reported with every recorded hit.
func NewEventService(
	events EventStore,
	users UserStore,
	categories CategoryStore,
	comments CommentStore,
	projector *Projector,
	hits stats.HitRecorder,
	app string,
	log *zap.Logger,
) *EventService {
	return &EventService{
		events:     events,
		users:      users,
		categories: categories,
		comments:   comments,
		projector:  projector,
		hits:       hits,
		app:        app,
		log:        log,
		now:        time.Now,
		newID:      newID,
	}
}

// Create stores a new PENDING event owned by userID.
func (s *EventService) Create(ctx context.Context, userID string, req model.NewEventRequest) (model.EventFull, error) {
	now := s.now()
	if err := req.Validate(now); err != nil {
		return model.EventFull{}, err
	}
	user, err := requireUser(ctx, s.users, userID)
	if err != nil {
		return model.EventFull{}, err
	}
	category, err := s.categories.GetByID(ctx, req.Category)
	if err != nil {
		return model.EventFull{}, translate(err, categoryRef(req.Category))
	}

	req.Title = strings.TrimSpace(req.Title)
	ev := model.NewEvent(s.newID(), req, category, user.Short(), now)
	if err := s.events.Create(ctx, ev); err != nil {
		return model.EventFull{}, translate(err, eventRef(ev.ID))
	}
	s.log.Info("event created", zap.String("event_id", ev.ID), zap.String("initiator_id", userID))
	return s.projector.One(ctx, ev)
}

// ListByInitiator returns the user's events, newest first.
func (s *EventService) ListByInitiator(ctx context.Context, userID string, page model.Page) ([]model.EventShort, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	events, err := s.events.ListByInitiator(ctx, userID, page)
	if err != nil {
		return nil, translate(err, "events of "+userRef(userID))
	}
	return s.projector.Short(ctx, events)
}

// GetByInitiator returns one of the user's own events.
func (s *EventService) GetByInitiator(ctx context.Context, userID, eventID string) (model.EventFull, error) {
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return model.EventFull{}, err
	}
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return model.EventFull{}, translate(err, eventRef(eventID))
	}
	if ev.Initiator.ID != userID {
		return model.EventFull{}, apperror.NotFound("%s was not found", eventRef(eventID))
	}
	return s.projector.One(ctx, ev)
}

// UpdateByInitiator applies the initiator's patch.
func (s *EventService) UpdateByInitiator(ctx context.Context, userID, eventID string, patch model.EventPatch) (model.EventFull, error) {
	if err := patch.Validate(); err != nil {
		return model.EventFull{}, err
	}
	if _, err := requireUser(ctx, s.users, userID); err != nil {
		return model.EventFull{}, err
	}
	category, err := s.resolveCategory(ctx, patch.Category)
	if err != nil {
		return model.EventFull{}, err
	}
	ev, err := s.events.Update(ctx, eventID, func(e *model.Event, confirmed int) error {
		return e.ApplyInitiatorPatch(userID, patch, category, confirmed, s.now())
	})
	if err != nil {
		return model.EventFull{}, translate(err, eventRef(eventID))
	}
	return s.projector.One(ctx, ev)
}

// UpdateByAdmin applies an administrator's patch, publishing or rejecting
// the event when the patch carries a state action.
func (s *EventService) UpdateByAdmin(ctx context.Context, eventID string, patch model.EventPatch) (model.EventFull, error) {
	if err := patch.Validate(); err != nil {
		return model.EventFull{}, err
	}
	category, err := s.resolveCategory(ctx, patch.Category)
	if err != nil {
		return model.EventFull{}, err
	}
	ev, err := s.events.Update(ctx, eventID, func(e *model.Event, confirmed int) error {
		return e.ApplyAdminPatch(patch, category, confirmed, s.now())
	})
	if err != nil {
		return model.EventFull{}, translate(err, eventRef(eventID))
	}
	if patch.StateAction != nil {
		s.log.Info("event moderated",
			zap.String("event_id", ev.ID),
			zap.String("action", string(*patch.StateAction)),
			zap.String("state", string(ev.State)),
		)
	}
	return s.projector.One(ctx, ev)
}

func (s *EventService) resolveCategory(ctx context.Context, id *string) (*model.Category, error) {
	if id == nil {
		return nil, nil
	}
	c, err := s.categories.GetByID(ctx, *id)
	if err != nil {
		return nil, translate(err, categoryRef(*id))
	}
	return &c, nil
}

// SearchAdmin lists events matching f, latest event date first.
func (s *EventService) SearchAdmin(ctx context.Context, f AdminEventFilter) ([]model.EventFull, error) {
	if err := model.ValidateRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}
	for _, st := range f.States {
		if !st.Valid() {
			return nil, apperror.BadRequest("unknown state: %s", st)
		}
	}
	events, err := s.events.Search(ctx, model.EventQuery{
		Users:      f.Users,
		States:     f.States,
		Categories: f.Categories,
		RangeStart: f.RangeStart,
		RangeEnd:   f.RangeEnd,
		DateDesc:   true,
		Offset:     f.Page.From,
		Limit:      f.Page.Size,
	})
	if err != nil {
		return nil, translate(err, "events")
	}
	return s.projector.Full(ctx, events)
}

// SearchPublic lists published events matching f and records the visit of
// ip to the listing.
func (s *EventService) SearchPublic(ctx context.Context, f PublicEventFilter, ip string) ([]model.EventShort, error) {
	if err := model.ValidateRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}
	switch f.Sort {
	case "":
		f.Sort = model.SortEventDate
	case model.SortEventDate, model.SortViews:
	default:
		return nil, apperror.BadRequest("sort must be EVENT_DATE or VIEWS")
	}
	now := s.now()
	if f.RangeStart == nil {
		f.RangeStart = &now
	}

	q := model.EventQuery{
		States:        []model.EventState{model.StatePublished},
		Categories:    f.Categories,
		RangeStart:    f.RangeStart,
		RangeEnd:      f.RangeEnd,
		Paid:          f.Paid,
		Text:          strings.TrimSpace(f.Text),
		OnlyAvailable: f.OnlyAvailable,
	}
	if f.Sort == model.SortEventDate {
		q.Offset, q.Limit = f.Page.From, f.Page.Size
	}
	events, err := s.events.Search(ctx, q)
	if err != nil {
		return nil, translate(err, "events")
	}
	out, err := s.projector.Short(ctx, events)
	if err != nil {
		return nil, err
	}
	if f.Sort == model.SortViews {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Views != out[j].Views {
				return out[i].Views > out[j].Views
			}
			return out[i].EventDate.Before(out[j].EventDate.Time)
		})
		out = model.Apply(f.Page, out)
	}

	s.record(ctx, "/events", ip, now)
	return out, nil
}

// GetPublished returns a published event with its comments and records the
// visit of ip to it. Unpublished events are reported as not found.
func (s *EventService) GetPublished(ctx context.Context, eventID, ip string) (model.EventFull, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return model.EventFull{}, translate(err, eventRef(eventID))
	}
	if ev.State != model.StatePublished {
		return model.EventFull{}, apperror.NotFound("%s was not found", eventRef(eventID))
	}
	s.record(ctx, ev.URI(), ip, s.now())

	full, err := s.projector.One(ctx, ev)
	if err != nil {
		return model.EventFull{}, err
	}
	comments, err := s.comments.ListByEvent(ctx, ev.ID)
	if err != nil {
		return model.EventFull{}, translate(err, "comments of "+eventRef(ev.ID))
	}
	full.Comments = model.ToCommentShorts(comments)
	return full, nil
}

func (s *EventService) record(ctx context.Context, uri, ip string, at time.Time) {
	s.hits.Record(ctx, stats.EndpointHit{
		App:       s.app,
		URI:       uri,
		IP:        ip,
		Timestamp: model.NewDateTime(at),
	})
}
