package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const eventColumns = `e.id, e.title, e.annotation, e.description, c.id, c.name, u.id, u.name,
	e.lat, e.lon, e.event_date, e.state, e.paid, e.created_on, e.published_on,
	e.participant_limit, e.request_moderation`

const eventFrom = ` FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id`

const confirmedSubquery = `(SELECT COUNT(*) FROM participation_requests pr
	WHERE pr.event_id = e.id AND pr.status = 'CONFIRMED')`

func scanEvent(row scanner) (model.Event, error) {
	var (
		e     model.Event
		state string
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description,
		&e.Category.ID, &e.Category.Name, &e.Initiator.ID, &e.Initiator.Name,
		&e.Location.Lat, &e.Location.Lon, &e.EventDate, &state, &e.Paid,
		&e.CreatedOn, &e.PublishedOn, &e.ParticipantLimit, &e.RequestModeration,
	)
	e.State = model.EventState(state)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, annotation, description, category_id, initiator_id,
			lat, lon, event_date, state, paid, created_on, published_on,
			participant_limit, request_moderation)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		e.ID, e.Title, e.Annotation, e.Description, e.Category.ID, e.Initiator.ID,
		e.Location.Lat, e.Location.Lon, e.EventDate, string(e.State), e.Paid, e.CreatedOn, e.PublishedOn,
		e.ParticipantLimit, e.RequestModeration,
	)
	if err != nil {
		return mapWriteError("insert event", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id))
	if err != nil {
		return model.Event{}, mapReadError("get event", err)
	}
	return e, nil
}

// ListByInitiator returns a page of the user's events, newest first.
func (r *EventRepository) ListByInitiator(ctx context.Context, userID string, page model.Page) ([]model.Event, error) {
	var f filter
	f.where("e.initiator_id = " + f.arg(userID))
	query := `SELECT ` + eventColumns + eventFrom + f.String() +
		` ORDER BY e.created_on DESC, e.id` + f.page(page.From, page.Size)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return collectEvents(rows)
}

// ListByIDs returns the events with the given ids, ordered by event date.
// Unknown ids are skipped.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Event, error) {
	if len(ids) == 0 {
		return []model.Event{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+eventFrom+` WHERE e.id = ANY($1) ORDER BY e.event_date, e.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list events by ids: %w", err)
	}
	return collectEvents(rows)
}

// Search returns events matching q.
func (r *EventRepository) Search(ctx context.Context, q model.EventQuery) ([]model.Event, error) {
	var f filter
	if len(q.Users) > 0 {
		f.where("e.initiator_id = ANY(" + f.arg(q.Users) + ")")
	}
	if len(q.States) > 0 {
		states := make([]string, 0, len(q.States))
		for _, s := range q.States {
			states = append(states, string(s))
		}
		f.where("e.state = ANY(" + f.arg(states) + ")")
	}
	if len(q.Categories) > 0 {
		f.where("e.category_id = ANY(" + f.arg(q.Categories) + ")")
	}
	if q.RangeStart != nil {
		f.where("e.event_date >= " + f.arg(*q.RangeStart))
	}
	if q.RangeEnd != nil {
		f.where("e.event_date <= " + f.arg(*q.RangeEnd))
	}
	if q.Paid != nil {
		f.where("e.paid = " + f.arg(*q.Paid))
	}
	if q.Text != "" {
		p := f.arg(containsPattern(q.Text))
		f.where("(e.annotation ILIKE " + p + " OR e.description ILIKE " + p + ")")
	}
	if q.OnlyAvailable {
		f.where("(e.participant_limit = 0 OR " + confirmedSubquery + " < e.participant_limit)")
	}

	order := ` ORDER BY e.event_date ASC, e.id`
	if q.DateDesc {
		order = ` ORDER BY e.event_date DESC, e.id`
	}
	query := `SELECT ` + eventColumns + eventFrom + f.String() + order + f.page(q.Offset, q.Limit)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

// ExistsByCategory reports whether any event uses the category.
func (r *EventRepository) ExistsByCategory(ctx context.Context, categoryID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`, categoryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}
	return exists, nil
}

// Update loads the event under a row lock, lets mutate change it given the
// current confirmed request count, and writes it back. An error from mutate
// aborts the transaction and is returned as is.
func (r *EventRepository) Update(ctx context.Context, id string, mutate func(e *model.Event, confirmed int) error) (model.Event, error) {
	var updated model.Event
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		e, err := lockEvent(ctx, tx, id)
		if err != nil {
			return err
		}
		confirmed, err := countConfirmed(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mutate(&e, confirmed); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE events SET title = $2, annotation = $3, description = $4, category_id = $5,
				lat = $6, lon = $7, event_date = $8, state = $9, paid = $10, published_on = $11,
				participant_limit = $12, request_moderation = $13
			 WHERE id = $1`,
			e.ID, e.Title, e.Annotation, e.Description, e.Category.ID,
			e.Location.Lat, e.Location.Lon, e.EventDate, string(e.State), e.Paid, e.PublishedOn,
			e.ParticipantLimit, e.RequestModeration,
		)
		if err != nil {
			return mapWriteError("update event", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}
	return updated, nil
}

// lockEvent takes the row lock on an event inside tx.
func lockEvent(ctx context.Context, tx pgx.Tx, id string) (model.Event, error) {
	e, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+eventFrom+` WHERE e.id = $1 FOR UPDATE OF e`, id))
	if err != nil {
		return model.Event{}, mapReadError("lock event row", err)
	}
	return e, nil
}

func countConfirmed(ctx context.Context, tx pgx.Tx, eventID string) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = 'CONFIRMED'`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count confirmed: %w", err)
	}
	return n, nil
}
