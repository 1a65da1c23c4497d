package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/explore-with-me/internal/model"
)

const requestColumns = `id, event_id, requester_id, status, created`

func scanRequest(row scanner) (model.ParticipationRequest, error) {
	var (
		pr     model.ParticipationRequest
		status string
	)
	err := row.Scan(&pr.ID, &pr.EventID, &pr.RequesterID, &status, &pr.Created)
	pr.Status = model.RequestStatus(status)
	return pr, err
}

func collectRequests(rows pgx.Rows) ([]model.ParticipationRequest, error) {
	defer rows.Close()
	requests := []model.ParticipationRequest{}
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}

// AdmitFunc decides the status of a new request for ev given its current
// confirmed count and whether the requester already has a request.
type AdmitFunc func(ev model.Event, confirmed int, duplicate bool) (model.RequestStatus, error)

// DecideFunc partitions a bulk status update for ev given its current
// confirmed count. requests are in the caller's order.
type DecideFunc func(ev model.Event, confirmed int, requests []model.ParticipationRequest) (model.StatusUpdate, error)

// RequestRepository handles persistence for participation requests.
type RequestRepository struct {
	db *pgxpool.Pool
}

// NewRequestRepository constructs a RequestRepository.
func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create stores pr with the status chosen by admit.
//
// The event row is locked with SELECT ... FOR UPDATE before the confirmed
// count and duplicate check are read, so concurrent admissions for one event
// are serialized and can never push the confirmed count past the limit. The
// unique index on (requester_id, event_id) backs the duplicate rule.
func (r *RequestRepository) Create(ctx context.Context, pr model.ParticipationRequest, admit AdmitFunc) (model.ParticipationRequest, error) {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		ev, err := lockEvent(ctx, tx, pr.EventID)
		if err != nil {
			return err
		}
		confirmed, err := countConfirmed(ctx, tx, ev.ID)
		if err != nil {
			return err
		}
		var duplicate bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM participation_requests WHERE requester_id = $1 AND event_id = $2)`,
			pr.RequesterID, pr.EventID,
		).Scan(&duplicate)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}

		status, err := admit(ev, confirmed, duplicate)
		if err != nil {
			return err
		}
		pr.Status = status

		_, err = tx.Exec(ctx,
			`INSERT INTO participation_requests (`+requestColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			pr.ID, pr.EventID, pr.RequesterID, string(pr.Status), pr.Created,
		)
		if err != nil {
			return mapWriteError("insert request", err)
		}
		return nil
	})
	if err != nil {
		return model.ParticipationRequest{}, err
	}
	return pr, nil
}

// UpdateStatuses applies a bulk status update to requests of one event.
//
// Within one transaction it locks the event row, counts confirmed requests,
// loads the targeted requests (every id must belong to the event, otherwise
// ErrNotFound), hands them to decide in the order of ids and writes the
// outcome. Concurrent updates for the same event are serialized by the lock.
func (r *RequestRepository) UpdateStatuses(ctx context.Context, eventID string, ids []string, decide DecideFunc) (model.StatusUpdate, error) {
	var result model.StatusUpdate
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		ev, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		confirmed, err := countConfirmed(ctx, tx, eventID)
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx,
			`SELECT `+requestColumns+` FROM participation_requests
			 WHERE event_id = $1 AND id = ANY($2) FOR UPDATE`,
			eventID, ids,
		)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		loaded, err := collectRequests(rows)
		if err != nil {
			return err
		}
		byID := make(map[string]model.ParticipationRequest, len(loaded))
		for _, pr := range loaded {
			byID[pr.ID] = pr
		}
		ordered := make([]model.ParticipationRequest, 0, len(ids))
		for _, id := range ids {
			pr, ok := byID[id]
			if !ok {
				return ErrNotFound
			}
			ordered = append(ordered, pr)
		}

		result, err = decide(ev, confirmed, ordered)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, group := range [][]model.ParticipationRequest{result.Confirmed, result.Rejected} {
			for _, pr := range group {
				batch.Queue(`UPDATE participation_requests SET status = $2 WHERE id = $1`, pr.ID, string(pr.Status))
			}
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write statuses: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.StatusUpdate{}, err
	}
	return result, nil
}

// GetByID returns a single request or ErrNotFound.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (model.ParticipationRequest, error) {
	pr, err := scanRequest(r.db.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM participation_requests WHERE id = $1`, id))
	if err != nil {
		return model.ParticipationRequest{}, mapReadError("get request", err)
	}
	return pr, nil
}

// SetStatus overwrites the status of a single request.
func (r *RequestRepository) SetStatus(ctx context.Context, id string, status model.RequestStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE participation_requests SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRequester returns the user's requests, oldest first.
func (r *RequestRepository) ListByRequester(ctx context.Context, userID string) ([]model.ParticipationRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+requestColumns+` FROM participation_requests
		 WHERE requester_id = $1 ORDER BY created, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return collectRequests(rows)
}

// ListByEvent returns the requests for an event, oldest first.
func (r *RequestRepository) ListByEvent(ctx context.Context, eventID string) ([]model.ParticipationRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+requestColumns+` FROM participation_requests
		 WHERE event_id = $1 ORDER BY created, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests by event: %w", err)
	}
	return collectRequests(rows)
}

// CountConfirmed returns the confirmed request count per event id in a single
// aggregate query. Events without confirmed requests are absent from the map.
func (r *RequestRepository) CountConfirmed(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT event_id, COUNT(*) FROM participation_requests
		 WHERE event_id = ANY($1) AND status = 'CONFIRMED'
		 GROUP BY event_id`, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("count confirmed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan confirmed count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
