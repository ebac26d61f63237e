// README: Saved-itinerary store backed by PostgreSQL (plans kept as JSONB).
package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("itinerary not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Save inserts the plan, replacing any earlier plan with the same id for the owner.
func (s *Store) Save(ctx context.Context, ownerUID string, p *Plan) error {
	if p.ID == "" {
		return fmt.Errorf("save itinerary: missing id")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("save itinerary: marshal: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO itineraries (owner_uid, id, destination, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (owner_uid, id) DO UPDATE SET
			destination = EXCLUDED.destination,
			plan = EXCLUDED.plan,
			updated_at = now()
	`, ownerUID, p.ID, p.Destination, doc)
	return err
}

// Get returns ErrNotFound when the owner has no plan with that id.
func (s *Store) Get(ctx context.Context, ownerUID, id string) (*SavedPlan, error) {
	var (
		doc []byte
		sp  = SavedPlan{OwnerUID: ownerUID}
	)
	err := s.db.QueryRow(ctx, `
		SELECT plan, created_at, updated_at
		FROM itineraries
		WHERE owner_uid = $1 AND id = $2
	`, ownerUID, id).Scan(&doc, &sp.CreatedAt, &sp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p Plan
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("get itinerary: decode plan: %w", err)
	}
	p.ID = id
	sp.Plan = &p
	return &sp, nil
}

// List returns the owner's plans, newest first.
func (s *Store) List(ctx context.Context, ownerUID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, destination,
			CASE WHEN jsonb_typeof(plan->'timeline') = 'array' THEN jsonb_array_length(plan->'timeline') ELSE 0 END,
			created_at, updated_at
		FROM itineraries
		WHERE owner_uid = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, ownerUID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Destination, &sm.Days, &sm.CreatedAt, &sm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Update overwrites an existing plan. It returns ErrNotFound if nothing matched.
func (s *Store) Update(ctx context.Context, ownerUID string, p *Plan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("update itinerary: marshal: %w", err)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE itineraries SET plan = $3, destination = $4, updated_at = $5
		WHERE owner_uid = $1 AND id = $2
	`, ownerUID, p.ID, doc, p.Destination, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ownerUID, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM itineraries WHERE owner_uid = $1 AND id = $2`, ownerUID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
