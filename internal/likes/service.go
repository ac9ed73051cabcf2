// Package likes stores the user's saved job postings and talent profiles.
// It is transport-agnostic: the business logic works against a pgx pool and
// is mounted on HTTP by the handler in this package.
package likes

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ─── Kinds ───────────────────────────────────────────────────────────────────

// Kind separates the two like lists a user keeps.
type Kind string

const (
	KindJob    Kind = "job"
	KindTalent Kind = "talent"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindJob, KindTalent:
		return Kind(raw), nil
	default:
		return "", &ValidationError{Msg: fmt.Sprintf("unknown like kind %q", raw)}
	}
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Like is one saved item.
type Like struct {
	ItemID    string    `json:"itemId"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service encapsulates the likes business logic.
type Service struct {
	pool *pgxpool.Pool
}

// NewService returns a configured Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// List returns the user's likes of one kind, newest first.
func (s *Service) List(ctx context.Context, userID string, kind Kind) ([]Like, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT item_id, kind, created_at
		 FROM likes
		 WHERE user_id = $1 AND kind = $2
		 ORDER BY created_at DESC`,
		userID, string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list likes query: %w", err)
	}
	defer rows.Close()

	out := make([]Like, 0)
	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.ItemID, &l.Kind, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("list likes scan: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Toggle flips the like on an item and reports whether it is now liked.
// A second toggle on the same item removes it.
func (s *Service) Toggle(ctx context.Context, userID string, kind Kind, itemID string) (bool, error) {
	if itemID == "" {
		return false, &ValidationError{Msg: "itemId is required"}
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND kind = $2 AND item_id = $3`,
		userID, string(kind), itemID,
	)
	if err != nil {
		return false, fmt.Errorf("toggle like delete: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO likes (user_id, kind, item_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, kind, item_id) DO NOTHING`,
		userID, string(kind), itemID,
	)
	if err != nil {
		return false, fmt.Errorf("toggle like insert: %w", err)
	}
	return true, nil
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
