// Package follows resolves an observer's follow/mute relationships and
// attaches them to legacy account objects.
package follows

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mlotysz/hivebridge/internal/condenser"
)

// Follow states as stored in hive_follows.
const (
	stateFollowed = 1
	stateMuted    = 2
)

// Enricher implements condenser.FollowEnricher over the hive_follows
// table.
type Enricher struct {
	pool *pgxpool.Pool
}

// NewEnricher creates an Enricher over an existing connection pool.
func NewEnricher(pool *pgxpool.Pool) *Enricher {
	return &Enricher{pool: pool}
}

// ApplyFollowContexts attaches the observer's relationship to every
// account in byID. Accounts without a follow row get the default context.
func (e *Enricher) ApplyFollowContexts(ctx context.Context, byID map[int64]*condenser.LegacyAccount, observerID int64, includeMute bool) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	query := `
		SELECT following, state
		  FROM hive_follows
		 WHERE follower = @observer
		   AND following = ANY(@ids)`

	rows, err := e.pool.Query(ctx, query, pgx.NamedArgs{
		"observer": observerID,
		"ids":      ids,
	})
	if err != nil {
		return fmt.Errorf("ApplyFollowContexts: querying follows: %w", err)
	}
	defer rows.Close()

	states := make(map[int64]int)
	for rows.Next() {
		var following int64
		var state int
		if err := rows.Scan(&following, &state); err != nil {
			return fmt.Errorf("ApplyFollowContexts: scanning follow row: %w", err)
		}
		states[following] = state
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ApplyFollowContexts: reading follow rows: %w", err)
	}

	applyStates(byID, states, includeMute)
	return nil
}

// applyStates sets the relationship context on every account in byID.
func applyStates(byID map[int64]*condenser.LegacyAccount, states map[int64]int, includeMute bool) {
	for id, account := range byID {
		followCtx := &condenser.FollowContext{
			Followed: states[id] == stateFollowed,
		}
		if includeMute && states[id] == stateMuted {
			followCtx.Muted = true
		}
		account.Context = followCtx
	}
}
