package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mlotysz/hivebridge/internal/condenser"
)

// Store implements condenser.Store over the hive Postgres schema. Nullable
// text columns are coalesced to empty strings so data classification stays
// with the loaders instead of surfacing as scan failures.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// AccountsByNames returns the hive_accounts rows matching the given names.
func (s *Store) AccountsByNames(ctx context.Context, names []string) ([]condenser.AccountRow, error) {
	query := `
		SELECT id, name,
		       COALESCE(display_name, '') AS display_name,
		       COALESCE(about, '') AS about,
		       reputation, vote_weight, created_at, post_count,
		       COALESCE(profile_image, '') AS profile_image,
		       COALESCE(location, '') AS location,
		       COALESCE(website, '') AS website,
		       COALESCE(cover_image, '') AS cover_image,
		       rank
		  FROM hive_accounts
		 WHERE name = ANY(@names)`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"names": names})
	if err != nil {
		return nil, fmt.Errorf("AccountsByNames: querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []condenser.AccountRow
	for rows.Next() {
		var row condenser.AccountRow
		if err := rows.Scan(&row.ID, &row.Name, &row.DisplayName, &row.About,
			&row.Reputation, &row.VoteWeight, &row.CreatedAt, &row.PostCount,
			&row.ProfileImage, &row.Location, &row.Website, &row.CoverImage,
			&row.Rank); err != nil {
			return nil, fmt.Errorf("AccountsByNames: scanning row: %w", err)
		}
		accounts = append(accounts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AccountsByNames: reading rows: %w", err)
	}

	return accounts, nil
}

// AuthorReputations returns the raw reputation score per account name.
func (s *Store) AuthorReputations(ctx context.Context, names []string) (map[string]float64, error) {
	query := `SELECT name, reputation FROM hive_accounts WHERE name = ANY(@names)`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"names": names})
	if err != nil {
		return nil, fmt.Errorf("AuthorReputations: querying reputations: %w", err)
	}
	defer rows.Close()

	reps := make(map[string]float64, len(names))
	for rows.Next() {
		var name string
		var rep float64
		if err := rows.Scan(&name, &rep); err != nil {
			return nil, fmt.Errorf("AuthorReputations: scanning row: %w", err)
		}
		reps[name] = rep
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AuthorReputations: reading rows: %w", err)
	}

	return reps, nil
}

// CachedPostsByIDs returns the hive_posts_cache rows matching the given
// ids. Ids without a cache row are simply absent from the result.
func (s *Store) CachedPostsByIDs(ctx context.Context, ids []int64) ([]condenser.PostCacheRow, error) {
	query := `
		SELECT post_id, author, permlink, title, body, category, depth,
		       promoted, payout, payout_at, is_paidout, children,
		       COALESCE(votes, '') AS votes,
		       created_at, updated_at, rshares,
		       COALESCE(raw_json, '') AS raw_json,
		       COALESCE(json, '') AS json,
		       is_hidden, is_grayed, total_votes
		  FROM hive_posts_cache
		 WHERE post_id = ANY(@ids)`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("CachedPostsByIDs: querying cache rows: %w", err)
	}
	defer rows.Close()

	var posts []condenser.PostCacheRow
	for rows.Next() {
		var row condenser.PostCacheRow
		if err := rows.Scan(&row.PostID, &row.Author, &row.Permlink, &row.Title,
			&row.Body, &row.Category, &row.Depth, &row.Promoted, &row.Payout,
			&row.PayoutAt, &row.IsPaidout, &row.Children, &row.Votes,
			&row.CreatedAt, &row.UpdatedAt, &row.Rshares, &row.RawJSON,
			&row.JSON, &row.IsHidden, &row.IsGrayed, &row.TotalVotes); err != nil {
			return nil, fmt.Errorf("CachedPostsByIDs: scanning row: %w", err)
		}
		posts = append(posts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CachedPostsByIDs: reading rows: %w", err)
	}

	return posts, nil
}

// PostFlagsByIDs returns the moderation flags rows for the given ids.
func (s *Store) PostFlagsByIDs(ctx context.Context, ids []int64) ([]condenser.PostFlagsRow, error) {
	query := `SELECT id, is_pinned, is_muted, is_valid FROM hive_posts WHERE id = ANY(@ids)`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("PostFlagsByIDs: querying flags: %w", err)
	}
	defer rows.Close()

	var flags []condenser.PostFlagsRow
	for rows.Next() {
		var row condenser.PostFlagsRow
		if err := rows.Scan(&row.ID, &row.IsPinned, &row.IsMuted, &row.IsValid); err != nil {
			return nil, fmt.Errorf("PostFlagsByIDs: scanning row: %w", err)
		}
		flags = append(flags, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PostFlagsByIDs: reading rows: %w", err)
	}

	return flags, nil
}

// PostByID returns the canonical hive_posts record for one id, or
// condenser.ErrNotFound when no such post exists.
func (s *Store) PostByID(ctx context.Context, id int64) (condenser.PostRow, error) {
	query := `
		SELECT id, author, permlink, depth, created_at, is_deleted
		  FROM hive_posts
		 WHERE id = @id`

	var row condenser.PostRow
	err := s.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id}).Scan(
		&row.ID, &row.Author, &row.Permlink, &row.Depth, &row.CreatedAt, &row.IsDeleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return condenser.PostRow{}, fmt.Errorf("PostByID: post %d: %w", id, condenser.ErrNotFound)
	}
	if err != nil {
		return condenser.PostRow{}, fmt.Errorf("PostByID: scanning post %d: %w", id, err)
	}

	return row, nil
}
