package condenser

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the storage collaborator the loaders read from.
type Store interface {
	// AccountsByNames returns the account rows matching the given names.
	// Names without a row are simply absent from the result.
	AccountsByNames(ctx context.Context, names []string) ([]AccountRow, error)

	// AuthorReputations returns a name to raw-reputation map for the given
	// account names.
	AuthorReputations(ctx context.Context, names []string) (map[string]float64, error)

	// CachedPostsByIDs returns the post cache rows matching the given ids.
	// Ids without a cache row are simply absent from the result.
	CachedPostsByIDs(ctx context.Context, ids []int64) ([]PostCacheRow, error)

	// PostFlagsByIDs returns the moderation flags rows for the given ids.
	PostFlagsByIDs(ctx context.Context, ids []int64) ([]PostFlagsRow, error)

	// PostByID returns the canonical post record, or ErrNotFound.
	PostByID(ctx context.Context, id int64) (PostRow, error)
}

// FollowEnricher attaches observer relationship context to accounts in
// place, keyed by internal account id.
type FollowEnricher interface {
	ApplyFollowContexts(ctx context.Context, byID map[int64]*LegacyAccount, observerID int64, includeMute bool) error
}

// RepEncoder maps a raw internal reputation score to its legacy integer
// encoding.
type RepEncoder func(rep float64) int64

// AmountParser extracts the numeric amount from a legacy currency string
// such as "2.000 SBD".
type AmountParser func(s string) (decimal.Decimal, error)
