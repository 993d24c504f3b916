package condenser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Loader hydrates legacy condenser objects from storage rows. Each load
// call is an independent unit of work over freshly fetched data, so a
// single Loader is safe for concurrent use.
type Loader struct {
	store   Store
	follows FollowEnricher
	rep     RepEncoder
	amount  AmountParser
	log     zerolog.Logger
}

// NewLoader creates a Loader over the given storage and collaborator
// functions.
func NewLoader(store Store, follows FollowEnricher, rep RepEncoder, amount AmountParser, log zerolog.Logger) *Loader {
	return &Loader{
		store:   store,
		follows: follows,
		rep:     rep,
		amount:  amount,
		log:     log,
	}
}

// LoadAccounts fetches accounts by name and converts them into legacy
// objects. When observerID is non-zero each account is enriched with the
// observer's follow/mute context.
func (l *Loader) LoadAccounts(ctx context.Context, names []string, observerID int64) ([]*LegacyAccount, error) {
	rows, err := l.store.AccountsByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("LoadAccounts: fetching accounts: %w", err)
	}

	accounts := make([]*LegacyAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, l.accountObject(row))
	}

	if observerID > 0 {
		byID := make(map[int64]*LegacyAccount, len(accounts))
		for _, account := range accounts {
			byID[account.ID] = account
		}
		if err := l.follows.ApplyFollowContexts(ctx, byID, observerID, true); err != nil {
			return nil, fmt.Errorf("LoadAccounts: applying follow contexts: %w", err)
		}
	}

	return accounts, nil
}

// LoadPostsKeyed fetches cache rows for the given ids and returns built
// posts keyed by post id. The id set must be non-empty; passing none is a
// caller bug, reported as ErrNoIDs.
func (l *Loader) LoadPostsKeyed(ctx context.Context, ids []int64, truncateBody int) (map[int64]*LegacyPost, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("LoadPostsKeyed: %w", ErrNoIDs)
	}

	rows, err := l.store.CachedPostsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("LoadPostsKeyed: fetching cache rows: %w", err)
	}

	reps, err := l.authorRepMap(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("LoadPostsKeyed: %w", err)
	}

	postsByID := make(map[int64]*LegacyPost, len(rows))
	for _, row := range rows {
		post, err := l.postObject(row, reps[row.Author], truncateBody)
		if err != nil {
			return nil, fmt.Errorf("LoadPostsKeyed: %w", err)
		}
		postsByID[row.PostID] = post
	}

	flags, err := l.store.PostFlagsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("LoadPostsKeyed: fetching flags: %w", err)
	}
	for _, row := range flags {
		post, ok := postsByID[row.ID]
		if !ok {
			continue
		}
		pinned, muted, valid := row.IsPinned, row.IsMuted, row.IsValid
		post.Stats.IsPinned = &pinned
		post.Stats.IsMuted = &muted
		post.Stats.IsValid = &valid
	}

	return postsByID, nil
}

// LoadPosts fetches posts by id and returns them in the caller's order.
// An empty id list yields an empty result. Ids with no cache row are
// dropped from the output; each one is checked against the canonical post
// record to tell an expected deletion from a cache inconsistency, and the
// call succeeds either way.
func (l *Loader) LoadPosts(ctx context.Context, ids []int64, truncateBody int) ([]*LegacyPost, error) {
	if len(ids) == 0 {
		return []*LegacyPost{}, nil
	}

	postsByID, err := l.LoadPostsKeyed(ctx, ids, truncateBody)
	if err != nil {
		return nil, fmt.Errorf("LoadPosts: %w", err)
	}

	var missed []int64
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := postsByID[id]; !ok {
			missed = append(missed, id)
		}
	}

	if len(missed) > 0 {
		l.log.Warn().Ints64("post_ids", missed).Msg("requested posts do not exist in cache")
		for _, id := range missed {
			if err := l.classifyMissing(ctx, id); err != nil {
				return nil, fmt.Errorf("LoadPosts: %w", err)
			}
		}
	}

	posts := make([]*LegacyPost, 0, len(ids))
	for _, id := range ids {
		if post, ok := postsByID[id]; ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// LoadPostsReblogs loads the posts referenced by the given entries and
// attaches the reblogger names to each one.
func (l *Loader) LoadPostsReblogs(ctx context.Context, entries []ReblogEntry, truncateBody int) ([]*LegacyPost, error) {
	ids := make([]int64, 0, len(entries))
	rebloggedBy := make(map[int64]string, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.PostID)
		rebloggedBy[entry.PostID] = entry.RebloggedBy
	}

	posts, err := l.LoadPosts(ctx, ids, truncateBody)
	if err != nil {
		return nil, fmt.Errorf("LoadPostsReblogs: %w", err)
	}

	for _, post := range posts {
		if names := rebloggerNames(rebloggedBy[post.PostID], post.Author); len(names) > 0 {
			post.RebloggedBy = names
		}
	}
	return posts, nil
}

// authorRepMap resolves the author to raw-reputation map for a set of
// cache rows in one batched lookup.
func (l *Loader) authorRepMap(ctx context.Context, rows []PostCacheRow) (map[string]float64, error) {
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	seen := make(map[string]bool, len(rows))
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if seen[row.Author] {
			continue
		}
		seen[row.Author] = true
		names = append(names, row.Author)
	}

	reps, err := l.store.AuthorReputations(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("authorRepMap: %w", err)
	}
	return reps, nil
}

// classifyMissing looks up the canonical record for a post absent from the
// cache. A deleted post is the expected explanation; anything else points
// at an indexer bug and is logged at error severity.
func (l *Loader) classifyMissing(ctx context.Context, id int64) error {
	row, err := l.store.PostByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		l.log.Error().Int64("post_id", id).Msg("missing post")
		return nil
	}
	if err != nil {
		return fmt.Errorf("classifyMissing: fetching post %d: %w", id, err)
	}

	if row.IsDeleted {
		l.log.Warn().
			Int64("post_id", id).
			Str("author", row.Author).
			Str("permlink", row.Permlink).
			Msg("requested deleted post")
	} else {
		l.log.Error().
			Int64("post_id", id).
			Str("author", row.Author).
			Str("permlink", row.Permlink).
			Msg("missing post")
	}
	return nil
}

// rebloggerNames splits a comma-separated reblogger list, dropping
// duplicates, empty tokens and the post's own author.
func rebloggerNames(csv, author string) []string {
	if csv == "" {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, name := range strings.Split(csv, ",") {
		if name == "" || name == author || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
