package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mlotysz/hivebridge/internal/api/middleware"
	"github.com/mlotysz/hivebridge/internal/condenser"
)

// AccountLoader is the subset of the condenser loader consumed by the
// account endpoints.
type AccountLoader interface {
	LoadAccounts(ctx context.Context, names []string, observerID int64) ([]*condenser.LegacyAccount, error)
}

// PostLoader is the subset of the condenser loader consumed by the post
// endpoints.
type PostLoader interface {
	LoadPosts(ctx context.Context, ids []int64, truncateBody int) ([]*condenser.LegacyPost, error)
	LoadPostsReblogs(ctx context.Context, entries []condenser.ReblogEntry, truncateBody int) ([]*condenser.LegacyPost, error)
}

// Pinger reports storage reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AccountsHandler serves legacy account objects.
type AccountsHandler struct {
	loader AccountLoader
	log    zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(loader AccountLoader, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		loader: loader,
		log:    log,
	}
}

// GetAccounts handles GET /api/accounts?names=a,b&observer=7
func (h *AccountsHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names := splitList(r.URL.Query().Get("names"))
	if len(names) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "names is required")
		return
	}

	var observerID int64
	if observer := r.URL.Query().Get("observer"); observer != "" {
		id, err := strconv.ParseInt(observer, 10, 64)
		if err != nil || id <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid observer")
			return
		}
		observerID = id
	}

	accounts, err := h.loader.LoadAccounts(ctx, names, observerID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load accounts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, accounts)
}

// PostsHandler serves legacy post objects.
type PostsHandler struct {
	loader PostLoader
	log    zerolog.Logger
}

// NewPostsHandler creates a new posts handler.
func NewPostsHandler(loader PostLoader, log zerolog.Logger) *PostsHandler {
	return &PostsHandler{
		loader: loader,
		log:    log,
	}
}

// GetPosts handles GET /api/posts?ids=1,2,3&truncate_body=N
func (h *PostsHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid post ids")
		return
	}
	if len(ids) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "ids is required")
		return
	}

	truncateBody, err := parseTruncateBody(r.URL.Query().Get("truncate_body"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid truncate_body")
		return
	}

	posts, err := h.loader.LoadPosts(ctx, ids, truncateBody)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load posts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, posts)
}

// GetPostsReblogs handles POST /api/posts/reblogs
func (h *PostsHandler) GetPostsReblogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Items        []condenser.ReblogEntry `json:"items"`
		TruncateBody int                     `json:"truncate_body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Items) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "items is required")
		return
	}
	if req.TruncateBody < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid truncate_body")
		return
	}

	posts, err := h.loader.LoadPostsReblogs(ctx, req.Items, req.TruncateBody)
	if err != nil {
		if errors.Is(err, condenser.ErrNoIDs) {
			middleware.WriteError(w, http.StatusBadRequest, "ids are required")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load reblogged posts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, posts)
}

// HealthHandler reports service and storage health.
type HealthHandler struct {
	db  Pinger
	log zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:  db,
		log: log,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Health check failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// splitList splits a comma-separated query value, dropping empty tokens.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// parseIDList parses a comma-separated list of post ids.
func parseIDList(value string) ([]int64, error) {
	tokens := splitList(value)
	if len(tokens) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(tokens))
	for _, token := range tokens {
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseTruncateBody parses the optional truncate_body parameter; absent
// means no truncation.
func parseTruncateBody(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.New("truncate_body must be a non-negative integer")
	}
	return n, nil
}
