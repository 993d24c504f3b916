package condenser

import (
	"encoding/json"
	"time"
)

// AccountRow is a hive_accounts record as read from storage.
type AccountRow struct {
	ID           int64
	Name         string
	DisplayName  string
	About        string
	Reputation   float64
	VoteWeight   int64
	CreatedAt    time.Time
	PostCount    int
	ProfileImage string
	Location     string
	Website      string
	CoverImage   string
	Rank         int
}

// PostCacheRow is a hive_posts_cache record as read from storage. RawJSON
// holds the legacy snapshot of fields that exist nowhere else (parents,
// url, beneficiaries, curator payout); it must be present and longer than
// 32 bytes, anything less is a data-integrity fault.
type PostCacheRow struct {
	PostID     int64
	Author     string
	Permlink   string
	Title      string
	Body       string
	Category   string
	Depth      int
	Promoted   float64
	Payout     float64
	PayoutAt   time.Time
	IsPaidout  bool
	Children   int
	Votes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Rshares    int64
	RawJSON    string
	JSON       string
	IsHidden   bool
	IsGrayed   bool
	TotalVotes int
}

// PostRow is a canonical hive_posts record, consulted when a cache row is
// missing to tell an expected deletion from an indexer bug.
type PostRow struct {
	ID        int64
	Author    string
	Permlink  string
	Depth     int
	CreatedAt time.Time
	IsDeleted bool
}

// PostFlagsRow carries the moderation flags merged into post stats.
type PostFlagsRow struct {
	ID       int64
	IsPinned bool
	IsMuted  bool
	IsValid  bool
}

// ReblogEntry pairs a post id with the comma-separated names of the
// accounts that reblogged it.
type ReblogEntry struct {
	PostID      int64  `json:"post_id"`
	RebloggedBy string `json:"reblogged_by"`
}

// VoteEntry is one decoded active-vote record. Rshares and percent keep
// their raw string form on the wire.
type VoteEntry struct {
	Voter      string `json:"voter"`
	Rshares    string `json:"rshares"`
	Percent    string `json:"percent"`
	Reputation int64  `json:"reputation"`
}

// AccountStats is the stats block of a legacy account object.
type AccountStats struct {
	SP   int64 `json:"sp"`
	Rank int   `json:"rank"`
}

// FollowContext is the relationship block attached to an account when an
// observer is supplied.
type FollowContext struct {
	Followed bool `json:"followed"`
	Muted    bool `json:"muted,omitempty"`
}

// LegacyAccount is a condenser-style account object. Field order follows
// the legacy wire layout and must not be rearranged.
type LegacyAccount struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Created      string         `json:"created"`
	PostCount    int            `json:"post_count"`
	Reputation   int64          `json:"reputation"`
	Stats        AccountStats   `json:"stats"`
	JSONMetadata string         `json:"json_metadata"`
	Context      *FollowContext `json:"context,omitempty"`
}

// PostStats is the stats block of a legacy post object. The moderation
// flags are pointers so they serialize only when their row was present.
type PostStats struct {
	Hide       bool  `json:"hide"`
	Gray       bool  `json:"gray"`
	TotalVotes int   `json:"total_votes"`
	IsPinned   *bool `json:"is_pinned,omitempty"`
	IsMuted    *bool `json:"is_muted,omitempty"`
	IsValid    *bool `json:"is_valid,omitempty"`
}

// LegacyPost is a condenser-style post object. Field order follows the
// legacy wire layout and must not be rearranged.
type LegacyPost struct {
	PostID              int64           `json:"post_id"`
	Author              string          `json:"author"`
	Permlink            string          `json:"permlink"`
	Category            string          `json:"category"`
	Title               string          `json:"title"`
	Body                string          `json:"body"`
	JSONMetadata        string          `json:"json_metadata"`
	Created             string          `json:"created"`
	LastUpdate          string          `json:"last_update"`
	Depth               int             `json:"depth"`
	Children            int             `json:"children"`
	NetRshares          int64           `json:"net_rshares"`
	LastPayout          string          `json:"last_payout"`
	CashoutTime         string          `json:"cashout_time"`
	TotalPayoutValue    string          `json:"total_payout_value"`
	CuratorPayoutValue  string          `json:"curator_payout_value"`
	PendingPayoutValue  string          `json:"pending_payout_value"`
	Promoted            string          `json:"promoted"`
	Replies             []string        `json:"replies"`
	BodyLength          int             `json:"body_length"`
	ActiveVotes         []VoteEntry     `json:"active_votes"`
	AuthorReputation    int64           `json:"author_reputation"`
	Stats               PostStats       `json:"stats"`
	ParentAuthor        string          `json:"parent_author"`
	ParentPermlink      string          `json:"parent_permlink"`
	URL                 string          `json:"url"`
	RootTitle           string          `json:"root_title"`
	Beneficiaries       json.RawMessage `json:"beneficiaries"`
	MaxAcceptedPayout   string          `json:"max_accepted_payout"`
	PercentSteemDollars json.RawMessage `json:"percent_steem_dollars"`
	RebloggedBy         []string        `json:"reblogged_by,omitempty"`
}
