// Package condenser builds legacy condenser-style wire objects out of hive
// storage rows. Serializing its output objects with encoding/json (HTML
// escaping off) reproduces the legacy schema byte for byte, which is the
// compatibility contract with older API clients.
package condenser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// neverDate is the sentinel older clients expect in place of a null
// timestamp.
const neverDate = "1969-12-31T23:59:59"

// legacyPayload is the subset of a cache row's raw_json snapshot consumed
// when building a post. Beneficiaries and percent_steem_dollars are kept
// raw and copied onto the wire verbatim.
type legacyPayload struct {
	ParentAuthor        string          `json:"parent_author"`
	ParentPermlink      string          `json:"parent_permlink"`
	URL                 string          `json:"url"`
	RootTitle           string          `json:"root_title"`
	Beneficiaries       json.RawMessage `json:"beneficiaries"`
	MaxAcceptedPayout   string          `json:"max_accepted_payout"`
	PercentSteemDollars json.RawMessage `json:"percent_steem_dollars"`
	CuratorPayoutValue  string          `json:"curator_payout_value"`
}

// accountProfile mirrors the legacy json_metadata profile layout.
type accountProfile struct {
	Name         string `json:"name"`
	About        string `json:"about"`
	Website      string `json:"website"`
	Location     string `json:"location"`
	CoverImage   string `json:"cover_image"`
	ProfileImage string `json:"profile_image"`
}

type accountMetadata struct {
	Profile accountProfile `json:"profile"`
}

// accountObject converts an internal account row into the legacy-steemd
// shape.
func (l *Loader) accountObject(row AccountRow) *LegacyAccount {
	return &LegacyAccount{
		ID:         row.ID,
		Name:       row.Name,
		Created:    jsonDate(row.CreatedAt),
		PostCount:  row.PostCount,
		Reputation: l.rep(row.Reputation),
		Stats: AccountStats{
			// legacy vests-to-SP conversion factor
			SP:   int64(float64(row.VoteWeight) * 0.0005037),
			Rank: row.Rank,
		},
		JSONMetadata: encodeProfileMetadata(row),
	}
}

// postObject converts a post cache row into the legacy-steemd shape.
// authorRep is the author's raw reputation, resolved by the caller in one
// batched lookup. truncateBody > 0 caps the body at that many characters;
// body_length always reflects the untruncated body.
func (l *Loader) postObject(row PostCacheRow, authorRep float64, truncateBody int) (*LegacyPost, error) {
	paid := row.IsPaidout

	// condenser#3424 mitigation
	category := row.Category
	if category == "" {
		category = "undefined"
	}

	body := row.Body
	if truncateBody > 0 {
		body = truncateRunes(body, truncateBody)
	}

	post := &LegacyPost{
		PostID:           row.PostID,
		Author:           row.Author,
		Permlink:         row.Permlink,
		Category:         category,
		Title:            row.Title,
		Body:             body,
		JSONMetadata:     row.JSON,
		Created:          jsonDate(row.CreatedAt),
		LastUpdate:       jsonDate(row.UpdatedAt),
		Depth:            row.Depth,
		Children:         row.Children,
		NetRshares:       row.Rshares,
		Promoted:         fmt.Sprintf("%.3f SBD", row.Promoted),
		Replies:          []string{},
		BodyLength:       utf8.RuneCountInString(row.Body),
		ActiveVotes:      l.hydrateActiveVotes(row.Votes),
		AuthorReputation: l.rep(authorRep),
		Stats: PostStats{
			Hide:       row.IsHidden,
			Gray:       row.IsGrayed,
			TotalVotes: row.TotalVotes,
		},
	}

	payout := decimal.NewFromFloat(row.Payout)
	if paid {
		post.LastPayout = jsonDate(row.PayoutAt)
		post.CashoutTime = jsonDate(time.Time{})
		post.TotalPayoutValue = amountString(payout, "SBD")
		post.PendingPayoutValue = amountString(decimal.Zero, "SBD")
	} else {
		post.LastPayout = jsonDate(time.Time{})
		post.CashoutTime = jsonDate(row.PayoutAt)
		post.TotalPayoutValue = amountString(decimal.Zero, "SBD")
		post.PendingPayoutValue = amountString(payout, "SBD")
	}
	post.CuratorPayoutValue = amountString(decimal.Zero, "SBD")

	// import fields that only exist in the legacy snapshot
	if len(row.RawJSON) <= 32 {
		return nil, fmt.Errorf("postObject: post %d: %w", row.PostID, ErrMalformedPayload)
	}
	var payload legacyPayload
	if err := json.Unmarshal([]byte(row.RawJSON), &payload); err != nil {
		return nil, fmt.Errorf("postObject: post %d: %w: %v", row.PostID, ErrMalformedPayload, err)
	}

	if row.Depth > 0 {
		post.ParentAuthor = payload.ParentAuthor
		post.ParentPermlink = payload.ParentPermlink
	} else {
		post.ParentAuthor = ""
		post.ParentPermlink = category
	}

	post.URL = payload.URL
	post.RootTitle = payload.RootTitle
	post.Beneficiaries = payload.Beneficiaries
	post.MaxAcceptedPayout = payload.MaxAcceptedPayout
	post.PercentSteemDollars = payload.PercentSteemDollars

	// the cache row only tracks the combined payout; the curator's cut has
	// to be split back out of the legacy snapshot
	if paid {
		curator, err := l.amount(payload.CuratorPayoutValue)
		if err != nil {
			return nil, fmt.Errorf("postObject: post %d: curator payout: %w", row.PostID, err)
		}
		post.CuratorPayoutValue = amountString(curator, "SBD")
		post.TotalPayoutValue = amountString(payout.Sub(curator), "SBD")
	}

	return post, nil
}

// hydrateActiveVotes decodes the minimal newline/comma CSV held in a cache
// row into steemd-style vote objects. Line arity is an upstream integrity
// guarantee, not validated here.
func (l *Loader) hydrateActiveVotes(voteCSV string) []VoteEntry {
	votes := []VoteEntry{}
	if voteCSV == "" {
		return votes
	}
	for _, line := range strings.Split(voteCSV, "\n") {
		fields := strings.Split(line, ",")
		rep, _ := strconv.ParseFloat(fields[3], 64)
		votes = append(votes, VoteEntry{
			Voter:      fields[0],
			Rshares:    fields[1],
			Percent:    fields[2],
			Reputation: l.rep(rep),
		})
	}
	return votes
}

// amountString renders a steem-style amount string with exactly three
// decimal places. Only the SBD asset is handled; any other tag means a
// caller bug.
func amountString(v decimal.Decimal, asset string) string {
	if asset != "SBD" {
		panic(fmt.Sprintf("unhandled asset %s", asset))
	}
	return v.StringFixed(3) + " SBD"
}

// jsonDate renders a storage timestamp in the legacy wire form. The zero
// time maps to the "never" sentinel.
func jsonDate(t time.Time) string {
	if t.IsZero() {
		return neverDate
	}
	return t.Format("2006-01-02T15:04:05")
}

// encodeProfileMetadata renders an account's profile fields as the
// json_metadata string. HTML escaping is off so URLs and markup survive
// byte-identical.
func encodeProfileMetadata(row AccountRow) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	meta := accountMetadata{Profile: accountProfile{
		Name:         row.DisplayName,
		About:        row.About,
		Website:      row.Website,
		Location:     row.Location,
		CoverImage:   row.CoverImage,
		ProfileImage: row.ProfileImage,
	}}
	if err := enc.Encode(meta); err != nil {
		// a struct of plain strings cannot fail to encode
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
