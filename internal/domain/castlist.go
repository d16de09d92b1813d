package domain

import "time"

// DefaultCastlistID is the sentinel id of the always-resolvable default list.
// It is simultaneously a real entity id (when persisted) and a legacy label
// value, so resolution treats both spellings as the same list.
const DefaultCastlistID = "default"

// DefaultCastlistName is the display name of a synthesized default list.
const DefaultCastlistName = "Active List"

// CastlistKind classifies a castlist. Kinds are a closed set; new values
// require updating icon and settings defaults exhaustively.
type CastlistKind string

const (
	KindCustom  CastlistKind = "custom"
	KindAlumni  CastlistKind = "alumni"
	KindSystem  CastlistKind = "system"
	KindWinners CastlistKind = "winners"
	KindLegacy  CastlistKind = "legacy-derived"
)

// SortStrategy controls how members are ordered when a castlist is displayed.
type SortStrategy string

const (
	SortAlphabetical SortStrategy = "alphabetical"
	SortRankBased    SortStrategy = "rank-based"
	SortCustom       SortStrategy = "custom"
)

// Visibility controls who can view a castlist.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// CastlistSettings holds per-list display configuration.
type CastlistSettings struct {
	SortStrategy SortStrategy `json:"sort_strategy" db:"sort_strategy"`
	ShowRankings bool         `json:"show_rankings" db:"show_rankings"`
	MaxDisplay   int          `json:"max_display" db:"max_display"`
	Visibility   Visibility   `json:"visibility" db:"visibility"`
}

// DefaultSettings returns the settings applied to synthesized lists and to
// new lists created without explicit configuration.
func DefaultSettings() CastlistSettings {
	return CastlistSettings{
		SortStrategy: SortAlphabetical,
		ShowRankings: false,
		MaxDisplay:   25,
		Visibility:   VisibilityPublic,
	}
}

// Provenance records where a castlist came from. MaterializedFrom carries the
// virtual id a real entity was promoted from, empty for lists created directly.
type Provenance struct {
	CreatedAt        time.Time  `json:"created_at"`
	CreatedBy        string     `json:"created_by"`
	MaterializedFrom string     `json:"materialized_from,omitempty"`
	MaterializedAt   *time.Time `json:"materialized_at,omitempty"`
}

// Castlist is a named roster view, either persisted (real) or synthesized at
// read time from legacy labels (virtual).
//
// IsVirtual is derived, never stored. MemberGroupIDs is populated only on
// virtual entities, computed during a single resolution pass; real entities
// resolve membership through the resolver instead.
type Castlist struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Kind       CastlistKind     `json:"kind"`
	SeasonRef  string           `json:"season_ref,omitempty"`
	Icon       string           `json:"icon,omitempty"`
	Settings   CastlistSettings `json:"settings"`
	Provenance Provenance       `json:"provenance"`

	IsVirtual      bool     `json:"is_virtual"`
	MemberGroupIDs []string `json:"member_group_ids,omitempty"`
}

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// results without corrupting shared state.
func (c *Castlist) Clone() *Castlist {
	if c == nil {
		return nil
	}
	out := *c
	if c.Provenance.MaterializedAt != nil {
		at := *c.Provenance.MaterializedAt
		out.Provenance.MaterializedAt = &at
	}
	if c.MemberGroupIDs != nil {
		out.MemberGroupIDs = append([]string(nil), c.MemberGroupIDs...)
	}
	return &out
}
