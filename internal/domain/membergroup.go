package domain

// MemberGroup is an external record (a platform role/tribe) that may belong
// to one or more castlists. Three generations of list addressing coexist on
// the same record and any combination may be present at once:
//
//   - LegacyLabel: free-text list name, oldest scheme
//   - SingleListRef: single castlist id
//   - MultiListRefs: ordered set of castlist ids, current scheme
//
// Transitional states are expected and handled, never rejected.
type MemberGroup struct {
	GroupID       string   `json:"group_id"`
	LegacyLabel   string   `json:"legacy_label,omitempty"`
	SingleListRef string   `json:"single_list_ref,omitempty"`
	MultiListRefs []string `json:"multi_list_refs,omitempty"`

	// TypeHint is an optional legacy classification carried by some groups
	// ("alumni", "winners", ...). Used to derive the kind of synthesized lists.
	TypeHint string `json:"type_hint,omitempty"`
}

// HasModernRef reports whether the group has moved past legacy addressing.
func (g *MemberGroup) HasModernRef() bool {
	return g.SingleListRef != "" || len(g.MultiListRefs) > 0
}

// HasAnyRef reports whether the group carries any list reference at all.
// Groups with none belong to the default list (bare default membership).
func (g *MemberGroup) HasAnyRef() bool {
	return g.LegacyLabel != "" || g.HasModernRef()
}

// HasMultiRef reports whether MultiListRefs contains the given castlist id.
func (g *MemberGroup) HasMultiRef(listID string) bool {
	for _, ref := range g.MultiListRefs {
		if ref == listID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the group.
func (g *MemberGroup) Clone() *MemberGroup {
	if g == nil {
		return nil
	}
	out := *g
	if g.MultiListRefs != nil {
		out.MultiListRefs = append([]string(nil), g.MultiListRefs...)
	}
	return &out
}

// MemberGroupPatch is a partial update to a member-group. Nil fields are left
// untouched by the store; non-nil fields overwrite.
type MemberGroupPatch struct {
	LegacyLabel   *string   `json:"legacy_label,omitempty"`
	SingleListRef *string   `json:"single_list_ref,omitempty"`
	MultiListRefs *[]string `json:"multi_list_refs,omitempty"`
	TypeHint      *string   `json:"type_hint,omitempty"`
}
