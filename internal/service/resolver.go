package service

import (
	"context"
	"sort"

	"castlist-be/internal/codec"
	"castlist-be/internal/domain"
	"castlist-be/internal/repository"

	"go.uber.org/zap"
)

// Resolver determines which member-groups belong to a castlist, reconciling
// the three coexisting reference formats.
type Resolver struct {
	store  repository.CastlistStore
	logger *zap.Logger
}

// NewResolver creates a new membership resolver.
func NewResolver(store repository.CastlistStore, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// ResolveMembership returns the set of group ids belonging to the given
// castlist id. Every call loads fresh state; nothing is cached here.
func (r *Resolver) ResolveMembership(ctx context.Context, communityID, listID string) (map[string]struct{}, error) {
	groups, err := r.store.LoadMemberGroups(ctx, communityID)
	if err != nil {
		return nil, err
	}

	members := make(map[string]struct{})
	for groupID, group := range groups {
		if GroupBelongs(group, listID) {
			members[groupID] = struct{}{}
		}
	}

	r.logger.Debug("membership resolved",
		zap.String("community_id", communityID),
		zap.String("castlist_id", listID),
		zap.Int("member_count", len(members)))

	return members, nil
}

// GroupBelongs reports whether a member-group belongs to a castlist id. A
// group is a member if any rule holds, in this order:
//
//  1. MultiListRefs contains the id.
//  2. SingleListRef equals the id.
//  3. The id is virtual and decodes to the group's legacy label.
//  4. The id is "default" and the group carries no reference at all
//     (bare default membership).
//  5. The id is "default" and the legacy label is literally "default".
//  6. The id is "default" and MultiListRefs contains "default".
//
// Rules 4-6 exist because "default" is both a sentinel absence-marker and a
// literal legacy value; both spellings resolve to the same list. A group may
// match several rules at once; callers receive a set, so duplicates collapse.
func GroupBelongs(group *domain.MemberGroup, listID string) bool {
	if group.HasMultiRef(listID) {
		return true
	}
	if group.SingleListRef == listID {
		return true
	}
	if codec.IsVirtual(listID) && group.LegacyLabel != "" && codec.Decode(listID) == group.LegacyLabel {
		return true
	}
	if listID == domain.DefaultCastlistID {
		if !group.HasAnyRef() {
			return true
		}
		if group.LegacyLabel == domain.DefaultCastlistID {
			return true
		}
		if group.HasMultiRef(domain.DefaultCastlistID) {
			return true
		}
	}
	return false
}

// sortedIDs flattens a membership set into a deterministic slice.
func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
