package repository

import (
	"context"
	"errors"

	"castlist-be/internal/domain"
)

var (
	// ErrStoreUnavailable indicates the persistence layer could not be
	// reached or its data could not be parsed. Propagated unchanged; the
	// core never retries.
	ErrStoreUnavailable = errors.New("castlist store unavailable")

	// ErrStoreConflict indicates a write was rejected because the store
	// detected a concurrent modification. Propagated unchanged; no
	// read-modify-write retry loops in the core.
	ErrStoreConflict = errors.New("castlist store conflict")
)

// CastlistStore is the narrow persistence interface the resolution engine is
// built on, scoped to a community's castlist table and member-group table.
//
// Absence is a normal outcome, not a failure: loads on an unknown community
// return empty maps, never an error.
type CastlistStore interface {
	// LoadEntities returns all persisted (real) castlists for a community,
	// keyed by castlist id.
	LoadEntities(ctx context.Context, communityID string) (map[string]*domain.Castlist, error)

	// LoadMemberGroups returns all member-groups for a community, keyed by
	// group id.
	LoadMemberGroups(ctx context.Context, communityID string) (map[string]*domain.MemberGroup, error)

	// SaveEntity upserts a real castlist. Virtual entities must never reach
	// the store.
	SaveEntity(ctx context.Context, communityID string, list *domain.Castlist) error

	// SaveMemberGroup applies a partial update to one member-group, creating
	// the record when it does not exist yet.
	SaveMemberGroup(ctx context.Context, communityID, groupID string, patch *domain.MemberGroupPatch) error
}
