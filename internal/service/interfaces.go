package service

import (
	"context"

	"castlist-be/internal/domain"
)

// CastlistService is the surface the HTTP layer consumes.
type CastlistService interface {
	// GetAllLists returns the merged real+virtual castlist view in stable
	// display order.
	GetAllLists(ctx context.Context, communityID string) ([]*domain.Castlist, error)

	// GetList returns one castlist from the merged view, nil when absent.
	GetList(ctx context.Context, communityID, listID string) (*domain.Castlist, error)

	// ResolveMembership returns the sorted group ids belonging to a castlist.
	ResolveMembership(ctx context.Context, communityID, listID string) ([]string, error)

	// Materialize promotes a virtual castlist into a real entity and returns
	// the real id. Ids that are already real, or resolve to nothing, come
	// back unchanged.
	Materialize(ctx context.Context, communityID, virtualID, actorID string) (string, error)

	// MigrationStats summarizes legacy-to-real migration progress.
	MigrationStats(ctx context.Context, communityID string) (*domain.MigrationStats, error)
}
