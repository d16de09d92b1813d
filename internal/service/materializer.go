package service

import (
	"context"
	"fmt"
	"time"

	"castlist-be/internal/codec"
	"castlist-be/internal/domain"
	"castlist-be/internal/repository"

	"go.uber.org/zap"
)

// SystemActorID marks writes performed without an authenticated actor.
const SystemActorID = "system"

// Materializer promotes a virtual castlist into a persisted real entity,
// rewriting the affected member-groups while leaving their legacy labels in
// place so label-keyed consumers keep working.
type Materializer struct {
	store  repository.CastlistStore
	engine *Engine
	logger *zap.Logger

	// now is injectable for tests; real ids embed the current time.
	now func() time.Time
}

// NewMaterializer creates a new materializer.
func NewMaterializer(store repository.CastlistStore, engine *Engine, logger *zap.Logger) *Materializer {
	return &Materializer{
		store:  store,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Materialize promotes the virtual castlist with the given id and returns the
// new real id. Idempotent on identity: an id that is already real, or that
// resolves to nothing, is returned unchanged with no writes performed.
//
// The entity write and the per-group reference writes are not atomic. A
// failed group patch is logged and skipped, never fatal: the real entity is
// already persisted, no data is lost, and the remaining linkage is repairable
// by the caller (the legacy label still resolves the same members). The
// millisecond timestamp in the generated id makes collisions a non-issue in
// practice; there is deliberately no collision check.
func (m *Materializer) Materialize(ctx context.Context, communityID, virtualID, actorID string) (string, error) {
	if !codec.IsVirtual(virtualID) {
		return virtualID, nil
	}

	virtual, err := m.engine.GetList(ctx, communityID, virtualID)
	if err != nil {
		return "", err
	}
	if virtual == nil || !virtual.IsVirtual {
		return virtualID, nil
	}

	actor := actorID
	if actor == "" {
		actor = SystemActorID
	}

	now := m.now()
	real := &domain.Castlist{
		ID:        fmt.Sprintf("castlist_%d_%s", now.UnixMilli(), actor),
		Name:      virtual.Name,
		Kind:      virtual.Kind,
		SeasonRef: virtual.SeasonRef,
		Icon:      virtual.Icon,
		Settings:  virtual.Settings,
		Provenance: domain.Provenance{
			CreatedAt:        now,
			CreatedBy:        actor,
			MaterializedFrom: virtualID,
			MaterializedAt:   &now,
		},
	}

	if err := m.store.SaveEntity(ctx, communityID, real); err != nil {
		return "", err
	}

	groups, err := m.store.LoadMemberGroups(ctx, communityID)
	if err != nil {
		// Entity is persisted but no groups were linked; recoverable by a
		// caller retry of the linkage, so surface the error.
		return "", err
	}

	// Attribution goes through the full membership rules, not the synthesized
	// member list: a group that already holds a reference to another real list but
	// still carries the matching legacy label is a member too, and must keep
	// resolving after its label stops mattering.
	linked := 0
	total := 0
	for _, groupID := range sortedGroupIDs(groups) {
		group := groups[groupID]
		if !GroupBelongs(group, virtualID) {
			continue
		}
		total++
		if group.HasMultiRef(real.ID) {
			linked++
			continue
		}

		refs := append(append([]string(nil), group.MultiListRefs...), real.ID)
		patch := &domain.MemberGroupPatch{MultiListRefs: &refs}
		if err := m.store.SaveMemberGroup(ctx, communityID, groupID, patch); err != nil {
			m.logger.Warn("castlist reference not written during materialization",
				zap.String("community_id", communityID),
				zap.String("group_id", groupID),
				zap.String("castlist_id", real.ID),
				zap.Error(err))
			continue
		}
		linked++
	}

	m.logger.Info("castlist materialized",
		zap.String("community_id", communityID),
		zap.String("virtual_id", virtualID),
		zap.String("castlist_id", real.ID),
		zap.String("actor_id", actor),
		zap.Int("groups_linked", linked),
		zap.Int("groups_total", total))

	return real.ID, nil
}
