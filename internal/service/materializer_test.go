package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"castlist-be/internal/codec"
	"castlist-be/internal/domain"
	"castlist-be/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMaterializer(store *repository.MemoryStore, at time.Time) *Materializer {
	m := NewMaterializer(store, newTestEngine(store), zap.NewNop())
	m.now = func() time.Time { return at }
	return m
}

func TestMaterialize_PromotesVirtualList(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-a", LegacyLabel: "production"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-b", LegacyLabel: "production", MultiListRefs: []string{"castlist_other"}})

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestMaterializer(store, at)

	virtualID := codec.Encode("production")
	realID, err := m.Materialize(context.Background(), "c1", virtualID, "user-42")
	require.NoError(t, err)

	wantID := fmt.Sprintf("castlist_%d_user-42", at.UnixMilli())
	assert.Equal(t, wantID, realID)

	entity := store.Entity("c1", realID)
	require.NotNil(t, entity)
	assert.Equal(t, "production", entity.Name)
	assert.Equal(t, domain.KindLegacy, entity.Kind)
	assert.Equal(t, "🎬", entity.Icon)
	assert.False(t, entity.IsVirtual)
	assert.Equal(t, virtualID, entity.Provenance.MaterializedFrom)
	require.NotNil(t, entity.Provenance.MaterializedAt)
	assert.Equal(t, at, *entity.Provenance.MaterializedAt)
	assert.Equal(t, at, entity.Provenance.CreatedAt)
	assert.Equal(t, "user-42", entity.Provenance.CreatedBy)

	// Both groups now reference the real list and keep their legacy label.
	for _, groupID := range []string{"g-a", "g-b"} {
		group := store.Group("c1", groupID)
		require.NotNil(t, group)
		assert.Contains(t, group.MultiListRefs, realID)
		assert.Equal(t, "production", group.LegacyLabel)
	}
	assert.Equal(t, []string{"castlist_other", realID}, store.Group("c1", "g-b").MultiListRefs)
}

func TestMaterialize_LinksGroupsAlreadyHoldingOtherRefs(t *testing.T) {
	// g-mid is mid-migration: it references another real list but its legacy
	// label still resolves into this one, so promotion must link it too.
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-legacy", LegacyLabel: "winners"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-mid", LegacyLabel: "winners", MultiListRefs: []string{"castlist_9_u"}})

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	m := newTestMaterializer(store, at)
	engine := newTestEngine(store)

	virtualID := codec.Encode("winners")
	before, err := engine.ResolveMembership(context.Background(), "c1", virtualID)
	require.NoError(t, err)
	require.Contains(t, before, "g-mid")

	realID, err := m.Materialize(context.Background(), "c1", virtualID, "user-42")
	require.NoError(t, err)

	assert.Equal(t, []string{"castlist_9_u", realID}, store.Group("c1", "g-mid").MultiListRefs)

	after, err := engine.ResolveMembership(context.Background(), "c1", realID)
	require.NoError(t, err)
	assert.Contains(t, after, "g-mid")
	assert.Contains(t, after, "g-legacy")
}

func TestMaterialize_MembershipSurvivesPromotion(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-a", LegacyLabel: "alumni"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-b", LegacyLabel: "alumni"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-other", LegacyLabel: "winners"})

	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := newTestMaterializer(store, at)
	engine := newTestEngine(store)

	virtualID := codec.Encode("alumni")
	before, err := engine.ResolveMembership(context.Background(), "c1", virtualID)
	require.NoError(t, err)

	realID, err := m.Materialize(context.Background(), "c1", virtualID, "user-1")
	require.NoError(t, err)

	after, err := engine.ResolveMembership(context.Background(), "c1", realID)
	require.NoError(t, err)
	for groupID := range before {
		assert.Contains(t, after, groupID)
	}
}

func TestMaterialize_IdempotentOnRealID(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedEntity("c1", realList("castlist_1_user", "Production", time.Now()))

	m := newTestMaterializer(store, time.Now())
	id, err := m.Materialize(context.Background(), "c1", "castlist_1_user", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "castlist_1_user", id)
	assert.Zero(t, store.SaveEntityCalls)
	assert.Zero(t, store.SaveMemberGroupCalls)
}

func TestMaterialize_UnknownVirtualIDReturnsInput(t *testing.T) {
	store := repository.NewMemoryStore()
	m := newTestMaterializer(store, time.Now())

	virtualID := codec.Encode("never-seen")
	id, err := m.Materialize(context.Background(), "c1", virtualID, "user-1")
	require.NoError(t, err)

	assert.Equal(t, virtualID, id)
	assert.Zero(t, store.SaveEntityCalls)
	assert.Zero(t, store.SaveMemberGroupCalls)
}

func TestMaterialize_BlankActorFallsBackToSystem(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "jury"})

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newTestMaterializer(store, at)

	realID, err := m.Materialize(context.Background(), "c1", codec.Encode("jury"), "")
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("castlist_%d_%s", at.UnixMilli(), SystemActorID), realID)
	assert.Equal(t, SystemActorID, store.Entity("c1", realID).Provenance.CreatedBy)
}

func TestMaterialize_EntityWriteFailureIsFatal(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g1", LegacyLabel: "staff"})
	store.SaveEntityErr = repository.ErrStoreUnavailable

	m := newTestMaterializer(store, time.Now())
	_, err := m.Materialize(context.Background(), "c1", codec.Encode("staff"), "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Zero(t, store.SaveMemberGroupCalls)
}

func TestMaterialize_GroupPatchFailureIsSkipped(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-bad", LegacyLabel: "hosts"})
	store.SeedGroup("c1", &domain.MemberGroup{GroupID: "g-good", LegacyLabel: "hosts"})
	store.SaveMemberGroupErr = func(groupID string) error {
		if groupID == "g-bad" {
			return errors.New("write rejected")
		}
		return nil
	}

	m := newTestMaterializer(store, time.Now())
	realID, err := m.Materialize(context.Background(), "c1", codec.Encode("hosts"), "user-1")
	require.NoError(t, err)

	// The failed group keeps its old refs; the healthy one is linked.
	assert.Empty(t, store.Group("c1", "g-bad").MultiListRefs)
	assert.Contains(t, store.Group("c1", "g-good").MultiListRefs, realID)
	assert.NotNil(t, store.Entity("c1", realID))
}
