package repository

import (
	"context"
	"sync"

	"castlist-be/internal/domain"
)

// MemoryStore is an in-memory CastlistStore used by tests and local runs.
// All loads and saves deep-copy so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]map[string]*domain.Castlist
	groups   map[string]map[string]*domain.MemberGroup

	// Error injection, nil in normal operation.
	LoadEntitiesErr    error
	LoadGroupsErr      error
	SaveEntityErr      error
	SaveMemberGroupErr func(groupID string) error

	// Write counters, for asserting idempotency.
	SaveEntityCalls      int
	SaveMemberGroupCalls int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities: make(map[string]map[string]*domain.Castlist),
		groups:   make(map[string]map[string]*domain.MemberGroup),
	}
}

// SeedEntity inserts a real castlist directly, bypassing error injection.
func (s *MemoryStore) SeedEntity(communityID string, list *domain.Castlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entities[communityID] == nil {
		s.entities[communityID] = make(map[string]*domain.Castlist)
	}
	s.entities[communityID][list.ID] = list.Clone()
}

// SeedGroup inserts a member-group directly, bypassing error injection.
func (s *MemoryStore) SeedGroup(communityID string, group *domain.MemberGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groups[communityID] == nil {
		s.groups[communityID] = make(map[string]*domain.MemberGroup)
	}
	s.groups[communityID][group.GroupID] = group.Clone()
}

// Group returns a copy of one stored member-group, nil when absent.
func (s *MemoryStore) Group(communityID, groupID string) *domain.MemberGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups[communityID][groupID].Clone()
}

// Entity returns a copy of one stored castlist, nil when absent.
func (s *MemoryStore) Entity(communityID, listID string) *domain.Castlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[communityID][listID].Clone()
}

func (s *MemoryStore) LoadEntities(ctx context.Context, communityID string) (map[string]*domain.Castlist, error) {
	if s.LoadEntitiesErr != nil {
		return nil, s.LoadEntitiesErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.Castlist, len(s.entities[communityID]))
	for id, list := range s.entities[communityID] {
		out[id] = list.Clone()
	}
	return out, nil
}

func (s *MemoryStore) LoadMemberGroups(ctx context.Context, communityID string) (map[string]*domain.MemberGroup, error) {
	if s.LoadGroupsErr != nil {
		return nil, s.LoadGroupsErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.MemberGroup, len(s.groups[communityID]))
	for id, group := range s.groups[communityID] {
		out[id] = group.Clone()
	}
	return out, nil
}

func (s *MemoryStore) SaveEntity(ctx context.Context, communityID string, list *domain.Castlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SaveEntityCalls++
	if s.SaveEntityErr != nil {
		return s.SaveEntityErr
	}

	if s.entities[communityID] == nil {
		s.entities[communityID] = make(map[string]*domain.Castlist)
	}
	s.entities[communityID][list.ID] = list.Clone()
	return nil
}

func (s *MemoryStore) SaveMemberGroup(ctx context.Context, communityID, groupID string, patch *domain.MemberGroupPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SaveMemberGroupCalls++
	if s.SaveMemberGroupErr != nil {
		if err := s.SaveMemberGroupErr(groupID); err != nil {
			return err
		}
	}

	if s.groups[communityID] == nil {
		s.groups[communityID] = make(map[string]*domain.MemberGroup)
	}
	group := s.groups[communityID][groupID]
	if group == nil {
		group = &domain.MemberGroup{GroupID: groupID}
		s.groups[communityID][groupID] = group
	}

	if patch.LegacyLabel != nil {
		group.LegacyLabel = *patch.LegacyLabel
	}
	if patch.SingleListRef != nil {
		group.SingleListRef = *patch.SingleListRef
	}
	if patch.MultiListRefs != nil {
		group.MultiListRefs = append([]string(nil), (*patch.MultiListRefs)...)
	}
	if patch.TypeHint != nil {
		group.TypeHint = *patch.TypeHint
	}
	return nil
}
