package service

import (
	"context"

	"castlist-be/internal/domain"
	"castlist-be/internal/repository"

	"go.uber.org/zap"
)

// castlistService composes the engine, materializer and optional cache into
// the CastlistService surface.
type castlistService struct {
	engine       *Engine
	materializer *Materializer
	cache        *CacheService
	logger       *zap.Logger
}

// NewCastlistService wires a CastlistService over the given store. cache may
// be nil; every read then goes straight to the store.
func NewCastlistService(store repository.CastlistStore, cache *CacheService, logger *zap.Logger) CastlistService {
	engine := NewEngine(store, logger)
	return &castlistService{
		engine:       engine,
		materializer: NewMaterializer(store, engine, logger),
		cache:        cache,
		logger:       logger,
	}
}

func (s *castlistService) GetAllLists(ctx context.Context, communityID string) ([]*domain.Castlist, error) {
	if s.cache == nil {
		return s.engine.GetAllLists(ctx, communityID)
	}
	return s.cache.GetAllListsWithCache(ctx, communityID, func(ctx context.Context) ([]*domain.Castlist, error) {
		return s.engine.GetAllLists(ctx, communityID)
	})
}

func (s *castlistService) GetList(ctx context.Context, communityID, listID string) (*domain.Castlist, error) {
	lists, err := s.GetAllLists(ctx, communityID)
	if err != nil {
		return nil, err
	}
	for _, list := range lists {
		if list.ID == listID {
			return list, nil
		}
	}
	return nil, nil
}

func (s *castlistService) ResolveMembership(ctx context.Context, communityID, listID string) ([]string, error) {
	members, err := s.engine.ResolveMembership(ctx, communityID, listID)
	if err != nil {
		return nil, err
	}
	return sortedIDs(members), nil
}

func (s *castlistService) Materialize(ctx context.Context, communityID, virtualID, actorID string) (string, error) {
	realID, err := s.materializer.Materialize(ctx, communityID, virtualID, actorID)
	if err != nil {
		return "", err
	}
	if s.cache != nil && realID != virtualID {
		s.cache.InvalidateCommunity(communityID)
	}
	return realID, nil
}

func (s *castlistService) MigrationStats(ctx context.Context, communityID string) (*domain.MigrationStats, error) {
	return s.engine.MigrationStats(ctx, communityID)
}
