package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"castlist-be/internal/codec"
	"castlist-be/internal/domain"
	"castlist-be/internal/repository"

	"go.uber.org/zap"
)

// iconRule maps a label keyword to a presentation icon. Rules are checked in
// order, first match wins.
type iconRule struct {
	keyword string
	icon    string
}

var iconRules = []iconRule{
	{"winner", "🏆"},
	{"alumni", "🎓"},
	{"alum", "🎓"},
	{"host", "🎙️"},
	{"jury", "⚖️"},
	{"juror", "⚖️"},
	{"production", "🎬"},
	{"staff", "🛠️"},
}

// genericIcon is the fallback when no keyword rule matches.
const genericIcon = "📋"

// defaultIcon marks the synthesized default list.
const defaultIcon = "✅"

// Engine presents legacy label-based castlists as first-class entities
// without a migration step, merging them with real entities under
// real-wins-by-name precedence.
//
// The engine is stateless between calls: every operation loads fresh state
// from the store, so there is nothing to invalidate. Optional caching lives
// in CacheService, injected above this layer.
type Engine struct {
	store    repository.CastlistStore
	resolver *Resolver
	logger   *zap.Logger
}

// NewEngine creates a new virtualization engine.
func NewEngine(store repository.CastlistStore, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		resolver: NewResolver(store, logger),
		logger:   logger,
	}
}

// GetAllLists returns the merged view of real and virtual castlists for a
// community. Order is stable within a call: real entities first (by creation
// time, then id), the default list next when it is synthesized, virtual
// entities last in label order. Order carries no semantics beyond stable
// display.
func (e *Engine) GetAllLists(ctx context.Context, communityID string) ([]*domain.Castlist, error) {
	entities, err := e.store.LoadEntities(ctx, communityID)
	if err != nil {
		return nil, err
	}
	groups, err := e.store.LoadMemberGroups(ctx, communityID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Castlist, 0, len(entities)+1)
	realNames := make(map[string]struct{}, len(entities))
	for _, list := range sortedEntities(entities) {
		list.IsVirtual = false
		realNames[list.Name] = struct{}{}
		out = append(out, list)
	}

	if _, ok := entities[domain.DefaultCastlistID]; !ok {
		out = append(out, e.synthesizeDefault(groups))
	}

	for _, virtual := range e.synthesize(groups) {
		if _, taken := realNames[virtual.Name]; taken {
			// Preserved source behavior: suppression is by display name, not
			// id, so two genuinely distinct lists sharing a name collapse to
			// the real one. Logged so the collision is at least visible.
			e.logger.Warn("virtual castlist suppressed by real entity with same name",
				zap.String("community_id", communityID),
				zap.String("castlist_name", virtual.Name),
				zap.String("virtual_id", virtual.ID))
			continue
		}
		out = append(out, virtual)
	}

	return out, nil
}

// GetList returns one castlist from the merged view, nil when absent.
func (e *Engine) GetList(ctx context.Context, communityID, listID string) (*domain.Castlist, error) {
	lists, err := e.GetAllLists(ctx, communityID)
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

// ResolveMembership exposes the resolver through the engine.
func (e *Engine) ResolveMembership(ctx context.Context, communityID, listID string) (map[string]struct{}, error) {
	return e.resolver.ResolveMembership(ctx, communityID, listID)
}

// MigrationStats reports how far a community has migrated to real entities.
func (e *Engine) MigrationStats(ctx context.Context, communityID string) (*domain.MigrationStats, error) {
	lists, err := e.GetAllLists(ctx, communityID)
	if err != nil {
		return nil, err
	}

	stats := &domain.MigrationStats{Total: len(lists)}
	for _, list := range lists {
		if list.IsVirtual {
			stats.Virtual++
			continue
		}
		stats.Real++
		if list.Provenance.MaterializedFrom != "" {
			stats.MigratedCount++
		}
	}

	if stats.Total == 0 {
		stats.MigrationProgressPercent = 100
	} else {
		stats.MigrationProgressPercent = int(math.Round(100 * float64(stats.Real) / float64(stats.Total)))
	}

	return stats, nil
}

// synthesizeDefault builds the virtual default list with the membership of
// every group matching the default rules. Called only when no real default is
// persisted; an empty community yields an empty-membership virtual default.
func (e *Engine) synthesizeDefault(groups map[string]*domain.MemberGroup) *domain.Castlist {
	def := &domain.Castlist{
		ID:        domain.DefaultCastlistID,
		Name:      domain.DefaultCastlistName,
		Kind:      domain.KindSystem,
		Icon:      defaultIcon,
		Settings:  domain.DefaultSettings(),
		IsVirtual: true,
		// CreatedAt stays zero: the default list has always existed.
	}

	for _, groupID := range sortedGroupIDs(groups) {
		if GroupBelongs(groups[groupID], domain.DefaultCastlistID) {
			def.MemberGroupIDs = append(def.MemberGroupIDs, groupID)
		}
	}

	return def
}

// synthesize builds virtual castlists from groups still on legacy addressing.
// Groups carrying any modern reference are skipped, as are empty labels and
// the "default" label (owned by synthesizeDefault). Groups are scanned in
// sorted id order and lists emitted in label order, so output is deterministic.
func (e *Engine) synthesize(groups map[string]*domain.MemberGroup) []*domain.Castlist {
	byLabel := make(map[string]*domain.Castlist)
	var order []string

	for _, groupID := range sortedGroupIDs(groups) {
		group := groups[groupID]
		if group.HasModernRef() {
			continue
		}
		label := group.LegacyLabel
		if label == "" || label == domain.DefaultCastlistID {
			continue
		}

		virtual, ok := byLabel[label]
		if !ok {
			virtual = &domain.Castlist{
				ID:        codec.Encode(label),
				Name:      label,
				Kind:      kindFromHint(group.TypeHint),
				Icon:      iconForLabel(label),
				Settings:  domain.DefaultSettings(),
				IsVirtual: true,
			}
			byLabel[label] = virtual
			order = append(order, label)
		}
		virtual.MemberGroupIDs = append(virtual.MemberGroupIDs, groupID)
	}

	sort.Strings(order)
	out := make([]*domain.Castlist, 0, len(order))
	for _, label := range order {
		out = append(out, byLabel[label])
	}
	return out
}

// kindFromHint derives a castlist kind from a group's legacy type hint.
func kindFromHint(hint string) domain.CastlistKind {
	switch strings.ToLower(hint) {
	case "alumni":
		return domain.KindAlumni
	case "winner", "winners":
		return domain.KindWinners
	case "system":
		return domain.KindSystem
	case "custom":
		return domain.KindCustom
	default:
		return domain.KindLegacy
	}
}

// iconForLabel matches the label against the ordered keyword rules.
func iconForLabel(label string) string {
	lower := strings.ToLower(label)
	for _, rule := range iconRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.icon
		}
	}
	return genericIcon
}

// sortedEntities orders real castlists by creation time, then id, so the
// merged view is stable regardless of map iteration order.
func sortedEntities(entities map[string]*domain.Castlist) []*domain.Castlist {
	out := make([]*domain.Castlist, 0, len(entities))
	for _, list := range entities {
		out = append(out, list)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Provenance.CreatedAt.Equal(out[j].Provenance.CreatedAt) {
			return out[i].Provenance.CreatedAt.Before(out[j].Provenance.CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedGroupIDs(groups map[string]*domain.MemberGroup) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
