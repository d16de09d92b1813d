package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"castlist-be/internal/domain"
	"castlist-be/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgresStore persists castlists and member-groups in PostgreSQL.
type postgresStore struct {
	db *database.PostgresDB
}

// NewPostgresStore creates a CastlistStore backed by the given pool.
func NewPostgresStore(db *database.PostgresDB) CastlistStore {
	return &postgresStore{db: db}
}

// LoadEntities returns all persisted castlists for a community
func (s *postgresStore) LoadEntities(ctx context.Context, communityID string) (map[string]*domain.Castlist, error) {
	query := `
		SELECT id, name, kind, season_ref, icon, settings, created_at, created_by, materialized_from, materialized_at
		FROM castlists
		WHERE community_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.Pool.Query(ctx, query, communityID)
	if err != nil {
		return nil, classifyStoreError("failed to load castlists", err)
	}
	defer rows.Close()

	entities := make(map[string]*domain.Castlist)
	for rows.Next() {
		var (
			list             domain.Castlist
			seasonRef        *string
			icon             *string
			settingsJSON     []byte
			materializedFrom *string
			materializedAt   *time.Time
		)

		err := rows.Scan(
			&list.ID,
			&list.Name,
			&list.Kind,
			&seasonRef,
			&icon,
			&settingsJSON,
			&list.Provenance.CreatedAt,
			&list.Provenance.CreatedBy,
			&materializedFrom,
			&materializedAt,
		)
		if err != nil {
			return nil, classifyStoreError("failed to scan castlist row", err)
		}

		if seasonRef != nil {
			list.SeasonRef = *seasonRef
		}
		if icon != nil {
			list.Icon = *icon
		}
		if materializedFrom != nil {
			list.Provenance.MaterializedFrom = *materializedFrom
		}
		list.Provenance.MaterializedAt = materializedAt

		list.Settings = domain.DefaultSettings()
		if len(settingsJSON) > 0 {
			if err := json.Unmarshal(settingsJSON, &list.Settings); err != nil {
				return nil, classifyStoreError("failed to decode castlist settings", err)
			}
		}

		entities[list.ID] = &list
	}

	if err := rows.Err(); err != nil {
		return nil, classifyStoreError("error reading castlist rows", err)
	}

	return entities, nil
}

// LoadMemberGroups returns all member-groups for a community
func (s *postgresStore) LoadMemberGroups(ctx context.Context, communityID string) (map[string]*domain.MemberGroup, error) {
	query := `
		SELECT group_id, legacy_label, single_list_ref, multi_list_refs, type_hint
		FROM member_groups
		WHERE community_id = $1
		ORDER BY group_id
	`

	rows, err := s.db.Pool.Query(ctx, query, communityID)
	if err != nil {
		return nil, classifyStoreError("failed to load member groups", err)
	}
	defer rows.Close()

	groups := make(map[string]*domain.MemberGroup)
	for rows.Next() {
		var (
			group         domain.MemberGroup
			legacyLabel   *string
			singleListRef *string
			multiRefsJSON []byte
			typeHint      *string
		)

		if err := rows.Scan(&group.GroupID, &legacyLabel, &singleListRef, &multiRefsJSON, &typeHint); err != nil {
			return nil, classifyStoreError("failed to scan member group row", err)
		}

		if legacyLabel != nil {
			group.LegacyLabel = *legacyLabel
		}
		if singleListRef != nil {
			group.SingleListRef = *singleListRef
		}
		if typeHint != nil {
			group.TypeHint = *typeHint
		}
		if len(multiRefsJSON) > 0 {
			if err := json.Unmarshal(multiRefsJSON, &group.MultiListRefs); err != nil {
				return nil, classifyStoreError("failed to decode member group refs", err)
			}
		}

		groups[group.GroupID] = &group
	}

	if err := rows.Err(); err != nil {
		return nil, classifyStoreError("error reading member group rows", err)
	}

	return groups, nil
}

// SaveEntity upserts a real castlist
func (s *postgresStore) SaveEntity(ctx context.Context, communityID string, list *domain.Castlist) error {
	settingsJSON, err := json.Marshal(list.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode castlist settings: %w", err)
	}

	query := `
		INSERT INTO castlists (community_id, id, name, kind, season_ref, icon, settings, created_at, created_by, materialized_from, materialized_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (community_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			season_ref = EXCLUDED.season_ref,
			icon = EXCLUDED.icon,
			settings = EXCLUDED.settings,
			materialized_from = EXCLUDED.materialized_from,
			materialized_at = EXCLUDED.materialized_at
	`

	_, err = s.db.Pool.Exec(ctx, query,
		communityID,
		list.ID,
		list.Name,
		list.Kind,
		nullable(list.SeasonRef),
		nullable(list.Icon),
		settingsJSON,
		list.Provenance.CreatedAt,
		list.Provenance.CreatedBy,
		nullable(list.Provenance.MaterializedFrom),
		list.Provenance.MaterializedAt,
	)
	if err != nil {
		return classifyStoreError("failed to save castlist", err)
	}

	return nil
}

// SaveMemberGroup applies a partial update to one member-group, creating the
// record when absent. Only the non-nil patch fields are written.
func (s *postgresStore) SaveMemberGroup(ctx context.Context, communityID, groupID string, patch *domain.MemberGroupPatch) error {
	sets := make([]string, 0, 4)
	args := []interface{}{communityID, groupID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.LegacyLabel != nil {
		addSet("legacy_label", nullable(*patch.LegacyLabel))
	}
	if patch.SingleListRef != nil {
		addSet("single_list_ref", nullable(*patch.SingleListRef))
	}
	if patch.MultiListRefs != nil {
		refsJSON, err := json.Marshal(*patch.MultiListRefs)
		if err != nil {
			return fmt.Errorf("failed to encode member group refs: %w", err)
		}
		addSet("multi_list_refs", refsJSON)
	}
	if patch.TypeHint != nil {
		addSet("type_hint", nullable(*patch.TypeHint))
	}

	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE member_groups
		SET %s
		WHERE community_id = $1 AND group_id = $2
	`, strings.Join(sets, ", "))

	tag, err := s.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return classifyStoreError("failed to patch member group", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Group not stored yet; insert with the patch fields, everything else null.
	return s.insertMemberGroup(ctx, communityID, groupID, patch)
}

func (s *postgresStore) insertMemberGroup(ctx context.Context, communityID, groupID string, patch *domain.MemberGroupPatch) error {
	group := domain.MemberGroup{GroupID: groupID}
	if patch.LegacyLabel != nil {
		group.LegacyLabel = *patch.LegacyLabel
	}
	if patch.SingleListRef != nil {
		group.SingleListRef = *patch.SingleListRef
	}
	if patch.MultiListRefs != nil {
		group.MultiListRefs = *patch.MultiListRefs
	}
	if patch.TypeHint != nil {
		group.TypeHint = *patch.TypeHint
	}

	refsJSON, err := json.Marshal(group.MultiListRefs)
	if err != nil {
		return fmt.Errorf("failed to encode member group refs: %w", err)
	}

	query := `
		INSERT INTO member_groups (community_id, group_id, legacy_label, single_list_ref, multi_list_refs, type_hint)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (community_id, group_id) DO UPDATE SET
			legacy_label = EXCLUDED.legacy_label,
			single_list_ref = EXCLUDED.single_list_ref,
			multi_list_refs = EXCLUDED.multi_list_refs,
			type_hint = EXCLUDED.type_hint
	`

	_, err = s.db.Pool.Exec(ctx, query,
		communityID,
		groupID,
		nullable(group.LegacyLabel),
		nullable(group.SingleListRef),
		refsJSON,
		nullable(group.TypeHint),
	)
	if err != nil {
		return classifyStoreError("failed to insert member group", err)
	}

	return nil
}

// classifyStoreError folds a pgx error into the store taxonomy. Serialization
// failures and constraint violations surface as conflicts, everything else as
// unavailability.
func classifyStoreError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%s: %w: %v", msg, ErrStoreConflict, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", msg, ErrStoreUnavailable, err)
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
