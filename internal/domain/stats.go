package domain

// MigrationStats summarizes how far a community has moved from legacy
// label-addressed lists to real castlist entities.
type MigrationStats struct {
	Total         int `json:"total"`
	Real          int `json:"real"`
	Virtual       int `json:"virtual"`
	MigratedCount int `json:"migrated_count"`

	// MigrationProgressPercent is round(100 * real / total), 100 when the
	// community has no lists at all.
	MigrationProgressPercent int `json:"migration_progress_percent"`
}
