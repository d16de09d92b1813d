package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS member_groups CASCADE`,
		`DROP TABLE IF EXISTS castlists CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS castlists (
			community_id TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'custom',
			season_ref TEXT,
			icon TEXT,
			settings JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_by TEXT NOT NULL DEFAULT 'system',
			materialized_from TEXT,
			materialized_at TIMESTAMPTZ,
			PRIMARY KEY (community_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS member_groups (
			community_id TEXT NOT NULL,
			group_id TEXT NOT NULL,
			legacy_label TEXT,
			single_list_ref TEXT,
			multi_list_refs JSONB NOT NULL DEFAULT '[]',
			type_hint TEXT,
			PRIMARY KEY (community_id, group_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_castlists_community ON castlists (community_id)`,
		`CREATE INDEX IF NOT EXISTS idx_member_groups_community ON member_groups (community_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	// A community mid-migration: one real list, a few groups still on legacy
	// labels, one group on modern multi-id references.
	queries := []string{
		`INSERT INTO castlists (community_id, id, name, kind, settings, created_by)
		 VALUES ('demo-community', 'castlist_1700000000000_system', 'Season 1', 'custom',
		         '{"sort_strategy":"alphabetical","show_rankings":false,"max_display":25,"visibility":"public"}',
		         'system')
		 ON CONFLICT (community_id, id) DO NOTHING`,
		`INSERT INTO member_groups (community_id, group_id, legacy_label)
		 VALUES ('demo-community', 'group-100', 'production')
		 ON CONFLICT (community_id, group_id) DO NOTHING`,
		`INSERT INTO member_groups (community_id, group_id, legacy_label, type_hint)
		 VALUES ('demo-community', 'group-101', 'Season 1 Alumni', 'alumni')
		 ON CONFLICT (community_id, group_id) DO NOTHING`,
		`INSERT INTO member_groups (community_id, group_id, multi_list_refs)
		 VALUES ('demo-community', 'group-102', '["castlist_1700000000000_system"]')
		 ON CONFLICT (community_id, group_id) DO NOTHING`,
		`INSERT INTO member_groups (community_id, group_id)
		 VALUES ('demo-community', 'group-103')
		 ON CONFLICT (community_id, group_id) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}
	return nil
}
