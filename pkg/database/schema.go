package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// schema is portable between Postgres and SQLite. Timestamps are fixed-width
// UTC text so range predicates compare lexicographically on both engines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		avatar_url TEXT,
		role TEXT NOT NULL DEFAULT 'member',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		domain TEXT,
		industry TEXT,
		size TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		phone TEXT,
		website TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		mobile TEXT,
		company_id TEXT,
		title TEXT,
		department TEXT,
		linkedin_url TEXT,
		notes TEXT,
		tags TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		company_name TEXT,
		title TEXT,
		status TEXT NOT NULL DEFAULT 'new',
		source TEXT,
		score INTEGER,
		assigned_to TEXT,
		notes TEXT,
		converted_contact_id TEXT,
		converted_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_stages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		color TEXT NOT NULL,
		probability INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT 'open',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		stage_id TEXT,
		probability INTEGER NOT NULL DEFAULT 0,
		expected_close_date TEXT,
		actual_close_date TEXT,
		contact_id TEXT,
		company_id TEXT,
		assigned_to TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		loss_reason TEXT,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		subject TEXT,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date TEXT,
		completed_at TEXT,
		duration_minutes INTEGER,
		outcome TEXT,
		lead_id TEXT,
		contact_id TEXT,
		deal_id TEXT,
		company_id TEXT,
		user_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts (company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_stage_id ON deals (stage_id)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_contact_id ON deals (contact_id)`,
	`CREATE INDEX IF NOT EXISTS idx_deals_company_id ON deals (company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_due_date ON activities (status, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_lead_id ON activities (lead_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_contact_id ON activities (contact_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_deal_id ON activities (deal_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_company_id ON activities (company_id)`,
}

type seedStage struct {
	id          string
	name        string
	color       string
	probability int
	outcome     string
}

var defaultStages = []seedStage{
	{"stage_1", "Lead", "#6366f1", 10, "open"},
	{"stage_2", "Qualified", "#8b5cf6", 25, "open"},
	{"stage_3", "Proposal", "#ec4899", 50, "open"},
	{"stage_4", "Negotiation", "#f59e0b", 75, "open"},
	{"stage_5", "Closed Won", "#10b981", 100, "won"},
	{"stage_6", "Closed Lost", "#ef4444", 0, "lost"},
}

// Migrate creates every table and index that does not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Seed inserts the default user, and the default pipeline when no stage exists yet
func Seed(ctx context.Context, db *sqlx.DB) error {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO users (id, email, name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`),
		"user_1", "admin@example.com", "Admin User", "admin", now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	var stages int
	if err := db.GetContext(ctx, &stages, `SELECT COUNT(*) FROM pipeline_stages`); err != nil {
		return fmt.Errorf("failed to count stages: %w", err)
	}
	if stages > 0 {
		return nil
	}

	for i, s := range defaultStages {
		_, err := db.ExecContext(ctx, db.Rebind(`
			INSERT INTO pipeline_stages (id, name, position, color, probability, outcome, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
			s.id, s.name, i+1, s.color, s.probability, s.outcome, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed stage %s: %w", s.name, err)
		}
	}
	return nil
}
