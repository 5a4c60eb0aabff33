package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'export_status') THEN
			CREATE TYPE export_status AS ENUM ('requested');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS export_request (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		entity VARCHAR(32) NOT NULL,
		format VARCHAR(8) NOT NULL,
		status export_status NOT NULL DEFAULT 'requested',
		requested_by VARCHAR(64) NOT NULL,
		company_id VARCHAR(64),
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_export_request_company_id ON export_request (company_id) WHERE company_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_export_request_created_at ON export_request (created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
