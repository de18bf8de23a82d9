package db

import (
	"fmt"

	types "github.com/pusdatin/satudata-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureDatasetIndexes adds the constraints AutoMigrate cannot express. Both
// statements are valid on Postgres and SQLite.
func EnsureDatasetIndexes(db *gorm.DB) error {
	// At most one active file per dataset.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_dataset_file_one_active
		ON dataset_file (dataset_id)
		WHERE is_active;
	`).Error; err != nil {
		return fmt.Errorf("create idx_dataset_file_one_active: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_dataset_status_bidang
		ON dataset (status, bidang_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_dataset_status_bidang: %w", err)
	}

	return nil
}

// rlsPolicies gate dataset writes on the app.* settings a scoped transaction
// sets. They bind only when the application connects as a non-owner role.
var rlsPolicies = []struct {
	name  string
	stmts []string
}{
	{"enable_rls_dataset", []string{`ALTER TABLE dataset ENABLE ROW LEVEL SECURITY`}},
	{"dataset_read", []string{
		`DROP POLICY IF EXISTS dataset_read ON dataset`,
		`CREATE POLICY dataset_read ON dataset FOR SELECT USING (true)`,
	}},
	{"dataset_insert", []string{
		`DROP POLICY IF EXISTS dataset_insert ON dataset`,
		`CREATE POLICY dataset_insert ON dataset FOR INSERT
		WITH CHECK (bidang_id::text = current_setting('app.unit_id', true))`,
	}},
	{"dataset_update", []string{
		`DROP POLICY IF EXISTS dataset_update ON dataset`,
		`CREATE POLICY dataset_update ON dataset FOR UPDATE
		USING (
			current_setting('app.role', true) = 'PUSDATIN'
			OR bidang_id::text = current_setting('app.unit_id', true)
		)`,
	}},
}

func EnsureRowLevelSecurity(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, p := range rlsPolicies {
		for _, stmt := range p.stmts {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create %s: %w", p.name, err)
			}
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll(withRLS bool) error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureDatasetIndexes(s.db); err != nil {
		s.log.Error("Dataset index migration failed", "error", err)
		return err
	}
	if withRLS {
		if err := EnsureRowLevelSecurity(s.db); err != nil {
			s.log.Error("Row level security migration failed", "error", err)
			return err
		}
	}
	return nil
}
