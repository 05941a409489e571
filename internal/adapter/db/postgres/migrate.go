package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"users-api/internal/domain/user"
)

// SeedUsers are the rows inserted by Seed when no explicit list is given.
var SeedUsers = []user.User{
	{Name: "Alice", Email: "alice@example.com"},
	{Name: "Bob", Email: "bob@example.com"},
}

// Migrator applies the users schema and optional seed data. Both steps are
// idempotent and are invoked deliberately before traffic is served.
type Migrator struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMigrator creates a new Migrator.
func NewMigrator(db *gorm.DB, log *zap.Logger) *Migrator {
	return &Migrator{db: db, log: log}
}

// Migrate creates or updates the users table and its unique email constraint.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	m.log.Info("users table migrated")
	return nil
}

// Seed upserts users keyed by email. Rows whose email already exists are left
// untouched, so running Seed repeatedly never duplicates or overwrites data.
func (m *Migrator) Seed(ctx context.Context, users []user.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}

	models := make([]UserSchema, len(users))
	for i := range users {
		models[i] = fromDomain(&users[i])
		models[i].ID = 0
	}

	result := m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&models)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed users: %w", result.Error)
	}

	m.log.Info("users seeded", zap.Int("requested", len(users)), zap.Int64("inserted", result.RowsAffected))
	return result.RowsAffected, nil
}
