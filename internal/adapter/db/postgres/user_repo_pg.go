package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/internal/domain/user"
	"users-api/pkg/logger"
)

// UserRepoPG implements the user Repository using GORM. It targets PostgreSQL and
// also runs on SQLite for local development and tests.
type UserRepoPG struct {
	db             *gorm.DB      // GORM database connection
	acquireTimeout time.Duration // Upper bound for a single store call
	log            *zap.Logger   // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, acquireTimeout time.Duration, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, acquireTimeout: acquireTimeout, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Name  string `gorm:"size:255;not null"`        // User's full name (required)
	Email string `gorm:"size:255;not null;unique"` // User's unique email address (required, unique)
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func fromDomain(u *user.User) UserSchema {
	return UserSchema{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

// withTimeout bounds a store call so a starved connection pool fails fast.
func (r *UserRepoPG) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.acquireTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.acquireTimeout)
}

// Create inserts a new user and writes the generated ID back into u.
// Any ID already set on u is ignored.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	model := fromDomain(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		err = classifyError("failed to create user", err)
		logger.WithContext(ctx, r.log).Warn("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return err
	}

	u.ID = model.ID
	logger.WithContext(ctx, r.log).Info("user created in db", zap.Int64("id", model.ID))
	return nil
}

// List retrieves every user ordered by primary key.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		err = classifyError("failed to list users", err)
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, err
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, nil
}

// Ping reports whether the database answers within the acquire timeout.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	sqlDB, err := r.db.DB()
	if err != nil {
		return classifyError("failed to get database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return classifyError("database ping failed", err)
	}
	return nil
}
