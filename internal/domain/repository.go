package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require facilityID for strict facility isolation.
type Repository interface {
	// Prisoner operations
	SavePrisoner(ctx context.Context, facilityID string, p *Prisoner) error
	GetPrisoner(ctx context.Context, facilityID string, prisonerID string) (*Prisoner, error)
	ListPrisoners(ctx context.Context, facilityID string, limit, offset int) ([]*Prisoner, error)
	UpdatePrisoner(ctx context.Context, facilityID string, p *Prisoner) error
	DeletePrisoner(ctx context.Context, facilityID string, prisonerID string) error

	// Behavior incident operations; listings return newest first.
	SaveIncident(ctx context.Context, facilityID string, incident *BehaviorIncident) error
	ListIncidents(ctx context.Context, facilityID string, prisonerID string, limit int) ([]*BehaviorIncident, error)
	CountIncidentsSince(ctx context.Context, facilityID string, prisonerID string, since time.Time) (int64, error)

	// Rating operations; listings return newest first.
	SaveRating(ctx context.Context, facilityID string, rating *RatingRecord) error
	ListRatings(ctx context.Context, facilityID string, prisonerID string, limit int) ([]*RatingRecord, error)

	// Staff operations
	SaveStaff(ctx context.Context, facilityID string, s *StaffMember) error
	GetStaff(ctx context.Context, facilityID string, staffID string) (*StaffMember, error)
	ListStaff(ctx context.Context, facilityID string) ([]*StaffMember, error)
	DeleteStaff(ctx context.Context, facilityID string, staffID string) error

	// Visitor operations
	SaveVisitor(ctx context.Context, facilityID string, v *Visitor) error
	GetVisitor(ctx context.Context, facilityID string, visitorID string) (*Visitor, error)
	ListVisitors(ctx context.Context, facilityID string, prisonerID string) ([]*Visitor, error)
	DeleteVisitor(ctx context.Context, facilityID string, visitorID string) error

	// User accounts (facility scoping carried on the record itself)
	SaveUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// Alert rule configuration
	SaveAlertRule(ctx context.Context, facilityID string, rule *AlertRule) error
	ListAlertRules(ctx context.Context, facilityID string) ([]*AlertRule, error)
	DeleteAlertRule(ctx context.Context, facilityID string, ruleID string) error

	// Validation audit trail
	SaveValidation(ctx context.Context, facilityID string, result *ValidationResult) error
	ListValidations(ctx context.Context, facilityID string, prisonerID string) ([]*ValidationResult, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `koanf:"driver"`

	// SQLite specific
	SQLitePath string `koanf:"sqlitePath"`

	// PostgreSQL specific
	PostgresHost     string `koanf:"postgresHost"`
	PostgresPort     int    `koanf:"postgresPort"`
	PostgresUser     string `koanf:"postgresUser"`
	PostgresPassword string `koanf:"postgresPassword"`
	PostgresDB       string `koanf:"postgresDb"`
	PostgresSSLMode  string `koanf:"postgresSslMode"`

	// Connection pool settings
	MaxOpenConns    int           `koanf:"maxOpenConns"`
	MaxIdleConns    int           `koanf:"maxIdleConns"`
	ConnMaxLifetime time.Duration `koanf:"connMaxLifetime"`
}
