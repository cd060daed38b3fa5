package repository

// Schema definitions for the Warden database.
// Compatible with both SQLite and PostgreSQL.

const schemaPrisoners = `
CREATE TABLE IF NOT EXISTS prisoners (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    inmate_number TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    date_of_birth TIMESTAMP NOT NULL,
    gender TEXT NOT NULL,
    government_id TEXT,
    address TEXT,
    cell_block TEXT,
    status TEXT NOT NULL,
    admission_date TIMESTAMP NOT NULL,
    release_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_prisoners_facility ON prisoners(facility_id);
CREATE INDEX IF NOT EXISTS idx_prisoners_inmate_number ON prisoners(facility_id, inmate_number);
CREATE INDEX IF NOT EXISTS idx_prisoners_status ON prisoners(facility_id, status);
`

const schemaIncidents = `
CREATE TABLE IF NOT EXISTS behavior_incidents (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    prisoner_id TEXT NOT NULL,
    behavior_type TEXT NOT NULL,
    severity TEXT NOT NULL,
    description TEXT,
    reported_by TEXT,
    occurred_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_incidents_facility ON behavior_incidents(facility_id);
CREATE INDEX IF NOT EXISTS idx_incidents_prisoner ON behavior_incidents(facility_id, prisoner_id);
CREATE INDEX IF NOT EXISTS idx_incidents_occurred ON behavior_incidents(facility_id, prisoner_id, occurred_at);
`

const schemaRatings = `
CREATE TABLE IF NOT EXISTS ratings (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    prisoner_id TEXT NOT NULL,
    cooperation INTEGER NOT NULL,
    discipline INTEGER NOT NULL,
    respect INTEGER NOT NULL,
    work_ethic INTEGER NOT NULL,
    overall_rating REAL NOT NULL,
    rated_by TEXT,
    rating_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ratings_facility ON ratings(facility_id);
CREATE INDEX IF NOT EXISTS idx_ratings_prisoner ON ratings(facility_id, prisoner_id);
CREATE INDEX IF NOT EXISTS idx_ratings_date ON ratings(facility_id, prisoner_id, rating_date);
`

const schemaStaff = `
CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    badge_number TEXT NOT NULL,
    role TEXT NOT NULL,
    department TEXT,
    email TEXT,
    phone TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    hire_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_staff_facility ON staff(facility_id);
CREATE INDEX IF NOT EXISTS idx_staff_badge ON staff(facility_id, badge_number);
`

const schemaVisitors = `
CREATE TABLE IF NOT EXISTS visitors (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    prisoner_id TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    relationship TEXT,
    government_id TEXT,
    phone TEXT,
    approved INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_visitors_facility ON visitors(facility_id);
CREATE INDEX IF NOT EXISTS idx_visitors_prisoner ON visitors(facility_id, prisoner_id);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    username TEXT NOT NULL UNIQUE,
    email TEXT,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_facility ON users(facility_id);
`

const schemaAlertRules = `
CREATE TABLE IF NOT EXISTS alert_rules (
    id TEXT NOT NULL,
    facility_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    severity TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, facility_id, version)
);

CREATE INDEX IF NOT EXISTS idx_alert_rules_facility ON alert_rules(facility_id);
CREATE INDEX IF NOT EXISTS idx_alert_rules_enabled ON alert_rules(facility_id, enabled);
`

const schemaValidations = `
CREATE TABLE IF NOT EXISTS validations (
    id TEXT PRIMARY KEY,
    facility_id TEXT NOT NULL,
    prisoner_id TEXT,
    government_id TEXT NOT NULL,
    status TEXT NOT NULL,
    discrepancies TEXT NOT NULL,
    checked_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_validations_facility ON validations(facility_id);
CREATE INDEX IF NOT EXISTS idx_validations_prisoner ON validations(facility_id, prisoner_id);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaPrisoners,
		schemaIncidents,
		schemaRatings,
		schemaStaff,
		schemaVisitors,
		schemaUsers,
		schemaAlertRules,
		schemaValidations,
	}
}
