// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opencorrections/warden/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SavePrisoner stores a prisoner record with facility isolation.
func (r *SQLRepository) SavePrisoner(ctx context.Context, facilityID string, p *domain.Prisoner) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	metadata, _ := json.Marshal(p.Metadata)

	var releaseDate sql.NullTime
	if p.ReleaseDate != nil {
		releaseDate = sql.NullTime{Time: *p.ReleaseDate, Valid: true}
	}

	query := `
		INSERT INTO prisoners (
			id, facility_id, inmate_number, first_name, last_name,
			date_of_birth, gender, government_id, address, cell_block,
			status, admission_date, release_date, created_at, updated_at, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		p.ID, facilityID, p.InmateNumber, p.FirstName, p.LastName,
		p.DateOfBirth, string(p.Gender), p.GovernmentID, p.Address, p.CellBlock,
		p.Status, p.AdmissionDate, releaseDate, p.CreatedAt, p.UpdatedAt,
		string(metadata),
	)
	return err
}

// GetPrisoner retrieves a prisoner by ID with facility isolation.
func (r *SQLRepository) GetPrisoner(ctx context.Context, facilityID string, prisonerID string) (*domain.Prisoner, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, inmate_number, first_name, last_name,
			   date_of_birth, gender, government_id, address, cell_block,
			   status, admission_date, release_date, created_at, updated_at, metadata
		FROM prisoners
		WHERE facility_id = ? AND id = ?
	`

	row := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, prisonerID)
	p, err := scanPrisoner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListPrisoners retrieves prisoners for a facility, newest admissions first.
func (r *SQLRepository) ListPrisoners(ctx context.Context, facilityID string, limit, offset int) ([]*domain.Prisoner, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, facility_id, inmate_number, first_name, last_name,
			   date_of_birth, gender, government_id, address, cell_block,
			   status, admission_date, release_date, created_at, updated_at, metadata
		FROM prisoners
		WHERE facility_id = ?
		ORDER BY admission_date DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prisoners []*domain.Prisoner
	for rows.Next() {
		p, err := scanPrisoner(rows)
		if err != nil {
			return nil, err
		}
		prisoners = append(prisoners, p)
	}

	return prisoners, rows.Err()
}

// UpdatePrisoner updates a prisoner record with facility isolation.
func (r *SQLRepository) UpdatePrisoner(ctx context.Context, facilityID string, p *domain.Prisoner) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	metadata, _ := json.Marshal(p.Metadata)

	var releaseDate sql.NullTime
	if p.ReleaseDate != nil {
		releaseDate = sql.NullTime{Time: *p.ReleaseDate, Valid: true}
	}

	query := `
		UPDATE prisoners
		SET inmate_number = ?, first_name = ?, last_name = ?,
			date_of_birth = ?, gender = ?, government_id = ?, address = ?,
			cell_block = ?, status = ?, admission_date = ?, release_date = ?,
			updated_at = ?, metadata = ?
		WHERE facility_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		p.InmateNumber, p.FirstName, p.LastName,
		p.DateOfBirth, string(p.Gender), p.GovernmentID, p.Address,
		p.CellBlock, p.Status, p.AdmissionDate, releaseDate,
		time.Now().UTC(), string(metadata),
		facilityID, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePrisoner removes a prisoner record with facility isolation.
func (r *SQLRepository) DeletePrisoner(ctx context.Context, facilityID string, prisonerID string) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `DELETE FROM prisoners WHERE facility_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, r.rebind(query), facilityID, prisonerID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveIncident stores a behavior incident with facility isolation.
func (r *SQLRepository) SaveIncident(ctx context.Context, facilityID string, incident *domain.BehaviorIncident) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO behavior_incidents (
			id, facility_id, prisoner_id, behavior_type, severity,
			description, reported_by, occurred_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		incident.ID, facilityID, incident.PrisonerID,
		string(incident.Type), string(incident.Severity),
		incident.Description, incident.ReportedBy,
		incident.OccurredAt, incident.CreatedAt,
	)
	return err
}

// ListIncidents retrieves the most recent incidents for a prisoner,
// newest first, as the scoring engine expects.
func (r *SQLRepository) ListIncidents(ctx context.Context, facilityID string, prisonerID string, limit int) ([]*domain.BehaviorIncident, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, facility_id, prisoner_id, behavior_type, severity,
			   description, reported_by, occurred_at, created_at
		FROM behavior_incidents
		WHERE facility_id = ? AND prisoner_id = ?
		ORDER BY occurred_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID, prisonerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*domain.BehaviorIncident
	for rows.Next() {
		var incident domain.BehaviorIncident
		var behaviorType, severity string

		if err := rows.Scan(
			&incident.ID, &incident.FacilityID, &incident.PrisonerID,
			&behaviorType, &severity,
			&incident.Description, &incident.ReportedBy,
			&incident.OccurredAt, &incident.CreatedAt,
		); err != nil {
			return nil, err
		}

		incident.Type = domain.BehaviorType(behaviorType)
		incident.Severity = domain.Severity(severity)
		incidents = append(incidents, &incident)
	}

	return incidents, rows.Err()
}

// CountIncidentsSince counts incidents for a prisoner after a cutoff time.
func (r *SQLRepository) CountIncidentsSince(ctx context.Context, facilityID string, prisonerID string, since time.Time) (int64, error) {
	if facilityID == "" {
		return 0, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT COUNT(*) FROM behavior_incidents
		WHERE facility_id = ? AND prisoner_id = ? AND occurred_at >= ?
	`

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, prisonerID, since).Scan(&count)
	return count, err
}

// SaveRating stores a rating record with facility isolation.
func (r *SQLRepository) SaveRating(ctx context.Context, facilityID string, rating *domain.RatingRecord) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO ratings (
			id, facility_id, prisoner_id, cooperation, discipline,
			respect, work_ethic, overall_rating, rated_by, rating_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rating.ID, facilityID, rating.PrisonerID,
		rating.Cooperation, rating.Discipline,
		rating.Respect, rating.WorkEthic,
		rating.OverallRating, rating.RatedBy,
		rating.RatingDate, rating.CreatedAt,
	)
	return err
}

// ListRatings retrieves the most recent ratings for a prisoner, newest first.
func (r *SQLRepository) ListRatings(ctx context.Context, facilityID string, prisonerID string, limit int) ([]*domain.RatingRecord, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, facility_id, prisoner_id, cooperation, discipline,
			   respect, work_ethic, overall_rating, rated_by, rating_date, created_at
		FROM ratings
		WHERE facility_id = ? AND prisoner_id = ?
		ORDER BY rating_date DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID, prisonerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*domain.RatingRecord
	for rows.Next() {
		var rating domain.RatingRecord

		if err := rows.Scan(
			&rating.ID, &rating.FacilityID, &rating.PrisonerID,
			&rating.Cooperation, &rating.Discipline,
			&rating.Respect, &rating.WorkEthic,
			&rating.OverallRating, &rating.RatedBy,
			&rating.RatingDate, &rating.CreatedAt,
		); err != nil {
			return nil, err
		}

		ratings = append(ratings, &rating)
	}

	return ratings, rows.Err()
}

// SaveStaff stores a staff member profile with facility isolation.
func (r *SQLRepository) SaveStaff(ctx context.Context, facilityID string, s *domain.StaffMember) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	active := 0
	if s.Active {
		active = 1
	}

	query := `
		INSERT INTO staff (
			id, facility_id, first_name, last_name, badge_number,
			role, department, email, phone, active, hire_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		s.ID, facilityID, s.FirstName, s.LastName, s.BadgeNumber,
		s.Role, s.Department, s.Email, s.Phone, active,
		s.HireDate, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetStaff retrieves a staff member by ID with facility isolation.
func (r *SQLRepository) GetStaff(ctx context.Context, facilityID string, staffID string) (*domain.StaffMember, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, first_name, last_name, badge_number,
			   role, department, email, phone, active, hire_date, created_at, updated_at
		FROM staff
		WHERE facility_id = ? AND id = ?
	`

	var s domain.StaffMember
	var active int

	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, staffID).Scan(
		&s.ID, &s.FacilityID, &s.FirstName, &s.LastName, &s.BadgeNumber,
		&s.Role, &s.Department, &s.Email, &s.Phone, &active,
		&s.HireDate, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.Active = active == 1
	return &s, nil
}

// ListStaff retrieves all staff for a facility.
func (r *SQLRepository) ListStaff(ctx context.Context, facilityID string) ([]*domain.StaffMember, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, first_name, last_name, badge_number,
			   role, department, email, phone, active, hire_date, created_at, updated_at
		FROM staff
		WHERE facility_id = ?
		ORDER BY last_name, first_name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.StaffMember
	for rows.Next() {
		var s domain.StaffMember
		var active int

		if err := rows.Scan(
			&s.ID, &s.FacilityID, &s.FirstName, &s.LastName, &s.BadgeNumber,
			&s.Role, &s.Department, &s.Email, &s.Phone, &active,
			&s.HireDate, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}

		s.Active = active == 1
		members = append(members, &s)
	}

	return members, rows.Err()
}

// DeleteStaff removes a staff profile with facility isolation.
func (r *SQLRepository) DeleteStaff(ctx context.Context, facilityID string, staffID string) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM staff WHERE facility_id = ? AND id = ?`), facilityID, staffID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveVisitor stores a visitor profile with facility isolation.
func (r *SQLRepository) SaveVisitor(ctx context.Context, facilityID string, v *domain.Visitor) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	approved := 0
	if v.Approved {
		approved = 1
	}

	query := `
		INSERT INTO visitors (
			id, facility_id, prisoner_id, first_name, last_name,
			relationship, government_id, phone, approved, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		v.ID, facilityID, v.PrisonerID, v.FirstName, v.LastName,
		v.Relationship, v.GovernmentID, v.Phone, approved,
		v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetVisitor retrieves a visitor by ID with facility isolation.
func (r *SQLRepository) GetVisitor(ctx context.Context, facilityID string, visitorID string) (*domain.Visitor, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, prisoner_id, first_name, last_name,
			   relationship, government_id, phone, approved, created_at, updated_at
		FROM visitors
		WHERE facility_id = ? AND id = ?
	`

	var v domain.Visitor
	var approved int

	err := r.db.QueryRowContext(ctx, r.rebind(query), facilityID, visitorID).Scan(
		&v.ID, &v.FacilityID, &v.PrisonerID, &v.FirstName, &v.LastName,
		&v.Relationship, &v.GovernmentID, &v.Phone, &approved,
		&v.CreatedAt, &v.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	v.Approved = approved == 1
	return &v, nil
}

// ListVisitors retrieves visitors for a prisoner. An empty prisonerID lists
// every visitor registered with the facility.
func (r *SQLRepository) ListVisitors(ctx context.Context, facilityID string, prisonerID string) ([]*domain.Visitor, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, prisoner_id, first_name, last_name,
			   relationship, government_id, phone, approved, created_at, updated_at
		FROM visitors
		WHERE facility_id = ?
	`
	args := []any{facilityID}
	if prisonerID != "" {
		query += ` AND prisoner_id = ?`
		args = append(args, prisonerID)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []*domain.Visitor
	for rows.Next() {
		var v domain.Visitor
		var approved int

		if err := rows.Scan(
			&v.ID, &v.FacilityID, &v.PrisonerID, &v.FirstName, &v.LastName,
			&v.Relationship, &v.GovernmentID, &v.Phone, &approved,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}

		v.Approved = approved == 1
		visitors = append(visitors, &v)
	}

	return visitors, rows.Err()
}

// DeleteVisitor removes a visitor profile with facility isolation.
func (r *SQLRepository) DeleteVisitor(ctx context.Context, facilityID string, visitorID string) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM visitors WHERE facility_id = ? AND id = ?`), facilityID, visitorID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveUser stores a user account. Facility scoping rides on the record.
func (r *SQLRepository) SaveUser(ctx context.Context, u *domain.User) error {
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO users (
			id, facility_id, username, email, password_hash, role, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		u.ID, u.FacilityID, u.Username, u.Email, u.PasswordHash, u.Role,
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// GetUser retrieves a user account by ID.
func (r *SQLRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return r.getUser(ctx, `id = ?`, userID)
}

// GetUserByUsername retrieves a user account by username.
func (r *SQLRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, `username = ?`, username)
}

func (r *SQLRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, facility_id, username, email, password_hash, role, created_at, updated_at
		FROM users
		WHERE ` + where

	var u domain.User
	err := r.db.QueryRowContext(ctx, r.rebind(query), arg).Scan(
		&u.ID, &u.FacilityID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// SaveAlertRule stores an alert rule with facility isolation.
func (r *SQLRepository) SaveAlertRule(ctx context.Context, facilityID string, rule *domain.AlertRule) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO alert_rules (
			id, facility_id, name, description, version, expression, severity, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, facility_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			severity = excluded.severity,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, facilityID, rule.Name, rule.Description,
		rule.Version, rule.Expression, string(rule.Severity), enabled,
		now, now,
	)
	return err
}

// ListAlertRules retrieves all active alert rules for a facility.
func (r *SQLRepository) ListAlertRules(ctx context.Context, facilityID string) ([]*domain.AlertRule, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, name, description, version, expression, severity, enabled
		FROM alert_rules
		WHERE facility_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.AlertRule
	for rows.Next() {
		var rule domain.AlertRule
		var severity string
		var enabled int

		if err := rows.Scan(
			&rule.ID, &rule.FacilityID, &rule.Name, &rule.Description,
			&rule.Version, &rule.Expression, &severity, &enabled,
		); err != nil {
			return nil, err
		}

		rule.Severity = domain.Severity(severity)
		rule.Enabled = enabled == 1
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteAlertRule soft-deletes an alert rule by setting enabled = 0.
func (r *SQLRepository) DeleteAlertRule(ctx context.Context, facilityID string, ruleID string) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		UPDATE alert_rules
		SET enabled = 0, updated_at = ?
		WHERE facility_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), facilityID, ruleID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveValidation stores a verification outcome for the audit trail.
func (r *SQLRepository) SaveValidation(ctx context.Context, facilityID string, result *domain.ValidationResult) error {
	if facilityID == "" {
		return fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	discrepancies, _ := json.Marshal(result.Discrepancies)

	query := `
		INSERT INTO validations (
			id, facility_id, prisoner_id, government_id, status, discrepancies, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		result.ID, facilityID, result.PrisonerID, result.GovernmentID,
		string(result.Status), string(discrepancies), result.CheckedAt,
	)
	return err
}

// ListValidations retrieves verification outcomes for a prisoner, newest first.
func (r *SQLRepository) ListValidations(ctx context.Context, facilityID string, prisonerID string) ([]*domain.ValidationResult, error) {
	if facilityID == "" {
		return nil, fmt.Errorf("%w: facilityID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, facility_id, prisoner_id, government_id, status, discrepancies, checked_at
		FROM validations
		WHERE facility_id = ? AND prisoner_id = ?
		ORDER BY checked_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), facilityID, prisonerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ValidationResult
	for rows.Next() {
		var result domain.ValidationResult
		var status, discrepancies string

		if err := rows.Scan(
			&result.ID, &result.FacilityID, &result.PrisonerID,
			&result.GovernmentID, &status, &discrepancies, &result.CheckedAt,
		); err != nil {
			return nil, err
		}

		result.Status = domain.ValidationStatus(status)
		if err := json.Unmarshal([]byte(discrepancies), &result.Discrepancies); err != nil {
			return nil, fmt.Errorf("failed to parse discrepancies for %s: %w", result.ID, err)
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPrisoner(row scanner) (*domain.Prisoner, error) {
	var p domain.Prisoner
	var gender, metadata string
	var releaseDate sql.NullTime

	if err := row.Scan(
		&p.ID, &p.FacilityID, &p.InmateNumber, &p.FirstName, &p.LastName,
		&p.DateOfBirth, &gender, &p.GovernmentID, &p.Address, &p.CellBlock,
		&p.Status, &p.AdmissionDate, &releaseDate, &p.CreatedAt, &p.UpdatedAt,
		&metadata,
	); err != nil {
		return nil, err
	}

	p.Gender = domain.Gender(gender)
	if releaseDate.Valid {
		t := releaseDate.Time
		p.ReleaseDate = &t
	}
	if metadata != "" {
		json.Unmarshal([]byte(metadata), &p.Metadata)
	}

	return &p, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	// Convert ? to $1, $2, etc.
	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
