package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("accounts: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, created_at,
	age, gender, height_cm, weight_kg, health_conditions, allergies, medications,
	sleep_hours, activity_level, diet_type, smoking, alcohol`

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, user *User) error {
	id := uuid.New()
	user.Email = NormalizeEmail(user.Email)
	p := user.Profile

	query := `
		INSERT INTO users (id, username, email, password_hash,
			age, gender, height_cm, weight_kg, health_conditions, allergies, medications,
			sleep_hours, activity_level, diet_type, smoking, alcohol)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		id.String(), user.Username, user.Email, user.PasswordHash,
		p.Age, p.Gender, p.HeightCM, p.WeightKG, p.HealthConditions, p.Allergies, p.Medications,
		p.SleepHours, p.ActivityLevel, p.DietType, p.Smoking, p.Alcohol,
	).Scan(&user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return ErrUsernameTaken
			}
			return ErrEmailTaken
		}
		return fmt.Errorf("accounts: insert failed: %w", err)
	}
	user.ID = id.String()
	return nil
}

// GetByID fetches a user by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByEmail fetches a user by normalized email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, NormalizeEmail(email)))
}

// UpdateProfile replaces the profile columns and returns the updated row.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, p Profile) (*User, error) {
	query := `
		UPDATE users SET
			age = $2, gender = $3, height_cm = $4, weight_kg = $5,
			health_conditions = $6, allergies = $7, medications = $8,
			sleep_hours = $9, activity_level = $10, diet_type = $11,
			smoking = $12, alcohol = $13
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanOne(r.db.QueryRow(ctx, query,
		id, p.Age, p.Gender, p.HeightCM, p.WeightKG,
		p.HealthConditions, p.Allergies, p.Medications,
		p.SleepHours, p.ActivityLevel, p.DietType,
		p.Smoking, p.Alcohol,
	))
}

// Delete removes a user; journal rows cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("accounts: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*User, error) {
	var u User
	p := &u.Profile
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt,
		&p.Age, &p.Gender, &p.HeightCM, &p.WeightKG, &p.HealthConditions, &p.Allergies, &p.Medications,
		&p.SleepHours, &p.ActivityLevel, &p.DietType, &p.Smoking, &p.Alcohol,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("accounts: query failed: %w", err)
	}
	return &u, nil
}
