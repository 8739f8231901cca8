package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultHistoryLimit = 50

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores journal entries in the relational database.
type PostgresRepository struct {
	db Querier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db Querier) *PostgresRepository {
	if db == nil {
		panic("journal: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateSymptom(ctx context.Context, s *Symptom) error {
	id := uuid.New()
	query := `
		INSERT INTO symptoms (id, user_id, text, advice)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, id.String(), s.UserID, s.Text, s.Advice).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("journal: insert symptom failed: %w", err)
	}
	s.ID = id.String()
	return nil
}

// ListSymptoms returns the user's symptoms oldest first.
func (r *PostgresRepository) ListSymptoms(ctx context.Context, userID string) ([]*Symptom, error) {
	query := `
		SELECT id, user_id, text, advice, created_at
		FROM symptoms
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	return r.querySymptoms(ctx, query, userID)
}

func (r *PostgresRepository) CreatePhoto(ctx context.Context, p *Photo) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO photos (id, user_id, filename, storage_key, content_type, advice)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, p.ID, p.UserID, p.Filename, p.StorageKey, p.ContentType, p.Advice).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("journal: insert photo failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPhoto(ctx context.Context, userID, id string) (*Photo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `
		SELECT id, user_id, filename, storage_key, content_type, advice, created_at
		FROM photos
		WHERE id = $1 AND user_id = $2
	`
	var p Photo
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&p.ID, &p.UserID, &p.Filename, &p.StorageKey, &p.ContentType, &p.Advice, &p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("journal: get photo failed: %w", err)
	}
	return &p, nil
}

// ListPhotos returns every photo of the user, newest first.
func (r *PostgresRepository) ListPhotos(ctx context.Context, userID string) ([]*Photo, error) {
	return r.queryPhotos(ctx, userID, 0)
}

func (r *PostgresRepository) CreateTip(ctx context.Context, t *Tip) error {
	id := uuid.New()
	query := `
		INSERT INTO tips (id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, id.String(), t.UserID, t.Text).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("journal: insert tip failed: %w", err)
	}
	t.ID = id.String()
	return nil
}

// History returns up to limit entries of each kind, newest first.
func (r *PostgresRepository) History(ctx context.Context, userID string, limit int) (*History, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	symptoms, err := r.querySymptoms(ctx, `
		SELECT id, user_id, text, advice, created_at
		FROM symptoms
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}

	photos, err := r.queryPhotos(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, text, created_at
		FROM tips
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list tips failed: %w", err)
	}
	defer rows.Close()

	tips := make([]*Tip, 0)
	for rows.Next() {
		var t Tip
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan tip failed: %w", err)
		}
		tips = append(tips, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list tips failed: %w", err)
	}

	return &History{Symptoms: symptoms, Photos: photos, Tips: tips}, nil
}

// DeleteUser drops every entry owned by the user.
func (r *PostgresRepository) DeleteUser(ctx context.Context, userID string) error {
	for _, table := range []string{"symptoms", "photos", "tips"} {
		if _, err := r.db.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
			return fmt.Errorf("journal: delete %s failed: %w", table, err)
		}
	}
	return nil
}

func (r *PostgresRepository) querySymptoms(ctx context.Context, query string, args ...any) ([]*Symptom, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list symptoms failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Symptom, 0)
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.ID, &s.UserID, &s.Text, &s.Advice, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan symptom failed: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list symptoms failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) queryPhotos(ctx context.Context, userID string, limit int) ([]*Photo, error) {
	query := `
		SELECT id, user_id, filename, storage_key, content_type, advice, created_at
		FROM photos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list photos failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Photo, 0)
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.UserID, &p.Filename, &p.StorageKey, &p.ContentType, &p.Advice, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan photo failed: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: list photos failed: %w", err)
	}
	return out, nil
}
