package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spins/internal/models"
	"github.com/desertthunder/spins/internal/shared"
)

const insightColumns = `id, sequence, source, payload, summary, model, created_at, deleted_at`

// InsightRepository implements models.Repository[*models.Insight] for the generated insight archive.
type InsightRepository struct {
	db *sql.DB
}

// NewInsightRepository creates a new InsightRepository with the given database connection
func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Create inserts a new insight with a generated ID and sequence
func (r *InsightRepository) Create(insight *models.Insight) error {
	if err := insight.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "insights")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO insights (id, sequence, source, payload, summary, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(insight.Source()),
		insight.Payload(),
		insight.Summary(),
		insight.Model(),
		insight.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert insight: %w", err)
	}

	insight.SetID(id)
	insight.SetSequence(sequence)
	return nil
}

// Get retrieves an insight by ID, excluding soft-deleted insights
func (r *InsightRepository) Get(id string) (*models.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// Latest returns the most recent insight for source
func (r *InsightRepository) Latest(source models.InsightSource) (*models.Insight, error) {
	query := `SELECT ` + insightColumns + `
		FROM insights
		WHERE source = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRow(query, string(source)))
}

// Update rewrites the stored summary of an existing insight
func (r *InsightRepository) Update(insight *models.Insight) error {
	if err := insight.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(
		`UPDATE insights SET summary = ?, model = ? WHERE id = ? AND deleted_at IS NULL`,
		insight.Summary(), insight.Model(), insight.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update insight: %w", err)
	}
	return expectRow(result, insight.ID())
}

// Delete soft-deletes an insight by ID
func (r *InsightRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE insights SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete insight: %w", err)
	}
	return expectRow(result, id)
}

// List retrieves insights newest first. Supported criteria: "source" (string) and "limit" (int).
func (r *InsightRepository) List(criteria map[string]any) ([]*models.Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights WHERE deleted_at IS NULL`
	args := []any{}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	insights := []*models.Insight{}
	for rows.Next() {
		insight, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return insights, nil
}

// scanOne scans a single row into a [models.Insight]
func (r *InsightRepository) scanOne(row *sql.Row) (*models.Insight, error) {
	insight, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: insight", shared.ErrNotFound)
	}
	return insight, err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *InsightRepository) scan(s scanner) (*models.Insight, error) {
	var (
		id        string
		sequence  int
		source    string
		payload   string
		summary   string
		model     string
		createdAt time.Time
		deletedAt sql.NullTime
	)

	err := s.Scan(&id, &sequence, &source, &payload, &summary, &model, &createdAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan insight: %w", err)
	}

	insight := models.NewInsight(models.InsightSource(source), payload, summary, model)
	insight.SetID(id)
	insight.SetSequence(sequence)
	insight.SetCreatedAt(createdAt)
	if deletedAt.Valid {
		insight.SetDeletedAt(&deletedAt.Time)
	}

	return insight, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: insight %s not found or already deleted", shared.ErrNotFound, id)
	}
	return nil
}
