package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deskfolio/deskfolio/shared/domain"
	internal_errors "github.com/deskfolio/deskfolio/shared/errors"
)

// CreateSubmission inserts a record and returns the server assigned id.
// The timestamp column is filled by the database.
func (s *Storage) CreateSubmission(ctx context.Context, data domain.SubmissionData) (domain.SubmissionId, error) {
	return s.createSubmission(ctx, s.db, data)
}

// ListSubmissions returns every remote record, newest server timestamp first.
func (s *Storage) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	return s.listSubmissions(ctx, s.db)
}

// DeleteSubmission removes a record by id. A missing id is reported as NotFound.
func (s *Storage) DeleteSubmission(ctx context.Context, id domain.SubmissionId) error {
	return s.deleteSubmission(ctx, s.db, id)
}

func (s *Storage) createSubmission(ctx context.Context, q Querier, data domain.SubmissionData) (domain.SubmissionId, error) {
	var id domain.SubmissionId
	err := q.QueryRowContext(ctx,
		`INSERT INTO submissions(name, message, created_at) VALUES($1, $2, $3) RETURNING id`,
		data.Name, data.Message, data.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert submission: %w", err)
	}
	return id, nil
}

func (s *Storage) listSubmissions(ctx context.Context, q Querier) ([]domain.Submission, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, message, created_at, "timestamp"
		FROM submissions
		ORDER BY "timestamp" DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]domain.Submission, 0)
	for rows.Next() {
		var (
			sub domain.Submission
			ts  sql.NullTime
		)
		if err := rows.Scan(&sub.Id, &sub.Name, &sub.Message, &sub.CreatedAt, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if ts.Valid {
			t := ts.Time
			sub.Timestamp = &t
		}
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return submissions, nil
}

func (s *Storage) deleteSubmission(ctx context.Context, q Querier, id domain.SubmissionId) error {
	result, err := q.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for submission deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Submission not found")
	}
	return nil
}
