package database

import (
	"context"
	"database/sql"

	"github.com/motoescola/backoffice/internal/entity"
)

type StatusHistoryRepository struct {
	DB *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{DB: db}
}

func (r *StatusHistoryRepository) Append(ctx context.Context, change *entity.StatusChange) error {
	query := `
		INSERT INTO lead_status_history (id, lead_id, from_status, to_status, changed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		change.ID,
		change.LeadID,
		string(change.From),
		string(change.To),
		change.ChangedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation, pgInvalidTextRepresentation:
			return entity.ErrLeadNotFound
		}
		return err
	}

	return nil
}

func (r *StatusHistoryRepository) ListByLead(ctx context.Context, leadID string) ([]entity.StatusChange, error) {
	query := `
		SELECT id, lead_id, from_status, to_status, changed_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY changed_at
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		if pgCode(err) == pgInvalidTextRepresentation {
			return []entity.StatusChange{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	changes := []entity.StatusChange{}
	for rows.Next() {
		var c entity.StatusChange
		var from, to string
		if err := rows.Scan(&c.ID, &c.LeadID, &from, &to, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.From, c.To = entity.Stage(from), entity.Stage(to)
		changes = append(changes, c)
	}

	return changes, rows.Err()
}
