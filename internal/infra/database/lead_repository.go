package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/logger"
)

const leadColumns = `
	id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(whatsapp, ''),
	COALESCE(interest, ''), COALESCE(origin, ''), status, COALESCE(notes, ''),
	tags, manager_id, created_at, course_date_id, stage_entered_at`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, whatsapp, interest, origin, status, notes, tags, manager_id, course_date_id, created_at, stage_entered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.Whatsapp),
		nullString(lead.Interest),
		nullString(lead.Origin),
		string(lead.Status),
		nullString(lead.Notes),
		pq.Array(tagsOrEmpty(lead.Tags)),
		lead.ManagerID,
		lead.CourseDateID,
		lead.CreatedAt,
		enteredAt(lead),
	)
	if err != nil {
		logger.Logger.Errorf("Erro crítico no banco ao criar lead: %v", err)
		return err
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pgCode(err) == pgInvalidTextRepresentation {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}

	return lead, nil
}

// ListAll devolve todos os leads, mais recentes primeiro.
func (r *LeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ListStale devolve os leads que entraram na etapa antes de enteredBefore e não saíram.
func (r *LeadRepository) ListStale(ctx context.Context, stage entity.Stage, enteredBefore time.Time) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE status = $1 AND stage_entered_at < $2 ORDER BY stage_entered_at`
	return r.list(ctx, query, string(stage), enteredBefore)
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2, email = $3, phone = $4, whatsapp = $5, interest = $6, origin = $7,
			status = $8, notes = $9, tags = $10, manager_id = $11, course_date_id = $12,
			stage_entered_at = $13, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.Whatsapp),
		nullString(lead.Interest),
		nullString(lead.Origin),
		string(lead.Status),
		nullString(lead.Notes),
		pq.Array(tagsOrEmpty(lead.Tags)),
		lead.ManagerID,
		lead.CourseDateID,
		enteredAt(lead),
	)
	return affectedOne(res, err)
}

// UpdateStatus mexe só na etapa; os demais campos ficam como estão no banco.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Stage, enteredAt time.Time) error {
	query := `UPDATE leads SET status = $2, stage_entered_at = $3, updated_at = NOW() WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, id, string(status), enteredAt)
	return affectedOne(res, err)
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *LeadRepository) list(ctx context.Context, query string, args ...any) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler lead: %w", err)
		}
		leads = append(leads, *lead)
	}

	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		lead         entity.Lead
		status       string
		managerID    sql.NullString
		courseDateID sql.NullString
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Whatsapp,
		&lead.Interest,
		&lead.Origin,
		&status,
		&lead.Notes,
		pq.Array(&lead.Tags),
		&managerID,
		&lead.CreatedAt,
		&courseDateID,
		&lead.StageEnteredAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Status = entity.Stage(status)
	if managerID.Valid {
		lead.ManagerID = &managerID.String
	}
	if courseDateID.Valid {
		lead.CourseDateID = &courseDateID.String
	}
	lead.Normalize()

	return &lead, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		if pgCode(err) == pgInvalidTextRepresentation {
			return entity.ErrLeadNotFound
		}
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func enteredAt(lead *entity.Lead) time.Time {
	if lead.StageEnteredAt.IsZero() {
		return lead.CreatedAt
	}
	return lead.StageEnteredAt
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
