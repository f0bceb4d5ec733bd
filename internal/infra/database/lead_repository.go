package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smarttech/leadflow/internal/entity"
)

// LeadRepository stores leads as one row per conversation, with the chat
// history held in a jsonb column so history appends stay a single statement.
type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	history, err := json.Marshal(lead.ChatHistory)
	if err != nil {
		return fmt.Errorf("marshal chat history: %w", err)
	}

	query := `
		INSERT INTO leads (id, email, company_name, phone_number, relevance_tag, status,
			chat_history, calendly_link_clicked, clarification_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Email,
		nullString(lead.CompanyName),
		nullString(lead.PhoneNumber),
		string(lead.RelevanceTag),
		lead.Status,
		history,
		lead.CalendlyLinkClicked,
		lead.ClarificationAttempts,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `
		SELECT id, email, COALESCE(company_name, ''), COALESCE(phone_number, ''),
			relevance_tag, status, chat_history, calendly_link_clicked,
			clarification_attempts, created_at, updated_at
		FROM leads
		WHERE id = $1
	`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

// AppendMessage pushes one message onto the history without rewriting the
// rest of the document.
func (r *LeadRepository) AppendMessage(ctx context.Context, leadID string, msg entity.ChatMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	query := `
		UPDATE leads
		SET chat_history = chat_history || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.DB.ExecContext(ctx, query, leadID, body)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// Save writes the scalar fields back. Email and created_at are immutable
// after creation, and chat_history is append-only: it is never rewritten
// here, only grown through AppendMessage, so a message committed by a
// concurrent request cannot be lost to a stale in-memory copy.
func (r *LeadRepository) Save(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads
		SET company_name = $2, phone_number = $3, relevance_tag = $4, status = $5,
			calendly_link_clicked = $6, clarification_attempts = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		nullString(lead.CompanyName),
		nullString(lead.PhoneNumber),
		string(lead.RelevanceTag),
		lead.Status,
		lead.CalendlyLinkClicked,
		lead.ClarificationAttempts,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.ListLeadsFilter) ([]*entity.Lead, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.RelevanceTag != "" {
		args = append(args, filter.RelevanceTag)
		where += fmt.Sprintf(" AND relevance_tag = $%d", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT id, email, COALESCE(company_name, ''), COALESCE(phone_number, ''),
			relevance_tag, status, chat_history, calendly_link_clicked,
			clarification_attempts, created_at, updated_at
		FROM leads` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

func (r *LeadRepository) SetCalendlyClicked(ctx context.Context, leadID string, clicked bool) error {
	query := `UPDATE leads SET calendly_link_clicked = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.DB.ExecContext(ctx, query, leadID, clicked)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var tag string
	var history []byte

	if err := row.Scan(
		&lead.ID,
		&lead.Email,
		&lead.CompanyName,
		&lead.PhoneNumber,
		&tag,
		&lead.Status,
		&history,
		&lead.CalendlyLinkClicked,
		&lead.ClarificationAttempts,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return nil, err
	}

	lead.RelevanceTag = entity.RelevanceTag(tag)
	if err := json.Unmarshal(history, &lead.ChatHistory); err != nil {
		return nil, fmt.Errorf("unmarshal chat history: %w", err)
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
