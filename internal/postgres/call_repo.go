package postgres

import (
	"context"

	"github.com/cwrk-planet/relay-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(ctx context.Context, c *domain.Call) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO calls (id, caller_id, recipient_id, call_type, status, initiated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.CallerID, c.RecipientID, c.CallType, c.Status, c.InitiatedAt)
	return err
}

func (r *CallRepository) Get(ctx context.Context, id string) (*domain.Call, error) {
	var c domain.Call
	err := r.db.QueryRow(ctx, `
		SELECT id, caller_id, recipient_id, call_type, status,
		       initiated_at, answered_at, ended_at, end_reason, duration
		FROM calls WHERE id=$1
	`, id).Scan(&c.ID, &c.CallerID, &c.RecipientID, &c.CallType, &c.Status,
		&c.InitiatedAt, &c.AnsweredAt, &c.EndedAt, &c.EndReason, &c.Duration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCallNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Update persists the mutable lifecycle columns after a state transition.
func (r *CallRepository) Update(ctx context.Context, c *domain.Call) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE calls
		SET status=$2, answered_at=$3, ended_at=$4, end_reason=$5, duration=$6
		WHERE id=$1
	`, c.ID, c.Status, c.AnsweredAt, c.EndedAt, c.EndReason, c.Duration)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCallNotFound
	}
	return nil
}
