package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/softmind/personabot/internal/domain"
)

type Messages struct {
	pool *pgxpool.Pool
}

func NewMessages(pool *pgxpool.Pool) *Messages {
	return &Messages{pool: pool}
}

func (r *Messages) Insert(ctx context.Context, dialogID int64, content string, isFromUser bool, metadata map[string]any) (*domain.Message, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO messages (dialog_id, external_id, content, is_from_user, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, dialog_id, external_id, content, is_from_user, metadata, created_at`,
		dialogID, uuid.NewString(), content, isFromUser, meta)

	m, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// ListRecent returns the last limit messages of a dialog in chronological order.
func (r *Messages) ListRecent(ctx context.Context, dialogID int64, limit int) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, dialog_id, external_id, content, is_from_user, metadata, created_at
		 FROM (
		     SELECT id, dialog_id, external_id, content, is_from_user, metadata, created_at
		     FROM messages WHERE dialog_id = $1
		     ORDER BY created_at DESC, id DESC LIMIT $2
		 ) recent
		 ORDER BY created_at, id`,
		dialogID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Messages) CountByDialog(ctx context.Context, dialogID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE dialog_id = $1`, dialogID).Scan(&n)
	return n, err
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	var meta []byte
	err := row.Scan(
		&m.ID, &m.DialogID, &m.ExternalID, &m.Content, &m.IsFromUser,
		&meta, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &m, nil
}
