package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/softmind/personabot/internal/domain"
)

const dialogColumns = `id, telegram_id, user_id, character_id, is_active, created_at, updated_at`

type Dialogs struct {
	pool *pgxpool.Pool
}

func NewDialogs(pool *pgxpool.Pool) *Dialogs {
	return &Dialogs{pool: pool}
}

func (r *Dialogs) GetActive(ctx context.Context, telegramID, characterID int64) (*domain.Dialog, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+dialogColumns+` FROM dialogs
		 WHERE telegram_id = $1 AND character_id = $2 AND is_active`,
		telegramID, characterID)
	return scanDialog(row)
}

func (r *Dialogs) Create(ctx context.Context, telegramID, userID, characterID int64) (*domain.Dialog, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO dialogs (telegram_id, user_id, character_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+dialogColumns,
		telegramID, userID, characterID)
	d, err := scanDialog(row)
	if err != nil {
		return nil, fmt.Errorf("create dialog: %w", err)
	}
	return d, nil
}

func (r *Dialogs) Deactivate(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dialogs SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *Dialogs) DeactivateByTelegramID(ctx context.Context, telegramID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dialogs SET is_active = FALSE, updated_at = now()
		 WHERE telegram_id = $1 AND is_active`, telegramID)
	return err
}

func (r *Dialogs) DeactivateByCharacter(ctx context.Context, characterID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dialogs SET is_active = FALSE, updated_at = now()
		 WHERE character_id = $1 AND is_active`, characterID)
	return err
}

func (r *Dialogs) Touch(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dialogs SET updated_at = now() WHERE id = $1`, id)
	return err
}

// ListStale returns active dialogs with no activity since the cutoff,
// for the inactivity story-event sweep.
func (r *Dialogs) ListStale(ctx context.Context, cutoff time.Time) ([]domain.Dialog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dialogColumns+` FROM dialogs
		 WHERE is_active AND updated_at < $1
		 ORDER BY updated_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale dialogs: %w", err)
	}
	defer rows.Close()

	var out []domain.Dialog
	for rows.Next() {
		d, err := scanDialog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func scanDialog(row pgx.Row) (*domain.Dialog, error) {
	var d domain.Dialog
	err := row.Scan(
		&d.ID, &d.TelegramID, &d.UserID, &d.CharacterID, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDialogNotFound
		}
		return nil, fmt.Errorf("scan dialog: %w", err)
	}
	return &d, nil
}
