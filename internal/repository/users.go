package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/softmind/personabot/internal/domain"
)

const userColumns = `id, telegram_id, first_name, username, is_admin, is_blocked,
	active_character_id, pending_action, pending_draft, usage_cost,
	last_interaction, created_at, updated_at`

type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

func (r *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	return scanUser(row)
}

func (r *Users) Create(ctx context.Context, telegramID int64, firstName, username string, isAdmin bool) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (telegram_id, first_name, username, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		telegramID, firstName, username, isAdmin)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *Users) UpdateInfo(ctx context.Context, id int64, firstName, username string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET first_name = $2, username = $3, updated_at = now() WHERE id = $1`,
		id, firstName, username)
	return err
}

func (r *Users) UpdateLastInteraction(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_interaction = now(), updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *Users) SetActiveCharacter(ctx context.Context, id int64, characterID *int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET active_character_id = $2, updated_at = now() WHERE id = $1`,
		id, characterID)
	return err
}

func (r *Users) SetPending(ctx context.Context, id int64, action domain.PendingAction, draft []byte) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET pending_action = $2, pending_draft = $3, updated_at = now() WHERE id = $1`,
		id, string(action), draft)
	return err
}

func (r *Users) SetBlocked(ctx context.Context, telegramID int64, blocked bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_blocked = $2, updated_at = now() WHERE telegram_id = $1`,
		telegramID, blocked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *Users) AddUsageCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET usage_cost = usage_cost + $2, updated_at = now() WHERE id = $1`,
		id, cost)
	return err
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var pending string
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.Username, &u.IsAdmin, &u.IsBlocked,
		&u.ActiveCharacterID, &pending, &u.PendingDraft, &u.UsageCost,
		&u.LastInteraction, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PendingAction = domain.PendingAction(pending)
	return &u, nil
}
