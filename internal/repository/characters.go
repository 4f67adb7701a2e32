package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/softmind/personabot/internal/domain"
)

const characterColumns = `id, owner_id, name, archetype, personality, backstory,
	needs, mood, temperature, is_public, created_at, updated_at`

type Characters struct {
	pool *pgxpool.Pool
}

func NewCharacters(pool *pgxpool.Pool) *Characters {
	return &Characters{pool: pool}
}

func (r *Characters) Create(ctx context.Context, c *domain.Character) (*domain.Character, error) {
	needs := c.Needs
	if needs == nil {
		needs = []string{}
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO characters (owner_id, name, archetype, personality, backstory, needs, mood, temperature, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+characterColumns,
		c.OwnerID, c.Name, c.Archetype, c.Personality, c.Backstory, needs, c.Mood, c.Temperature, c.IsPublic)
	created, err := scanCharacter(row)
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}
	return created, nil
}

func (r *Characters) GetByID(ctx context.Context, id int64) (*domain.Character, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
	return scanCharacter(row)
}

func (r *Characters) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Character, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()
	return collectCharacters(rows)
}

func (r *Characters) ListPublic(ctx context.Context, limit, offset int) ([]domain.Character, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE is_public ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public characters: %w", err)
	}
	defer rows.Close()
	return collectCharacters(rows)
}

func (r *Characters) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM characters WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (r *Characters) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCharacterNotFound
	}
	return nil
}

func (r *Characters) UpdateProfile(ctx context.Context, id int64, personality, backstory string, needs []string) error {
	if needs == nil {
		needs = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE characters SET personality = $2, backstory = $3, needs = $4, updated_at = now() WHERE id = $1`,
		id, personality, backstory, needs)
	return err
}

func (r *Characters) SetMood(ctx context.Context, id int64, mood string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE characters SET mood = $2, updated_at = now() WHERE id = $1`, id, mood)
	return err
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Archetype, &c.Personality, &c.Backstory,
		&c.Needs, &c.Mood, &c.Temperature, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("scan character: %w", err)
	}
	return &c, nil
}

func collectCharacters(rows pgx.Rows) ([]domain.Character, error) {
	var out []domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}
