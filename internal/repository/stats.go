package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/softmind/personabot/internal/domain"
)

type Stats struct {
	pool *pgxpool.Pool
}

func NewStats(pool *pgxpool.Pool) *Stats {
	return &Stats{pool: pool}
}

func (r *Stats) Get(ctx context.Context, dialogID int64) (*domain.DialogStats, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT dialog_id, user_messages, bot_messages, last_technique,
		        technique_counts, fired_events, last_story_event_at, updated_at
		 FROM dialog_stats WHERE dialog_id = $1`, dialogID)

	var s domain.DialogStats
	var lastTechnique string
	var counts []byte
	err := row.Scan(
		&s.DialogID, &s.UserMessages, &s.BotMessages, &lastTechnique,
		&counts, &s.FiredEvents, &s.LastStoryEventAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStatsNotFound
		}
		return nil, fmt.Errorf("scan dialog stats: %w", err)
	}

	s.LastTechnique = domain.Technique(lastTechnique)
	if len(counts) > 0 {
		raw := map[string]int64{}
		if err := json.Unmarshal(counts, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal technique counts: %w", err)
		}
		s.TechniqueCounts = make(map[domain.Technique]int64, len(raw))
		for k, v := range raw {
			s.TechniqueCounts[domain.Technique(k)] = v
		}
	}
	return &s, nil
}

func (r *Stats) BumpMessage(ctx context.Context, dialogID int64, fromUser bool) error {
	userInc, botInc := 0, 1
	if fromUser {
		userInc, botInc = 1, 0
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dialog_stats (dialog_id, user_messages, bot_messages)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (dialog_id) DO UPDATE SET
		     user_messages = dialog_stats.user_messages + EXCLUDED.user_messages,
		     bot_messages = dialog_stats.bot_messages + EXCLUDED.bot_messages,
		     updated_at = now()`,
		dialogID, userInc, botInc)
	return err
}

func (r *Stats) RecordTechnique(ctx context.Context, dialogID int64, t domain.Technique) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dialog_stats (dialog_id, last_technique, technique_counts)
		 VALUES ($1, $2, jsonb_build_object($2::text, 1))
		 ON CONFLICT (dialog_id) DO UPDATE SET
		     last_technique = $2,
		     technique_counts = jsonb_set(
		         dialog_stats.technique_counts,
		         ARRAY[$2::text],
		         to_jsonb(COALESCE((dialog_stats.technique_counts->>$2)::bigint, 0) + 1)
		     ),
		     updated_at = now()`,
		dialogID, string(t))
	return err
}

func (r *Stats) RecordEvent(ctx context.Context, dialogID int64, eventKey string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE dialog_stats SET
		     fired_events = array_append(fired_events, $2),
		     last_story_event_at = $3,
		     updated_at = now()
		 WHERE dialog_id = $1`,
		dialogID, eventKey, at)
	return err
}
