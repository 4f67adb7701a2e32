package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/softmind/personabot/internal/domain"
)

// techniqueDirectives are injected into the system prompt to steer the
// character's next reply.
var techniqueDirectives = map[domain.Technique]string{
	domain.TechniqueReflection:   "Mirror back the core of what the user just said in your own words before adding anything new.",
	domain.TechniqueValidation:   "Acknowledge the user's feelings as legitimate before responding to the content.",
	domain.TechniqueOpenQuestion: "End your reply with one open question that invites the user to say more.",
	domain.TechniqueReframe:      "Offer one alternative way of looking at what the user described.",
	domain.TechniqueGrounding:    "Bring the conversation back to something concrete and present.",
	domain.TechniqueSilence:      "Keep the reply short and unhurried. Leave room for the user to continue.",
}

func TechniqueDirective(t domain.Technique) string {
	return techniqueDirectives[t]
}

// NextTechnique picks the technique for the next bot reply from the dialog
// statistics. The rules: never repeat the previous technique, hold back the
// heavier moves until the dialog has warmed up, then prefer whichever
// eligible technique has been used least (catalog order breaks ties).
func NextTechnique(stats *domain.DialogStats) domain.Technique {
	if stats == nil || stats.TotalMessages() == 0 {
		return domain.TechniqueOpenQuestion
	}

	var best domain.Technique
	bestCount := int64(-1)
	for _, t := range domain.Techniques {
		if t == stats.LastTechnique {
			continue
		}
		if t == domain.TechniqueGrounding && stats.UserMessages < 3 {
			continue
		}
		if t == domain.TechniqueSilence && stats.TotalMessages() < 12 {
			continue
		}
		if t == domain.TechniqueReframe && stats.UserMessages < 2 {
			continue
		}
		count := stats.TechniqueCount(t)
		if bestCount == -1 || count < bestCount {
			best = t
			bestCount = count
		}
	}

	if bestCount == -1 {
		// Every technique was filtered out; fall back to the safest move.
		return domain.TechniqueValidation
	}
	return best
}

type TechniqueService struct {
	stats StatsStore
}

func NewTechniqueService(stats StatsStore) *TechniqueService {
	return &TechniqueService{stats: stats}
}

// Pick selects the next technique for the dialog. The choice is not
// recorded here: a pick that never makes it into a reply must not skew
// the rotation, so callers record it alongside the persisted reply.
func (s *TechniqueService) Pick(ctx context.Context, dialogID int64) (domain.Technique, error) {
	stats, err := s.stats.Get(ctx, dialogID)
	if err != nil {
		if !errors.Is(err, domain.ErrStatsNotFound) {
			return "", fmt.Errorf("get stats: %w", err)
		}
		stats = &domain.DialogStats{DialogID: dialogID}
	}
	return NextTechnique(stats), nil
}

// Record bumps the usage counter for a technique that made it into a reply.
func (s *TechniqueService) Record(ctx context.Context, dialogID int64, t domain.Technique) error {
	if err := s.stats.RecordTechnique(ctx, dialogID, t); err != nil {
		return fmt.Errorf("record technique: %w", err)
	}
	return nil
}
