package domain

import "time"

// Technique is a conversational move the character leans on for its next reply.
type Technique string

const (
	TechniqueReflection   Technique = "reflection"
	TechniqueValidation   Technique = "validation"
	TechniqueOpenQuestion Technique = "open_question"
	TechniqueReframe      Technique = "reframe"
	TechniqueGrounding    Technique = "grounding"
	TechniqueSilence      Technique = "silence"
)

// Techniques lists all techniques in selection-preference order.
var Techniques = []Technique{
	TechniqueReflection,
	TechniqueValidation,
	TechniqueOpenQuestion,
	TechniqueReframe,
	TechniqueGrounding,
	TechniqueSilence,
}

// StoryEvent is a one-shot narrative beat injected into a dialog when its
// statistics cross a rule threshold.
type StoryEvent struct {
	Key         string
	Description string
}

// DialogStats carries the per-dialog counters the technique and story rules
// are evaluated against.
type DialogStats struct {
	DialogID         int64
	UserMessages     int64
	BotMessages      int64
	LastTechnique    Technique
	TechniqueCounts  map[Technique]int64
	FiredEvents      []string
	LastStoryEventAt *time.Time
	UpdatedAt        time.Time
}

func (s *DialogStats) TotalMessages() int64 {
	return s.UserMessages + s.BotMessages
}

func (s *DialogStats) HasFired(eventKey string) bool {
	for _, k := range s.FiredEvents {
		if k == eventKey {
			return true
		}
	}
	return false
}

func (s *DialogStats) TechniqueCount(t Technique) int64 {
	if s.TechniqueCounts == nil {
		return 0
	}
	return s.TechniqueCounts[t]
}
