package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/softmind/personabot/internal/config"
	"github.com/softmind/personabot/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageResponse struct {
	ExternalID string         `json:"id"`
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type historyResponse struct {
	TelegramID  int64             `json:"telegram_id"`
	CharacterID int64             `json:"character_id"`
	Messages    []messageResponse `json:"messages"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid telegram id")
		return
	}
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}

	limit := config.HistoryPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > config.HistoryWindow {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	messages, err := s.dialogs.HistoryByParticipant(r.Context(), telegramID, characterID, limit)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			writeError(w, http.StatusNotFound, "no active dialog")
			return
		}
		slog.Error("history lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := historyResponse{
		TelegramID:  telegramID,
		CharacterID: characterID,
		Messages:    make([]messageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, messageResponse{
			ExternalID: m.ExternalID,
			Role:       m.Role(),
			Content:    m.Content,
			Metadata:   m.Metadata,
			CreatedAt:  m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	UserMessages     int64            `json:"user_messages"`
	BotMessages      int64            `json:"bot_messages"`
	LastTechnique    string           `json:"last_technique,omitempty"`
	TechniqueCounts  map[string]int64 `json:"technique_counts,omitempty"`
	FiredEvents      []string         `json:"fired_events,omitempty"`
	LastStoryEventAt *time.Time       `json:"last_story_event_at,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid telegram id")
		return
	}
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}

	stats, err := s.dialogs.StatsByParticipant(r.Context(), telegramID, characterID)
	if err != nil {
		if errors.Is(err, domain.ErrDialogNotFound) {
			writeError(w, http.StatusNotFound, "no active dialog")
			return
		}
		slog.Error("stats lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := statsResponse{
		UserMessages:     stats.UserMessages,
		BotMessages:      stats.BotMessages,
		LastTechnique:    string(stats.LastTechnique),
		FiredEvents:      stats.FiredEvents,
		LastStoryEventAt: stats.LastStoryEventAt,
	}
	if len(stats.TechniqueCounts) > 0 {
		resp.TechniqueCounts = make(map[string]int64, len(stats.TechniqueCounts))
		for k, v := range stats.TechniqueCounts {
			resp.TechniqueCounts[string(k)] = v
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type characterResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Archetype string    `json:"archetype"`
	Mood      string    `json:"mood"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// handleCharacters lists a user's characters by Telegram ID, or the public
// catalog when no owner is given.
func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	var (
		chars []domain.Character
		err   error
	)
	if raw := r.URL.Query().Get("owner"); raw != "" {
		telegramID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid owner")
			return
		}
		user, uerr := s.users.GetByTelegramID(r.Context(), telegramID)
		if uerr != nil {
			if errors.Is(uerr, domain.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "owner not found")
				return
			}
			slog.Error("owner lookup", "error", uerr)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		chars, err = s.characters.ListByOwner(r.Context(), user.ID)
	} else {
		chars, err = s.characters.ListPublic(r.Context(), config.CharactersPerPage*4, 0)
	}
	if err != nil {
		slog.Error("list characters", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]characterResponse, 0, len(chars))
	for _, c := range chars {
		resp = append(resp, characterResponse{
			ID:        c.ID,
			Name:      c.Name,
			Archetype: c.Archetype,
			Mood:      c.Mood,
			IsPublic:  c.IsPublic,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeactivateDialogs closes every dialog bound to a character. Used by
// operators before retiring a persona.
func (s *Server) handleDeactivateDialogs(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}
	if _, err := s.characters.Get(r.Context(), characterID); err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) {
			writeError(w, http.StatusNotFound, "character not found")
			return
		}
		slog.Error("character lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := s.dialogs.DeactivateByCharacter(r.Context(), characterID); err != nil {
		slog.Error("deactivate dialogs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
