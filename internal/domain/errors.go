package domain

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrDialogNotFound    = errors.New("dialog not found")
	ErrStatsNotFound     = errors.New("dialog stats not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrCharacterLimit    = errors.New("character limit reached")
	ErrArchetypeUnknown  = errors.New("unknown archetype")
	ErrEmptyCompletion   = errors.New("completion returned no choices")
	ErrRateLimited       = errors.New("rate limited by provider")
	ErrProviderDown      = errors.New("provider unavailable")
	ErrNoDraft           = errors.New("no character draft in progress")
	ErrInvalidName       = errors.New("invalid character name")
)
