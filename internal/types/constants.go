package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// DefaultGroupName is the sentinel group every user without an explicit group
// ends up in.
const DefaultGroupName = "other"

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()

	defaultGameModes = []string{"snake", "minesweeper", "space_invaders", "tetris"}

	// GameModes is the closed set of accepted game mode tags. Override with a
	// comma-separated GAME_MODES env var; the vocabulary has changed before and
	// must not be hardcoded at call sites.
	GameModes = initGameModes()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}

func initGameModes() []string {
	raw := os.Getenv("GAME_MODES")

	if raw == "" {
		modes := make([]string, len(defaultGameModes))
		copy(modes, defaultGameModes)
		return modes
	}

	var modes []string

	for _, mode := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(mode)
		if trimmed != "" {
			modes = append(modes, trimmed)
		}
	}

	return modes
}

func ValidGameMode(mode string) bool {
	for _, m := range GameModes {
		if m == mode {
			return true
		}
	}
	return false
}
