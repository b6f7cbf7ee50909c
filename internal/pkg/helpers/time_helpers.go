package helpers

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a Go duration, also accepting a whole number of days
// such as "7d". Empty or invalid input yields defaultDuration.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	s := strings.TrimSpace(durationStr)
	if s == "" {
		return defaultDuration
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n >= 0 {
			return time.Duration(n) * 24 * time.Hour
		}
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		// Global logger: this runs before the configured logger is handed out.
		log.Warn().Err(err).Str("duration", durationStr).Dur("default", defaultDuration).Msg("Invalid duration, using default")
		return defaultDuration
	}
	return duration
}
