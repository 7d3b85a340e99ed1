package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

var dayUnit = map[string]time.Duration{
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// ParseStringTime accepts Go duration strings ("500ms", "10s", "1h30m") plus
// whole days and weeks ("2d", "1w"). Units are case-insensitive.
// Invalid input is logged and yields 0.
func ParseStringTime(timeString string) time.Duration {
	timeString = strings.ToLower(strings.TrimSpace(timeString))
	if timeString == "" {
		logger.ErrorF("invalid time format: empty string")
		return 0
	}

	for suffix, unit := range dayUnit {
		if cutString, found := strings.CutSuffix(timeString, suffix); found {
			number, err := strconv.Atoi(cutString)
			if err != nil {
				logger.ErrorF("Error parsing time string: %s", err.Error())
				return 0
			}
			return time.Duration(number) * unit
		}
	}

	duration, err := time.ParseDuration(timeString)
	if err != nil {
		logger.ErrorF("Error parsing time string: %s", err.Error())
		return 0
	}
	return duration
}

// ParseStringTimeOr is ParseStringTime with a fallback for empty or invalid input.
func ParseStringTimeOr(timeString string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(timeString) == "" {
		return fallback
	}
	if duration := ParseStringTime(timeString); duration > 0 {
		return duration
	}
	return fallback
}
