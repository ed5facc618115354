package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimecode converts "MM:SS" or "H:MM:SS" to seconds.
func ParseTimecode(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode %q", s)
	}

	total := 0
	for i, p := range parts {
		if p == "" {
			return 0, fmt.Errorf("invalid timecode %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timecode %q", s)
		}
		// everything after the leading field is base 60
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid timecode %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimecode renders seconds as "M:SS", or "H:MM:SS" from one hour up.
func FormatTimecode(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatChapterTime renders seconds as zero-padded "MM:SS".
func FormatChapterTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Now is replaced in tests that need a fixed clock.
var Now = time.Now
