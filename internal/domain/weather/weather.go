// Package weather defines the closed set of weather categories accepted by
// a forecast run.
package weather

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Category is a weather forecast token. Only the values listed in All are valid.
type Category string

// Supported categories, in the order they are offered to callers.
const (
	Clear     Category = "晴"
	Cloudy    Category = "曇"
	Rain      Category = "雨"
	Snow      Category = "雪"
	Fair      Category = "快晴"
	ThinCloud Category = "薄曇"
)

const (
	rainToken = "雨"
	snowToken = "雪"
)

// All returns every supported category.
func All() []Category {
	return []Category{Clear, Cloudy, Rain, Snow, Fair, ThinCloud}
}

// Parse validates s against the closed category set.
func Parse(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range All() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Rain reports whether the category text contains the rain token.
func (c Category) Rain() bool { return strings.Contains(string(c), rainToken) }

// Snow reports whether the category text contains the snow token.
func (c Category) Snow() bool { return strings.Contains(string(c), snowToken) }

// Token returns the leading character used for one-hot column lookup.
func (c Category) Token() string {
	r, size := utf8.DecodeRuneInString(string(c))
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(r)
}

// Description returns an English label for display.
func (c Category) Description() string {
	switch c {
	case Clear:
		return "clear"
	case Cloudy:
		return "cloudy"
	case Rain:
		return "rain"
	case Snow:
		return "snow"
	case Fair:
		return "fair"
	case ThinCloud:
		return "thin cloud"
	default:
		return "unknown"
	}
}
