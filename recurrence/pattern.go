package recurrence

import "strings"

// Pattern is a recurrence rule family.
type Pattern string

const (
	PatternNone    Pattern = "none"
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternWeekend Pattern = "weekend"
	PatternMonthly Pattern = "monthly"
	PatternCustom  Pattern = "custom"
)

// Patterns lists every known pattern.
var Patterns = []Pattern{
	PatternNone, PatternDaily, PatternWeekly, PatternWeekend, PatternMonthly, PatternCustom,
}

// String returns the pattern name.
func (p Pattern) String() string {
	return string(p)
}

// Valid reports whether p is a known pattern.
func (p Pattern) Valid() bool {
	for _, known := range Patterns {
		if p == known {
			return true
		}
	}
	return false
}

// Repeats reports whether p is a repeating pattern.
func (p Pattern) Repeats() bool {
	return p.Valid() && p != PatternNone
}

// ParsePattern normalizes a stored pattern value. An empty value is
// PatternNone; an unknown value is returned as-is and fails Valid.
func ParsePattern(s string) Pattern {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PatternNone
	}
	return Pattern(s)
}

// MonthlyPolicy decides how a monthly anchor that does not exist in the
// target month is handled.
type MonthlyPolicy int

const (
	// MonthlySkip does not fire in months shorter than the anchor day.
	MonthlySkip MonthlyPolicy = iota
	// MonthlyClamp fires on the last day of months shorter than the anchor day.
	MonthlyClamp
)

// String returns the policy name used in configuration.
func (p MonthlyPolicy) String() string {
	switch p {
	case MonthlySkip:
		return "skip"
	case MonthlyClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// ParseMonthlyPolicy parses "skip" or "clamp".
func ParseMonthlyPolicy(s string) (MonthlyPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return MonthlySkip, true
	case "clamp":
		return MonthlyClamp, true
	default:
		return MonthlySkip, false
	}
}
