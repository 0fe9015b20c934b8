package tokenreduction

// Level is the reduction aggressiveness.
type Level int

const (
	LevelOff Level = iota
	LevelLight
	LevelModerate
	LevelAggressive
	LevelMaximum
)

// String renders the lowercase level name used in config files.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelLight:
		return "light"
	case LevelModerate:
		return "moderate"
	case LevelAggressive:
		return "aggressive"
	case LevelMaximum:
		return "maximum"
	default:
		return "moderate"
	}
}

// ParseLevel maps a config string to a Level, defaulting to Moderate for
// anything unrecognized.
func ParseLevel(s string) Level {
	switch s {
	case "off":
		return LevelOff
	case "light":
		return LevelLight
	case "moderate":
		return LevelModerate
	case "aggressive":
		return LevelAggressive
	case "maximum":
		return LevelMaximum
	default:
		return LevelModerate
	}
}

// defaultStopwords is a small English-only seed list; callers
// layer CustomStopwords on top (merge, not replace, is the default).
var defaultStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "for": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"it": true, "this": true, "that": true, "with": true, "as": true, "by": true,
}
