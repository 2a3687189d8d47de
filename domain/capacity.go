package domain

const (
	LevelNormal CapacityLevel = iota
	LevelElevated
	LevelHigh
	LevelCritical
	LevelExceeded
)

// thresholds of requestsToday/limitToday; a ratio exactly at a
// boundary maps to the higher level
const (
	elevatedRatio = 0.80
	highRatio     = 0.90
	criticalRatio = 0.95
	exceededRatio = 1.00
)

type CapacityLevel int

func (l CapacityLevel) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelElevated:
		return "elevated"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	case LevelExceeded:
		return "exceeded"
	default:
		return "unknown"
	}
}

func (l CapacityLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func LevelForRatio(ratio float64) CapacityLevel {
	switch {
	case ratio >= exceededRatio:
		return LevelExceeded
	case ratio >= criticalRatio:
		return LevelCritical
	case ratio >= highRatio:
		return LevelHigh
	case ratio >= elevatedRatio:
		return LevelElevated
	default:
		return LevelNormal
	}
}

type CapacityState struct {
	RequestsToday int64         `json:"requestsToday"`
	LimitToday    int64         `json:"limitToday"`
	Level         CapacityLevel `json:"level"`
	Day           string        `json:"day"`
}

type FeatureFlags struct {
	SubmissionsEnabled bool `json:"submissionsEnabled"`
	ChartEnabled       bool `json:"chartEnabled"`
	StatsLiveEnabled   bool `json:"statsLiveEnabled"`
	CacheTtlMultiplier int  `json:"cacheTtlMultiplier"`
}

// FlagsForLevel is a pure lookup, queried on each request and never stored.
// Restrictions only grow as the level rises.
func FlagsForLevel(level CapacityLevel) FeatureFlags {
	switch level {
	case LevelNormal, LevelElevated:
		return FeatureFlags{
			SubmissionsEnabled: true,
			ChartEnabled:       true,
			StatsLiveEnabled:   true,
			CacheTtlMultiplier: 1,
		}
	case LevelHigh:
		return FeatureFlags{
			SubmissionsEnabled: true,
			ChartEnabled:       false,
			StatsLiveEnabled:   true,
			CacheTtlMultiplier: 3,
		}
	case LevelCritical:
		return FeatureFlags{
			SubmissionsEnabled: false,
			ChartEnabled:       false,
			StatsLiveEnabled:   false,
			CacheTtlMultiplier: 3,
		}
	default:
		return FeatureFlags{
			SubmissionsEnabled: false,
			ChartEnabled:       false,
			StatsLiveEnabled:   false,
			CacheTtlMultiplier: 3,
		}
	}
}
