package tracing

// Level is the discrete mastery classification derived from the continuous
// probability plus the practice count. It is never stored independently;
// always recompute via LevelFor.
type Level string

const (
	LevelNovice     Level = "novice"
	LevelDeveloping Level = "developing"
	LevelProficient Level = "proficient"
	LevelMastered   Level = "mastered"
)

// Probability thresholds for each level bucket.
const (
	DevelopingThreshold = 0.40
	ProficientThreshold = 0.80
	MasteredThreshold   = 0.95
)

// MinAttemptsForMastery is the floor on practice attempts before a node may
// classify as MASTERED, regardless of probability. Too few data points make
// a high probability untrustworthy.
const MinAttemptsForMastery = 5

// LevelFor buckets a mastery probability into a discrete level.
func LevelFor(probability float64, practiceCount int) Level {
	switch {
	case probability >= MasteredThreshold && practiceCount >= MinAttemptsForMastery:
		return LevelMastered
	case probability >= ProficientThreshold:
		return LevelProficient
	case probability >= DevelopingThreshold:
		return LevelDeveloping
	default:
		return LevelNovice
	}
}

// AtLeastProficient reports whether the level meets the bar for unlocking
// dependent nodes.
func AtLeastProficient(l Level) bool {
	return l == LevelProficient || l == LevelMastered
}
