package score

// Level is a qualitative classification of a competency score.
// Levels are ordered: NeedsImprovement < Adequate < Strength.
type Level int

const (
	LevelNeedsImprovement Level = iota
	LevelAdequate
	LevelStrength
)

// DefaultStrengthThreshold is the minimum score classified as a strength.
const DefaultStrengthThreshold = 5

func (l Level) String() string {
	switch l {
	case LevelStrength:
		return "strength"
	case LevelAdequate:
		return "adequate"
	default:
		return "needs improvement"
	}
}

// Label returns the display label shown in reports.
func (l Level) Label() string {
	switch l {
	case LevelStrength:
		return "강점"
	case LevelAdequate:
		return "보통"
	default:
		return "개선 필요"
	}
}

// Thresholds configures classification.
type Thresholds struct {
	Strength int // Values at or above this are a strength
}

// DefaultThresholds returns the standard classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Strength: DefaultStrengthThreshold}
}

// Classify maps a value to a Level. Negative values need improvement.
func (t Thresholds) Classify(v int) Level {
	switch {
	case v >= t.Strength:
		return LevelStrength
	case v >= 0:
		return LevelAdequate
	default:
		return LevelNeedsImprovement
	}
}

// Classify uses DefaultThresholds.
func Classify(v int) Level {
	return DefaultThresholds().Classify(v)
}
