package scenario

import "strings"

// Theme holds per-scenario presentation assets.
type Theme struct {
	Speaker    string // Name tag shown above dialogue
	Background string // Background asset path
	Character  string // Character sprite asset path
}

// ThemeFor picks presentation assets by subject keyword in the scenario id.
// Unknown subjects get an empty asset set and a generic speaker.
func ThemeFor(id string) Theme {
	switch {
	case strings.Contains(id, "science"):
		return Theme{
			Speaker:    "과학 선생님",
			Background: "assets/backgrounds/science/sc_background.jpg",
			Character:  "assets/characters/science/sc_teacher.png",
		}
	case strings.Contains(id, "math"):
		return Theme{
			Speaker:    "수학 선생님",
			Background: "assets/backgrounds/social/social_background.png",
			Character:  "assets/characters/math/math_teacher.png",
		}
	case strings.Contains(id, "social"):
		return Theme{
			Speaker:    "사회 선생님",
			Background: "assets/backgrounds/social/social_background.png",
			Character:  "assets/characters/social/social_teacher.png",
		}
	}
	return Theme{Speaker: "선생님"}
}
