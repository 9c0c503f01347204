// Package difficulty maps recent accuracy to a tier mix and to level
// shifts. Both are plain threshold rules.
package difficulty

import "fmt"

// Tier is the difficulty of a single problem.
type Tier int

const (
	Easy   Tier = 1
	Medium Tier = 2
	Hard   Tier = 3
)

func (t Tier) String() string {
	switch t {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Valid reports whether t is one of the three defined tiers.
func (t Tier) Valid() bool {
	return t >= Easy && t <= Hard
}

// Mix thresholds. The level-shift rule deliberately uses its own lower
// bound (ShiftDownBelow) instead of MixEasyBelow.
const (
	MixHardFrom    = 0.8
	MixEasyBelow   = 0.6
	ShiftUpFrom    = 0.8
	ShiftDownBelow = 0.5
)

// Mix is the share of each tier in a worksheet. Shares sum to 1.
type Mix struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// DecideMix returns the tier mix for accuracy in [0,1].
func DecideMix(accuracy float64) Mix {
	switch {
	case accuracy >= MixHardFrom:
		return Mix{Easy: 0.1, Medium: 0.4, Hard: 0.5}
	case accuracy < MixEasyBelow:
		return Mix{Easy: 0.5, Medium: 0.4, Hard: 0.1}
	default:
		return Mix{Easy: 0.2, Medium: 0.6, Hard: 0.2}
	}
}

// Sample maps a uniform draw u in [0,1) onto a tier using cumulative
// thresholds in the order easy, medium, hard.
func (m Mix) Sample(u float64) Tier {
	if u < m.Easy {
		return Easy
	}
	if u < m.Easy+m.Medium {
		return Medium
	}
	return Hard
}

// Level bounds for a student's difficulty level.
const (
	MinLevel     = 1
	MaxLevel     = 4
	DefaultLevel = 2
)

// DefaultAccuracy seeds RecentAccuracy for a student with no submissions.
const DefaultAccuracy = 0.7

// LevelShift is the outcome of grading one submission.
type LevelShift struct {
	Delta   int    `json:"level_change"`
	Message string `json:"message"`
}

// Messages shown to the student after a submission.
const (
	MsgLevelUp   = "실력이 대단하네요! 난이도를 조금 올려볼게요. 🚀"
	MsgLevelDown = "조금 어려웠나봐요. 기초부터 다시 탄탄하게 다져봅시다. 💪"
	MsgSteady    = "현재 난이도를 유지합니다."
)

// DecideLevelShift returns +1 at or above 0.8, -1 below 0.5, 0 otherwise.
func DecideLevelShift(accuracy float64) LevelShift {
	switch {
	case accuracy >= ShiftUpFrom:
		return LevelShift{Delta: 1, Message: MsgLevelUp}
	case accuracy < ShiftDownBelow:
		return LevelShift{Delta: -1, Message: MsgLevelDown}
	default:
		return LevelShift{Delta: 0, Message: MsgSteady}
	}
}

// Apply moves level by the shift and clamps the result.
func (s LevelShift) Apply(level int) int {
	return ClampLevel(level + s.Delta)
}

// ClampLevel bounds level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
