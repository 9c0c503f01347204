// Package curriculum owns the chapter/unit catalog: the embedded seed,
// grade descriptions used in generation prompts and cached catalog
// lookups.
package curriculum

import (
	"errors"
	"fmt"

	"github.com/abhisek/mathdaily/internal/difficulty"
	"github.com/abhisek/mathdaily/internal/store"
)

// School levels.
const (
	Elementary = "elementary"
	Middle     = "middle"
	High       = "high"
)

// Levels lists school levels in ascending order.
var Levels = []string{Elementary, Middle, High}

// Defaults applied when neither the request nor the student says otherwise.
const (
	DefaultSchoolLevel = Elementary
	DefaultGrade       = 3
)

// NewStudent returns the profile a student gets on first lookup.
func NewStudent(id string) store.Student {
	return store.Student{
		ID:              id,
		SchoolLevel:     DefaultSchoolLevel,
		Grade:           DefaultGrade,
		RecentAccuracy:  difficulty.DefaultAccuracy,
		DifficultyLevel: difficulty.DefaultLevel,
	}
}

// ErrInvalidGrade is returned for an unknown level or an out-of-range grade.
var ErrInvalidGrade = errors.New("invalid school level or grade")

// MaxGrade returns the highest grade of level, or 0 if level is unknown.
func MaxGrade(level string) int {
	switch level {
	case Elementary:
		return 6
	case Middle, High:
		return 3
	}
	return 0
}

// ValidateGrade checks that grade exists within level.
func ValidateGrade(level string, grade int) error {
	maxGrade := MaxGrade(level)
	if maxGrade == 0 {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidGrade, level)
	}
	if grade < 1 || grade > maxGrade {
		return fmt.Errorf("%w: %s grade %d (want 1-%d)", ErrInvalidGrade, level, grade, maxGrade)
	}
	return nil
}

// GradeContext describes the target audience of a worksheet. Every chunk
// of one generation run receives the same value.
type GradeContext struct {
	SchoolLevel string
	Grade       int

	// Label is the human-readable grade ("중학교 2학년").
	Label string

	// Scope lists representative topics for the grade.
	Scope string
}

// ContextFor builds the GradeContext for (level, grade). Unknown values
// still produce a usable, generic description.
func ContextFor(level string, grade int) GradeContext {
	gc := GradeContext{SchoolLevel: level, Grade: grade}
	switch level {
	case Elementary:
		gc.Label = fmt.Sprintf("초등학교 %d학년", grade)
		gc.Scope = "기초 연산, 도형의 기초, 분수/소수"
	case Middle:
		gc.Label = fmt.Sprintf("중학교 %d학년", grade)
		gc.Scope = "방정식, 함수, 기하, 확률"
	case High:
		switch grade {
		case 1:
			gc.Label = "고등학교 1학년 (공통수학1, 2)"
			gc.Scope = "다항식, 방정식과 부등식, 도형의 방정식, 집합과 명제, 함수, 경우의 수"
		case 2:
			gc.Label = "고등학교 2학년 (수학I, 수학II)"
			gc.Scope = "지수함수와 로그함수, 삼각함수, 수열, 함수의 극한과 연속, 미분, 적분"
		case 3:
			gc.Label = "고등학교 3학년 (미적분/확통/기하)"
			gc.Scope = "수능 연계 심화 문제, 미적분, 확률과 통계, 공간도형"
		default:
			gc.Label = fmt.Sprintf("고등학교 %d학년", grade)
			gc.Scope = "고등 심화 수학"
		}
	default:
		gc.Label = "학년 미상"
		gc.Scope = "일반 상식 수학"
	}
	return gc
}

func (g GradeContext) String() string {
	return g.Label
}
