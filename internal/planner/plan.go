package planner

import "github.com/abhisek/mathdaily/internal/difficulty"

// Category is the reason a slot is part of the worksheet.
type Category string

const (
	CategoryReview    Category = "review"
	CategoryCurrent   Category = "current"
	CategoryChallenge Category = "challenge"

	// CategoryDrill tags the identical slots of a single-unit worksheet.
	CategoryDrill Category = "drill"
)

// Item is one slot of a worksheet plan: what to ask and how hard.
type Item struct {
	Topic         string          `json:"topic"`
	Tier          difficulty.Tier `json:"difficulty"`
	Category      Category        `json:"type"`
	RequireVisual bool            `json:"require_visual,omitempty"`
}

// Profile is the part of a student profile the planner reads.
type Profile struct {
	RecentAccuracy float64
	WeakTopics     []string
	CurrentTopics  []string
}

// Allocation percentages for profile-driven plans. Current absorbs the
// rest.
const (
	ReviewPercent    = 30
	ChallengePercent = 20
)

// Allocation percentages for catalog-driven plans. Challenge absorbs the
// rest.
const (
	CatalogReviewPercent  = 20
	CatalogCurrentPercent = 60
)

// Fallback topics.
const (
	// ChallengeFallbackTopic is used for challenge slots when no current
	// topics are known.
	ChallengeFallbackTopic = "종합 문제"

	// CurrentFallbackTopic is used for current slots when neither current
	// topics nor caller fallbacks are available.
	CurrentFallbackTopic = "일반 문제"
)

// GenericTopics stands in for an empty catalog: number and operations,
// shapes, measurement, relations, data and probability.
var GenericTopics = []string{"수와 연산", "도형", "측정", "변화와 관계", "데이터와 가능성"}

// visualKeywords mark unit names that need a diagram.
var visualKeywords = []string{
	"도형", "삼각형", "사각형", "원", "각", "기하", "선분", "직선", "함수", "그래프",
	"shape", "triangle", "rectangle", "square", "circle", "angle", "geometry", "line", "graph", "function",
}

// Counts summarizes a plan by category.
func Counts(plan []Item) map[Category]int {
	out := make(map[Category]int, 4)
	for _, it := range plan {
		out[it.Category]++
	}
	return out
}
