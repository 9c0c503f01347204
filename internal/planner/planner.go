// Package planner turns a student profile (or a curriculum unit) into an
// ordered list of worksheet slots.
package planner

import (
	"math/rand/v2"
	"strings"

	"github.com/abhisek/mathdaily/internal/difficulty"
)

// Planner builds plans. Topic and tier draws come from the injected
// source so tests can assert exact plans.
type Planner struct {
	rng *rand.Rand
}

// New returns a Planner drawing from src. A nil src uses a randomly
// seeded PCG.
func New(src rand.Source) *Planner {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Planner{rng: rand.New(src)}
}

// BuildPlan allocates total slots as 30% review, 20% challenge and the
// remainder current. Review slots draw from the weak topics at easy or
// medium; without weak topics their budget moves to current. Current
// slots draw from current topics (or fallbackTopics) with tiers sampled
// from the accuracy mix. Challenge slots are always hard.
func (p *Planner) BuildPlan(profile Profile, fallbackTopics []string, total int) []Item {
	if total <= 0 {
		return []Item{}
	}

	reviewCount := total * ReviewPercent / 100
	challengeCount := total * ChallengePercent / 100
	currentCount := total - reviewCount - challengeCount

	if len(profile.WeakTopics) == 0 {
		currentCount += reviewCount
		reviewCount = 0
	}

	plan := make([]Item, 0, total)

	for i := 0; i < reviewCount; i++ {
		tier := difficulty.Easy
		if p.rng.Float64() < 0.5 {
			tier = difficulty.Medium
		}
		plan = append(plan, Item{
			Topic:    p.pick(profile.WeakTopics),
			Tier:     tier,
			Category: CategoryReview,
		})
	}

	currentTopics := profile.CurrentTopics
	if len(currentTopics) == 0 {
		currentTopics = fallbackTopics
	}
	if len(currentTopics) == 0 {
		currentTopics = []string{CurrentFallbackTopic}
	}
	mix := difficulty.DecideMix(profile.RecentAccuracy)
	for i := 0; i < currentCount; i++ {
		plan = append(plan, Item{
			Topic:    p.pick(currentTopics),
			Tier:     mix.Sample(p.rng.Float64()),
			Category: CategoryCurrent,
		})
	}

	for i := 0; i < challengeCount; i++ {
		topic := ChallengeFallbackTopic
		if len(profile.CurrentTopics) > 0 {
			topic = p.pick(profile.CurrentTopics)
		}
		plan = append(plan, Item{
			Topic:    topic,
			Tier:     difficulty.Hard,
			Category: CategoryChallenge,
		})
	}

	return plan
}

// BuildUnitPlan returns total identical medium drill slots for one unit.
func (p *Planner) BuildUnitPlan(unitName string, total int) []Item {
	if total <= 0 {
		return []Item{}
	}
	visual := NeedsVisual(unitName)
	plan := make([]Item, total)
	for i := range plan {
		plan[i] = Item{
			Topic:         unitName,
			Tier:          difficulty.Medium,
			Category:      CategoryDrill,
			RequireVisual: visual,
		}
	}
	return plan
}

// BuildCatalogPlan plans for a student without weak or current topics.
// Up to three catalog units are sampled (GenericTopics when the catalog
// is empty) and assigned 20% review at easy, 60% current at medium and
// the rest challenge at hard. With two or more slots there is at least
// one review and one current slot.
func (p *Planner) BuildCatalogPlan(catalogTopics []string, total int) []Item {
	if total <= 0 {
		return []Item{}
	}

	topics := GenericTopics
	if len(catalogTopics) > 0 {
		topics = p.sample(catalogTopics, 3)
	}
	at := func(i int) string {
		if i < len(topics) {
			return topics[i]
		}
		return topics[len(topics)-1]
	}

	if total == 1 {
		return []Item{{Topic: at(1), Tier: difficulty.Medium, Category: CategoryCurrent}}
	}

	reviewCount := max(1, total*CatalogReviewPercent/100)
	currentCount := max(1, total*CatalogCurrentPercent/100)
	if reviewCount+currentCount > total {
		currentCount = total - reviewCount
	}

	plan := make([]Item, 0, total)
	for i := 0; i < reviewCount; i++ {
		plan = append(plan, Item{Topic: at(0), Tier: difficulty.Easy, Category: CategoryReview})
	}
	for i := 0; i < currentCount; i++ {
		plan = append(plan, Item{Topic: at(1), Tier: difficulty.Medium, Category: CategoryCurrent})
	}
	for len(plan) < total {
		plan = append(plan, Item{Topic: at(2), Tier: difficulty.Hard, Category: CategoryChallenge})
	}
	return plan
}

// NeedsVisual reports whether a unit or topic name calls for a diagram.
func NeedsVisual(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range visualKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (p *Planner) pick(from []string) string {
	return from[p.rng.IntN(len(from))]
}

// sample draws up to n distinct elements without replacement.
func (p *Planner) sample(from []string, n int) []string {
	idx := p.rng.Perm(len(from))
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = from[idx[i]]
	}
	return out
}
