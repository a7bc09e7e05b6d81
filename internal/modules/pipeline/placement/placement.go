// Package placement decides which timeline scenes get video treatment.
// Its decision overrides whatever asset types the generation service chose.
package placement

import (
	"sort"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

const DefaultVideoSceneCost = 3

var allowedBudgets = map[int]bool{0: true, 2: true, 4: true}

// ValidBudget reports whether maxVideoScenes is one of 0, 2 or 4.
func ValidBudget(budget int) bool {
	return allowedBudgets[budget]
}

// ModeForBudget derives a production mode when the caller did not pick one.
func ModeForBudget(budget int) pipeline.ProductionMode {
	switch {
	case budget <= 0:
		return pipeline.ProductionImageOnly
	case budget <= 2:
		return pipeline.ProductionBalanced
	default:
		return pipeline.ProductionPremium
	}
}

// StrategyFor reports SMART when any scene may become video.
func StrategyFor(mode pipeline.ProductionMode, budget int) pipeline.PlacementStrategy {
	if budget <= 0 || mode == pipeline.ProductionImageOnly {
		return pipeline.PlacementFixed
	}
	return pipeline.PlacementSmart
}

// SelectIndexes returns the sorted timeline indexes that become video: the
// hook (0), the payoff (L-1) from budget 2, and the 33%/66% anchors from
// budget 4, truncated to budget.
func SelectIndexes(length int, mode pipeline.ProductionMode, budget int) []int {
	out := []int{}
	if length <= 0 || budget <= 0 || mode == pipeline.ProductionImageOnly {
		return out
	}
	seen := map[int]bool{}
	add := func(i int) {
		if i < 0 || i >= length || seen[i] {
			return
		}
		seen[i] = true
		out = append(out, i)
	}
	add(0)
	if budget >= 2 {
		add(length - 1)
	}
	if budget >= 4 {
		add(length * 33 / 100)
		add(length * 66 / 100)
	}
	sort.Ints(out)
	if len(out) > budget {
		out = out[:budget]
	}
	return out
}

type Result struct {
	Timeline      []pipeline.TimelineEntry
	Selected      []int
	VideoCount    int
	ImageCount    int
	EstimatedCost int
}

// Enforce returns a copy of timeline with every asset type rewritten.
func Enforce(timeline []pipeline.TimelineEntry, mode pipeline.ProductionMode, budget, videoSceneCost int) Result {
	selected := SelectIndexes(len(timeline), mode, budget)
	picked := make(map[int]bool, len(selected))
	for _, i := range selected {
		picked[i] = true
	}

	res := Result{
		Timeline: make([]pipeline.TimelineEntry, len(timeline)),
		Selected: selected,
	}
	for i, entry := range timeline {
		if picked[i] {
			entry.AssetType = pipeline.AssetVideo
			res.VideoCount++
		} else {
			entry.AssetType = pipeline.AssetImage
			res.ImageCount++
		}
		res.Timeline[i] = entry
	}
	if videoSceneCost < 0 {
		videoSceneCost = 0
	}
	res.EstimatedCost = res.VideoCount * videoSceneCost
	return res
}
