// Package planner decides how many timeline scenes a dynamic edit gets, its
// target duration and which storyboard scenes collapse together. Output is a
// pure function of the seed.
package planner

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	minScenes   = 6
	maxScenes   = 9
	minDuration = 21.0
	maxDuration = 25.0

	TagScenes   = "|scenes"
	TagDuration = "|dur"
)

type Plan struct {
	SceneCount     int     `json:"sceneCount"`
	TargetDuration float64 `json:"targetDuration"`
	GroupingPlan   [][]int `json:"groupingPlan"`
}

// Seed joins stable request identifiers.
func Seed(parts ...string) string {
	return strings.Join(parts, "|")
}

func MergeTag(k int) string {
	return fmt.Sprintf("|merge|%d", k)
}

// Build derives the plan for a storyboard of storyboardLen scenes.
func Build(seed string, storyboardLen int) Plan {
	n := storyboardLen
	if n < 0 {
		n = 0
	}
	sceneCount := IntIn(seed, TagScenes, min(minScenes, n), min(maxScenes, n))
	duration := minDuration + Unit(seed, TagDuration)*(maxDuration-minDuration)
	duration = math.Round(duration*2) / 2

	return Plan{
		SceneCount:     sceneCount,
		TargetDuration: duration,
		GroupingPlan:   groupScenes(seed, n, sceneCount),
	}
}

// groupScenes starts from singletons 1..n and applies n-target adjacent
// merges. Merge k picks a pair position in [0, n-2-k]; merges are applied in
// descending position order so lower positions are unaffected.
func groupScenes(seed string, n, target int) [][]int {
	groups := make([][]int, 0, n)
	for i := 1; i <= n; i++ {
		groups = append(groups, []int{i})
	}
	merges := n - target
	if merges <= 0 {
		return groups
	}
	positions := make([]int, merges)
	for k := 0; k < merges; k++ {
		positions[k] = IntIn(seed, MergeTag(k), 0, n-2-k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))
	for _, p := range positions {
		if p > len(groups)-2 {
			p = len(groups) - 2
		}
		merged := append(append([]int{}, groups[p]...), groups[p+1]...)
		groups = append(groups[:p], append([][]int{merged}, groups[p+2:]...)...)
	}
	return groups
}

// Identity is the static grouping: one group per storyboard scene.
func Identity(storyboardLen int) [][]int {
	out := make([][]int, 0, storyboardLen)
	for i := 1; i <= storyboardLen; i++ {
		out = append(out, []int{i})
	}
	return out
}
