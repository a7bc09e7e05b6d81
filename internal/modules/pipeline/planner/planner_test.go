package planner

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		u := Unit(fmt.Sprintf("seed-%d", i), TagScenes)
		require.GreaterOrEqual(t, u, 0.0)
		require.Less(t, u, 1.0)
	}
	assert.Equal(t, Unit("a", "|dur"), Unit("a", "|dur"))
	assert.NotEqual(t, Unit("a", "|dur"), Unit("a", "|scenes"))
}

func TestUnitMatchesFNV1a(t *testing.T) {
	// FNV-1a 32 of the empty string is the offset basis 2166136261.
	assert.InDelta(t, 2166136261.0/4294967296.0, Unit("", ""), 1e-12)
}

func TestBuildDeterministic(t *testing.T) {
	seed := Seed("7b0c", "3", "en", "DYNAMIC", "BALANCED", "2")
	a := Build(seed, 10)
	b := Build(seed, 10)
	assert.Equal(t, a, b)
}

func TestBuildVariesAcrossSeeds(t *testing.T) {
	seen := map[string]bool{}
	for v := 1; v <= 40; v++ {
		p := Build(Seed("project", fmt.Sprint(v), "en", "DYNAMIC"), 10)
		seen[fmt.Sprint(p)] = true
	}
	assert.Greater(t, len(seen), 5, "expected distinct plans across seeds")
}

func TestBuildInvariants(t *testing.T) {
	for n := 0; n <= 14; n++ {
		for s := 0; s < 50; s++ {
			seed := fmt.Sprintf("seed|%d|%d", n, s)
			p := Build(seed, n)

			lo, hi := min(6, n), min(9, n)
			require.GreaterOrEqual(t, p.SceneCount, lo, seed)
			require.LessOrEqual(t, p.SceneCount, hi, seed)

			require.GreaterOrEqual(t, p.TargetDuration, 21.0)
			require.LessOrEqual(t, p.TargetDuration, 25.0)
			require.Equal(t, 0.0, math.Mod(p.TargetDuration*2, 1), "duration %v not on a 0.5 step", p.TargetDuration)

			require.Len(t, p.GroupingPlan, p.SceneCount, seed)
			next := 1
			for _, g := range p.GroupingPlan {
				require.NotEmpty(t, g, seed)
				for _, scene := range g {
					require.Equal(t, next, scene, "plan %v must partition 1..%d in order", p.GroupingPlan, n)
					next++
				}
			}
			require.Equal(t, n+1, next, seed)
		}
	}
}

func TestBuildShortStoryboardKeepsEveryScene(t *testing.T) {
	p := Build("short", 4)
	assert.Equal(t, 4, p.SceneCount)
	assert.Equal(t, [][]int{{1}, {2}, {3}, {4}}, p.GroupingPlan)
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, [][]int{{1}, {2}, {3}}, Identity(3))
	assert.Empty(t, Identity(0))
}
