package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	types "github.com/yungbote/shortcraft-backend/internal/domain"
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/normalize"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/placement"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/planner"
	"github.com/yungbote/shortcraft-backend/internal/modules/pipeline/prompts"
)

const staticSecondsPerScene = 3.0

var errNoTimeline = errors.New("editing script has no usable timeline entries")

type EditingScriptInput struct {
	StageInput
	// Mode is STATIC or DYNAMIC; empty means STATIC.
	Mode string
	// ProductionMode is derived from MaxVideoScenes when empty.
	ProductionMode string
	MaxVideoScenes int
	// VideoSceneCost nil uses placement.DefaultVideoSceneCost.
	VideoSceneCost *int
}

type EditingScriptOutput struct {
	StageOutput
	Script *types.EditingScript `json:"script,omitempty"`
}

type editingOptions struct {
	mode   pipeline.EditingMode
	prod   pipeline.ProductionMode
	budget int
	cost   int
}

func parseEditingOptions(op string, in EditingScriptInput) (editingOptions, error) {
	opts := editingOptions{budget: in.MaxVideoScenes, cost: placement.DefaultVideoSceneCost}

	switch strings.ToUpper(strings.TrimSpace(in.Mode)) {
	case "", string(pipeline.EditingStatic):
		opts.mode = pipeline.EditingStatic
	case string(pipeline.EditingDynamic):
		opts.mode = pipeline.EditingDynamic
	default:
		return opts, pipeline.Validation(op, fmt.Sprintf("mode must be STATIC or DYNAMIC, got %q", in.Mode))
	}

	if !placement.ValidBudget(in.MaxVideoScenes) {
		return opts, pipeline.Validation(op, "maxVideoScenes must be one of 0, 2 or 4")
	}

	switch pm := pipeline.ProductionMode(strings.ToUpper(strings.TrimSpace(in.ProductionMode))); pm {
	case "":
		opts.prod = placement.ModeForBudget(in.MaxVideoScenes)
	case pipeline.ProductionImageOnly, pipeline.ProductionBalanced, pipeline.ProductionPremium:
		opts.prod = pm
	default:
		return opts, pipeline.Validation(op, fmt.Sprintf("unknown productionMode %q", in.ProductionMode))
	}

	if in.VideoSceneCost != nil {
		if *in.VideoSceneCost < 0 {
			return opts, pipeline.Validation(op, "videoSceneCost must be >= 0")
		}
		opts.cost = *in.VideoSceneCost
	}
	return opts, nil
}

// GenerateEditingScript runs quota, dependencies, generation, normalization,
// planning and placement, then persists. Nothing is written on failure.
func GenerateEditingScript(ctx context.Context, deps StageDeps, in EditingScriptInput) (EditingScriptOutput, error) {
	const op = "generate_editing_script"
	var script *types.EditingScript
	out, err := traced(ctx, types.StageEditingScript, in.ProjectID, func(ctx context.Context) (StageOutput, error) {
		if err := deps.validate(op); err != nil {
			return StageOutput{}, err
		}
		opts, err := parseEditingOptions(op, in)
		if err != nil {
			return StageOutput{}, err
		}

		run, err := begin(ctx, deps, in.StageInput, op, types.StageEditingScript, beginOptions{})
		if err != nil {
			return StageOutput{}, err
		}
		scenes := decodeStoryboard(run.deps[types.StageStoryboard])
		if len(scenes) == 0 {
			return StageOutput{}, pipeline.MissingDependency(op, types.StageStoryboard)
		}

		plan, err := planFor(deps, run, opts, len(scenes))
		if err != nil {
			return StageOutput{}, err
		}
		smart := placement.SelectIndexes(plan.SceneCount, opts.prod, opts.budget)
		run.log.Debug("editing plan",
			"mode", string(opts.mode),
			"scene_count", plan.SceneCount,
			"target_duration", plan.TargetDuration,
			"smart_indexes", smart,
		)

		raw, err := run.generate(ctx, deps, prompts.PromptEditingScript, prompts.Input{
			Title:            run.project.Title,
			Idea:             run.project.Idea,
			Language:         prompts.LanguageName(run.language),
			StoryboardJSON:   indentJSON(scenes),
			VideoPromptsJSON: prettyContent(run.deps[types.StageVideoPrompts]),
			Mode:             string(opts.mode),
			SceneCount:       plan.SceneCount,
			TargetDuration:   plan.TargetDuration,
			GroupingJSON:     indentJSON(plan.GroupingPlan),
			ProductionMode:   string(opts.prod),
			MaxVideoScenes:   opts.budget,
			SmartIndexesJSON: indentJSON(smart),
		})
		if err != nil {
			return StageOutput{}, err
		}

		timeline, notes, err := NormalizeEditingScript(op, raw)
		if err != nil {
			run.log.Warn("editing script output rejected", "error", err)
			return StageOutput{}, err
		}
		timeline = CoerceTimeline(timeline, plan.GroupingPlan, scenes, plan.TargetDuration)
		placed := placement.Enforce(timeline, opts.prod, opts.budget, opts.cost)

		script = &types.EditingScript{
			Meta: types.EditingMeta{
				Mode:                   opts.mode,
				TargetDuration:         plan.TargetDuration,
				ProductionMode:         opts.prod,
				MaxVideoScenes:         opts.budget,
				VideoSceneCost:         opts.cost,
				EstimatedCost:          placed.EstimatedCost,
				Mix:                    pipeline.AssetMix{Image: placed.ImageCount, Video: placed.VideoCount},
				VideoPlacementStrategy: placement.StrategyFor(opts.prod, opts.budget),
				SmartVideoIndexes:      placed.Selected,
				SceneCount:             len(placed.Timeline),
			},
			Timeline:    placed.Timeline,
			ExportNotes: notes,
		}
		if opts.mode == pipeline.EditingDynamic {
			script.Meta.GroupingPlan = plan.GroupingPlan
		}

		art, err := run.persist(ctx, deps, types.StageEditingScript, run.language, script)
		if err != nil {
			return StageOutput{}, err
		}
		return StageOutput{Artifact: art}, nil
	})
	return EditingScriptOutput{StageOutput: out, Script: script}, err
}

// planFor returns the identity plan for STATIC and the seeded plan for
// DYNAMIC. The seed uses the version about to be written so a retry of the
// same request replays the same plan.
func planFor(deps StageDeps, run *stageRun, opts editingOptions, n int) (planner.Plan, error) {
	if opts.mode == pipeline.EditingStatic {
		return planner.Plan{
			SceneCount:     n,
			TargetDuration: math.Round(staticSecondsPerScene*float64(n)*2) / 2,
			GroupingPlan:   planner.Identity(n),
		}, nil
	}
	next, err := deps.Artifacts.NextVersion(run.dbc, run.project.ID, run.language, types.StageEditingScript)
	if err != nil {
		return planner.Plan{}, pipeline.Wrap(pipeline.CodeInternal, run.op, err)
	}
	seed := planner.Seed(
		run.project.ID.String(),
		strconv.Itoa(next),
		run.language,
		string(opts.mode),
		string(opts.prod),
		strconv.Itoa(opts.budget),
	)
	return planner.Build(seed, n), nil
}

// NormalizeEditingScript requires an object with a non-empty timeline.
func NormalizeEditingScript(op, raw string) ([]types.TimelineEntry, []string, error) {
	fields, err := normalize.Fields(op, raw)
	if err != nil {
		return nil, nil, err
	}
	var items []json.RawMessage
	if tl := bytes.TrimSpace(fields["timeline"]); len(tl) == 0 || tl[0] != '[' || json.Unmarshal(tl, &items) != nil {
		return nil, nil, pipeline.MalformedOutput(op, raw, errNoTimeline)
	}
	timeline := normalize.DecodeItems[types.TimelineEntry](items)
	if len(timeline) == 0 {
		return nil, nil, pipeline.MalformedOutput(op, raw, errNoTimeline)
	}

	notes := []string{}
	var noteItems []json.RawMessage
	if json.Unmarshal(fields["exportNotes"], &noteItems) == nil {
		for _, n := range normalize.DecodeItems[string](noteItems) {
			if n = strings.TrimSpace(n); n != "" {
				notes = append(notes, n)
			}
		}
	}
	return timeline, notes, nil
}

// CoerceTimeline makes the timeline follow groups. The entry for group i is
// the one whose sourceScenes start at the group's first storyboard scene,
// else the one numbered i+1; entries are taken by position only when the
// reply carries no usable numbering. Missing entries are built from the
// storyboard, extras are dropped and empty time ranges are spread evenly
// over target seconds.
func CoerceTimeline(entries []types.TimelineEntry, groups [][]int, scenes []types.StoryboardScene, target float64) []types.TimelineEntry {
	out := make([]types.TimelineEntry, 0, len(groups))
	slot := 0.0
	if len(groups) > 0 {
		slot = target / float64(len(groups))
	}
	pick := timelineMatcher(entries)
	for i, g := range groups {
		e := pick(i, g)
		e.Scene = i + 1
		e.SourceScenes = append([]int{}, g...)

		var texts, voice, visuals []string
		for _, pos := range g {
			if pos < 1 || pos > len(scenes) {
				continue
			}
			s := scenes[pos-1]
			texts = appendNonEmpty(texts, s.OnScreenText)
			voice = appendNonEmpty(voice, s.Voiceover)
			visuals = appendNonEmpty(visuals, s.Visual)
		}
		e.OnScreenText = firstNonEmpty(e.OnScreenText, strings.Join(texts, " / "))
		e.Voiceover = firstNonEmpty(e.Voiceover, strings.Join(voice, " "))
		e.Clip = firstNonEmpty(e.Clip, strings.Join(visuals, "; "))
		if strings.TrimSpace(e.Time) == "" {
			e.Time = fmt.Sprintf("%.1f-%.1fs", slot*float64(i), slot*float64(i+1))
		}
		out = append(out, e)
	}
	return out
}

// timelineMatcher returns a lookup from (group index, group) to the reply
// entry covering it. Each entry is handed out at most once.
func timelineMatcher(entries []types.TimelineEntry) func(int, []int) types.TimelineEntry {
	bySource := map[int]int{}
	byScene := map[int]int{}
	numbered := len(entries) > 0
	for i, e := range entries {
		if len(e.SourceScenes) > 0 {
			if _, dup := bySource[e.SourceScenes[0]]; dup {
				bySource[e.SourceScenes[0]] = -1
			} else {
				bySource[e.SourceScenes[0]] = i
			}
		}
		if _, dup := byScene[e.Scene]; e.Scene < 1 || dup {
			numbered = false
		}
		byScene[e.Scene] = i
	}
	used := make([]bool, len(entries))
	take := func(i int) (types.TimelineEntry, bool) {
		if i < 0 || i >= len(entries) || used[i] {
			return types.TimelineEntry{}, false
		}
		used[i] = true
		return entries[i], true
	}
	return func(idx int, group []int) types.TimelineEntry {
		if len(group) > 0 {
			if j, ok := bySource[group[0]]; ok {
				if e, ok := take(j); ok {
					return e
				}
			}
		}
		if numbered {
			if j, ok := byScene[idx+1]; ok {
				if e, ok := take(j); ok {
					return e
				}
			}
			return types.TimelineEntry{}
		}
		e, _ := take(idx)
		return e
	}
}

func appendNonEmpty(list []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(list, s)
	}
	return list
}

func prettyContent(a *types.Artifact) string {
	if a == nil || len(a.Content) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, a.Content, "", "  "); err != nil {
		return string(a.Content)
	}
	return buf.String()
}
