package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRendersEveryPrompt(t *testing.T) {
	in := Input{
		Title:            "Dentist outreach",
		Idea:             "dentist outreach",
		Language:         "English",
		PrimaryHook:      "Your smile is losing you clients",
		StoryboardText:   "Scene 1:\nVisual: a dentist",
		StoryboardJSON:   `[{"scene":1}]`,
		Style:            string(StyleDefault),
		StyleProfile:     StyleProfile(StyleDefault),
		StyleNames:       strings.Join(StyleNames(), ", "),
		Character:        DefaultCharacter,
		Platform:         DefaultPlatform,
		VideoStyle:       DefaultVideoStyle,
		DurationPreset:   DefaultDuration,
		DurationMin:      6,
		DurationMax:      8,
		Tool:             DefaultTool,
		VideoPromptsJSON: `[]`,
		Mode:             "STATIC",
		SceneCount:       6,
		TargetDuration:   18,
		GroupingJSON:     `[[1],[2]]`,
		SmartIndexesJSON: `[0,5]`,
		Kind:             "hooks",
		SourceLanguage:   "English",
		TargetLanguage:   "French (Canada)",
		ContentJSON:      `["a"]`,
	}
	want := map[PromptName]float64{
		PromptHooks:         0.7,
		PromptStoryboard:    0.6,
		PromptImagePrompts:  0.4,
		PromptVideoPrompts:  0.7,
		PromptEditingScript: 0.4,
		PromptTranslate:     0.2,
	}
	for name, temp := range want {
		p, err := Build(name, in)
		require.NoError(t, err, name)
		assert.Equal(t, temp, p.Temperature, name)
		assert.NotEmpty(t, p.System, name)
		assert.NotEmpty(t, p.User, name)
		assert.NotContains(t, p.User, "<no value>", name)
	}

	p, err := Build(PromptEditingScript, in)
	require.NoError(t, err)
	assert.Contains(t, p.User, "Target duration: 18.0s")
	assert.Contains(t, p.User, "exactly 6")

	p, err = Build(PromptVideoPrompts, in)
	require.NoError(t, err)
	assert.Contains(t, p.System, "between 6-8 seconds")
}

func TestBuildValidatesInput(t *testing.T) {
	_, err := Build(PromptHooks, Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Idea required")

	_, err = Build(PromptEditingScript, Input{StoryboardJSON: "[]"})
	require.Error(t, err)

	_, err = Build(PromptName("nope"), Input{})
	require.Error(t, err)
}

func TestInferStyle(t *testing.T) {
	cases := []struct {
		texts []string
		want  ImageStyle
	}{
		{[]string{"", "dentist outreach", "dental care for families"}, StyleDefault},
		{[]string{"SaaS"}, StyleBusiness},
		{[]string{"", "grow as a TikTok creator"}, StyleCreator},
		{[]string{"life coaching"}, StyleCoaching},
		{[]string{"home workouts"}, StyleFitness},
		{[]string{"skincare routine"}, StyleBeauty},
		{[]string{"easy recipes"}, StyleFood},
		{[]string{"Real Estate agents"}, StyleRealEstate},
		{[]string{"used car dealership"}, StyleAutomotive},
		{[]string{"career advice"}, StyleDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InferStyle(tc.texts...), tc.texts)
	}
}

func TestPresets(t *testing.T) {
	key, min, max := ParseDuration("9-12")
	assert.Equal(t, "9_12", key)
	assert.Equal(t, 9, min)
	assert.Equal(t, 12, max)

	key, min, max = ParseDuration("6_8_PUNCHY")
	assert.Equal(t, "6_8", key)
	assert.Equal(t, []int{6, 8}, []int{min, max})

	key, _, max = ParseDuration("forever")
	assert.Equal(t, DefaultDuration, key)
	assert.Equal(t, 8, max)

	assert.Equal(t, "REELS", PickPreset("instagram_reels", Platforms, DefaultPlatform))
	assert.Equal(t, "UGC", PickPreset("UGC_TALKING_HEAD", VideoStyles, DefaultVideoStyle))
	assert.Equal(t, DefaultTool, PickPreset("", VideoTools, DefaultTool))
	assert.Equal(t, "RUNWAY", PickPreset("runway", VideoTools, DefaultTool))

	assert.Equal(t, "French (Canada)", LanguageName("fr"))
	assert.Equal(t, "English", LanguageName(""))
	assert.Equal(t, "es", LanguageName("es"))
}
