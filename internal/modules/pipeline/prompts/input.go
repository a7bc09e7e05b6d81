package prompts

// Input is a superset of the fields any prompt reads.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Project
	Title string
	Idea  string
	Niche string
	// Output language, already expanded to a human name ("English").
	Language string

	// Storyboard
	PrimaryHook    string
	StoryboardText string
	StoryboardJSON string

	// Image prompts
	Style        string
	StyleProfile string
	StyleNames   string
	Character    string

	// Video prompts
	Platform       string
	VideoStyle     string
	DurationPreset string
	DurationMin    int
	DurationMax    int
	Tool           string

	// Editing script
	VideoPromptsJSON string
	Mode             string
	SceneCount       int
	TargetDuration   float64
	GroupingJSON     string
	ProductionMode   string
	MaxVideoScenes   int
	SmartIndexesJSON string

	// Translate
	Kind           string
	SourceLanguage string
	TargetLanguage string
	ContentJSON    string
}
