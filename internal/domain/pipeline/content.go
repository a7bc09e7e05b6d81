package pipeline

// Stage payloads as persisted in Artifact.Content.

type StoryboardScene struct {
	Scene        int    `json:"scene"`
	OnScreenText string `json:"onScreenText"`
	Voiceover    string `json:"voiceover"`
	Visual       string `json:"visual"`
}

type ImagePrompt struct {
	Scene       int    `json:"scene"`
	Character   string `json:"character,omitempty"`
	Intent      string `json:"intent,omitempty"`
	Style       string `json:"style,omitempty"`
	ImagePrompt string `json:"imagePrompt"`
}

type ImagePrompts struct {
	Style   string        `json:"style"`
	Count   int           `json:"count"`
	Prompts []ImagePrompt `json:"prompts"`
}

type VideoVariants struct {
	Generic string `json:"GENERIC"`
	Veo     string `json:"VEO"`
	Runway  string `json:"RUNWAY"`
}

type VideoPrompt struct {
	SceneNumber int           `json:"sceneNumber"`
	Title       string        `json:"title"`
	Variants    VideoVariants `json:"variants"`
}

type VideoPresets struct {
	Platform string `json:"platform"`
	Style    string `json:"style"`
	Duration string `json:"duration"`
	Tool     string `json:"tool"`
}

type VideoPrompts struct {
	Presets VideoPresets  `json:"presets"`
	Tools   []string      `json:"tools"`
	Prompts []VideoPrompt `json:"prompts"`
}

type AssetType string

const (
	AssetImage AssetType = "IMAGE"
	AssetVideo AssetType = "VIDEO"
)

type EditingMode string

const (
	EditingStatic  EditingMode = "STATIC"
	EditingDynamic EditingMode = "DYNAMIC"
)

type ProductionMode string

const (
	ProductionImageOnly ProductionMode = "IMAGE_ONLY"
	ProductionBalanced  ProductionMode = "BALANCED"
	ProductionPremium   ProductionMode = "PREMIUM"
)

type PlacementStrategy string

const (
	PlacementSmart PlacementStrategy = "SMART"
	PlacementFixed PlacementStrategy = "FIXED"
)

type TimelineEntry struct {
	Scene        int       `json:"scene"`
	Time         string    `json:"time"`
	AssetType    AssetType `json:"assetType"`
	SourceScenes []int     `json:"sourceScenes,omitempty"`
	Clip         string    `json:"clip"`
	Edit         string    `json:"edit"`
	OnScreenText string    `json:"onScreenText"`
	Voiceover    string    `json:"voiceover"`
	Sound        string    `json:"sound"`
	Notes        string    `json:"notes"`
}

type AssetMix struct {
	Image int `json:"image"`
	Video int `json:"video"`
}

type EditingMeta struct {
	Mode                   EditingMode       `json:"mode"`
	TargetDuration         float64           `json:"targetDuration"`
	ProductionMode         ProductionMode    `json:"productionMode"`
	MaxVideoScenes         int               `json:"maxVideoScenes"`
	VideoSceneCost         int               `json:"videoSceneCost"`
	EstimatedCost          int               `json:"estimatedCost"`
	Mix                    AssetMix          `json:"mix"`
	VideoPlacementStrategy PlacementStrategy `json:"videoPlacementStrategy"`
	SmartVideoIndexes      []int             `json:"smartVideoIndexes"`
	SceneCount             int               `json:"sceneCount"`
	GroupingPlan           [][]int           `json:"groupingPlan,omitempty"`
}

type EditingScript struct {
	Meta        EditingMeta     `json:"meta"`
	Timeline    []TimelineEntry `json:"timeline"`
	ExportNotes []string        `json:"exportNotes"`
}

type SelectedHook struct {
	Hook       string `json:"hook"`
	Language   string `json:"language"`
	SelectedAt string `json:"selectedAt"`
}

// QuotaLimits are per-tier ceilings. A negative value means unlimited.
type QuotaLimits struct {
	PerDay  int `json:"perDay" yaml:"per_day" toml:"per_day"`
	PerWeek int `json:"perWeek" yaml:"per_week" toml:"per_week"`
}

type QuotaUsage struct {
	Today int `json:"today"`
	Week  int `json:"week"`
}

type QuotaDetails struct {
	Plan      string      `json:"plan"`
	Limits    QuotaLimits `json:"limits"`
	Usage     QuotaUsage  `json:"usage"`
	Remaining QuotaUsage  `json:"remaining"`
}
