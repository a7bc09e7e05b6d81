package pipeline

import "strings"

// StageKind identifies which pipeline step produced an artifact.
type StageKind string

const (
	StageHooks         StageKind = "hooks"
	StageStoryboard    StageKind = "storyboard"
	StageImagePrompts  StageKind = "image_prompts"
	StageVideoPrompts  StageKind = "video_prompts"
	StageEditingScript StageKind = "editing_script"
	StageSelectedHook  StageKind = "selected_hook"
	StageScript        StageKind = "script"
)

var allStages = []StageKind{
	StageHooks,
	StageStoryboard,
	StageImagePrompts,
	StageVideoPrompts,
	StageEditingScript,
	StageSelectedHook,
	StageScript,
}

func AllStages() []StageKind {
	out := make([]StageKind, len(allStages))
	copy(out, allStages)
	return out
}

// ParseStageKind accepts snake or kebab case ("image-prompts").
func ParseStageKind(raw string) (StageKind, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	for _, k := range allStages {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

func (k StageKind) Valid() bool {
	for _, s := range allStages {
		if s == k {
			return true
		}
	}
	return false
}

const DefaultLanguage = "en"

// NormalizeLanguage lower-cases a language tag and applies the default.
// Returns false when the tag has characters outside [a-z0-9-] or is too long.
func NormalizeLanguage(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultLanguage, true
	}
	if len(s) > 16 {
		return "", false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return "", false
		}
	}
	return s, true
}
