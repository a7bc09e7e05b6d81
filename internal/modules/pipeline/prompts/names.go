package prompts

type PromptName string

const (
	PromptHooks         PromptName = "hooks"
	PromptStoryboard    PromptName = "storyboard"
	PromptImagePrompts  PromptName = "image_prompts"
	PromptVideoPrompts  PromptName = "video_prompts"
	PromptEditingScript PromptName = "editing_script"
	PromptTranslate     PromptName = "translate"
)
