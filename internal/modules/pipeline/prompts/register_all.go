package prompts

func RegisterAll() {
	RegisterSpec(Spec{
		Name:        PromptHooks,
		Version:     1,
		Temperature: 0.7,
		System: `
You are a senior short-form copywriter.
Return JSON only.`,
		User: `
Language: {{.Language}}

Task:
Generate 10 high-performing hooks for short-form videos (TikTok / Reels / Shorts).

Rules:
- Hooks must be concise (1 sentence max)
- Strong curiosity or pain-based
- No emojis
- No hashtags
- No explanations

Context:
{{.Idea}}

Output format:
JSON array of strings.`,
		Validators: []Validator{
			RequireNonEmpty("Idea", func(in Input) string { return in.Idea }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptStoryboard,
		Version:     1,
		Temperature: 0.6,
		System: `
You are an expert short-form video writer.
The storyboard you write drives the rest of a production pipeline.
Return ONLY valid JSON, with no extra text.`,
		User: `
Goal: create a SHORT storyboard from an idea and a primary hook.

Language: write on-screen text and voiceover in {{.Language}}.
Style: direct, punchy, viral, easy to follow.

INPUT:
- Idea: """{{.Idea}}"""
- Primary hook: """{{.PrimaryHook}}"""

OUTPUT FORMAT:
A JSON array of 6 to 8 objects. Each object MUST have exactly these keys:
- scene (number starting at 1)
- onScreenText (string, short, max ~12 words)
- voiceover (string, 1-2 sentences)
- visual (string, describe what we see)

Rules:
- Scene 1 must be the hook.
- Keep it fast-paced, high retention.
- No emojis in voiceover.
- No markdown. JSON only.`,
		Validators: []Validator{
			RequireNonEmpty("Idea", func(in Input) string { return in.Idea }),
			RequireNonEmpty("PrimaryHook", func(in Input) string { return in.PrimaryHook }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptImagePrompts,
		Version:     1,
		Temperature: 0.4,
		System: `
You are ShortCraft's Image Prompt Generator.
Turn each storyboard scene into ONE high-quality image prompt for image generators.

Hard rules:
- Output MUST be valid JSON ONLY (no markdown, no prose).
- Output MUST be a JSON array of objects, one per scene, in input order.
- Prompts MUST be in English.
- Always include 'vertical 9:16'.
- NEVER ask to render text in the image.
- Always end with: No text, no subtitles, no watermark, no logo.

Fields per item:
- scene (number)
- character (string, a multi-line block starting with 'Main character:')
- intent (string)
- style (one of: {{.StyleNames}})
- imagePrompt (string)`,
		User: `
Generate image prompts for the storyboard below.

Global settings:
- Chosen style: {{.Style}}
- Style profile: {{.StyleProfile}}

Character consistency block (must be identical across all items):
{{.Character}}

Storyboard scenes:
{{.StoryboardText}}

imagePrompt template:
A vertical 9:16 cinematic photo.
[CHARACTER BLOCK]
Scene intent: [INTENT PHRASE + 1 short sentence describing emotion/action]
Environment: [LOCATION / ENVIRONMENT]
Style profile: [STYLE PROFILE]
Camera: [SHOT TYPE + LENS]
No text, no subtitles, no watermark, no logo, no distorted face, no extra fingers, no blur, no low quality`,
		Validators: []Validator{
			RequireNonEmpty("StoryboardText", func(in Input) string { return in.StoryboardText }),
			RequireNonEmpty("Style", func(in Input) string { return in.Style }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptVideoPrompts,
		Version:     1,
		Temperature: 0.7,
		System: `
You are a senior short-form VIDEO PROMPT ENGINEER.

OUTPUT RULES:
- Return ONLY valid JSON (no markdown).
- Return an ARRAY of objects shaped like:
  {"sceneNumber": number, "title": string, "variants": {"GENERIC": string, "VEO": string, "RUNWAY": string}}
- Everything must be written in English.

Each variant MUST be a multi-line block with exactly these labels:
HOOK LINE:, CUTS:, SCENE:, CAMERA:, LIGHTING:, ACTION:, ON-SCREEN TEXT:, VOICE-OVER (EN):, SOUND DESIGN:, NEGATIVE:, SETTINGS:

CUTS: 3 to 5 bullet beats describing shot changes, no timestamps.
SETTINGS: Format 9:16, Duration an exact value between {{.DurationMin}}-{{.DurationMax}} seconds.

TOOL EMPHASIS:
- GENERIC: universal, tool-agnostic, clean
- VEO: cinematic camera language, believable sound cues
- RUNWAY: motion continuity, clear transitions, anti-warp

FORBIDDEN: brand names, copyrighted music, platform UI references, vague filler.`,
		User: `
PROJECT
Title: {{.Title}}
Idea: {{.Idea}}

PRESETS
Platform: {{.Platform}}
Style: {{.VideoStyle}}
Duration preset: {{.DurationPreset}}
Tool preset: {{.Tool}}

STORYBOARD
{{.StoryboardText}}

TASK
Generate tool-ready video prompts (3 variants per scene) following the labeled format.
Return ONLY the JSON array.`,
		Validators: []Validator{
			RequireNonEmpty("StoryboardText", func(in Input) string { return in.StoryboardText }),
			RequirePositive("DurationMax", func(in Input) int { return in.DurationMax }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptEditingScript,
		Version:     1,
		Temperature: 0.4,
		System: `
You are a senior short-form video editor.
Produce an EDITING SCRIPT (not a narration script), actionable in CapCut or Premiere:
cuts, pacing, text, b-roll, sfx, music cues. Vertical 9:16.
Return STRICT JSON only (no markdown).`,
		User: `
Project: {{.Title}}
Edit mode: {{.Mode}}
Target duration: {{printf "%.1f" .TargetDuration}}s
Timeline scenes: exactly {{.SceneCount}}
Production mode: {{.ProductionMode}} (max video scenes: {{.MaxVideoScenes}})
Suggested VIDEO scene indexes (0-based): {{.SmartIndexesJSON}}
Scene grouping (each group of storyboard scenes becomes ONE timeline scene, in order):
{{.GroupingJSON}}

INPUT 1) STORYBOARD SCENES (truth):
{{.StoryboardJSON}}

INPUT 2) VIDEO PROMPTS (visual intent and camera ideas):
{{.VideoPromptsJSON}}

OUTPUT FORMAT (STRICT JSON object):
{
  "timeline": [
    {
      "scene": 1,
      "time": "0.0-3.0s",
      "assetType": "IMAGE or VIDEO",
      "sourceScenes": [1],
      "clip": "what is shown",
      "edit": "cut/zoom/speed/ramp instructions",
      "onScreenText": "exact on-screen text (short)",
      "voiceover": "VO line from the storyboard",
      "sound": "SFX and music cue",
      "notes": "extra editor notes"
    }
  ],
  "exportNotes": ["global notes for export, captions, pacing, audio mix"]
}

Rules:
- One timeline item per group above, in the same order.
- Time ranges must add up to the target duration.
- Use storyboard voiceover text (light trimming ok, no new claims).
- Strong first second, frequent cuts, clear text overlays.`,
		Validators: []Validator{
			RequireNonEmpty("StoryboardJSON", func(in Input) string { return in.StoryboardJSON }),
			RequirePositive("SceneCount", func(in Input) int { return in.SceneCount }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptTranslate,
		Version:     1,
		Temperature: 0.2,
		System: `
You are a professional translator for short-form video content.
Keep meaning, tone, and structure. Do not add new claims.`,
		User: `
Project: {{.Title}}
Kind: {{.Kind}}
Target language: {{.TargetLanguage}}
Source language: {{.SourceLanguage}}

Translate the content below.
Return the SAME STRUCTURE as the input:
- If input is an array, return an array.
- If input is an object, return an object with the same keys.
- Do not wrap in markdown.

INPUT JSON:
{{.ContentJSON}}`,
		Validators: []Validator{
			RequireNonEmpty("ContentJSON", func(in Input) string { return in.ContentJSON }),
			RequireNonEmpty("TargetLanguage", func(in Input) string { return in.TargetLanguage }),
		},
	})
}
