package domain

import (
	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
	"github.com/yungbote/shortcraft-backend/internal/domain/projects"
	"github.com/yungbote/shortcraft-backend/internal/domain/user"
)

type User = user.User
type Project = projects.Project

type Artifact = pipeline.Artifact
type StageKind = pipeline.StageKind

const (
	StageHooks         = pipeline.StageHooks
	StageStoryboard    = pipeline.StageStoryboard
	StageImagePrompts  = pipeline.StageImagePrompts
	StageVideoPrompts  = pipeline.StageVideoPrompts
	StageEditingScript = pipeline.StageEditingScript
	StageSelectedHook  = pipeline.StageSelectedHook
	StageScript        = pipeline.StageScript
)

type StoryboardScene = pipeline.StoryboardScene
type ImagePrompt = pipeline.ImagePrompt
type ImagePrompts = pipeline.ImagePrompts
type VideoPrompt = pipeline.VideoPrompt
type VideoPrompts = pipeline.VideoPrompts
type VideoPresets = pipeline.VideoPresets
type VideoVariants = pipeline.VideoVariants
type TimelineEntry = pipeline.TimelineEntry
type EditingScript = pipeline.EditingScript
type EditingMeta = pipeline.EditingMeta
type SelectedHook = pipeline.SelectedHook

type QuotaLimits = pipeline.QuotaLimits
type QuotaUsage = pipeline.QuotaUsage
type QuotaDetails = pipeline.QuotaDetails
