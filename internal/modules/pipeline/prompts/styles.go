package prompts

import (
	"sort"
	"strings"
	"unicode"
)

type ImageStyle string

const (
	StyleDefault    ImageStyle = "default"
	StyleBusiness   ImageStyle = "business"
	StyleCreator    ImageStyle = "creator"
	StyleCoaching   ImageStyle = "coaching"
	StyleFitness    ImageStyle = "fitness"
	StyleBeauty     ImageStyle = "beauty"
	StyleFood       ImageStyle = "food"
	StyleRealEstate ImageStyle = "realestate"
	StyleAutomotive ImageStyle = "automotive"
)

var styleProfiles = map[ImageStyle]string{
	StyleDefault:    "cinematic lighting, ultra-realistic, shallow depth of field, professional photo look",
	StyleBusiness:   "clean modern office, soft natural lighting, professional atmosphere, high-end startup aesthetic",
	StyleCreator:    "natural daylight, handheld smartphone feel, authentic social media photo, slightly imperfect framing",
	StyleCoaching:   "soft warm lighting, calm environment, minimal background, emotional and introspective mood",
	StyleFitness:    "high-contrast gym lighting, dynamic energy, sweat detail, athletic realism, premium fitness campaign look",
	StyleBeauty:     "soft beauty lighting, clean studio background, high-end skincare editorial look, natural skin texture",
	StyleFood:       "appetizing natural lighting, macro detail, steam and texture emphasis, premium food photography look",
	StyleRealEstate: "bright airy interior, wide clean composition, architectural realism, premium listing photo look",
	StyleAutomotive: "dramatic showroom lighting, glossy reflections, cinematic car commercial look, crisp detail",
}

const DefaultCharacter = "Main character:\n" +
	"Relatable adult, realistic facial features, not a model, natural skin texture.\n" +
	"Neutral clothing (t-shirt / casual blazer), modern look."

// Checked in order; the first rule with a hit wins. Stems match word
// prefixes, words match whole words, phrases match anywhere.
var styleRules = []struct {
	style   ImageStyle
	stems   []string
	words   []string
	phrases []string
}{
	{style: StyleBusiness, stems: []string{"saas", "business", "startup", "money", "entrepreneur"}},
	{style: StyleCreator, stems: []string{"creator", "ugc", "tiktok", "reels", "influencer"}},
	{style: StyleCoaching, stems: []string{"coach", "mindset", "therap", "psych"}},
	{style: StyleFitness, stems: []string{"fitness", "gym", "workout"}},
	{style: StyleBeauty, stems: []string{"beauty", "skincare", "makeup", "cosmetic"}},
	{style: StyleFood, stems: []string{"food", "recipe", "cooking", "restaurant"}},
	{style: StyleRealEstate, stems: []string{"realtor", "mortgage", "realestate"}, phrases: []string{"real estate"}},
	{style: StyleAutomotive, stems: []string{"automotive", "dealership"}, words: []string{"car", "cars", "auto"}},
}

// InferStyle maps free project text (niche, title, idea) to an image style.
func InferStyle(texts ...string) ImageStyle {
	joined := strings.ToLower(strings.Join(texts, " "))
	words := strings.FieldsFunc(joined, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range styleRules {
		for _, p := range rule.phrases {
			if strings.Contains(joined, p) {
				return rule.style
			}
		}
		for _, w := range words {
			for _, s := range rule.stems {
				if strings.HasPrefix(w, s) {
					return rule.style
				}
			}
			for _, exact := range rule.words {
				if w == exact {
					return rule.style
				}
			}
		}
	}
	return StyleDefault
}

func ParseImageStyle(raw string) (ImageStyle, bool) {
	s := ImageStyle(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := styleProfiles[s]
	return s, ok
}

func StyleProfile(s ImageStyle) string {
	if p, ok := styleProfiles[s]; ok {
		return p
	}
	return styleProfiles[StyleDefault]
}

func StyleNames() []string {
	out := make([]string, 0, len(styleProfiles))
	for s := range styleProfiles {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// Video presets.

var (
	Platforms   = []string{"TIKTOK", "REELS", "SHORTS"}
	VideoStyles = []string{"UGC", "CINEMATIC", "DOCUMENTARY", "ANIMATED"}
	VideoTools  = []string{"GENERIC", "VEO", "RUNWAY"}
)

const (
	DefaultPlatform   = "REELS"
	DefaultVideoStyle = "UGC"
	DefaultDuration   = "6_8"
	DefaultTool       = "VEO"
)

var durationRanges = []struct {
	key      string
	min, max int
}{
	{"6_8", 6, 8},
	{"9_12", 9, 12},
	{"12_15", 12, 15},
	{"15_30", 15, 30},
}

// ParseDuration accepts "9_12", "9-12" or decorated forms like "9_12_STORY".
// Unknown input falls back to 6-8 seconds.
func ParseDuration(raw string) (key string, min, max int) {
	p := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "-", "_")
	for _, d := range durationRanges {
		if p == d.key || strings.HasPrefix(p, d.key+"_") {
			return d.key, d.min, d.max
		}
	}
	return durationRanges[0].key, durationRanges[0].min, durationRanges[0].max
}

// PickPreset returns the canonical option matching raw, or def. Decorated
// values such as "INSTAGRAM_REELS" resolve to the option they contain.
func PickPreset(raw string, options []string, def string) string {
	p := strings.ToUpper(strings.TrimSpace(raw))
	if p == "" {
		return def
	}
	for _, o := range options {
		if p == o {
			return o
		}
	}
	for _, o := range options {
		if strings.Contains(p, o) {
			return o
		}
	}
	return def
}

// LanguageName renders a language variant for prompt text.
func LanguageName(tag string) string {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "en":
		return "English"
	case "fr":
		return "French (Canada)"
	default:
		return tag
	}
}
