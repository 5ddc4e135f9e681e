package thread

import "strings"

// Tones offered to callers.
const (
	ToneBoomer = "boomer"
	ToneGenZ   = "gen z"
	ToneGenA   = "gen a"
)

const genericDirective = "Write for a general online audience: clear, friendly and engaging, " +
	"with light use of emojis and no niche slang."

// Personas maps an audience tone to the style directive injected into every
// prompt. The zero value answers every tone with the generic directive.
type Personas struct {
	directives map[string]string
	fallback   string
}

// DefaultPersonas returns the built-in tone table.
func DefaultPersonas() Personas {
	genA := "Write for Gen Alpha: ultra short lines, high novelty, lots of visual emojis, " +
		"playful internet-native references, and hooks that feel like a game or a challenge."
	return Personas{
		directives: map[string]string{
			ToneBoomer: "Write for Baby Boomers: formal and respectful tone, complete sentences, " +
				"minimal slang, few emojis, and concrete practical takeaways.",
			ToneGenZ: "Write for Gen Z: casual and witty, meme-forward, current slang used naturally, " +
				"emojis welcome, and punchy one-liners.",
			ToneGenA:    genA,
			"gen alpha": genA,
		},
		fallback: genericDirective,
	}
}

// Directive returns the style directive for tone. Lookup is case-insensitive
// and treats '-' and '_' as spaces, so "Gen-Z" finds "gen z".
func (p Personas) Directive(tone string) string {
	if d, ok := p.directives[NormalizeTone(tone)]; ok {
		return d
	}
	if p.fallback == "" {
		return genericDirective
	}
	return p.fallback
}

// NormalizeTone lower-cases tone and folds separators to single spaces.
func NormalizeTone(tone string) string {
	t := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(tone))
	return strings.Join(strings.Fields(t), " ")
}
