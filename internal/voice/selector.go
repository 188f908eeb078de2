package voice

import "strings"

// Voice identifies one of the realtime model's built-in voices
type Voice string

// Available realtime voices
const (
	VoiceCoral   Voice = "coral"   // younger, brighter feminine voice
	VoiceShimmer Voice = "shimmer" // warm, welcoming feminine voice
	VoiceBallad  Voice = "ballad"  // default feminine voice
	VoiceAsh     Voice = "ash"     // deeper masculine voice
	VoiceSage    Voice = "sage"    // gentle, wise masculine voice
	VoiceVerse   Voice = "verse"   // default masculine voice
	VoiceEcho    Voice = "echo"    // neutral, balanced voice
	VoiceAlloy   Voice = "alloy"   // default balanced voice
)

// traitVoice maps a set of trait keywords to a voice within a branch
type traitVoice struct {
	traits []string
	voice  Voice
}

// voiceRule is one branch of the selector: entered when any of its keywords
// match, then resolved by the first trait group that matches, else the
// branch fallback.
type voiceRule struct {
	keywords    []string
	traitVoices []traitVoice
	fallback    Voice
}

// The rules are evaluated in priority order with first-match-wins and no
// combination logic. Trait groups are deliberately not shared across
// branches: the masculine branch never checks warm/friendly/nurturing and
// the feminine branch never checks deep/authoritative/serious. That
// asymmetry matches the observed production behavior and is kept as is.
var voiceRules = []voiceRule{
	{
		keywords: []string{"she/her", "woman", "female"},
		traitVoices: []traitVoice{
			{traits: []string{"young", "energetic", "playful"}, voice: VoiceCoral},
			{traits: []string{"warm", "friendly", "nurturing"}, voice: VoiceShimmer},
		},
		fallback: VoiceBallad,
	},
	{
		keywords: []string{"he/him", "man", "male"},
		traitVoices: []traitVoice{
			{traits: []string{"deep", "authoritative", "serious"}, voice: VoiceAsh},
			{traits: []string{"gentle", "calm", "wise"}, voice: VoiceSage},
		},
		fallback: VoiceVerse,
	},
	{
		keywords: []string{"they/them", "non-binary"},
		fallback: VoiceEcho,
	},
}

// SelectVoice maps persona text to a voice. Pure function: identical persona
// text (modulo case) always yields the identical voice.
func SelectVoice(persona string) Voice {
	lower := strings.ToLower(persona)

	for _, rule := range voiceRules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		for _, tv := range rule.traitVoices {
			if containsAny(lower, tv.traits) {
				return tv.voice
			}
		}
		return rule.fallback
	}

	return VoiceAlloy
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
