package core

import "fmt"

const baseSystemPrompt = "You are IndustryVerse AI, a professional corporate learning assistant.\n" +
	"You help students understand industries, professional roles, and complete real-world corporate simulation projects.\n" +
	"Be precise, professional, and educational. Use concrete examples from real industry practice.\n" +
	"Format responses with clear structure when explaining complex topics."

// BuildSystemPrompt returns the assistant instruction, optionally tailored to
// the topic the user is currently studying. Pure function, no failure modes.
func BuildSystemPrompt(context string) string {
	if context == "" {
		return baseSystemPrompt
	}
	return fmt.Sprintf("%s\n\nCurrent context: The user is learning about %s.\nTailor your responses specifically to this domain and role.", baseSystemPrompt, context)
}
