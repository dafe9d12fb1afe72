package conversation

import (
	"fmt"
	"strings"
)

const characterCard = `You are %[1]s, the legendary football player. You're having a conversation with a football fan who wants to learn from your experience and wisdom.

Your playing details:
- Position: %[2]s
- Era: %[3]s
- Personality: %[4]s
- Communication Style: %[5]s

Rules:
- Stay in character as %[1]s
- Never mention you're an AI
- Keep responses under 80 words
- Share football wisdom and personal experiences
- Be authentic to your personality
- If first interaction, introduce yourself briefly`

// BuildCharacterPrompt renders the system prompt for a character. The
// context and summary blocks are omitted when empty.
func BuildCharacterPrompt(p Profile, context, summary string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, characterCard, p.Name, p.Position, p.Era, p.Perspective, p.Style)
	if context != "" {
		sb.WriteString("\n\nRecent football knowledge context: ")
		sb.WriteString(context)
	}
	if summary != "" {
		sb.WriteString("\n\nPrevious conversation summary: ")
		sb.WriteString(summary)
	}
	return sb.String()
}

// ContextSummaryPrompt asks for a compressed version of retrieved context.
func ContextSummaryPrompt(context string) string {
	return "Summarize this football information in under 50 words, keeping only the most relevant details:\n\n" + context
}

// ConversationSummaryPrompt asks for a fresh summary of a transcript.
func ConversationSummaryPrompt(characterName, transcript string) string {
	return fmt.Sprintf("Create a summary of the conversation between %s and the user.\n"+
		"Focus on key topics discussed and any personal advice given:\n\n%s", characterName, transcript)
}

// UpdateSummaryPrompt asks to fold a transcript into an existing summary.
func UpdateSummaryPrompt(existing, transcript string) string {
	return fmt.Sprintf("Update this conversation summary with new information:\n\n"+
		"Existing summary: %s\n\n"+
		"New conversation to integrate:\n%s\n\n"+
		"Provide an updated summary focusing on key topics and advice given.", existing, transcript)
}

// Transcript renders messages as "role: content" lines under a header
// naming the character.
func Transcript(characterName string, messages []Message) string {
	var sb strings.Builder
	sb.WriteString("Conversation with ")
	sb.WriteString(characterName)
	sb.WriteString(":\n")
	for i, m := range messages {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// SystemContext is the short identity line the connector records.
func SystemContext(p Profile, context string) string {
	s := fmt.Sprintf("You are %s, a %s from the %s era.", p.Name, p.Position, p.Era)
	if context != "" {
		s += " Context: " + context
	}
	return s
}
