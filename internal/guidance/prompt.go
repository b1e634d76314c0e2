package guidance

import (
	"fmt"
	"strings"
)

const basePastoralPrompt = `You are a warm, biblically grounded pastoral guide for The Busy Preacher, a devotional and Bible-study companion. You respond with the care of an experienced pastor: listen first, ground counsel in scripture, and never lecture.

Guidelines:
- Anchor your answer in relevant scripture, quoting chapter and verse where helpful.
- Speak plainly and personally. Avoid academic or clinical language.
- Acknowledge pain and doubt honestly. Do not offer platitudes.
- Keep the response focused and a few short paragraphs at most.
- You are not a licensed counselor. For medical, legal, or psychiatric matters, encourage the person to seek professional help alongside spiritual support.`

const crisisDirective = `IMPORTANT: The person you are responding to may be in crisis. Before anything else, your response MUST open by urging them to reach out for immediate help: call or text 988 (the Suicide & Crisis Lifeline) in the US, call 911 if in immediate danger, or contact a trusted person right now. Only after that directive may you offer scriptural comfort. Be direct, gentle, and unambiguous that help is available and that their life matters.`

const sermonContextHeader = `Draw on the following sermon excerpts from the congregation's own teaching where they are relevant. Cite the sermon title when you use one. Do not invent sermons that are not listed.`

const noContextFallback = `No sermon material was found for this question. Offer general biblical guidance from your own knowledge of scripture instead; do not reference or invent sermon content.`

// AssemblePrompt builds the generation request for one exchange. The
// instruction block leads with the crisis directive when the crisis signal is
// set, then adds either the retrieved sermon context or the general-guidance
// fallback.
func AssemblePrompt(cls Classification, passages []SermonPassage, history []ConversationTurn, question string) LLMRequest {
	system := make([]string, 0, 3)
	if cls.Crisis {
		system = append(system, crisisDirective)
	}
	system = append(system, basePastoralPrompt)

	if len(passages) > 0 {
		var b strings.Builder
		b.WriteString(sermonContextHeader)
		for i, p := range passages {
			fmt.Fprintf(&b, "\n\n[%d] %s", i+1, formatPassage(p))
		}
		system = append(system, b.String())
	} else {
		system = append(system, noContextFallback)
	}

	messages := make([]ChatMessage, 0, len(history)+1)
	for _, turn := range history {
		role := ChatRoleUser
		if turn.Role == RoleAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: question})

	return LLMRequest{
		System:      system,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.7,
	}
}
