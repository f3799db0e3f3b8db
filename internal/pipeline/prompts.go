package pipeline

import (
	"fmt"
	"strings"
)

const researcherSystem = `You are a senior research analyst. You gather accurate, relevant information for a blog article and present it as concise bullet-point research notes. Stick to the supplied reference material where it is relevant; clearly separate background knowledge from referenced facts.`

const writerSystem = `You are a professional blog writer. You turn research notes and a content brief into an engaging, well-structured blog article in markdown. Follow the brief exactly: topic, length, language, language level, information level and tone.`

const editorSystem = `You are a meticulous editor. You improve structure, flow and clarity of a draft blog article without changing its meaning. Keep the article's language, tone and length as specified in the brief.`

func briefBlock(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic or task: %s\n", b.TopicOrTask)
	fmt.Fprintf(&sb, "Length: %s\n", b.Length)
	fmt.Fprintf(&sb, "Language level: %s\n", b.LanguageLevel)
	fmt.Fprintf(&sb, "Information level: %s\n", b.InformationLevel)
	fmt.Fprintf(&sb, "Language: %s\n", b.Language)
	fmt.Fprintf(&sb, "Tone: %s\n", b.Tone)
	if b.AdditionalInformation != "" {
		fmt.Fprintf(&sb, "Additional information: %s\n", b.AdditionalInformation)
	}
	return sb.String()
}

func researchPrompt(b Brief, passages []string) string {
	var sb strings.Builder
	sb.WriteString("## Brief\n")
	sb.WriteString(briefBlock(b))

	sb.WriteString("\n## Reference Material\n")
	if len(passages) > 0 {
		for i, p := range passages {
			fmt.Fprintf(&sb, "--- Passage %d ---\n%s\n", i+1, p)
		}
	} else {
		sb.WriteString("(No knowledge sources were attached to this brief)\n")
	}

	sb.WriteString("\nProduce research notes for a blog article matching the brief. Use the reference material where relevant.")
	return sb.String()
}

func writePrompt(b Brief, notes string) string {
	var sb strings.Builder
	sb.WriteString("## Brief\n")
	sb.WriteString(briefBlock(b))
	fmt.Fprintf(&sb, "\n## Research Notes\n%s\n", notes)

	if len(b.History) > 0 {
		// Recent conversation gives the writer context about what the user
		// already discussed.
		sb.WriteString("\n## Recent Conversation\n")
		history := b.History
		if len(history) > 10 {
			history = history[len(history)-10:]
		}
		for _, line := range history {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nWrite the full blog article now, following the brief exactly.")
	return sb.String()
}

func editPrompt(b Brief, draft string) string {
	var sb strings.Builder
	sb.WriteString("## Brief\n")
	sb.WriteString(briefBlock(b))
	fmt.Fprintf(&sb, "\n## Draft\n%s\n", draft)
	sb.WriteString("\nEdit the draft for structure, clarity and flow. Return only the revised article.")
	return sb.String()
}
