package wizard

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/blogsmith/internal/session"
)

// Prompt texts for the configuration dialogue. Fill-mode prompts ask for a
// value; edit-mode prompts offer to change the stored one.

const (
	greeting = "Hi %s! This is a chatbot for creating blog articles using RAG and MAS systems! " +
		"You have two ways of using this chatbot: either by chatting with a LLM model, or by configuring your blog article " +
		"and generating it using Retrieval-Augmented Generation and Multi-Agent Systems. " +
		"When you are ready to start configuration, use /start_configuration. \n\n" +
		"After starting the configuration, you are asked for: \n- topic or a task \n- website \n- document \n- length \n- language level \n- information level \n- language \n- tone \n- additional information \n" +
		"Finally, you are asked to confirm the configuration and have a chance to change things."

	helpText = "Welcome to the blogsmith article generator bot! Here's how to get started:\n" +
		"1. /start - Restart the conversation.\n" +
		"2. /start_configuration - Start the blog article configuration.\n" +
		"3. /chat - Chat with the LLM.\n" +
		"4. /clear - Clear the conversation and user history.\n" +
		"5. /cancel - End the conversation.\n" +
		"Just type a command to get started!"

	promptTopicOrTask = "Great, you want to start the blog article configuration! First, what topic should the blog article be about? " +
		"Or what task should the blog article fulfil? If you have a topic please respond with 'topic', if you have a separate task please respond with 'task'."
	promptTopicOrTaskEdit = "First, do you want to change your topic or task? If yes, please respond with 'topic' or 'task', if not, please respond with 'no'."
	invalidTopicOrTask    = "Not valid, please respond with either 'topic' or 'task'."

	promptTopic = "Okay, topic it is! What topic should the blog article be about?"
	promptTask  = "Okay, task it is! What task should the blog article fulfil?"

	promptWebsite        = "Great! Do you have a link to a website with information you want to have included? If yes, please reply with the link, if not, please just send 'no'."
	promptWebsiteAnother = "Okay, do you have another link to a website with information you want to have included? If yes, please reply with the link, if not, please just send 'no'."
	promptWebsiteEdit    = "Okay, you want to keep your topic or task! Next, do you want to add another link to a website? If yes, please respond with the new link, if not, please respond with 'no'."
	promptWebsiteEditMore = "Okay, do you have another link to a website? If yes, please reply with the website, if not, please respond with 'no'."

	promptDocument        = "Great! Do you have a document with information you want to have included? If yes, please reply with the document, if not, please just send 'no'."
	promptDocumentEdit    = "Okay, what about a document? If yes, please reply with the document, if not, please respond with 'no'."
	promptDocumentAnother = "Do you have another document you want to upload? If yes, please reply with the document, if not, please just send 'no'."
	invalidDocument       = "Not valid, please respond with either a document or 'no'."

	promptLength        = "How long should the blog article be? (e.g. Short, Medium, Long)"
	promptLengthEdit    = "Next, do you want to change your blog article length? If yes, please reply with the new length, if not, please respond with 'no'."
	promptLangLevel     = "Great! What language level should it be? (e.g. Beginner, Intermediate, Advanced)"
	promptLangLevelEdit = "Next, do you want to change your blog article language level? If yes, please reply with the new language level, if not, please respond with 'no'."
	promptInfoLevel     = "Great! What information level should it be? (e.g. High, Intermediate, Low)"
	promptInfoLevelEdit = "Next, do you want to change your blog article information level? If yes, please reply with the new information level, if not, please respond with 'no'."
	promptLanguage      = "Great! What language should it be? (e.g. English, German, Spanish)"
	promptLanguageEdit  = "Next, do you want to change your blog article language? If yes, please reply with the new language, if not, please respond with 'no'."
	promptTone          = "Great! What tone should it be? (e.g. Professional, Casual, Friendly)"
	promptToneEdit      = "Next, do you want to change your blog article tone? If yes, please reply with the new tone, if not, please respond with 'no'."
	promptAdditional    = "Great! Now, do you have any additional information you want to have included? If not, please respond with 'no'."
	promptAdditionalEdit = "Next, do you want to change your additional information? If yes, please reply with the new additional information, if not, please respond with 'no'."

	promptReconfigure = "Okay, let's reconfigure! Remember to please respond with 'no' if you want to keep your answer, so only respond if you want to change it. \n" +
		"First, do you want to change your topic or task? If yes, please respond with 'topic' or 'task', if not, please respond with 'no'."

	processingReply = "Processing... Your article is being generated and will be sent here when it is ready."

	cancelReply = "Conversation canceled. Type /start to begin again."
	clearReply  = "Conversation successfully cleared! Your conversation was restarted, so please either restart your configuration or chat with the LLM!"
	chatModeReply = "You are chatting with the LLM now. Just send me a message! Use /start_configuration to configure a blog article instead."
)

// confirmPrompt renders the collected fields snapshot for confirmation.
func confirmPrompt(s *session.Session) string {
	var sb strings.Builder
	sb.WriteString("Thanks! Here's what I got:\n")
	fmt.Fprintf(&sb, "- Topic or Task: %s\n", s.Fields[session.FieldTopicOrTask])
	fmt.Fprintf(&sb, "- Length: %s\n", s.Fields[session.FieldLength])
	fmt.Fprintf(&sb, "- Language Level: %s\n", s.Fields[session.FieldLangLevel])
	fmt.Fprintf(&sb, "- Information Level: %s\n", s.Fields[session.FieldInfoLevel])
	fmt.Fprintf(&sb, "- Language: %s\n", s.Fields[session.FieldLanguage])
	fmt.Fprintf(&sb, "- Tone: %s\n", s.Fields[session.FieldTone])
	fmt.Fprintf(&sb, "- Additional Information: %s\n", s.Fields[session.FieldAdditional])
	fmt.Fprintf(&sb, "- Knowledge Sources: %d\n", s.Knowledge.Len())
	sb.WriteString("Type 'yes' to confirm or 'no' to restart.")
	sb.WriteString("\n\nIf you type 'no', your configuration will be saved. Then, you will be asked all questions again and can just respond 'no' if you want your answer to remain the same." +
		"\nSo, please only respond to a question if you want to change your answer.")
	return sb.String()
}

// retryHints tells the user how to resubmit after a recovered per-turn error.
var retryHints = map[session.State]string{
	session.StateChat:          "Please resend your message.",
	session.StateTopicOrTask:   "Please answer with 'topic' or 'task' again.",
	session.StateTopic:         "Please resend your topic.",
	session.StateTask:          "Please resend your task.",
	session.StateWebsite:       "Please resend your link or 'no'.",
	session.StateDocument:      "Please resend your document or 'no'.",
	session.StateLength:        "Please resend your preferred article length.",
	session.StateLanguageLevel: "Please resend your preferred article language level.",
	session.StateInformation:   "Please resend your preferred article information level.",
	session.StateLanguage:      "Please resend your preferred article language.",
	session.StateTone:          "Please resend your preferred article tone.",
	session.StateAdditional:    "Please resend your additional information.",
	session.StateConfirm:       "Please resend if you want to confirm the inputs or not.",
}
