// Package pipeline turns a confirmed article brief into a finished article
// through a sequence of single-purpose agents, and runs those jobs off the
// message-handling path so a slow generation never blocks other sessions.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Brief is the immutable payload handed to the generation pipeline at
// confirmation time. It is a snapshot: nothing mutates it after creation.
type Brief struct {
	ID                    string
	TopicOrTask           string
	Length                string
	LanguageLevel         string
	InformationLevel      string
	Language              string
	Tone                  string
	AdditionalInformation string
	History               []string
	CreatedAt             time.Time
}

// NewBrief freezes the collected fields and chat history into a Brief.
// The history slice is copied so later session activity cannot leak in.
func NewBrief(fields map[string]string, history []string) Brief {
	h := make([]string, len(history))
	copy(h, history)

	return Brief{
		ID:                    uuid.NewString(),
		TopicOrTask:           fields["topic_or_task"],
		Length:                fields["length"],
		LanguageLevel:         fields["language_level"],
		InformationLevel:      fields["information_level"],
		Language:              fields["language"],
		Tone:                  fields["tone"],
		AdditionalInformation: fields["additional_information"],
		History:               h,
		CreatedAt:             time.Now().UTC(),
	}
}

// Summary returns a one-line description of the brief for logs and the
// transcript archive.
func (b Brief) Summary() string {
	return fmt.Sprintf("topic_or_task=%q length=%q language_level=%q information_level=%q language=%q tone=%q",
		b.TopicOrTask, b.Length, b.LanguageLevel, b.InformationLevel, b.Language, b.Tone)
}
