package entities

// OutgoingFormat selects how the host engine wants a message rendered.
type OutgoingFormat string

const (
	FormatText         OutgoingFormat = "text"
	FormatQuickReplies OutgoingFormat = "quickReplies"
	FormatButtons      OutgoingFormat = "buttons"
	FormatList         OutgoingFormat = "list"
	FormatCarousel     OutgoingFormat = "carousel"
	FormatAttachment   OutgoingFormat = "attachment"
)

type ButtonType string

const (
	ButtonPostback ButtonType = "postback"
	ButtonWebURL   ButtonType = "web_url"
)

type Button struct {
	Type    ButtonType `json:"type"`
	Title   string     `json:"title"`
	Payload string     `json:"payload,omitempty"`
	URL     string     `json:"url,omitempty"`
}

type QuickReply struct {
	ContentType string `json:"content_type,omitempty"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// ListElement is one entry of a list or carousel.
type ListElement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Payload     string `json:"payload,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// CanonicalPayload is the postback value a selection of this element yields.
func (e ListElement) CanonicalPayload() string {
	if e.Payload != "" {
		return e.Payload
	}
	return e.ID
}

type OutgoingAttachment struct {
	Type    FileType      `json:"type"`
	Payload AttachmentRef `json:"payload"`
}

type OutgoingMessage struct {
	Text         string              `json:"text,omitempty"`
	QuickReplies []QuickReply        `json:"quickReplies,omitempty"`
	Buttons      []Button            `json:"buttons,omitempty"`
	Elements     []ListElement       `json:"elements,omitempty"`
	Attachment   *OutgoingAttachment `json:"attachment,omitempty"`
}

type EnvelopeOptions struct {
	PreviewURL bool   `json:"preview_url,omitempty"`
	Header     string `json:"header,omitempty"`
	Footer     string `json:"footer,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// OutgoingEnvelope is the host-neutral outgoing message. It is consumed once
// and never mutated.
type OutgoingEnvelope struct {
	Format  OutgoingFormat   `json:"format"`
	Message OutgoingMessage  `json:"message"`
	Options *EnvelopeOptions `json:"options,omitempty"`
}
