// Package translator maps host-neutral outgoing envelopes to WhatsApp Cloud
// API message bodies. Translation does no I/O; recipient and product tag are
// added later by the transport client.
package translator

import (
	"errors"
	"fmt"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/util"
)

var (
	ErrUnsupportedFormat         = errors.New("unsupported outgoing message format")
	ErrUnsupportedAttachmentType = errors.New("unsupported attachment type")
	ErrInvalidEnvelope           = errors.New("invalid outgoing envelope")
)

const (
	ListDescriptionLimit = 72
	DefaultListLabel     = "Options"
)

// URLResolver yields a publicly reachable URL for a stored attachment.
type URLResolver interface {
	PublicURL(ref entities.AttachmentRef) (string, error)
}

type Translator struct {
	urls URLResolver
}

func NewTranslator(urls URLResolver) *Translator {
	return &Translator{urls: urls}
}

// Translate returns the wire message for env.
func (t *Translator) Translate(env entities.OutgoingEnvelope) (dto.IWhatsAppMessage, error) {
	opts := entities.EnvelopeOptions{}
	if env.Options != nil {
		opts = *env.Options
	}

	switch env.Format {
	case entities.FormatText:
		return textMessage(env.Message, opts), nil
	case entities.FormatQuickReplies:
		return quickRepliesMessage(env.Message, opts), nil
	case entities.FormatButtons:
		return buttonsMessage(env.Message, opts), nil
	case entities.FormatList, entities.FormatCarousel:
		// carousels have no WhatsApp equivalent and degrade to a list
		return listMessage(env.Message, opts), nil
	case entities.FormatAttachment:
		return t.attachmentMessage(env.Message, opts)
	default:
		return dto.IWhatsAppMessage{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, env.Format)
	}
}

func textMessage(msg entities.OutgoingMessage, opts entities.EnvelopeOptions) dto.IWhatsAppMessage {
	return dto.IWhatsAppMessage{
		Type: dto.TypeText,
		Text: &dto.OutboundText{Body: msg.Text, PreviewURL: opts.PreviewURL},
	}
}

func quickRepliesMessage(msg entities.OutgoingMessage, opts entities.EnvelopeOptions) dto.IWhatsAppMessage {
	buttons := make([]dto.InteractiveButtonItem, 0, len(msg.QuickReplies))
	for _, qr := range msg.QuickReplies {
		buttons = append(buttons, replyButton(qr.Payload, qr.Title))
	}
	return interactive(dto.InteractiveButton, msg.Text, opts, dto.InteractiveAction{Buttons: buttons})
}

// buttonsMessage keeps postback buttons only. URL buttons have no reply
// button equivalent and are dropped.
func buttonsMessage(msg entities.OutgoingMessage, opts entities.EnvelopeOptions) dto.IWhatsAppMessage {
	buttons := make([]dto.InteractiveButtonItem, 0, len(msg.Buttons))
	for _, b := range msg.Buttons {
		if b.Type != entities.ButtonPostback {
			continue
		}
		buttons = append(buttons, replyButton(b.Payload, b.Title))
	}
	return interactive(dto.InteractiveButton, msg.Text, opts, dto.InteractiveAction{Buttons: buttons})
}

func listMessage(msg entities.OutgoingMessage, opts entities.EnvelopeOptions) dto.IWhatsAppMessage {
	label := DefaultListLabel
	if len(msg.Buttons) > 0 && msg.Buttons[0].Title != "" {
		label = msg.Buttons[0].Title
	}

	rows := make([]dto.Row, 0, len(msg.Elements))
	for _, el := range msg.Elements {
		rows = append(rows, dto.Row{
			ID:          el.CanonicalPayload(),
			Title:       el.Title,
			Description: util.Truncate(el.Description, ListDescriptionLimit),
		})
	}

	body := fmt.Sprintf("Please click on \"%s\" to view the available options.", label)
	return interactive(dto.InteractiveList, body, opts, dto.InteractiveAction{
		Button:   label,
		Sections: []dto.Section{{Rows: rows}},
	})
}

func (t *Translator) attachmentMessage(msg entities.OutgoingMessage, opts entities.EnvelopeOptions) (dto.IWhatsAppMessage, error) {
	if msg.Attachment == nil {
		return dto.IWhatsAppMessage{}, fmt.Errorf("%w: attachment format without attachment", ErrInvalidEnvelope)
	}

	mediaType, err := MediaType(msg.Attachment.Type)
	if err != nil {
		return dto.IWhatsAppMessage{}, err
	}

	link := msg.Attachment.Payload.URL
	if t.urls != nil {
		link, err = t.urls.PublicURL(msg.Attachment.Payload)
		if err != nil {
			return dto.IWhatsAppMessage{}, fmt.Errorf("resolve attachment url: %w", err)
		}
	}
	if link == "" {
		return dto.IWhatsAppMessage{}, fmt.Errorf("%w: attachment has no reachable url", ErrInvalidEnvelope)
	}

	media := &dto.OutboundMedia{Link: link, Caption: opts.Caption}
	out := dto.IWhatsAppMessage{Type: mediaType}
	switch mediaType {
	case dto.TypeImage:
		out.Image = media
	case dto.TypeAudio:
		// audio does not accept a caption
		media.Caption = ""
		out.Audio = media
	case dto.TypeVideo:
		out.Video = media
	case dto.TypeDocument:
		media.Filename = opts.Filename
		out.Document = media
	}
	return out, nil
}

// MediaType maps a host file kind to the WhatsApp media type.
func MediaType(fileType entities.FileType) (string, error) {
	switch fileType {
	case entities.FileImage:
		return dto.TypeImage, nil
	case entities.FileAudio:
		return dto.TypeAudio, nil
	case entities.FileVideo:
		return dto.TypeVideo, nil
	case entities.FileFile:
		return dto.TypeDocument, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAttachmentType, fileType)
	}
}

func replyButton(id, title string) dto.InteractiveButtonItem {
	return dto.InteractiveButtonItem{
		Type:  "reply",
		Reply: dto.ReplyButton{ID: id, Title: title},
	}
}

func interactive(kind, body string, opts entities.EnvelopeOptions, action dto.InteractiveAction) dto.IWhatsAppMessage {
	in := &dto.Interactive{
		Type:   kind,
		Body:   dto.InteractiveBody{Text: body},
		Action: action,
	}
	if opts.Header != "" {
		in.Header = &dto.InteractiveHeader{Type: "text", Text: opts.Header}
	}
	if opts.Footer != "" {
		in.Footer = &dto.InteractiveFooter{Text: opts.Footer}
	}
	return dto.IWhatsAppMessage{Type: dto.TypeInteractive, Interactive: in}
}
