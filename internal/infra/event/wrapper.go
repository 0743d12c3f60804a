// Package event classifies one inbound WhatsApp notification unit and
// normalizes it into the host engine's event model.
package event

import (
	"errors"
	"fmt"
	"strconv"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"
)

var (
	ErrMissingAttachment = errors.New("attachment has not been resolved for this message")
	ErrInvalidEvent      = errors.New("event does not carry a message")
)

// Inbound message type tags.
const (
	TypeText        = "text"
	TypeImage       = "image"
	TypeAudio       = "audio"
	TypeVideo       = "video"
	TypeDocument    = "document"
	TypeSticker     = "sticker"
	TypeInteractive = "interactive"
	TypeButton      = "button"
	TypeLocation    = "location"
	TypeContacts    = "contacts"
	TypeOrder       = "order"
	TypeSystem      = "system"
)

// MediaRef is the raw media reference of an attachment message. It must be
// resolved into a stored attachment (see SetAttachment) before the payload
// can be read.
type MediaRef struct {
	Kind string
	dto.WebhookMedia
}

// EventWrapper is the classification of exactly one Unit. Everything is
// computed at construction; only the attachment link may be set afterwards.
type EventWrapper struct {
	unit     Unit
	metadata dto.WebhookMetadata
	profile  *dto.WebhookContactProfile

	eventType entities.EventType
	subtype   entities.MessageSubtype

	text        string
	postback    *dto.ReplyOption
	coordinates *entities.Coordinates
	media       *MediaRef
	attachment  *entities.Attachment
}

// NewEventWrapper classifies unit. contacts is the value.contacts list of the
// same change; it is only used to look up the sender's profile.
func NewEventWrapper(unit Unit, metadata dto.WebhookMetadata, contacts []dto.WebhookContact) *EventWrapper {
	w := &EventWrapper{unit: unit, metadata: metadata}
	w.classify(contacts)
	return w
}

func (w *EventWrapper) classify(contacts []dto.WebhookContact) {
	switch u := w.unit.(type) {
	case StatusUnit:
		switch u.Status {
		case dto.StatusDelivered:
			w.eventType = entities.EventDelivery
		case dto.StatusRead:
			w.eventType = entities.EventRead
		default:
			w.eventType = entities.EventUnknown
		}
	case MessageUnit:
		for i := range contacts {
			if contacts[i].WaID == u.From {
				w.profile = &contacts[i].Profile
				break
			}
		}
		w.eventType = entities.EventMessage
		w.classifyMessage(u.WebhookMessageData)
	default:
		w.eventType = entities.EventUnknown
	}
}

func (w *EventWrapper) classifyMessage(msg dto.WebhookMessageData) {
	switch msg.Type {
	case TypeText, TypeContacts:
		w.subtype = entities.SubtypePlainText
		if msg.Type == TypeContacts {
			w.text = FormatContacts(msg.Contacts)
		} else if msg.Text != nil {
			w.text = msg.Text.Body
		}
	case TypeImage, TypeAudio, TypeVideo, TypeDocument, TypeSticker:
		media := mediaOf(msg)
		if media == nil {
			w.downgrade()
			return
		}
		w.subtype = entities.SubtypeAttachment
		w.media = &MediaRef{Kind: msg.Type, WebhookMedia: *media}
	case TypeButton, TypeInteractive:
		reply := postbackOf(msg)
		if reply == nil {
			w.downgrade()
			return
		}
		w.subtype = entities.SubtypePostback
		w.postback = reply
	case TypeLocation:
		w.subtype = entities.SubtypeLocation
		coords := entities.Coordinates{}
		if msg.Location != nil {
			if msg.Location.Latitude != nil {
				coords.Lat = *msg.Location.Latitude
			}
			if msg.Location.Longitude != nil {
				coords.Lon = *msg.Location.Longitude
			}
		}
		w.coordinates = &coords
	default:
		w.downgrade()
	}
}

func (w *EventWrapper) downgrade() {
	w.eventType = entities.EventUnknown
	w.subtype = entities.SubtypeUnknown
}

func mediaOf(msg dto.WebhookMessageData) *dto.WebhookMedia {
	switch msg.Type {
	case TypeImage:
		return msg.Image
	case TypeAudio:
		return msg.Audio
	case TypeVideo:
		return msg.Video
	case TypeDocument:
		return msg.Document
	case TypeSticker:
		return msg.Sticker
	}
	return nil
}

// postbackOf picks button_reply, then list_reply, then the template button payload.
func postbackOf(msg dto.WebhookMessageData) *dto.ReplyOption {
	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply
		}
	}
	if msg.Button != nil {
		return &dto.ReplyOption{ID: msg.Button.Payload, Title: msg.Button.Text}
	}
	return nil
}

func (w *EventWrapper) GetEventType() entities.EventType { return w.eventType }

// GetMessageType returns the message subtype, empty for status units.
func (w *EventWrapper) GetMessageType() entities.MessageSubtype { return w.subtype }

func (w *EventWrapper) GetID() string { return w.unit.unitID() }

func (w *EventWrapper) GetPhoneNumberID() string { return w.metadata.PhoneNumberID }

func (w *EventWrapper) GetMetadata() dto.WebhookMetadata { return w.metadata }

// GetSenderForeignID returns the customer's WhatsApp id, empty for non-message events.
func (w *EventWrapper) GetSenderForeignID() string {
	if m, ok := w.unit.(MessageUnit); ok && w.eventType == entities.EventMessage {
		return m.From
	}
	return ""
}

// GetSenderProfile returns the sender's profile from the change's contacts, if any.
func (w *EventWrapper) GetSenderProfile() (dto.WebhookContactProfile, bool) {
	if w.profile == nil {
		return dto.WebhookContactProfile{}, false
	}
	return *w.profile, true
}

// GetRecipientForeignID is only known for status units that carry recipient_id.
func (w *EventWrapper) GetRecipientForeignID() (string, bool) {
	if s, ok := w.unit.(StatusUnit); ok && s.RecipientID != "" {
		return s.RecipientID, true
	}
	return "", false
}

func (w *EventWrapper) GetDeliveredMessages() []string {
	if w.eventType == entities.EventDelivery {
		return []string{w.unit.unitID()}
	}
	return []string{}
}

// GetWatermark returns the unit's unix timestamp, 0 when it cannot be parsed.
func (w *EventWrapper) GetWatermark() int64 {
	ts, err := strconv.ParseInt(w.unit.unitTimestamp(), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// GetText returns the text of a plain-text message.
func (w *EventWrapper) GetText() string { return w.text }

// GetMediaRef returns the raw media reference of an attachment message.
func (w *EventWrapper) GetMediaRef() (MediaRef, bool) {
	if w.media == nil {
		return MediaRef{}, false
	}
	return *w.media, true
}

// SetAttachment links the stored attachment resolved from GetMediaRef.
func (w *EventWrapper) SetAttachment(att entities.Attachment) {
	w.attachment = &att
}

// GetPayload returns the structured payload of a message event. It returns
// nil without error for non-message events and for plain text.
func (w *EventWrapper) GetPayload() (*entities.Payload, error) {
	if w.eventType != entities.EventMessage {
		return nil, nil
	}

	switch w.subtype {
	case entities.SubtypePostback:
		return &entities.Payload{
			Type:  entities.PayloadPostback,
			ID:    w.postback.ID,
			Title: w.postback.Title,
		}, nil
	case entities.SubtypeLocation:
		coords := *w.coordinates
		return &entities.Payload{Type: entities.PayloadLocation, Coordinates: &coords}, nil
	case entities.SubtypeAttachment:
		att, err := w.attachmentPayload()
		if err != nil {
			return nil, err
		}
		return &entities.Payload{Type: entities.PayloadAttachments, Attachment: att}, nil
	default:
		return nil, nil
	}
}

// GetMessage returns the canonical stored-message shape. It fails with
// ErrInvalidEvent for delivery, read and unknown events.
func (w *EventWrapper) GetMessage() (*entities.StoredMessage, error) {
	if w.eventType != entities.EventMessage {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, w.eventType)
	}

	switch w.subtype {
	case entities.SubtypePlainText:
		return &entities.StoredMessage{Text: w.text}, nil
	case entities.SubtypePostback:
		return &entities.StoredMessage{Postback: w.postback.ID, Text: w.postback.Title}, nil
	case entities.SubtypeLocation:
		coords := *w.coordinates
		return &entities.StoredMessage{Type: entities.PayloadLocation, Coordinates: &coords}, nil
	case entities.SubtypeAttachment:
		att, err := w.attachmentPayload()
		if err != nil {
			return nil, err
		}
		return &entities.StoredMessage{
			Type:           entities.PayloadAttachments,
			SerializedText: fmt.Sprintf("attachment:%s:%s", att.Type, w.attachment.Name),
			Attachment:     att,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unhandled message type %q", ErrInvalidEvent, w.subtype)
	}
}

func (w *EventWrapper) attachmentPayload() (*entities.AttachmentPayload, error) {
	if w.attachment == nil {
		return nil, fmt.Errorf("%w: message %s", ErrMissingAttachment, w.GetID())
	}
	return &entities.AttachmentPayload{
		Type:    w.attachment.Type,
		Payload: entities.AttachmentRef{ID: w.attachment.ID},
	}, nil
}

// Normalize builds the event handed to the host engine.
func (w *EventWrapper) Normalize() (entities.NormalizedEvent, error) {
	ev := entities.NormalizedEvent{
		EventType:         w.eventType,
		MessageSubtype:    w.subtype,
		MessageID:         w.GetID(),
		SenderID:          w.GetSenderForeignID(),
		PhoneNumberID:     w.metadata.PhoneNumberID,
		DeliveredMessages: w.GetDeliveredMessages(),
		Watermark:         w.GetWatermark(),
	}
	if recipient, ok := w.GetRecipientForeignID(); ok {
		ev.RecipientID = recipient
	}

	if w.eventType != entities.EventMessage {
		return ev, nil
	}

	payload, err := w.GetPayload()
	if err != nil {
		return ev, err
	}
	message, err := w.GetMessage()
	if err != nil {
		return ev, err
	}
	ev.Payload = payload
	ev.Message = message
	return ev, nil
}
