package entities

type EventType string

const (
	EventMessage  EventType = "message"
	EventDelivery EventType = "delivery"
	EventRead     EventType = "read"
	EventUnknown  EventType = "unknown"
)

type MessageSubtype string

const (
	SubtypePlainText  MessageSubtype = "plain-text"
	SubtypeAttachment MessageSubtype = "attachment"
	SubtypePostback   MessageSubtype = "postback"
	SubtypeLocation   MessageSubtype = "location"
	SubtypeUnknown    MessageSubtype = "unknown"
)

type PayloadType string

const (
	PayloadPostback    PayloadType = "postback"
	PayloadLocation    PayloadType = "location"
	PayloadAttachments PayloadType = "attachments"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type AttachmentPayload struct {
	Type    FileType      `json:"type"`
	Payload AttachmentRef `json:"payload"`
}

// Payload is the structured part of an inbound message. Only the field
// matching Type is set.
type Payload struct {
	Type        PayloadType        `json:"type"`
	ID          string             `json:"id,omitempty"`
	Title       string             `json:"title,omitempty"`
	Coordinates *Coordinates       `json:"coordinates,omitempty"`
	Attachment  *AttachmentPayload `json:"attachment,omitempty"`
}

// StoredMessage is the canonical shape the host engine persists for an
// inbound message.
type StoredMessage struct {
	Text           string             `json:"text,omitempty"`
	Postback       string             `json:"postback,omitempty"`
	Type           PayloadType        `json:"type,omitempty"`
	Coordinates    *Coordinates       `json:"coordinates,omitempty"`
	SerializedText string             `json:"serialized_text,omitempty"`
	Attachment     *AttachmentPayload `json:"attachment,omitempty"`
}

// NormalizedEvent is what gets handed to the host engine for one inbound unit.
type NormalizedEvent struct {
	EventType         EventType      `json:"event_type"`
	MessageSubtype    MessageSubtype `json:"message_subtype,omitempty"`
	MessageID         string         `json:"message_id"`
	SenderID          string         `json:"sender_id,omitempty"`
	RecipientID       string         `json:"recipient_id,omitempty"`
	PhoneNumberID     string         `json:"phone_number_id"`
	Payload           *Payload       `json:"payload,omitempty"`
	Message           *StoredMessage `json:"message,omitempty"`
	DeliveredMessages []string       `json:"delivered_messages"`
	Watermark         int64          `json:"watermark"`
	Subscriber        *Subscriber    `json:"subscriber,omitempty"`
}
