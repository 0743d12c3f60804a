package dto

const (
	MessagingProduct        = "whatsapp"
	RecipientTypeIndividual = "individual"
)

// Outbound message types accepted by POST /{phone-number-id}/messages.
const (
	TypeText        = "text"
	TypeReaction    = "reaction"
	TypeImage       = "image"
	TypeAudio       = "audio"
	TypeVideo       = "video"
	TypeDocument    = "document"
	TypeSticker     = "sticker"
	TypeInteractive = "interactive"
	TypeTemplate    = "template"
	TypeContacts    = "contacts"
	TypeLocation    = "location"
)

const (
	InteractiveButton = "button"
	InteractiveList   = "list"
)

// IWhatsAppMessage is the POST body of a send call. The translator fills Type
// and exactly one content field; MessagingProduct, RecipientType and To are
// set by the transport client right before sending.
type IWhatsAppMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type,omitempty"`
	To               string `json:"to"`
	Type             string `json:"type"`

	Text        *OutboundText     `json:"text,omitempty"`
	Reaction    *OutboundReaction `json:"reaction,omitempty"`
	Image       *OutboundMedia    `json:"image,omitempty"`
	Audio       *OutboundMedia    `json:"audio,omitempty"`
	Video       *OutboundMedia    `json:"video,omitempty"`
	Document    *OutboundMedia    `json:"document,omitempty"`
	Sticker     *OutboundMedia    `json:"sticker,omitempty"`
	Interactive *Interactive      `json:"interactive,omitempty"`
	Template    *Template         `json:"template,omitempty"`
	Contacts    []Contact         `json:"contacts,omitempty"`
	Location    *OutboundLocation `json:"location,omitempty"`
}

type OutboundText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type OutboundReaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// OutboundMedia references media either by uploaded ID or by public link.
type OutboundMedia struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type OutboundLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

type Interactive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveBody    `json:"body"`
	Footer *InteractiveFooter `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Image    *OutboundMedia `json:"image,omitempty"`
	Video    *OutboundMedia `json:"video,omitempty"`
	Document *OutboundMedia `json:"document,omitempty"`
}

type InteractiveBody struct {
	Text string `json:"text"`
}

type InteractiveFooter struct {
	Text string `json:"text"`
}

// InteractiveAction carries Buttons for "button" messages, Button plus
// Sections for "list" messages.
type InteractiveAction struct {
	Button   string                  `json:"button,omitempty"`
	Buttons  []InteractiveButtonItem `json:"buttons,omitempty"`
	Sections []Section               `json:"sections,omitempty"`
}

type InteractiveButtonItem struct {
	Type  string      `json:"type"`
	Reply ReplyButton `json:"reply"`
}

type ReplyButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Section struct {
	Title string `json:"title,omitempty"`
	Rows  []Row  `json:"rows"`
}

type Row struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type Template struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateLanguage struct {
	Code   string `json:"code"`
	Policy string `json:"policy,omitempty"`
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	SubType    string              `json:"sub_type,omitempty"`
	Index      string              `json:"index,omitempty"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Payload  string         `json:"payload,omitempty"`
	Image    *OutboundMedia `json:"image,omitempty"`
	Document *OutboundMedia `json:"document,omitempty"`
	Video    *OutboundMedia `json:"video,omitempty"`
}
