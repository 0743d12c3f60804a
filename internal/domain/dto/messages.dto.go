package dto

// Inbound webhook notification as delivered by the WhatsApp Cloud API.
//
//	{
//	  "object": "whatsapp_business_account",
//	  "entry": [{
//	    "id": "102290129340398",
//	    "changes": [{
//	      "field": "messages",
//	      "value": {
//	        "messaging_product": "whatsapp",
//	        "metadata": {"display_phone_number": "15550783881", "phone_number_id": "106540352242922"},
//	        "contacts": [{"profile": {"name": "Sheena Nelson"}, "wa_id": "16505551234"}],
//	        "messages": [{"from": "16505551234", "id": "wamid.HBgL...", "timestamp": "1749416383", "type": "text", "text": {"body": "Hi"}}]
//	      }
//	    }]
//	  }]
//	}
const WhatsAppBusinessAccount = "whatsapp_business_account"

type IWebhookMessage struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string               `json:"messaging_product"`
	Metadata         WebhookMetadata      `json:"metadata"`
	Contacts         []WebhookContact     `json:"contacts,omitempty"`
	Messages         []WebhookMessageData `json:"messages,omitempty"`
	Statuses         []WebhookStatus      `json:"statuses,omitempty"`
	Errors           []WebhookError       `json:"errors,omitempty"`
}

type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type WebhookContact struct {
	Profile WebhookContactProfile `json:"profile"`
	WaID    string                `json:"wa_id"`
}

type WebhookContactProfile struct {
	Name string `json:"name"`
}

// WebhookMessageData is one customer-sent message. Exactly one of the content
// fields is populated, matching Type.
type WebhookMessageData struct {
	From      string          `json:"from"`
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Context   *MessageContext `json:"context,omitempty"`
	Referral  *Referral       `json:"referral,omitempty"`
	Errors    []WebhookError  `json:"errors,omitempty"`

	Text        *WebhookText        `json:"text,omitempty"`
	Image       *WebhookMedia       `json:"image,omitempty"`
	Audio       *WebhookMedia       `json:"audio,omitempty"`
	Video       *WebhookMedia       `json:"video,omitempty"`
	Document    *WebhookMedia       `json:"document,omitempty"`
	Sticker     *WebhookMedia       `json:"sticker,omitempty"`
	Interactive *WebhookInteractive `json:"interactive,omitempty"`
	Button      *WebhookButton      `json:"button,omitempty"`
	Location    *WebhookLocation    `json:"location,omitempty"`
	Contacts    []Contact           `json:"contacts,omitempty"`
	Order       *WebhookOrder       `json:"order,omitempty"`
	System      *WebhookSystem      `json:"system,omitempty"`
	Reaction    *WebhookReaction    `json:"reaction,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMedia struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	Sha256   string `json:"sha256,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}

type WebhookInteractive struct {
	Type        string       `json:"type"`
	ButtonReply *ReplyOption `json:"button_reply,omitempty"`
	ListReply   *ReplyOption `json:"list_reply,omitempty"`
}

type ReplyOption struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// WebhookButton is sent when a customer taps a template quick-reply button.
type WebhookButton struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

type WebhookLocation struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Name      string   `json:"name,omitempty"`
	Address   string   `json:"address,omitempty"`
	URL       string   `json:"url,omitempty"`
}

type WebhookOrder struct {
	CatalogID    string             `json:"catalog_id"`
	Text         string             `json:"text,omitempty"`
	ProductItems []OrderProductItem `json:"product_items"`
}

type OrderProductItem struct {
	ProductRetailerID string  `json:"product_retailer_id"`
	Quantity          int     `json:"quantity"`
	ItemPrice         float64 `json:"item_price"`
	Currency          string  `json:"currency"`
}

type WebhookSystem struct {
	Body     string `json:"body"`
	Identity string `json:"identity,omitempty"`
	NewWaID  string `json:"new_wa_id,omitempty"`
	WaID     string `json:"wa_id,omitempty"`
	Type     string `json:"type"`
	Customer string `json:"customer,omitempty"`
}

type WebhookReaction struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type MessageContext struct {
	From      string `json:"from,omitempty"`
	ID        string `json:"id,omitempty"`
	Forwarded bool   `json:"forwarded,omitempty"`
}

type Referral struct {
	SourceURL  string `json:"source_url"`
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Headline   string `json:"headline,omitempty"`
	Body       string `json:"body,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
}

// WebhookStatus is a delivery report for a message the business sent.
type WebhookStatus struct {
	ID           string         `json:"id"`
	RecipientID  string         `json:"recipient_id"`
	Status       string         `json:"status"`
	Timestamp    string         `json:"timestamp"`
	Conversation *Conversation  `json:"conversation,omitempty"`
	Pricing      *Pricing       `json:"pricing,omitempty"`
	Errors       []WebhookError `json:"errors,omitempty"`
}

const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
	StatusDeleted   = "deleted"
)

type Conversation struct {
	ID                  string              `json:"id"`
	ExpirationTimestamp string              `json:"expiration_timestamp,omitempty"`
	Origin              *ConversationOrigin `json:"origin,omitempty"`
}

type ConversationOrigin struct {
	Type string `json:"type"`
}

type Pricing struct {
	Billable     bool   `json:"billable"`
	PricingModel string `json:"pricing_model"`
	Category     string `json:"category"`
}

type WebhookError struct {
	Code      int               `json:"code"`
	Title     string            `json:"title"`
	Message   string            `json:"message,omitempty"`
	ErrorData *WebhookErrorData `json:"error_data,omitempty"`
}

type WebhookErrorData struct {
	Details string `json:"details"`
}
