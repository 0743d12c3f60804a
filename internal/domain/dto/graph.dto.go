package dto

// SendMessageResponse is returned by a successful send call.
type SendMessageResponse struct {
	MessagingProduct string                `json:"messaging_product"`
	Contacts         []SendResponseContact `json:"contacts"`
	Messages         []SendResponseMessage `json:"messages"`
}

type SendResponseContact struct {
	Input string `json:"input"`
	WaID  string `json:"wa_id"`
}

type SendResponseMessage struct {
	ID            string `json:"id"`
	MessageStatus string `json:"message_status,omitempty"`
}

// MediaMetadata is returned by GET /{media-id}. URL is short-lived and
// requires the bearer token to download.
type MediaMetadata struct {
	MessagingProduct string `json:"messaging_product"`
	URL              string `json:"url"`
	MimeType         string `json:"mime_type"`
	Sha256           string `json:"sha256"`
	FileSize         int64  `json:"file_size"`
	ID               string `json:"id"`
}

// PhoneNumberProfile is returned by GET /{phone-number-id}.
type PhoneNumberProfile struct {
	ID                     string `json:"id"`
	DisplayPhoneNumber     string `json:"display_phone_number"`
	VerifiedName           string `json:"verified_name"`
	QualityRating          string `json:"quality_rating,omitempty"`
	CodeVerificationStatus string `json:"code_verification_status,omitempty"`
	PlatformType           string `json:"platform_type,omitempty"`
}

type GraphErrorResponse struct {
	Error GraphError `json:"error"`
}

type GraphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FbtraceID    string `json:"fbtrace_id,omitempty"`
}
