package provider

import (
	"encoding/json"
	"errors"
	"fmt"

	"whatsapp-channel/internal/domain/dto"
)

var ErrMissingAccessToken = errors.New("whatsapp access token is not set")

// TransportError is returned for any non-2xx answer from the Graph API.
type TransportError struct {
	StatusCode int
	Body       string
	Graph      *dto.GraphError
}

func (e *TransportError) Error() string {
	if e.Graph != nil && e.Graph.Message != "" {
		return fmt.Sprintf("graph api returned %d: (#%d) %s", e.StatusCode, e.Graph.Code, e.Graph.Message)
	}
	return fmt.Sprintf("graph api returned %d: %s", e.StatusCode, e.Body)
}

func newTransportError(status int, body []byte) *TransportError {
	te := &TransportError{StatusCode: status, Body: string(body)}

	var decoded dto.GraphErrorResponse
	if err := json.Unmarshal(body, &decoded); err == nil && (decoded.Error.Message != "" || decoded.Error.Code != 0) {
		te.Graph = &decoded.Error
	}
	return te
}
