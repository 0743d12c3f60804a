package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// GraphWhatsAppProvider talks to the WhatsApp Cloud API. It is immutable:
// rotating the access token means building a new provider.
type GraphWhatsAppProvider struct {
	Logger      *logger.Logger
	HttpClient  *http.Client
	baseURL     string
	apiVersion  string
	accessToken string
}

func NewGraphWhatsAppProvider(logger *logger.Logger, httpClient *http.Client, baseURL, apiVersion, accessToken string) *GraphWhatsAppProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphWhatsAppProvider{
		Logger:      logger,
		HttpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiVersion:  strings.Trim(apiVersion, "/"),
		accessToken: accessToken,
	}
}

// SendMessage posts message to /{version}/{phone-number-id}/messages. The
// product tag and recipient are stamped here so translated messages stay
// free of transport details.
func (p *GraphWhatsAppProvider) SendMessage(ctx context.Context, phoneNumberID, to string, message dto.IWhatsAppMessage) (*dto.SendMessageResponse, error) {
	if phoneNumberID == "" || to == "" {
		return nil, fmt.Errorf("phone number id and recipient (to) cannot be empty")
	}

	message.MessagingProduct = dto.MessagingProduct
	message.RecipientType = dto.RecipientTypeIndividual
	message.To = to

	var out dto.SendMessageResponse
	if err := p.do(ctx, http.MethodPost, p.endpoint(phoneNumberID, "messages"), message, &out); err != nil {
		return nil, err
	}

	p.Logger.Debug("WhatsApp message sent", logrus.Fields{"to": to, "type": message.Type, "messages": len(out.Messages)})
	return &out, nil
}

func (p *GraphWhatsAppProvider) GetMediaURL(ctx context.Context, mediaID, phoneNumberID string) (*dto.MediaMetadata, error) {
	if mediaID == "" {
		return nil, fmt.Errorf("media id cannot be empty")
	}

	endpoint := p.endpoint(mediaID)
	if phoneNumberID != "" {
		endpoint += "?" + url.Values{"phone_number_id": {phoneNumberID}}.Encode()
	}

	var out dto.MediaMetadata
	if err := p.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *GraphWhatsAppProvider) GetBusinessProfile(ctx context.Context, phoneNumberID string) (*dto.PhoneNumberProfile, error) {
	if phoneNumberID == "" {
		return nil, fmt.Errorf("phone number id cannot be empty")
	}

	var out dto.PhoneNumberProfile
	if err := p.do(ctx, http.MethodGet, p.endpoint(phoneNumberID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadMedia fetches a media URL previously returned by GetMediaURL. The
// caller must close the returned body.
func (p *GraphWhatsAppProvider) DownloadMedia(ctx context.Context, mediaURL string) (io.ReadCloser, string, error) {
	req, err := p.newRequest(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}

	res, err := p.HttpClient.Do(req)
	if err != nil {
		p.Logger.Error(fmt.Sprintf("HTTP request failed %v", err))
		return nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		defer res.Body.Close()
		body, _ := io.ReadAll(res.Body)
		return nil, "", newTransportError(res.StatusCode, body)
	}

	return res.Body, res.Header.Get("Content-Type"), nil
}

func (p *GraphWhatsAppProvider) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts)+2)
	escaped = append(escaped, p.baseURL, p.apiVersion)
	for _, part := range parts {
		escaped = append(escaped, url.PathEscape(part))
	}
	return strings.Join(escaped, "/")
}

func (p *GraphWhatsAppProvider) newRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	if p.accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			p.Logger.Error(fmt.Sprintf("Failed to marshal payload %v", err))
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		p.Logger.Error(fmt.Sprintf("Failed to create HTTP request %v", err))
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.accessToken))
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (p *GraphWhatsAppProvider) do(ctx context.Context, method, endpoint string, payload any, out any) error {
	req, err := p.newRequest(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}

	res, err := p.HttpClient.Do(req)
	if err != nil {
		p.Logger.Error(fmt.Sprintf("HTTP request failed %v", err))
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		p.Logger.Error(fmt.Sprintf("Failed to read response body %v", err))
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		p.Logger.Error(fmt.Sprintf("Unexpected HTTP status %s", res.Status), logrus.Fields{"response_body": string(body)})
		return newTransportError(res.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error decoding response JSON: %w", err)
	}
	return nil
}
