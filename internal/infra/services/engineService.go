package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

var ErrEngineRejected = errors.New("host engine rejected event")

// EngineService forwards normalized events to the host engine. With no
// host URL configured events are only logged.
type EngineService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	HostURL    string
}

func NewEngineService(logger *logger.Logger, httpClient *http.Client, hostURL string) *EngineService {
	return &EngineService{
		Logger:     logger,
		HttpClient: httpClient,
		HostURL:    strings.TrimRight(hostURL, "/"),
	}
}

// Emit posts event as JSON to <HostURL>/events.
func (es *EngineService) Emit(ctx context.Context, event entities.NormalizedEvent) error {
	fields := logrus.Fields{
		"message_id":      event.MessageID,
		"event_type":      event.EventType,
		"phone_number_id": event.PhoneNumberID,
	}

	if es.HostURL == "" {
		es.Logger.Info("Event emitted", fields)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, es.HostURL+"/events", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := es.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrEngineRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	es.Logger.Debug("Event delivered to host engine", fields)
	return nil
}
