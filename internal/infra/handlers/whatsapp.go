package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"whatsapp-channel/internal/config"
	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/domain/interfaces/repository"
	Iservices "whatsapp-channel/internal/domain/interfaces/services"
	"whatsapp-channel/internal/infra/event"
	"whatsapp-channel/internal/infra/logger"
	"whatsapp-channel/internal/infra/provider"
	"whatsapp-channel/internal/infra/services"
	"whatsapp-channel/internal/infra/translator"
	"whatsapp-channel/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidVerifyToken = errors.New("invalid webhook verify token")
	ErrInvalidWebhook     = errors.New("invalid webhook notification")
	ErrNoMessageID        = errors.New("send response carried no message id")
)

// ProviderFactory builds the transport client for a settings snapshot.
type ProviderFactory func(settings *config.Settings) provider.IWhatsAppProvider

// channelState is replaced wholesale on every settings update, never mutated.
type channelState struct {
	settings *config.Settings
	provider provider.IWhatsAppProvider
}

type WhatsAppHandlers struct {
	Logger            *logger.Logger
	ChannelService    Iservices.IChannelService
	AttachmentService Iservices.IAttachmentService
	Translator        *translator.Translator

	newProvider ProviderFactory
	state       atomic.Pointer[channelState]
}

func NewWhatsAppHandlers(logger *logger.Logger, settings *config.Settings, newProvider ProviderFactory, channelService Iservices.IChannelService, attachmentService Iservices.IAttachmentService, translator *translator.Translator) *WhatsAppHandlers {
	h := &WhatsAppHandlers{
		Logger:            logger,
		ChannelService:    channelService,
		AttachmentService: attachmentService,
		Translator:        translator,
		newProvider:       newProvider,
	}
	h.state.Store(&channelState{settings: settings, provider: newProvider(settings)})
	return h
}

// Settings returns the current settings snapshot.
func (th *WhatsAppHandlers) Settings() *config.Settings {
	return th.state.Load().settings
}

// Provider returns the transport client matching the current settings.
func (th *WhatsAppHandlers) Provider() provider.IWhatsAppProvider {
	return th.state.Load().provider
}

// AppSecret is the key the webhook signature middleware validates with.
func (th *WhatsAppHandlers) AppSecret() string {
	return th.Settings().AppSecret
}

// AdminToken is the bearer token the admin routes are guarded with.
func (th *WhatsAppHandlers) AdminToken() string {
	return th.Settings().AdminToken
}

// ApplySettings merges update into a copy of the current settings and swaps
// in the new settings together with a freshly built transport client.
// An update that leaves a required credential empty is rejected and the
// current settings stay in place. In-flight requests keep the snapshot they
// started with.
func (th *WhatsAppHandlers) ApplySettings(update config.SettingsUpdate) (*config.Settings, error) {
	for {
		current := th.state.Load()
		next := current.settings.Merge(update)
		if err := next.Validate(); err != nil {
			return nil, err
		}
		if th.state.CompareAndSwap(current, &channelState{settings: next, provider: th.newProvider(next)}) {
			return next, nil
		}
	}
}

// MetaWebhook is the single entry point the WhatsApp Cloud API calls.
//
// GET requests carry the subscription handshake (hub.mode, hub.verify_token
// and hub.challenge); the challenge is echoed back when the token matches.
// POST requests carry notifications. The signature has already been checked
// by middleware.VerifySignature by the time they get here.
//
// Once a notification is accepted every unit is processed and the response is
// 200 {"success": true} no matter how individual units fared, so the provider
// never resends a whole batch.
func (th *WhatsAppHandlers) MetaWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		th.handleVerification(w, r)
	case http.MethodPost:
		th.handleWebhookEvent(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, errors.New("invalid request method"))
	}
}

func (th *WhatsAppHandlers) handleVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	verifyToken := th.Settings().VerifyToken
	if verifyToken == "" {
		th.Logger.Error("Webhook verification attempted without a configured verify token")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("%w: verify token", config.ErrMissingConfig))
		return
	}

	if mode != "subscribe" || token != verifyToken {
		th.Logger.Warn("Webhook verification failed", logrus.Fields{"mode": mode})
		writeError(w, http.StatusInternalServerError, ErrInvalidVerifyToken)
		return
	}

	th.Logger.Info("Webhook verified")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

func (th *WhatsAppHandlers) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	var notification dto.IWebhookMessage
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidWebhook, err))
		return
	}
	defer r.Body.Close()

	if notification.Object == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: missing object", ErrInvalidWebhook))
		return
	}
	if notification.Object != dto.WhatsAppBusinessAccount {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: unexpected object %q", ErrInvalidWebhook, notification.Object))
		return
	}
	if notification.Entry == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: missing entry", ErrInvalidWebhook))
		return
	}

	// One snapshot per request so every unit sees the same credentials.
	whatsapp := th.Provider()
	ctx := r.Context()
	emitted := 0
	for _, entry := range notification.Entry {
		for _, change := range entry.Changes {
			emitted += th.ChannelService.Dispatch(ctx, whatsapp, change.Value)
		}
	}

	th.Logger.Info("Webhook notification processed", logrus.Fields{
		"request_id": middleware.RequestID(ctx),
		"entries":    len(notification.Entry),
		"emitted":    emitted,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSubscriberData maps the sender of a message unit to a subscriber record.
func (th *WhatsAppHandlers) GetSubscriberData(wrapper *event.EventWrapper) entities.Subscriber {
	return services.GetSubscriberData(wrapper)
}

// SendMessage translates envelope and sends it to the recipient to from the
// business phone number phoneNumberID. It returns the provider message id.
func (th *WhatsAppHandlers) SendMessage(ctx context.Context, phoneNumberID, to string, envelope entities.OutgoingEnvelope) (string, error) {
	message, err := th.Translator.Translate(envelope)
	if err != nil {
		return "", err
	}

	res, err := th.Provider().SendMessage(ctx, phoneNumberID, to, message)
	if err != nil {
		return "", err
	}
	if len(res.Messages) == 0 || res.Messages[0].ID == "" {
		return "", ErrNoMessageID
	}
	return res.Messages[0].ID, nil
}

type sendMessageRequest struct {
	To            string                    `json:"to"`
	PhoneNumberID string                    `json:"phone_number_id"`
	Envelope      entities.OutgoingEnvelope `json:"envelope"`
}

// HandleSendMessage serves POST /messages.
func (th *WhatsAppHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("error to process JSON: %w", err))
		return
	}
	defer r.Body.Close()

	if req.To == "" || req.PhoneNumberID == "" {
		writeError(w, http.StatusBadRequest, errors.New("to and phone_number_id are required"))
		return
	}

	mid, err := th.SendMessage(r.Context(), req.PhoneNumberID, req.To, req.Envelope)
	if err != nil {
		status := errorStatus(err)
		th.Logger.Error(fmt.Sprintf("Failed to send WhatsApp message to %s: %v", req.To, err), logrus.Fields{"status": status})
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"mid": mid})
}

// UpdateSettings serves POST /settings with a partial settings document.
func (th *WhatsAppHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var update config.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("error to process JSON: %w", err))
		return
	}
	defer r.Body.Close()

	if _, err := th.ApplySettings(update); err != nil {
		th.Logger.Warn(fmt.Sprintf("Rejected settings update: %v", err))
		writeError(w, http.StatusBadRequest, err)
		return
	}
	th.Logger.Info("Channel settings updated")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetSettings serves GET /settings with the channel options the host engine
// renders from. Credentials are never returned.
func (th *WhatsAppHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, th.Settings().Options())
}

// ServeAttachment serves GET /attachments/{id} by streaming the media from
// the provider. Media URLs expire, so one is resolved on every request.
func (th *WhatsAppHandlers) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	att, err := th.AttachmentService.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	whatsapp := th.Provider()
	meta, err := whatsapp.GetMediaURL(ctx, att.MediaID, "")
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}

	body, contentType, err := whatsapp.DownloadMedia(ctx, meta.URL)
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = att.MimeType
	}
	w.Header().Set("Content-Type", contentType)
	if att.Name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", att.Name))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		th.Logger.Warn(fmt.Sprintf("Attachment stream interrupted: %v", err), logrus.Fields{"attachment_id": id})
	}
}

// GetBusinessProfile serves GET /profile/{phone_number_id}.
func (th *WhatsAppHandlers) GetBusinessProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := th.Provider().GetBusinessProfile(r.Context(), mux.Vars(r)["phone_number_id"])
	if err != nil {
		writeError(w, errorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// errorStatus maps send-path errors to the HTTP status reported to callers.
func errorStatus(err error) int {
	var te *provider.TransportError
	switch {
	case errors.Is(err, translator.ErrUnsupportedFormat),
		errors.Is(err, translator.ErrUnsupportedAttachmentType),
		errors.Is(err, translator.ErrInvalidEnvelope),
		errors.Is(err, services.ErrInvalidAttachmentRef):
		return http.StatusBadRequest
	case errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"err": err.Error()})
}
