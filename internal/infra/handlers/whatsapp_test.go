package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"whatsapp-channel/internal/config"
	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/infra/event"
	"whatsapp-channel/internal/infra/logger"
	"whatsapp-channel/internal/infra/provider"
	inmemory "whatsapp-channel/internal/infra/repository"
	"whatsapp-channel/internal/infra/services"
	"whatsapp-channel/internal/infra/translator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	token   string
	sent    []dto.IWhatsAppMessage
	sendErr error
}

func (f *fakeProvider) SendMessage(ctx context.Context, phoneNumberID, to string, message dto.IWhatsAppMessage) (*dto.SendMessageResponse, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	message.To = to
	f.sent = append(f.sent, message)
	return &dto.SendMessageResponse{Messages: []dto.SendResponseMessage{{ID: "wamid.out"}}}, nil
}

func (f *fakeProvider) GetMediaURL(ctx context.Context, mediaID, phoneNumberID string) (*dto.MediaMetadata, error) {
	return &dto.MediaMetadata{ID: mediaID, URL: "https://lookaside.example/" + mediaID, MimeType: "image/png"}, nil
}

func (f *fakeProvider) GetBusinessProfile(ctx context.Context, phoneNumberID string) (*dto.PhoneNumberProfile, error) {
	return &dto.PhoneNumberProfile{ID: phoneNumberID, VerifiedName: "Acme"}, nil
}

func (f *fakeProvider) DownloadMedia(ctx context.Context, mediaURL string) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("PNG:" + mediaURL)), "image/png", nil
}

type recordingEngine struct {
	events []entities.NormalizedEvent
}

func (r *recordingEngine) Emit(ctx context.Context, ev entities.NormalizedEvent) error {
	r.events = append(r.events, ev)
	return nil
}

type fixture struct {
	handler     *WhatsAppHandlers
	engine      *recordingEngine
	attachments *services.AttachmentService
	providers   []*fakeProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{engine: &recordingEngine{}}

	f.attachments = services.NewAttachmentService(inmemory.NewMemoryRepository[entities.Attachment](), log, "https://bot.example")
	subscribers := services.NewSubscriberService(inmemory.NewMemoryRepository[entities.Subscriber](), log)
	channel := services.NewChannelService(log, subscribers, f.attachments, f.engine)

	settings := &config.Settings{AppSecret: "secret", AccessToken: "token-1", VerifyToken: "verify-me", AdminToken: "admin"}
	factory := func(s *config.Settings) provider.IWhatsAppProvider {
		p := &fakeProvider{token: s.AccessToken}
		f.providers = append(f.providers, p)
		return p
	}

	f.handler = NewWhatsAppHandlers(log, settings, factory, channel, f.attachments, translator.NewTranslator(f.attachments))
	return f
}

func (f *fixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.MetaWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestVerificationHandshake(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.MetaWebhook(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=1158201444", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1158201444", rec.Body.String())

	rec = httptest.NewRecorder()
	f.handler.MetaWebhook(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrInvalidVerifyToken.Error(), decode(t, rec)["err"])
}

func TestWebhookRejectsMalformedNotifications(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{
		`{"entry":[]}`,
		`{"object":"page","entry":[]}`,
		`{"object":"whatsapp_business_account"}`,
		`not json`,
	} {
		rec := f.post(t, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, decode(t, rec)["err"], body)
	}
	assert.Empty(t, f.engine.events)
}

const helloNotification = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "102290129340398",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550783881", "phone_number_id": "106540352242922"},
        "contacts": [{"profile": {"name": "Jane Doe"}, "wa_id": "15551234567"}],
        "messages": [{"from": "15551234567", "id": "wamid.hello", "timestamp": "1700000000", "type": "text", "text": {"body": "hello"}}]
      }
    }]
  }]
}`

func TestWebhookTextMessageEmitsOneEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, helloNotification)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	require.Len(t, f.engine.events, 1)
	ev := f.engine.events[0]
	assert.Equal(t, entities.EventMessage, ev.EventType)
	assert.Equal(t, entities.SubtypePlainText, ev.MessageSubtype)
	assert.Equal(t, "15551234567", ev.SenderID)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "hello", ev.Message.Text)
	require.NotNil(t, ev.Subscriber)
	assert.Equal(t, "Jane", ev.Subscriber.FirstName)
}

func TestWebhookReadStatusEmitsReadEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{
	  "object": "whatsapp_business_account",
	  "entry": [{"id": "1", "changes": [{"field": "messages", "value": {
	    "messaging_product": "whatsapp",
	    "metadata": {"display_phone_number": "15550783881", "phone_number_id": "106540352242922"},
	    "statuses": [{"id": "wamid.1", "recipient_id": "15551234567", "status": "read", "timestamp": "1700000500"}]
	  }}]}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.engine.events, 1)
	ev := f.engine.events[0]
	assert.Equal(t, entities.EventRead, ev.EventType)
	assert.Equal(t, []string{}, ev.DeliveredMessages)
	assert.EqualValues(t, 1700000500, ev.Watermark)
}

func TestWebhookEmitsUnknownForUnsupportedTypes(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{
	  "metadata": {"phone_number_id": "1"},
	  "messages": [{"from": "2", "id": "wamid.x", "timestamp": "1", "type": "reaction", "reaction": {"message_id": "wamid.0", "emoji": "x"}}]
	}}]}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.engine.events, 1)
	assert.Equal(t, entities.EventUnknown, f.engine.events[0].EventType)
}

func TestSendMessage(t *testing.T) {
	f := newFixture(t)

	mid, err := f.handler.SendMessage(context.Background(), "106540352242922", "15551234567", entities.OutgoingEnvelope{
		Format:  entities.FormatText,
		Message: entities.OutgoingMessage{Text: "hi there"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wamid.out", mid)

	p := f.providers[0]
	require.Len(t, p.sent, 1)
	assert.Equal(t, dto.TypeText, p.sent[0].Type)
	assert.Equal(t, "15551234567", p.sent[0].To)
}

func TestHandleSendMessageStatuses(t *testing.T) {
	f := newFixture(t)

	send := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		f.handler.HandleSendMessage(rec, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
		return rec
	}

	rec := send(`{"to":"15551234567","phone_number_id":"1","envelope":{"format":"text","message":{"text":"hi"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wamid.out", decode(t, rec)["mid"])

	rec = send(`{"to":"15551234567","phone_number_id":"1","envelope":{"format":"hologram","message":{}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(`{"phone_number_id":"1","envelope":{"format":"text","message":{"text":"hi"}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.providers[0].sendErr = &provider.TransportError{StatusCode: http.StatusBadRequest, Body: `{"error":{"message":"bad"}}`}
	rec = send(`{"to":"15551234567","phone_number_id":"1","envelope":{"format":"text","message":{"text":"hi"}}}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestApplySettingsSwapsProvider(t *testing.T) {
	f := newFixture(t)
	before := f.handler.Settings()

	token := "token-2"
	next, err := f.handler.ApplySettings(config.SettingsUpdate{AccessToken: &token})
	require.NoError(t, err)

	assert.Equal(t, "token-2", next.AccessToken)
	assert.Equal(t, "token-1", before.AccessToken)
	assert.Same(t, next, f.handler.Settings())
	require.Len(t, f.providers, 2)
	assert.Same(t, f.providers[1], f.handler.Provider())
	assert.Equal(t, "token-2", f.providers[1].token)
}

func TestUpdateSettingsRoute(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.handler.UpdateSettings(rec, httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(`{"verify_token":"rotated","greeting_text":"Welcome"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "rotated", f.handler.Settings().VerifyToken)
	assert.Equal(t, "Welcome", f.handler.Settings().GreetingText)
	assert.Equal(t, "secret", f.handler.AppSecret())
}

func TestApplySettingsRejectsClearedCredential(t *testing.T) {
	f := newFixture(t)
	before := f.handler.Settings()

	empty := ""
	_, err := f.handler.ApplySettings(config.SettingsUpdate{AppSecret: &empty})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingConfig))

	assert.Same(t, before, f.handler.Settings())
	assert.Equal(t, "secret", f.handler.AppSecret())
	assert.Len(t, f.providers, 1)

	rec := httptest.NewRecorder()
	f.handler.UpdateSettings(rec, httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(`{"access_token":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["err"], config.KeyAccessToken)
	assert.Equal(t, "token-1", f.handler.Provider().(*fakeProvider).token)
}

func TestGetSettingsReturnsOptionsOnly(t *testing.T) {
	f := newFixture(t)
	fields := []string{"first_name", "last_name"}
	_, err := f.handler.ApplySettings(config.SettingsUpdate{UserFields: &fields})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	f.handler.GetSettings(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	assert.Equal(t, []any{"first_name", "last_name"}, out["user_fields"])
	assert.NotContains(t, out, "app_secret")
	assert.NotContains(t, out, "access_token")
}

func TestServeAttachment(t *testing.T) {
	f := newFixture(t)
	att, err := f.attachments.Store(context.Background(), entities.Attachment{MediaID: "media-9", Name: "cat.png", MimeType: "image/png"})
	require.NoError(t, err)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/attachments/"+att.ID, nil), map[string]string{"id": att.ID})
	rec := httptest.NewRecorder()
	f.handler.ServeAttachment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "PNG:https://lookaside.example/media-9", rec.Body.String())

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/attachments/missing", nil), map[string]string{"id": "missing"})
	rec = httptest.NewRecorder()
	f.handler.ServeAttachment(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSubscriberData(t *testing.T) {
	f := newFixture(t)
	wrapper := event.NewEventWrapper(event.MessageUnit{WebhookMessageData: dto.WebhookMessageData{
		From: "15551234567", ID: "wamid.1", Type: event.TypeText, Text: &dto.WebhookText{Body: "hi"},
	}}, dto.WebhookMetadata{PhoneNumberID: "1"}, []dto.WebhookContact{
		{Profile: dto.WebhookContactProfile{Name: "Mary Ann Smith"}, WaID: "15551234567"},
	})

	sub := f.handler.GetSubscriberData(wrapper)
	assert.Equal(t, "Mary", sub.FirstName)
	assert.Equal(t, "Ann Smith", sub.LastName)
	assert.Equal(t, services.ChannelName, sub.Channel.Name)
}
