package event

import (
	"errors"
	"fmt"
	"testing"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetadata = dto.WebhookMetadata{DisplayPhoneNumber: "15550783881", PhoneNumberID: "106540352242922"}

func message(msgType string, mutate func(*dto.WebhookMessageData)) MessageUnit {
	m := dto.WebhookMessageData{From: "15551234567", ID: "wamid.1", Timestamp: "1700000000", Type: msgType}
	if mutate != nil {
		mutate(&m)
	}
	return MessageUnit{m}
}

func status(s string) StatusUnit {
	return StatusUnit{dto.WebhookStatus{ID: "wamid.out", RecipientID: "15551234567", Status: s, Timestamp: "1700000100"}}
}

func floatPtr(f float64) *float64 { return &f }

func TestTextMessage(t *testing.T) {
	contacts := []dto.WebhookContact{
		{Profile: dto.WebhookContactProfile{Name: "Someone Else"}, WaID: "19999999999"},
		{Profile: dto.WebhookContactProfile{Name: "Jane Doe"}, WaID: "15551234567"},
	}
	w := NewEventWrapper(message(TypeText, func(m *dto.WebhookMessageData) {
		m.Text = &dto.WebhookText{Body: "hello"}
	}), testMetadata, contacts)

	assert.Equal(t, entities.EventMessage, w.GetEventType())
	assert.Equal(t, entities.SubtypePlainText, w.GetMessageType())
	assert.Equal(t, "15551234567", w.GetSenderForeignID())
	assert.Equal(t, "106540352242922", w.GetPhoneNumberID())
	assert.EqualValues(t, 1700000000, w.GetWatermark())
	assert.Empty(t, w.GetDeliveredMessages())

	profile, ok := w.GetSenderProfile()
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", profile.Name)

	_, ok = w.GetRecipientForeignID()
	assert.False(t, ok)

	payload, err := w.GetPayload()
	require.NoError(t, err)
	assert.Nil(t, payload)

	msg, err := w.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, &entities.StoredMessage{Text: "hello"}, msg)
}

func TestDeliveredStatus(t *testing.T) {
	w := NewEventWrapper(status(dto.StatusDelivered), testMetadata, nil)

	assert.Equal(t, entities.EventDelivery, w.GetEventType())
	assert.Equal(t, []string{"wamid.out"}, w.GetDeliveredMessages())
	assert.EqualValues(t, 1700000100, w.GetWatermark())
	assert.Empty(t, w.GetSenderForeignID())

	recipient, ok := w.GetRecipientForeignID()
	require.True(t, ok)
	assert.Equal(t, "15551234567", recipient)

	ev, err := w.Normalize()
	require.NoError(t, err)
	assert.Nil(t, ev.Message)
	assert.Equal(t, "15551234567", ev.RecipientID)
}

func TestReadStatus(t *testing.T) {
	w := NewEventWrapper(status(dto.StatusRead), testMetadata, nil)

	assert.Equal(t, entities.EventRead, w.GetEventType())
	assert.Empty(t, w.GetDeliveredMessages())
	assert.EqualValues(t, 1700000100, w.GetWatermark())

	payload, err := w.GetPayload()
	assert.NoError(t, err)
	assert.Nil(t, payload)

	_, err = w.GetMessage()
	assert.True(t, errors.Is(err, ErrInvalidEvent))
}

func TestOtherStatusesAreUnknown(t *testing.T) {
	for _, s := range []string{dto.StatusSent, dto.StatusFailed, dto.StatusDeleted} {
		w := NewEventWrapper(status(s), testMetadata, nil)
		assert.Equal(t, entities.EventUnknown, w.GetEventType(), s)
	}
}

func TestUnparsableTimestampGivesZeroWatermark(t *testing.T) {
	w := NewEventWrapper(message(TypeText, func(m *dto.WebhookMessageData) {
		m.Timestamp = "yesterday"
	}), testMetadata, nil)
	assert.Zero(t, w.GetWatermark())
}

func TestMediaMessageNeedsAttachment(t *testing.T) {
	tests := []struct {
		kind     string
		set      func(m *dto.WebhookMessageData, media *dto.WebhookMedia)
		fileType entities.FileType
		name     string
	}{
		{TypeImage, func(m *dto.WebhookMessageData, media *dto.WebhookMedia) { m.Image = media }, entities.FileImage, "media-1.jpg"},
		{TypeAudio, func(m *dto.WebhookMessageData, media *dto.WebhookMedia) { m.Audio = media }, entities.FileAudio, "media-1.ogg"},
		{TypeVideo, func(m *dto.WebhookMessageData, media *dto.WebhookMedia) { m.Video = media }, entities.FileVideo, "media-1.mp4"},
		{TypeDocument, func(m *dto.WebhookMessageData, media *dto.WebhookMedia) { m.Document = media }, entities.FileFile, "report.pdf"},
		{TypeSticker, func(m *dto.WebhookMessageData, media *dto.WebhookMedia) { m.Sticker = media }, entities.FileImage, "media-1.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := NewEventWrapper(message(tt.kind, func(m *dto.WebhookMessageData) {
				tt.set(m, &dto.WebhookMedia{ID: "media-1"})
			}), testMetadata, nil)

			assert.Equal(t, entities.EventMessage, w.GetEventType())
			assert.Equal(t, entities.SubtypeAttachment, w.GetMessageType())

			ref, ok := w.GetMediaRef()
			require.True(t, ok)
			assert.Equal(t, "media-1", ref.ID)
			assert.Equal(t, tt.kind, ref.Kind)

			_, err := w.GetPayload()
			assert.True(t, errors.Is(err, ErrMissingAttachment))
			_, err = w.GetMessage()
			assert.True(t, errors.Is(err, ErrMissingAttachment))
			_, err = w.Normalize()
			assert.True(t, errors.Is(err, ErrMissingAttachment))

			w.SetAttachment(entities.Attachment{ID: "att-" + tt.kind, Name: tt.name, Type: tt.fileType})

			payload, err := w.GetPayload()
			require.NoError(t, err)
			assert.Equal(t, entities.PayloadAttachments, payload.Type)
			assert.Equal(t, "att-"+tt.kind, payload.Attachment.Payload.ID)
			assert.Equal(t, tt.fileType, payload.Attachment.Type)

			msg, err := w.GetMessage()
			require.NoError(t, err)
			assert.Equal(t, entities.PayloadAttachments, msg.Type)
			assert.Equal(t, fmt.Sprintf("attachment:%s:%s", tt.fileType, tt.name), msg.SerializedText)
		})
	}
}

func TestMediaMessageWithoutMediaObjectIsUnknown(t *testing.T) {
	for _, kind := range []string{TypeImage, TypeAudio, TypeVideo, TypeDocument, TypeSticker} {
		w := NewEventWrapper(message(kind, nil), testMetadata, nil)
		assert.Equal(t, entities.EventUnknown, w.GetEventType(), kind)
		_, ok := w.GetMediaRef()
		assert.False(t, ok, kind)
	}
}

func TestMediaMessageWithoutContentIsUnknown(t *testing.T) {
	w := NewEventWrapper(message(TypeVideo, nil), testMetadata, nil)
	assert.Equal(t, entities.EventUnknown, w.GetEventType())
	assert.Equal(t, entities.SubtypeUnknown, w.GetMessageType())

	_, ok := w.GetMediaRef()
	assert.False(t, ok)
}

func TestLocationDefaultsMissingCoordinates(t *testing.T) {
	w := NewEventWrapper(message(TypeLocation, func(m *dto.WebhookMessageData) {
		m.Location = &dto.WebhookLocation{Latitude: floatPtr(38.72)}
	}), testMetadata, nil)

	payload, err := w.GetPayload()
	require.NoError(t, err)
	assert.Equal(t, entities.PayloadLocation, payload.Type)
	assert.Equal(t, &entities.Coordinates{Lat: 38.72, Lon: 0}, payload.Coordinates)

	msg, err := w.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, entities.PayloadLocation, msg.Type)
	assert.Equal(t, 38.72, msg.Coordinates.Lat)
}

func TestPostbackPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		msgType string
		mutate  func(*dto.WebhookMessageData)
		wantID  string
		wantTtl string
	}{
		{
			name:    "button reply wins",
			msgType: TypeInteractive,
			mutate: func(m *dto.WebhookMessageData) {
				m.Interactive = &dto.WebhookInteractive{
					Type:        "button_reply",
					ButtonReply: &dto.ReplyOption{ID: "YES", Title: "Yes"},
					ListReply:   &dto.ReplyOption{ID: "ROW", Title: "Row"},
				}
			},
			wantID: "YES", wantTtl: "Yes",
		},
		{
			name:    "list reply",
			msgType: TypeInteractive,
			mutate: func(m *dto.WebhookMessageData) {
				m.Interactive = &dto.WebhookInteractive{Type: "list_reply", ListReply: &dto.ReplyOption{ID: "p2", Title: "Laptop"}}
			},
			wantID: "p2", wantTtl: "Laptop",
		},
		{
			name:    "template button",
			msgType: TypeButton,
			mutate: func(m *dto.WebhookMessageData) {
				m.Button = &dto.WebhookButton{Payload: "STOP", Text: "Stop promotions"}
			},
			wantID: "STOP", wantTtl: "Stop promotions",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewEventWrapper(message(tc.msgType, tc.mutate), testMetadata, nil)
			assert.Equal(t, entities.SubtypePostback, w.GetMessageType())

			payload, err := w.GetPayload()
			require.NoError(t, err)
			assert.Equal(t, &entities.Payload{Type: entities.PayloadPostback, ID: tc.wantID, Title: tc.wantTtl}, payload)

			msg, err := w.GetMessage()
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, msg.Postback)
			assert.Equal(t, tc.wantTtl, msg.Text)
		})
	}
}

func TestInteractiveWithoutReplyIsUnknown(t *testing.T) {
	w := NewEventWrapper(message(TypeInteractive, func(m *dto.WebhookMessageData) {
		m.Interactive = &dto.WebhookInteractive{Type: "nfm_reply"}
	}), testMetadata, nil)
	assert.Equal(t, entities.EventUnknown, w.GetEventType())
}

func TestContactsMessageIsPlainText(t *testing.T) {
	w := NewEventWrapper(message(TypeContacts, func(m *dto.WebhookMessageData) {
		m.Contacts = []dto.Contact{{Name: dto.ContactName{FormattedName: "John Smith"}}}
	}), testMetadata, nil)

	assert.Equal(t, entities.SubtypePlainText, w.GetMessageType())
	msg, err := w.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, "Name: John Smith", msg.Text)
}

func TestUnsupportedTypeIsUnknown(t *testing.T) {
	for _, msgType := range []string{TypeOrder, TypeSystem, "reaction", "unsupported"} {
		w := NewEventWrapper(message(msgType, nil), testMetadata, nil)
		assert.Equal(t, entities.EventUnknown, w.GetEventType(), msgType)
		assert.Equal(t, entities.SubtypeUnknown, w.GetMessageType(), msgType)
		assert.Empty(t, w.GetSenderForeignID())

		_, err := w.GetMessage()
		assert.True(t, errors.Is(err, ErrInvalidEvent))

		ev, err := w.Normalize()
		require.NoError(t, err)
		assert.Equal(t, "wamid.1", ev.MessageID)
	}
}

func TestNormalizeTextMessage(t *testing.T) {
	w := NewEventWrapper(message(TypeText, func(m *dto.WebhookMessageData) {
		m.Text = &dto.WebhookText{Body: "hello"}
	}), testMetadata, nil)

	ev, err := w.Normalize()
	require.NoError(t, err)
	assert.Equal(t, entities.EventMessage, ev.EventType)
	assert.Equal(t, entities.SubtypePlainText, ev.MessageSubtype)
	assert.Equal(t, "wamid.1", ev.MessageID)
	assert.Equal(t, "15551234567", ev.SenderID)
	assert.Equal(t, "106540352242922", ev.PhoneNumberID)
	assert.Nil(t, ev.Payload)
	assert.Equal(t, "hello", ev.Message.Text)
	assert.Equal(t, []string{}, ev.DeliveredMessages)
}
