package services

import (
	"context"
	"fmt"
	"mime"
	"time"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/domain/entities"
	Iservices "whatsapp-channel/internal/domain/interfaces/services"
	"whatsapp-channel/internal/infra/event"
	"whatsapp-channel/internal/infra/logger"
	"whatsapp-channel/internal/infra/provider"
	"whatsapp-channel/internal/util"

	"github.com/sirupsen/logrus"
)

// ChannelName identifies this channel on stored subscribers.
const ChannelName = "whatsapp"

// ChannelService turns one webhook change value into normalized events and
// hands them to the host engine, one unit at a time and in payload order.
type ChannelService struct {
	Logger            *logger.Logger
	SubscriberService Iservices.ISubscriberService
	AttachmentService Iservices.IAttachmentService
	EngineService     Iservices.IEngineService
}

func NewChannelService(logger *logger.Logger, subscriberService Iservices.ISubscriberService, attachmentService Iservices.IAttachmentService, engineService Iservices.IEngineService) *ChannelService {
	return &ChannelService{
		Logger:            logger,
		SubscriberService: subscriberService,
		AttachmentService: attachmentService,
		EngineService:     engineService,
	}
}

// Dispatch processes every message and then every status of value. A unit
// that fails is logged and skipped; it returns how many events were emitted.
// whatsapp is the transport snapshot used for media lookups of this request.
func (cs *ChannelService) Dispatch(ctx context.Context, whatsapp provider.IWhatsAppProvider, value dto.WebhookValue) int {
	emitted := 0

	for _, msg := range value.Messages {
		if cs.processUnit(ctx, whatsapp, event.MessageUnit{WebhookMessageData: msg}, value) {
			emitted++
		}
	}
	for _, st := range value.Statuses {
		if cs.processUnit(ctx, whatsapp, event.StatusUnit{WebhookStatus: st}, value) {
			emitted++
		}
	}

	for _, e := range value.Errors {
		cs.Logger.Warn("Webhook reported an error", logrus.Fields{
			"code":            e.Code,
			"title":           e.Title,
			"phone_number_id": value.Metadata.PhoneNumberID,
		})
	}
	return emitted
}

func (cs *ChannelService) processUnit(ctx context.Context, whatsapp provider.IWhatsAppProvider, unit event.Unit, value dto.WebhookValue) (ok bool) {
	wrapper := event.NewEventWrapper(unit, value.Metadata, value.Contacts)
	fields := logrus.Fields{
		"message_id":      wrapper.GetID(),
		"event_type":      wrapper.GetEventType(),
		"phone_number_id": wrapper.GetPhoneNumberID(),
	}

	defer func() {
		if r := recover(); r != nil {
			cs.Logger.Error(fmt.Sprintf("Panic while processing unit: %v", r), fields)
			ok = false
		}
	}()

	if err := cs.HandleUnit(ctx, whatsapp, wrapper); err != nil {
		cs.Logger.Error(fmt.Sprintf("Failed to process unit: %v", err), fields)
		return false
	}
	return true
}

// HandleUnit resolves media, stores the sender and emits the event of one wrapper.
func (cs *ChannelService) HandleUnit(ctx context.Context, whatsapp provider.IWhatsAppProvider, wrapper *event.EventWrapper) error {
	if ref, ok := wrapper.GetMediaRef(); ok {
		att, err := cs.resolveMedia(ctx, whatsapp, wrapper.GetPhoneNumberID(), ref)
		if err != nil {
			return fmt.Errorf("resolve media %s: %w", ref.ID, err)
		}
		wrapper.SetAttachment(att)
	}

	normalized, err := wrapper.Normalize()
	if err != nil {
		return err
	}

	if wrapper.GetEventType() == entities.EventMessage {
		subscriber := GetSubscriberData(wrapper)
		stored, err := cs.SubscriberService.Upsert(ctx, subscriber)
		if err != nil {
			cs.Logger.Warn("Subscriber not saved, emitting anyway", logrus.Fields{"foreign_id": subscriber.ForeignID})
			stored = subscriber
		}
		normalized.Subscriber = &stored
	}

	return cs.EngineService.Emit(ctx, normalized)
}

func (cs *ChannelService) resolveMedia(ctx context.Context, whatsapp provider.IWhatsAppProvider, phoneNumberID string, ref event.MediaRef) (entities.Attachment, error) {
	meta, err := whatsapp.GetMediaURL(ctx, ref.ID, phoneNumberID)
	if err != nil {
		return entities.Attachment{}, err
	}

	mimeType := meta.MimeType
	if mimeType == "" {
		mimeType = ref.MimeType
	}
	sha := meta.Sha256
	if sha == "" {
		sha = ref.Sha256
	}

	return cs.AttachmentService.Store(ctx, entities.Attachment{
		MediaID:   ref.ID,
		Name:      attachmentName(ref, mimeType),
		MimeType:  mimeType,
		Size:      meta.FileSize,
		SHA256:    sha,
		SourceURL: meta.URL,
	})
}

func attachmentName(ref event.MediaRef, mimeType string) string {
	if ref.Filename != "" {
		return ref.Filename
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return ref.ID + exts[0]
	}
	return ref.ID
}

// GetSubscriberData builds the subscriber record for the sender of a message
// from the profile carried by the same webhook change.
func GetSubscriberData(wrapper *event.EventWrapper) entities.Subscriber {
	var first, last string
	if profile, ok := wrapper.GetSenderProfile(); ok {
		first, last = util.SplitName(profile.Name)
	}

	return entities.Subscriber{
		ForeignID: wrapper.GetSenderForeignID(),
		FirstName: first,
		LastName:  last,
		Channel: entities.SubscriberChannel{
			Name:               ChannelName,
			PhoneNumberID:      wrapper.GetPhoneNumberID(),
			DisplayPhoneNumber: wrapper.GetMetadata().DisplayPhoneNumber,
		},
		LastSeen: time.Now().UTC(),
	}
}
