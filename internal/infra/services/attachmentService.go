package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/domain/interfaces/repository"
	repocontants "whatsapp-channel/internal/domain/interfaces/repository/contants"
	"whatsapp-channel/internal/infra/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidAttachmentRef = errors.New("attachment reference has neither url nor id")

// AttachmentService stores inbound media references and builds the public
// URLs outbound media messages point at.
type AttachmentService struct {
	AttachmentRepository repository.Repository[entities.Attachment]
	Logger               *logger.Logger
	BaseURL              string
}

func NewAttachmentService(attachmentRepository repository.Repository[entities.Attachment], logger *logger.Logger, baseURL string) *AttachmentService {
	return &AttachmentService{
		AttachmentRepository: attachmentRepository,
		Logger:               logger,
		BaseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// Store assigns an id, creation time and file kind to attachment and persists it.
func (as *AttachmentService) Store(ctx context.Context, attachment entities.Attachment) (entities.Attachment, error) {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}
	if attachment.Type == "" || attachment.Type == entities.FileUnknown {
		attachment.Type = entities.FileTypeFromMime(attachment.MimeType)
	}

	result, err := as.AttachmentRepository.Create(ctx, repocontants.ATTACHMENT_COLLECTION, attachment.ID, attachment)
	if err != nil {
		as.Logger.Error("Failed to store attachment", logrus.Fields{"media_id": attachment.MediaID, "error": err.Error()})
		return entities.Attachment{}, err
	}

	as.Logger.Debug("Attachment stored", logrus.Fields{"attachment_id": result.ID, "media_id": result.MediaID})
	return result, nil
}

func (as *AttachmentService) FindByID(ctx context.Context, id string) (entities.Attachment, error) {
	result, err := as.AttachmentRepository.FindByID(ctx, repocontants.ATTACHMENT_COLLECTION, id)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("find attachment %s: %w", id, err)
	}
	return result, nil
}

// PublicURL returns the explicit URL of ref, or the URL this service serves
// the stored attachment under.
func (as *AttachmentService) PublicURL(ref entities.AttachmentRef) (string, error) {
	if ref.URL != "" {
		return ref.URL, nil
	}
	if ref.ID == "" {
		return "", ErrInvalidAttachmentRef
	}
	return fmt.Sprintf("%s/attachments/%s", as.BaseURL, url.PathEscape(ref.ID)), nil
}
