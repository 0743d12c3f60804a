package Iservices

import (
	"context"

	"whatsapp-channel/internal/domain/entities"
)

type IAttachmentService interface {
	Store(ctx context.Context, attachment entities.Attachment) (entities.Attachment, error)
	FindByID(ctx context.Context, id string) (entities.Attachment, error)
	PublicURL(ref entities.AttachmentRef) (string, error)
}
