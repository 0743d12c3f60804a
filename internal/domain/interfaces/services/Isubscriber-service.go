package Iservices

import (
	"context"

	"whatsapp-channel/internal/domain/entities"
)

// ISubscriberService defines the methods the subscriber store must implement.
type ISubscriberService interface {
	Upsert(ctx context.Context, subscriber entities.Subscriber) (entities.Subscriber, error)
	FindByID(ctx context.Context, foreignID string) (entities.Subscriber, error)
}
