package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/domain/interfaces/repository"
	repocontants "whatsapp-channel/internal/domain/interfaces/repository/contants"
	"whatsapp-channel/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// SubscriberService is the service responsible for Subscriber persistence.
type SubscriberService struct {
	SubscriberRepository repository.Repository[entities.Subscriber]
	Logger               *logger.Logger
}

// NewSubscriberService creates a new instance of the service.
func NewSubscriberService(subscriberRepository repository.Repository[entities.Subscriber], logger *logger.Logger) *SubscriberService {
	return &SubscriberService{
		SubscriberRepository: subscriberRepository,
		Logger:               logger,
	}
}

// Upsert creates the subscriber or updates the stored one with the same
// foreign id. Messages without a contacts profile carry no name, so the stored
// name is kept when the incoming one is empty.
func (ss *SubscriberService) Upsert(ctx context.Context, subscriber entities.Subscriber) (entities.Subscriber, error) {
	if subscriber.ForeignID == "" {
		return entities.Subscriber{}, fmt.Errorf("subscriber has no foreign id")
	}

	if subscriber.FirstName == "" && subscriber.LastName == "" {
		stored, err := ss.SubscriberRepository.FindByID(ctx, repocontants.SUBSCRIBER_COLLECTION, subscriber.ForeignID)
		switch {
		case err == nil:
			subscriber.FirstName = stored.FirstName
			subscriber.LastName = stored.LastName
		case !errors.Is(err, repository.ErrNotFound):
			ss.Logger.Error("Failed to load subscriber", logrus.Fields{"foreign_id": subscriber.ForeignID, "error": err.Error()})
			return entities.Subscriber{}, err
		}
	}
	subscriber.UpdatedAt = time.Now().UTC()

	result, err := ss.SubscriberRepository.Upsert(ctx, repocontants.SUBSCRIBER_COLLECTION, subscriber.ForeignID, subscriber)
	if err != nil {
		ss.Logger.Error("Failed to upsert subscriber", logrus.Fields{"foreign_id": subscriber.ForeignID, "error": err.Error()})
		return entities.Subscriber{}, err
	}
	return result, nil
}

// FindByID retrieves a Subscriber by its WhatsApp id.
func (ss *SubscriberService) FindByID(ctx context.Context, foreignID string) (entities.Subscriber, error) {
	result, err := ss.SubscriberRepository.FindByID(ctx, repocontants.SUBSCRIBER_COLLECTION, foreignID)
	if err != nil {
		return entities.Subscriber{}, fmt.Errorf("find subscriber %s: %w", foreignID, err)
	}
	return result, nil
}
