package services

import (
	"context"
	"errors"
	"testing"

	"whatsapp-channel/internal/domain/entities"
	"whatsapp-channel/internal/domain/interfaces/repository"
	"whatsapp-channel/internal/infra/logger"
	inmemory "whatsapp-channel/internal/infra/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberUpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriberService(inmemory.NewMemoryRepository[entities.Subscriber](), logger.NewNop())

	_, err := svc.Upsert(ctx, entities.Subscriber{ForeignID: "15551234567", FirstName: "Jane"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, entities.Subscriber{ForeignID: "15551234567", FirstName: "Janet", LastName: "Doe"})
	require.NoError(t, err)

	got, err := svc.FindByID(ctx, "15551234567")
	require.NoError(t, err)
	assert.Equal(t, "Janet", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestSubscriberUpsertKeepsNameWhenProfileMissing(t *testing.T) {
	ctx := context.Background()
	svc := NewSubscriberService(inmemory.NewMemoryRepository[entities.Subscriber](), logger.NewNop())

	_, err := svc.Upsert(ctx, entities.Subscriber{ForeignID: "15551234567", FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	channel := entities.SubscriberChannel{Name: ChannelName, PhoneNumberID: "106540352242922"}
	saved, err := svc.Upsert(ctx, entities.Subscriber{ForeignID: "15551234567", Channel: channel})
	require.NoError(t, err)
	assert.Equal(t, "Jane", saved.FirstName)

	got, err := svc.FindByID(ctx, "15551234567")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, channel, got.Channel)
}

func TestSubscriberUpsertRequiresForeignID(t *testing.T) {
	svc := NewSubscriberService(inmemory.NewMemoryRepository[entities.Subscriber](), logger.NewNop())
	_, err := svc.Upsert(context.Background(), entities.Subscriber{FirstName: "Nobody"})
	assert.Error(t, err)
}

func TestSubscriberFindMissing(t *testing.T) {
	svc := NewSubscriberService(inmemory.NewMemoryRepository[entities.Subscriber](), logger.NewNop())
	_, err := svc.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
