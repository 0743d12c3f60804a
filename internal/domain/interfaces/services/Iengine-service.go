package Iservices

import (
	"context"

	"whatsapp-channel/internal/domain/entities"
)

// IEngineService hands normalized events to the host engine.
type IEngineService interface {
	Emit(ctx context.Context, event entities.NormalizedEvent) error
}
