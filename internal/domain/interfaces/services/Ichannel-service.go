package Iservices

import (
	"context"

	"whatsapp-channel/internal/domain/dto"
	"whatsapp-channel/internal/infra/provider"
)

// IChannelService processes the units of one webhook change value.
type IChannelService interface {
	Dispatch(ctx context.Context, whatsapp provider.IWhatsAppProvider, value dto.WebhookValue) int
}
