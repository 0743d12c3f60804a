package provider

import (
	"context"
	"io"

	"whatsapp-channel/internal/domain/dto"
)

type IWhatsAppProvider interface {
	SendMessage(ctx context.Context, phoneNumberID, to string, message dto.IWhatsAppMessage) (*dto.SendMessageResponse, error)
	GetMediaURL(ctx context.Context, mediaID, phoneNumberID string) (*dto.MediaMetadata, error)
	GetBusinessProfile(ctx context.Context, phoneNumberID string) (*dto.PhoneNumberProfile, error)
	DownloadMedia(ctx context.Context, mediaURL string) (io.ReadCloser, string, error)
}
