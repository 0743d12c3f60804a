package event

import "whatsapp-channel/internal/domain/dto"

// Unit is one inbound notification unit: a MessageUnit or a StatusUnit.
type Unit interface {
	unitID() string
	unitTimestamp() string
}

// MessageUnit wraps a customer-sent message.
type MessageUnit struct {
	dto.WebhookMessageData
}

// StatusUnit wraps a delivery report.
type StatusUnit struct {
	dto.WebhookStatus
}

func (u MessageUnit) unitID() string        { return u.ID }
func (u MessageUnit) unitTimestamp() string { return u.Timestamp }
func (u StatusUnit) unitID() string         { return u.ID }
func (u StatusUnit) unitTimestamp() string  { return u.Timestamp }
