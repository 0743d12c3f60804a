package entities

import "time"

type SubscriberChannel struct {
	Name               string `json:"name" bson:"name"`
	PhoneNumberID      string `json:"phone_number_id" bson:"phone_number_id"`
	DisplayPhoneNumber string `json:"display_phone_number,omitempty" bson:"display_phone_number,omitempty"`
}

type Subscriber struct {
	ForeignID string            `json:"foreign_id" bson:"_id"`
	FirstName string            `json:"first_name" bson:"first_name"`
	LastName  string            `json:"last_name" bson:"last_name"`
	Channel   SubscriberChannel `json:"channel" bson:"channel"`
	LastSeen  time.Time         `json:"last_seen" bson:"last_seen"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updated_at"`
}
