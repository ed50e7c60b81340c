// internal/domain/models/friendrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request states. Accepted requests are kept (status flipped);
// rejected or cancelled requests are deleted outright.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
)

// FriendRequest is a pending or accepted invitation from one user to another.
type FriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      primitive.ObjectID `bson:"from" json:"from"`
	To        primitive.ObjectID `bson:"to" json:"to"`
	Status    string             `bson:"status" json:"status"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
