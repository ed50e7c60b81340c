// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account.
//
// Friends is a map keyed by the friend's user id (hex ObjectID). Friendship
// is mutual: accepting a request writes an entry on both sides. Users are
// never hard-deleted.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // internal | google
	AvatarURL    string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Friends      map[string]bool    `bson:"friends" json:"friends"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FriendIDs returns the ids of the user's friends in unspecified order.
// Map keys that are not valid hex ObjectIDs are skipped.
func (u User) FriendIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(u.Friends))
	for id, ok := range u.Friends {
		if !ok {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		ids = append(ids, oid)
	}
	return ids
}
