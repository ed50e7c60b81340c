package friendrequeststore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a request lookup matches no document.
	ErrNotFound = errors.New("friend request not found")
	// ErrDuplicate is returned when a pending request between the pair exists.
	ErrDuplicate = errors.New("a pending request between these users already exists")
	// ErrSelf is returned when a user sends a request to themselves.
	ErrSelf = errors.New("cannot send a friend request to yourself")
	// ErrNotRecipient is returned when a user other than the recipient
	// tries to accept or reject.
	ErrNotRecipient = errors.New("only the recipient can act on this request")
	// ErrNotSender is returned when a user other than the sender cancels.
	ErrNotSender = errors.New("only the sender can cancel this request")
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("friend_requests"), users: userstore.New(db)}
}

// GetByID loads a request by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&fr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fr, nil
}

// Create inserts a pending request from -> to. Duplicate pending requests
// in either direction are rejected.
func (s *Store) Create(ctx context.Context, from, to primitive.ObjectID) (models.FriendRequest, error) {
	if from == to {
		return models.FriendRequest{}, ErrSelf
	}
	count, err := s.c.CountDocuments(ctx, bson.M{
		"status": models.RequestPending,
		"$or": []bson.M{
			{"from": from, "to": to},
			{"from": to, "to": from},
		},
	})
	if err != nil {
		return models.FriendRequest{}, err
	}
	if count > 0 {
		return models.FriendRequest{}, ErrDuplicate
	}

	fr := models.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    models.RequestPending,
		Timestamp: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, fr); err != nil {
		return models.FriendRequest{}, err
	}
	return fr, nil
}

// ListPendingFor returns the user's pending requests split into incoming
// (user is the recipient) and outgoing (user is the sender).
func (s *Store) ListPendingFor(ctx context.Context, userID primitive.ObjectID) (incoming, outgoing []models.FriendRequest, err error) {
	cur, err := s.c.Find(ctx, bson.M{
		"status": models.RequestPending,
		"$or":    []bson.M{{"to": userID}, {"from": userID}},
	})
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)

	var all []models.FriendRequest
	if err := cur.All(ctx, &all); err != nil {
		return nil, nil, err
	}
	for _, fr := range all {
		if fr.To == userID {
			incoming = append(incoming, fr)
		} else {
			outgoing = append(outgoing, fr)
		}
	}
	return incoming, outgoing, nil
}

// Accept marks the request accepted and writes the mutual friends entries
// on both users. The request record is kept, status flipped; only the
// recipient may accept.
func (s *Store) Accept(ctx context.Context, id, userID primitive.ObjectID) (*models.FriendRequest, error) {
	fr, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fr.To != userID {
		return nil, ErrNotRecipient
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": models.RequestAccepted}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	if err := s.users.AddMutualFriends(ctx, fr.From, fr.To); err != nil {
		return nil, err
	}
	fr.Status = models.RequestAccepted
	return fr, nil
}

// Reject deletes the request. Only the recipient may reject.
func (s *Store) Reject(ctx context.Context, id, userID primitive.ObjectID) error {
	fr, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fr.To != userID {
		return ErrNotRecipient
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Cancel deletes the request. Only the sender may cancel.
func (s *Store) Cancel(ctx context.Context, id, userID primitive.ObjectID) error {
	fr, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if fr.From != userID {
		return ErrNotSender
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
