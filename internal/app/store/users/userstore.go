package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when a user lookup matches no document.
	ErrNotFound = errors.New("user not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetMany loads the users with the given ids. Missing ids are skipped, so
// the result may be shorter than the input.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user after normalizing fields. Friends starts empty.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.AuthMethod == "" {
		u.AuthMethod = "internal"
	}
	if u.Friends == nil {
		u.Friends = map[string]bool{}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the profile fields a user may edit.
type ProfileUpdate struct {
	FullName  string
	AvatarURL string
}

// UpdateProfile updates a user's editable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	name := normalize.Name(upd.FullName)
	set := bson.M{
		"full_name":    name,
		"full_name_ci": text.Fold(name),
		"updated_at":   time.Now(),
	}
	if upd.AvatarURL != "" {
		set["avatar_url"] = upd.AvatarURL
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMutualFriends writes friends.<other>=true on both users. The two
// updates are independent writes; the accept flow performs them together.
func (s *Store) AddMutualFriends(ctx context.Context, a, b primitive.ObjectID) error {
	now := time.Now()
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": a},
		bson.M{"$set": bson.M{"friends." + b.Hex(): true, "updated_at": now}}); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": b},
		bson.M{"$set": bson.M{"friends." + a.Hex(): true, "updated_at": now}})
	return err
}

// RemoveMutualFriends removes the friendship entries on both users.
func (s *Store) RemoveMutualFriends(ctx context.Context, a, b primitive.ObjectID) error {
	now := time.Now()
	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": a},
		bson.M{"$unset": bson.M{"friends." + b.Hex(): ""}, "$set": bson.M{"updated_at": now}}); err != nil {
		return err
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": b},
		bson.M{"$unset": bson.M{"friends." + a.Hex(): ""}, "$set": bson.M{"updated_at": now}})
	return err
}
