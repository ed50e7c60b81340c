package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a project lookup matches no document.
	ErrNotFound = errors.New("project not found")
	// ErrAlreadyMember is returned when adding a user who is already a member.
	ErrAlreadyMember = errors.New("user is already a project member")
	// ErrNotMember is returned when updating or removing a non-member.
	ErrNotMember = errors.New("user is not a project member")
	// ErrOwnerImmutable guards the single-owner invariant: the owner's
	// membership cannot be removed or demoted through member operations.
	ErrOwnerImmutable = errors.New("the project owner's membership cannot be changed")
)

type Store struct {
	c      *mongo.Collection
	boards *mongo.Collection
	tasks  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("projects"),
		boards: db.Collection("boards"),
		tasks:  db.Collection("tasks"),
	}
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListForUser returns every project whose members array contains userID,
// oldest first. This is the query the sync layer re-runs on each snapshot.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Create inserts a project owned by ownerID, seeds the three default boards,
// and adds the given friends as editors. The owner is the sole member with
// role "owner".
func (s *Store) Create(ctx context.Context, ownerID primitive.ObjectID, name string, friendIDs []primitive.ObjectID) (models.Project, error) {
	now := time.Now()
	name = normalize.Name(name)

	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Owner:       ownerID,
		Members:     []primitive.ObjectID{ownerID},
		MemberRoles: []models.ProjectMember{{UserID: ownerID, Role: string(rolOwner), AddedAt: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, fid := range friendIDs {
		if fid == ownerID {
			continue
		}
		p.Members = append(p.Members, fid)
		p.MemberRoles = append(p.MemberRoles, models.ProjectMember{UserID: fid, Role: string(rolEditor), AddedAt: now})
	}
	p.NextBoardOrder = len(models.DefaultBoards)

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}

	seeds := make([]interface{}, 0, len(models.DefaultBoards))
	for i, b := range models.DefaultBoards {
		seeds = append(seeds, models.Board{
			ID:        primitive.NewObjectID(),
			ProjectID: p.ID,
			Name:      b.Name,
			Color:     b.Color,
			Order:     i,
			CreatedAt: now,
		})
	}
	if _, err := s.boards.InsertMany(ctx, seeds); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Rename updates the project name.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMembers appends users to members and member_roles with the given role.
// Users who are already members are skipped.
func (s *Store) AddMembers(ctx context.Context, id primitive.ObjectID, userIDs []primitive.ObjectID, role string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	existing := make(map[primitive.ObjectID]bool, len(p.Members))
	for _, m := range p.Members {
		existing[m] = true
	}

	now := time.Now()
	var ids []primitive.ObjectID
	var roles []models.ProjectMember
	for _, uid := range userIDs {
		if existing[uid] {
			continue
		}
		existing[uid] = true
		ids = append(ids, uid)
		roles = append(roles, models.ProjectMember{UserID: uid, Role: role, AddedAt: now})
	}
	if len(ids) == 0 {
		return nil
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{
			"members":      bson.M{"$each": ids},
			"member_roles": bson.M{"$each": roles},
		},
		"$set": bson.M{"updated_at": now},
	})
	return err
}

// SetMemberRole changes a member's role. The owner's entry is immutable.
func (s *Store) SetMemberRole(ctx context.Context, id, userID primitive.ObjectID, role string) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Owner == userID {
		return ErrOwnerImmutable
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "member_roles.user_id": userID},
		bson.M{"$set": bson.M{"member_roles.$.role": role, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotMember
	}
	return nil
}

// RemoveMember drops a user from members and member_roles. The owner cannot
// be removed.
func (s *Store) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) error {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Owner == userID {
		return ErrOwnerImmutable
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{
			"members":      userID,
			"member_roles": bson.M{"user_id": userID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the project along with its boards and tasks, so nothing
// is left orphaned.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := s.boards.DeleteMany(ctx, bson.M{"project_id": id}); err != nil {
		return err
	}
	_, err = s.tasks.DeleteMany(ctx, bson.M{"project_id": id})
	return err
}

// NextBoardOrder atomically advances the project's board-order counter and
// returns the order the caller should assign. Concurrent board creations
// therefore never produce duplicate orders.
func (s *Store) NextBoardOrder(ctx context.Context, id primitive.ObjectID) (int, error) {
	var before struct {
		NextBoardOrder int `bson:"next_board_order"`
	}
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"next_board_order": 1}},
	).Decode(&before)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return before.NextBoardOrder, nil
}

// role strings used when seeding memberships; kept local so the store does
// not depend on the policy package.
type rol string

const (
	rolOwner  rol = "owner"
	rolEditor rol = "editor"
)
