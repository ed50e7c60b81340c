package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		AuthMethod: "internal",
		Friends:    map[string]bool{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// MakeFriends writes the mutual friendship entries on both users.
func (f *Fixtures) MakeFriends(ctx context.Context, a, b models.User) {
	f.t.Helper()

	c := f.db.Collection("users")
	if _, err := c.UpdateOne(ctx, bson.M{"_id": a.ID},
		bson.M{"$set": bson.M{"friends." + b.ID.Hex(): true}}); err != nil {
		f.t.Fatalf("failed to link friends: %v", err)
	}
	if _, err := c.UpdateOne(ctx, bson.M{"_id": b.ID},
		bson.M{"$set": bson.M{"friends." + a.ID.Hex(): true}}); err != nil {
		f.t.Fatalf("failed to link friends: %v", err)
	}
}

// Membership pairs a user with a project role for CreateProject.
type Membership struct {
	UserID primitive.ObjectID
	Role   string
}

// CreateProject creates a test project owned by owner, with the given
// extra members and the three default boards.
func (f *Fixtures) CreateProject(ctx context.Context, name string, owner primitive.ObjectID, members ...Membership) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Owner:       owner,
		Members:     []primitive.ObjectID{owner},
		MemberRoles: []models.ProjectMember{{UserID: owner, Role: "owner", AddedAt: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range members {
		p.Members = append(p.Members, m.UserID)
		p.MemberRoles = append(p.MemberRoles, models.ProjectMember{UserID: m.UserID, Role: m.Role, AddedAt: now})
	}
	p.NextBoardOrder = len(models.DefaultBoards)

	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	boards := f.db.Collection("boards")
	for i, b := range models.DefaultBoards {
		board := models.Board{
			ID:        primitive.NewObjectID(),
			ProjectID: p.ID,
			Name:      b.Name,
			Color:     b.Color,
			Order:     i,
			CreatedAt: now,
		}
		if _, err := boards.InsertOne(ctx, board); err != nil {
			f.t.Fatalf("failed to create default board: %v", err)
		}
	}
	return p
}

// CreateBoard creates a test board with an explicit order.
func (f *Fixtures) CreateBoard(ctx context.Context, projectID primitive.ObjectID, name, color string, order int) models.Board {
	f.t.Helper()

	b := models.Board{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		Color:     color,
		Order:     order,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("boards").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test board: %v", err)
	}
	return b
}

// CreateTask creates a test task. deadline may be nil.
func (f *Fixtures) CreateTask(ctx context.Context, projectID primitive.ObjectID, title, status string, deadline *time.Time) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Title:     title,
		Status:    status,
		Deadline:  deadline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateFriendRequest creates a pending friend request from -> to.
func (f *Fixtures) CreateFriendRequest(ctx context.Context, from, to primitive.ObjectID) models.FriendRequest {
	f.t.Helper()

	fr := models.FriendRequest{
		ID:        primitive.NewObjectID(),
		From:      from,
		To:        to,
		Status:    models.RequestPending,
		Timestamp: time.Now().UTC(),
	}
	if _, err := f.db.Collection("friend_requests").InsertOne(ctx, fr); err != nil {
		f.t.Fatalf("failed to create test friend request: %v", err)
	}
	return fr
}
