package boardstore

import (
	"context"
	"errors"
	"time"

	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a board lookup matches no document.
var ErrNotFound = errors.New("board not found")

type Store struct {
	c        *mongo.Collection
	projects *projectstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("boards"), projects: projectstore.New(db)}
}

// GetByID loads a board by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Board, error) {
	var b models.Board
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListByProject returns the project's boards sorted ascending by order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Board, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var boards []models.Board
	if err := cur.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Add appends a board at the end of the project's columns. The order comes
// from the project's atomic counter, so two admins adding boards at once
// cannot collide.
func (s *Store) Add(ctx context.Context, projectID primitive.ObjectID, name, color string) (models.Board, error) {
	order, err := s.projects.NextBoardOrder(ctx, projectID)
	if err != nil {
		return models.Board{}, err
	}
	b := models.Board{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      normalize.Name(name),
		Color:     color,
		Order:     order,
		CreatedAt: time.Now(),
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Board{}, err
	}
	return b, nil
}

// Update changes a board's name and color.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, color string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":  normalize.Name(name),
		"color": color,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single board.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOrder assigns order = index for each id in orderedIDs as one batched
// write. This is the only multi-document write performed as a batch; after
// it commits, orders within the project are dense 0..n-1.
func (s *Store) UpdateOrder(ctx context.Context, projectID primitive.ObjectID, orderedIDs []primitive.ObjectID) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "project_id": projectID}).
			SetUpdate(bson.M{"$set": bson.M{"order": i}}))
	}
	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}
