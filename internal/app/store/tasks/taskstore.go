package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/boardhub/boardhub/internal/app/system/htmlsanitize"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a task lookup matches no document.
var ErrNotFound = errors.New("task not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Normalize rewrites an upcoming task whose deadline has elapsed onto the
// project's first board. Runs on every create and save pass so stale
// upcoming tasks surface on the board on the next write.
func Normalize(t *models.Task, firstBoardStatus string, now time.Time) {
	if t.Status != models.StatusUpcoming {
		return
	}
	if t.Deadline == nil || !t.Deadline.After(now) {
		t.Status = firstBoardStatus
	}
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByProject returns every task whose project_id matches.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create inserts a task after sanitizing text fields and normalizing an
// elapsed upcoming status onto firstBoardStatus.
func (s *Store) Create(ctx context.Context, t models.Task, firstBoardStatus string) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Title = htmlsanitize.Plain(normalize.Name(t.Title))
	t.Description = htmlsanitize.Sanitize(t.Description)
	Normalize(&t, firstBoardStatus, time.Now())

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Patch holds a partial task update. Nil pointers leave the field untouched;
// ClearDeadline removes the deadline outright. Absent fields are never
// written as nulls.
type Patch struct {
	Title         *string
	Description   *string
	Status        *string
	Deadline      *time.Time
	ClearDeadline bool
	Priority      *string
}

// Update applies a patch to a single task. An update that sets status to
// upcoming with an elapsed (or cleared) deadline is normalized onto
// firstBoardStatus before the write.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch, firstBoardStatus string) error {
	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}

	if p.Title != nil {
		set["title"] = htmlsanitize.Plain(normalize.Name(*p.Title))
	}
	if p.Description != nil {
		if *p.Description == "" {
			unset["description"] = ""
		} else {
			set["description"] = htmlsanitize.Sanitize(*p.Description)
		}
	}
	if p.ClearDeadline {
		unset["deadline"] = ""
	} else if p.Deadline != nil {
		set["deadline"] = *p.Deadline
	}
	if p.Priority != nil {
		if *p.Priority == "" {
			unset["priority"] = ""
		} else {
			set["priority"] = *p.Priority
		}
	}
	if p.Status != nil {
		status := *p.Status
		if status == models.StatusUpcoming {
			t := models.Task{Status: status, Deadline: p.Deadline}
			if p.ClearDeadline {
				t.Deadline = nil
			} else if p.Deadline == nil {
				// Deadline untouched by the patch; read it to decide.
				cur, err := s.GetByID(ctx, id)
				if err != nil {
					return err
				}
				t.Deadline = cur.Deadline
			}
			Normalize(&t, firstBoardStatus, time.Now())
			status = t.Status
		}
		set["status"] = status
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves a task to another column. Used by the drag-and-drop flow
// after the permission check passes.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MoveToCurrent converts an upcoming task onto the first board and clears
// its deadline.
func (s *Store) MoveToCurrent(ctx context.Context, id primitive.ObjectID, firstBoardStatus string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"status": firstBoardStatus, "updated_at": time.Now()},
		"$unset": bson.M{"deadline": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single task.
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

// Partition splits tasks into the board view (status != upcoming) and the
// upcoming view (upcoming with a future deadline). Upcoming tasks whose
// deadline has elapsed are shown on the board view under the first board;
// their stored status is rewritten on the next save pass, not here.
func Partition(tasks []models.Task, firstBoardStatus string, now time.Time) (current, upcoming []models.Task) {
	for _, t := range tasks {
		if t.IsUpcoming(now) {
			upcoming = append(upcoming, t)
			continue
		}
		if t.Status == models.StatusUpcoming {
			t.Status = firstBoardStatus
		}
		current = append(current, t)
	}
	return current, upcoming
}
