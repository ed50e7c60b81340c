// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusUpcoming is the sentinel status for tasks scheduled for a future
// deadline. Every other status is the name of one of the project's boards.
const StatusUpcoming = "upcoming"

// Task priorities accepted on create/save. Empty means unset.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task belongs to a project via ProjectID; tasks live in a flat collection
// and are always queried by project.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Deadline    *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Priority    string             `bson:"priority,omitempty" json:"priority,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsUpcoming reports whether the task is still scheduled: status is the
// upcoming sentinel and the deadline has not elapsed. An upcoming task whose
// deadline has passed is due for normalization onto the first board.
func (t Task) IsUpcoming(now time.Time) bool {
	return t.Status == StatusUpcoming && t.Deadline != nil && t.Deadline.After(now)
}
