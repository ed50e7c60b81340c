// internal/domain/models/board.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBoards seed every new project, in this order.
var DefaultBoards = []struct {
	Name  string
	Color string
}{
	{Name: "todo", Color: "#f8d471"},
	{Name: "inProgress", Color: "#5224fb"},
	{Name: "done", Color: "#4ADE80"},
}

// Board is a named, colored column within a project. Order is an explicit
// integer; after any reorder the orders within a project are dense 0..n-1.
type Board struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name      string             `bson:"name" json:"name"`
	Color     string             `bson:"color" json:"color"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
