// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectMember records a user's role within a project.
type ProjectMember struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"` // viewer | editor | admin | owner
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// Project is the top-level container for boards and tasks.
//
// Invariants:
//   - every entry in Members has a corresponding MemberRoles entry
//   - Owner always holds role "owner", and exactly one owner exists
//   - NextBoardOrder is the order the next created board receives; it is
//     advanced atomically so concurrent board creations never collide
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	MemberRoles []ProjectMember      `bson:"member_roles" json:"member_roles"`

	NextBoardOrder int `bson:"next_board_order" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectWithBoards is a project snapshot carrying its boards, as served to
// clients and held by the sync layer for the active project.
type ProjectWithBoards struct {
	Project `bson:",inline"`
	Boards  []Board `bson:"-" json:"boards,omitempty"`
}
