// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a study group that members share notes, flashcards,
// and quizzes through.
//
// NOTE:
//   - Member/admin lists are not embedded on Group.
//     All membership is stored in the group_memberships collection.
//   - OwnerID is the user who created the group; the owner holds the
//     admin role and a group keeps at least one admin for its lifetime.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
