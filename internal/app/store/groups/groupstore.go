// internal/app/store/groups/groupstore.go

// Package groupstore persists study group documents.
package groupstore

import (
	"context"
	"errors"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no group exists with the given ID.
var ErrNotFound = errors.New("group not found")

// Store is the persistence contract for groups.
type Store interface {
	// Create inserts a group, assigning its ID and timestamps.
	Create(ctx context.Context, g models.Group) (models.Group, error)

	// GetByID returns the group, or ErrNotFound.
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)

	// Delete removes the group document, or ErrNotFound. Membership,
	// invite, and content cascade happens in groupops, not here.
	Delete(ctx context.Context, id primitive.ObjectID) error
}
