// internal/domain/models/groupcontent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupContent is the metadata record for a piece of shared study content
// (a note export, flashcard deck, quiz bundle, or uploaded file) that
// belongs to exactly one group. The bytes themselves live in the external
// upload pipeline; StorageKey is the pipeline's handle for them.
type GroupContent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"group_id"`
	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`

	Name        string `bson:"name" json:"name"`
	ContentType string `bson:"content_type" json:"content_type"` // "note" | "flashcards" | "quiz" | "file"
	StorageKey  string `bson:"storage_key" json:"storage_key"`
	SizeBytes   int64  `bson:"size_bytes" json:"size_bytes"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
