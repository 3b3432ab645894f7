package projects

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRecentLimit bounds the dashboard's project list.
const DefaultRecentLimit = 5

// Project is a document in the projects collection. The hex id is stored
// as a field of its own document so records stay self-describing when they
// are exported or inspected outside the store.
type Project struct {
	OID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        string             `bson:"id" json:"id"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"` // markdown
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// CreateInput is the input for creating a project.
type CreateInput struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}
