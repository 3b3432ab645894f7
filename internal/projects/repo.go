package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("projects")}
}

// EnsureIndexes creates the index backing the bounded ordered list. The
// dashboard still works without it: ListRecentOrdered fails and the service
// degrades to an unordered scan.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Insert creates a new project. The id is generated before the write and
// stored both as the document key and as a field of the document itself;
// the creation timestamp is assigned here, not by the caller.
func (r *Repo) Insert(ctx context.Context, p *Project) error {
	p.OID = primitive.NewObjectID()
	p.ID = p.OID.Hex()
	p.CreatedAt = time.Now().UTC()

	_, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// FindByID retrieves a project by its ID
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	var p Project
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id.Hex(), err)
	}
	return &p, nil
}

// ListRecentOrdered retrieves the max most recent projects, newest first.
func (r *Repo) ListRecentOrdered(ctx context.Context, max int) ([]Project, error) {
	opts := options.Find().
		SetLimit(int64(max)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list recent projects: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

// ListAll retrieves every project with no ordering guarantee. Used as the
// degraded path when the ordered query is unavailable.
func (r *Repo) ListAll(ctx context.Context) ([]Project, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

// Update merges only the provided fields into an existing document.
func (r *Repo) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) error {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Notes != nil {
		set["notes"] = *in.Notes
	}
	if len(set) == 0 {
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes a project by ID. Deleting an id that does not exist is
// not an error: the caller's goal state is already reached.
func (r *Repo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
