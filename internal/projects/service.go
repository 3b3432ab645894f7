package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrEmptyName rejects a create or rename before any store call is made.
var ErrEmptyName = errors.New("project name is required")

// Store is the document store surface the service depends on.
type Store interface {
	Insert(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Project, error)
	ListRecentOrdered(ctx context.Context, max int) ([]Project, error)
	ListAll(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Service struct {
	store Store
	md    goldmark.Markdown
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		md:    goldmark.New(),
	}
}

// Create validates and creates a new project, returning it with its
// store-assigned id and timestamp.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p := &Project{
		Name:  name,
		Notes: input.Notes,
	}

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetByID retrieves a project by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID: %w", err)
	}
	return s.store.FindByID(ctx, oid)
}

// ListRecent returns at most max projects, newest first when the store can
// order; when the ordered query itself fails the list degrades to an
// unordered fetch truncated locally. A degraded ordering is preferable to a
// dashboard that fails to load.
func (s *Service) ListRecent(ctx context.Context, max int) ([]Project, error) {
	if max <= 0 {
		max = DefaultRecentLimit
	}

	out, err := s.store.ListRecentOrdered(ctx, max)
	if err == nil {
		return out, nil
	}

	out, err = s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recent projects: %w", err)
	}
	if len(out) > max {
		out = out[:max]
	}
	return out, nil
}

// Update merges the provided fields into a project. A provided name must be
// non-empty; ErrProjectNotFound propagates from the store unchanged.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid project ID: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return ErrEmptyName
		}
		input.Name = &name
	}

	return s.store.Update(ctx, oid, input)
}

// Delete removes a project by ID. Absent projects, malformed ids included,
// are treated as already deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, oid)
}

// RenderNotes converts a project's markdown notes to HTML.
func (s *Service) RenderNotes(notes string) string {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(notes), &buf); err != nil {
		return notes
	}
	return buf.String()
}
