// Package dashboard assembles the dashboard's data from the stats API and
// the project store, and runs project mutations with a wholesale list
// refresh after each one.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"erpdash/internal/projects"
	"erpdash/internal/statsapi"
)

// StatsClient is the read-only stats API surface the dashboard loads from.
type StatsClient interface {
	Stats(ctx context.Context) (*statsapi.Stats, error)
	RecentOrders(ctx context.Context) ([]statsapi.RecentItem, error)
	LowStock(ctx context.Context) ([]statsapi.RecentItem, error)
}

// ProjectService is the project surface the dashboard depends on.
type ProjectService interface {
	Create(ctx context.Context, input projects.CreateInput) (*projects.Project, error)
	GetByID(ctx context.Context, id string) (*projects.Project, error)
	ListRecent(ctx context.Context, max int) ([]projects.Project, error)
	Update(ctx context.Context, id string, input projects.UpdateInput) error
	Delete(ctx context.Context, id string) error
	RenderNotes(notes string) string
}

// Snapshot is one fully-settled dashboard load. Widgets whose stats call
// failed keep their zero values; StatsUnavailable is the error banner and
// is raised only when every attempted stats call failed.
type Snapshot struct {
	Stats            *statsapi.Stats
	RecentOrders     []statsapi.RecentItem
	LowStock         []statsapi.RecentItem
	Projects         []projects.Project
	StatsUnavailable bool
}

// MutationResult carries the freshly re-fetched project list back to the
// caller, so UI state (modal, in-flight flag) resolves on success and
// failure alike.
type MutationResult struct {
	Projects []projects.Project
}

type Service struct {
	stats       StatsClient // nil when no stats backend is configured
	projects    ProjectService
	log         *slog.Logger
	recentLimit int
}

func NewService(stats StatsClient, proj ProjectService, log *slog.Logger) *Service {
	return &Service{
		stats:       stats,
		projects:    proj,
		log:         log,
		recentLimit: projects.DefaultRecentLimit,
	}
}

// Projects exposes the underlying project service for collaborators that
// need single-project reads (detail fragments, MCP tools).
func (s *Service) Projects() ProjectService {
	return s.projects
}

// Load fans out the three stats calls and the bounded project list fetch
// concurrently. The stats calls settle independently: one rejection never
// cancels the others, and each widget is populated only from its own
// fulfilled result. Load fails only when the project list fetch does.
func (s *Service) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	var statsErr, ordersErr, lowStockErr error

	g, gctx := errgroup.WithContext(ctx)

	if s.stats != nil {
		g.Go(func() error {
			st, err := s.stats.Stats(gctx)
			if err != nil {
				statsErr = err
				s.log.Warn("stats fetch failed", "error", err)
				return nil
			}
			snap.Stats = st
			return nil
		})
		g.Go(func() error {
			items, err := s.stats.RecentOrders(gctx)
			if err != nil {
				ordersErr = err
				s.log.Warn("recent orders fetch failed", "error", err)
				return nil
			}
			snap.RecentOrders = items
			return nil
		})
		g.Go(func() error {
			items, err := s.stats.LowStock(gctx)
			if err != nil {
				lowStockErr = err
				s.log.Warn("low stock fetch failed", "error", err)
				return nil
			}
			snap.LowStock = items
			return nil
		})
	}

	g.Go(func() error {
		list, err := s.projects.ListRecent(gctx, s.recentLimit)
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		snap.Projects = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A caller that has gone away gets nothing, even if every fetch
	// settled successfully in the meantime.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Partial failure stays silent: as long as one widget loaded, a
	// banner would only alarm the user. Total failure is worth telling.
	if s.stats != nil && statsErr != nil && ordersErr != nil && lowStockErr != nil {
		snap.StatsUnavailable = true
	}

	return snap, nil
}

// CreateProject validates, creates, and returns the re-fetched list.
func (s *Service) CreateProject(ctx context.Context, name string) (*MutationResult, error) {
	if _, err := s.projects.Create(ctx, projects.CreateInput{Name: name}); err != nil {
		return nil, err
	}
	return s.refresh(ctx)
}

// RenameProject updates a project's name and returns the re-fetched list.
func (s *Service) RenameProject(ctx context.Context, id, name string) (*MutationResult, error) {
	if err := s.projects.Update(ctx, id, projects.UpdateInput{Name: &name}); err != nil {
		return nil, err
	}
	return s.refresh(ctx)
}

// DeleteProject removes a project and returns the re-fetched list.
func (s *Service) DeleteProject(ctx context.Context, id string) (*MutationResult, error) {
	if err := s.projects.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.refresh(ctx)
}

// refresh replaces the displayed list wholesale; mutations never patch the
// previous list locally.
func (s *Service) refresh(ctx context.Context) (*MutationResult, error) {
	list, err := s.projects.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("refresh projects: %w", err)
	}
	return &MutationResult{Projects: list}, nil
}
