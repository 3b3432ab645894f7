package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"erpdash/internal/dashboard"
	"erpdash/internal/projects"
	"erpdash/internal/statsapi"
)

// fakeStats settles each call independently with a canned result or error.
type fakeStats struct {
	stats     *statsapi.Stats
	statsErr  error
	orders    []statsapi.RecentItem
	ordersErr error
	low       []statsapi.RecentItem
	lowErr    error

	calls atomic.Int32
}

func (f *fakeStats) Stats(ctx context.Context) (*statsapi.Stats, error) {
	f.calls.Add(1)
	return f.stats, f.statsErr
}

func (f *fakeStats) RecentOrders(ctx context.Context) ([]statsapi.RecentItem, error) {
	f.calls.Add(1)
	return f.orders, f.ordersErr
}

func (f *fakeStats) LowStock(ctx context.Context) ([]statsapi.RecentItem, error) {
	f.calls.Add(1)
	return f.low, f.lowErr
}

// fakeProjects implements dashboard.ProjectService with a plain slice; the
// list it hands out is always the current one, so refreshed results track
// mutations exactly.
type fakeProjects struct {
	items   []projects.Project
	listErr error
	creates int
}

func (f *fakeProjects) Create(ctx context.Context, input projects.CreateInput) (*projects.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, projects.ErrEmptyName
	}
	f.creates++
	oid := primitive.NewObjectID()
	p := projects.Project{OID: oid, ID: oid.Hex(), Name: input.Name, CreatedAt: time.Now().UTC()}
	f.items = append([]projects.Project{p}, f.items...)
	return &p, nil
}

func (f *fakeProjects) GetByID(ctx context.Context, id string) (*projects.Project, error) {
	for _, p := range f.items {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, projects.ErrProjectNotFound
}

func (f *fakeProjects) ListRecent(ctx context.Context, max int) ([]projects.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.items) > max {
		return append([]projects.Project(nil), f.items[:max]...), nil
	}
	return append([]projects.Project(nil), f.items...), nil
}

func (f *fakeProjects) Update(ctx context.Context, id string, input projects.UpdateInput) error {
	for i, p := range f.items {
		if p.ID == id {
			if input.Name != nil {
				f.items[i].Name = *input.Name
			}
			return nil
		}
	}
	return projects.ErrProjectNotFound
}

func (f *fakeProjects) Delete(ctx context.Context, id string) error {
	for i, p := range f.items {
		if p.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeProjects) RenderNotes(notes string) string { return notes }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func project(name string) projects.Project {
	oid := primitive.NewObjectID()
	return projects.Project{OID: oid, ID: oid.Hex(), Name: name, CreatedAt: time.Now().UTC()}
}

func TestLoadAllSourcesHealthy(t *testing.T) {
	stats := &fakeStats{
		stats:  &statsapi.Stats{TotalQuotes: 12, OpenWorkOrders: 3, LowStockItems: 2, TodaysShipments: 1},
		orders: []statsapi.RecentItem{{ID: "o1", Name: "Order 1"}},
		low:    []statsapi.RecentItem{{ID: "i1", Name: "Steel rods"}},
	}
	proj := &fakeProjects{items: []projects.Project{project("Line A")}}
	svc := dashboard.NewService(stats, proj, testLogger())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.False(t, snap.StatsUnavailable)
	require.Equal(t, 12, snap.Stats.TotalQuotes)
	require.Len(t, snap.RecentOrders, 1)
	require.Len(t, snap.LowStock, 1)
	require.Len(t, snap.Projects, 1)
	require.Equal(t, int32(3), stats.calls.Load())
}

// The example from the source contract: stats resolves, recent orders
// rejects, low stock resolves empty, the store returns one project. One
// failed call out of three must not raise the banner.
func TestLoadPartialStatsFailureIsSilent(t *testing.T) {
	stats := &fakeStats{
		stats:     &statsapi.Stats{TotalQuotes: 12, OpenWorkOrders: 3, LowStockItems: 2, TodaysShipments: 1},
		ordersErr: errors.New("connection refused"),
		low:       []statsapi.RecentItem{},
	}
	proj := &fakeProjects{items: []projects.Project{project("Line A")}}
	svc := dashboard.NewService(stats, proj, testLogger())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.False(t, snap.StatsUnavailable, "partial failure must not raise the banner")
	require.Equal(t, 12, snap.Stats.TotalQuotes)
	require.Empty(t, snap.RecentOrders, "rejected widget keeps its zero value")
	require.Empty(t, snap.LowStock)
	require.Len(t, snap.Projects, 1)
	require.Equal(t, "Line A", snap.Projects[0].Name)
}

func TestLoadTwoStatsFailuresStillSilent(t *testing.T) {
	stats := &fakeStats{
		statsErr:  errors.New("timeout"),
		ordersErr: errors.New("timeout"),
		low:       []statsapi.RecentItem{{ID: "i1"}},
	}
	svc := dashboard.NewService(stats, &fakeProjects{}, testLogger())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.False(t, snap.StatsUnavailable)
	require.Nil(t, snap.Stats)
	require.Len(t, snap.LowStock, 1)
}

func TestLoadTotalStatsFailureRaisesBanner(t *testing.T) {
	stats := &fakeStats{
		statsErr:  errors.New("unreachable"),
		ordersErr: errors.New("unreachable"),
		lowErr:    errors.New("unreachable"),
	}
	proj := &fakeProjects{items: []projects.Project{project("Line A")}}
	svc := dashboard.NewService(stats, proj, testLogger())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err, "a dead stats backend must not fail the load")
	require.True(t, snap.StatsUnavailable)
	require.Len(t, snap.Projects, 1, "the store-backed widget still renders")
}

func TestLoadSkipsStatsWhenUnconfigured(t *testing.T) {
	proj := &fakeProjects{items: []projects.Project{project("Line A")}}
	svc := dashboard.NewService(nil, proj, testLogger())

	snap, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.False(t, snap.StatsUnavailable, "unconfigured is not a failure")
	require.Nil(t, snap.Stats)
	require.Len(t, snap.Projects, 1)
}

func TestLoadNoBannerWhenUnconfiguredEvenIfStoreFails(t *testing.T) {
	proj := &fakeProjects{listErr: errors.New("store down")}
	svc := dashboard.NewService(nil, proj, testLogger())

	snap, err := svc.Load(context.Background())
	require.Error(t, err)
	require.Nil(t, snap)
}

func TestLoadProjectFailureFailsLoad(t *testing.T) {
	stats := &fakeStats{stats: &statsapi.Stats{}}
	proj := &fakeProjects{listErr: errors.New("store down")}
	svc := dashboard.NewService(stats, proj, testLogger())

	_, err := svc.Load(context.Background())
	require.Error(t, err)
}

func TestLoadCancelledContextPublishesNothing(t *testing.T) {
	stats := &fakeStats{stats: &statsapi.Stats{TotalQuotes: 1}}
	proj := &fakeProjects{items: []projects.Project{project("Line A")}}
	svc := dashboard.NewService(stats, proj, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := svc.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, snap, "no snapshot may be published after cancellation")
}

func TestCreateProjectRefreshesList(t *testing.T) {
	proj := &fakeProjects{}
	svc := dashboard.NewService(nil, proj, testLogger())
	ctx := context.Background()

	res, err := svc.CreateProject(ctx, "Line A")
	require.NoError(t, err)

	fresh, err := proj.ListRecent(ctx, projects.DefaultRecentLimit)
	require.NoError(t, err)
	require.Equal(t, fresh, res.Projects, "mutation result must equal a fresh bounded fetch")
}

func TestCreateProjectListReplacedWholesale(t *testing.T) {
	proj := &fakeProjects{}
	svc := dashboard.NewService(nil, proj, testLogger())
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		res, err := svc.CreateProject(ctx, name)
		require.NoError(t, err)
		require.LessOrEqual(t, len(res.Projects), projects.DefaultRecentLimit)
	}

	res, err := svc.CreateProject(ctx, "H")
	require.NoError(t, err)
	require.Len(t, res.Projects, projects.DefaultRecentLimit)
	require.Equal(t, "H", res.Projects[0].Name)
}

func TestCreateProjectValidationSkipsStore(t *testing.T) {
	proj := &fakeProjects{}
	svc := dashboard.NewService(nil, proj, testLogger())

	_, err := svc.CreateProject(context.Background(), "")
	require.ErrorIs(t, err, projects.ErrEmptyName)
	require.Zero(t, proj.creates)
}

func TestRenameProjectRefreshesList(t *testing.T) {
	p := project("Old name")
	proj := &fakeProjects{items: []projects.Project{p}}
	svc := dashboard.NewService(nil, proj, testLogger())

	res, err := svc.RenameProject(context.Background(), p.ID, "New name")
	require.NoError(t, err)
	require.Equal(t, "New name", res.Projects[0].Name)
}

func TestRenameProjectNotFound(t *testing.T) {
	proj := &fakeProjects{}
	svc := dashboard.NewService(nil, proj, testLogger())

	_, err := svc.RenameProject(context.Background(), primitive.NewObjectID().Hex(), "New name")
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
}

func TestDeleteProjectRefreshesList(t *testing.T) {
	p := project("Line A")
	proj := &fakeProjects{items: []projects.Project{p}}
	svc := dashboard.NewService(nil, proj, testLogger())

	res, err := svc.DeleteProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Empty(t, res.Projects)
}

func TestDeleteProjectAbsentSucceeds(t *testing.T) {
	proj := &fakeProjects{}
	svc := dashboard.NewService(nil, proj, testLogger())

	res, err := svc.DeleteProject(context.Background(), primitive.NewObjectID().Hex())
	require.NoError(t, err)
	require.Empty(t, res.Projects)
}
