package statsapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"erpdash/internal/statsapi"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) string { return string(s) }

func TestStatsAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"totalQuotes":12,"openWorkOrders":3,"lowStockItems":2,"todaysShipments":1}`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, staticToken("tok-123"))
	s, err := c.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, 12, s.TotalQuotes)
	require.Equal(t, 3, s.OpenWorkOrders)
	require.Equal(t, 2, s.LowStockItems)
	require.Equal(t, 1, s.TodaysShipments)
}

func TestStatsOmitsHeaderWithoutToken(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"totalQuotes":0,"openWorkOrders":0,"lowStockItems":0,"todaysShipments":0}`))
	}))
	defer srv.Close()

	for _, tokens := range []statsapi.TokenSource{nil, staticToken("")} {
		c := statsapi.NewClient(srv.URL, tokens)
		_, err := c.Stats(context.Background())
		require.NoError(t, err)
		require.False(t, hasAuth, "anonymous requests must carry no Authorization header")
	}
}

func TestStatsRejectsUnknownFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalQuotes":1,"openWorkOrders":1,"lowStockItems":1,"todaysShipments":1,"surprise":true}`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	_, err := c.Stats(context.Background())
	var vErr *statsapi.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestStatsRejectsNegativeCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalQuotes":-1,"openWorkOrders":0,"lowStockItems":0,"todaysShipments":0}`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	_, err := c.Stats(context.Background())
	var vErr *statsapi.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Error(), "totalQuotes")
}

func TestNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	_, err := c.Stats(context.Background())
	require.Error(t, err)
	var vErr *statsapi.ValidationError
	require.False(t, errors.As(err, &vErr), "transport-level failures are not validation errors")
}

func TestRecentOrdersToleratesExtraFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/recent", r.URL.Path)
		w.Write([]byte(`[{"id":"o1","name":"Order 1","status":"open","priority":"high"}]`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	items, err := c.RecentOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "o1", items[0].ID)
	require.Equal(t, "open", items[0].Status)
}

func TestLowStockRejectsItemsWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/low-stock", r.URL.Path)
		w.Write([]byte(`[{"name":"Steel rods"}]`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	_, err := c.LowStock(context.Background())
	var vErr *statsapi.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestLowStockEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := statsapi.NewClient(srv.URL, nil)
	items, err := c.LowStock(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}
