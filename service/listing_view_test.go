package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"quickcart-emporium/models"
	"quickcart-emporium/repository"
)

// gatedCatalog blocks ListProducts for a search term until its gate is closed
type gatedCatalog struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	fail    map[string]error
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
		fail:    make(map[string]error),
	}
}

func (c *gatedCatalog) gate(search string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.gates[search]
	if !ok {
		ch = make(chan struct{})
		c.gates[search] = ch
	}
	return ch
}

func (c *gatedCatalog) open(search string) {
	close(c.gate(search))
}

func (c *gatedCatalog) ListProducts(ctx context.Context, q models.ProductQuery) (models.PagedResult, error) {
	c.started <- q.Search
	<-c.gate(q.Search)
	c.mu.Lock()
	err := c.fail[q.Search]
	c.mu.Unlock()
	if err != nil {
		return models.PagedResult{}, err
	}
	return models.PagedResult{
		Items:      []models.ProductSummary{{ID: q.Search, Title: "result for " + q.Search}},
		TotalPages: 3,
		TotalItems: 41,
	}, nil
}

func (c *gatedCatalog) GetProduct(ctx context.Context, id string) (*models.ProductDetail, bool, error) {
	return nil, false, nil
}

func (c *gatedCatalog) ListCategories(ctx context.Context) ([]string, error) {
	return []string{"beauty", "groceries"}, nil
}

func waitStarted(t *testing.T, c *gatedCatalog, search string) {
	t.Helper()
	select {
	case got := <-c.started:
		require.Equal(t, search, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("load for %q never started", search)
	}
}

func TestListingViewDiscardsStaleResponse(t *testing.T) {
	defer goleak.VerifyNone(t)

	catalog := newGatedCatalog()
	view := NewListingView(catalog)
	ctx := context.Background()

	genA := view.Submit(ctx, models.ProductQuery{Search: "A", Page: 2})
	waitStarted(t, catalog, "A")
	genB := view.Submit(ctx, models.ProductQuery{Search: "B"})
	waitStarted(t, catalog, "B")
	require.Greater(t, genB, genA)

	// B resolves first, then the older A arrives late
	catalog.open("B")
	require.Eventually(t, func() bool { return !view.Snapshot().Loading }, 2*time.Second, 5*time.Millisecond)
	catalog.open("A")
	view.Wait()

	snap := view.Snapshot()
	assert.Equal(t, "B", snap.Query.Search)
	require.Len(t, snap.Result.Items, 1)
	assert.Equal(t, "B", snap.Result.Items[0].ID)
	assert.Equal(t, genB, snap.Generation)
	assert.Equal(t, 1, view.Discarded())
}

func TestListingViewDiscardsStaleResponseArrivingFirst(t *testing.T) {
	defer goleak.VerifyNone(t)

	catalog := newGatedCatalog()
	view := NewListingView(catalog)
	ctx := context.Background()

	view.Submit(ctx, models.ProductQuery{Search: "A"})
	waitStarted(t, catalog, "A")
	view.Submit(ctx, models.ProductQuery{Search: "B"})
	waitStarted(t, catalog, "B")

	catalog.open("A")
	require.Eventually(t, func() bool { return view.Discarded() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, view.Snapshot().Loading, "stale result must not end the newer load")

	catalog.open("B")
	view.Wait()

	snap := view.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "B", snap.Result.Items[0].ID)
}

func TestListingViewAppliesResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	catalog := newGatedCatalog()
	catalog.open("shoes")
	view := NewListingView(catalog)

	var applied []ListingSnapshot
	view.OnApplied(func(s ListingSnapshot) { applied = append(applied, s) })

	snap := view.Load(context.Background(), models.ProductQuery{Search: "shoes", Page: 2, Limit: 20})
	<-catalog.started

	require.NoError(t, snap.Err)
	assert.False(t, snap.Loading)
	assert.Equal(t, []string{"beauty", "groceries"}, snap.Categories)
	assert.Equal(t, Pager{Page: 2, TotalPages: 3}, snap.Pager)
	assert.Len(t, applied, 1)
}

func TestListingViewKeepsPreviousResultOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	catalog := newGatedCatalog()
	catalog.open("ok")
	catalog.open("broken")
	catalog.fail["broken"] = &repository.FetchError{Resource: "products", StatusCode: 500}
	view := NewListingView(catalog)

	view.Load(context.Background(), models.ProductQuery{Search: "ok"})
	<-catalog.started
	snap := view.Load(context.Background(), models.ProductQuery{Search: "broken"})
	<-catalog.started

	assert.ErrorIs(t, snap.Err, repository.ErrFetchFailure)
	assert.Equal(t, "ok", snap.Result.Items[0].ID)
	assert.Equal(t, "broken", snap.Query.Search)
}

func TestNewListingViewInitialSnapshot(t *testing.T) {
	snap := NewListingView(newGatedCatalog()).Snapshot()
	assert.NotNil(t, snap.Result.Items)
	assert.Equal(t, 1, snap.Result.TotalPages)
	assert.False(t, snap.Loading)
}
