package service

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"quickcart-emporium/logger"
	"quickcart-emporium/models"
	"quickcart-emporium/repository"
)

// ListingSnapshot is what the product listing currently displays
type ListingSnapshot struct {
	Query      models.ProductQuery
	Result     models.PagedResult
	Categories []string
	Pager      Pager
	Err        error
	Loading    bool
	// Generation identifies the query the snapshot belongs to
	Generation uint64
}

// ListingView loads the product listing for the latest submitted query.
// Every Submit supersedes the previous one: a load that finishes after a
// newer query was submitted is discarded instead of being displayed.
// In-flight calls are not cancelled.
type ListingView struct {
	catalog repository.CatalogRepositoryInterface

	mu         sync.Mutex
	generation uint64
	snapshot   ListingSnapshot
	discarded  int
	wg         sync.WaitGroup
	onApplied  func(ListingSnapshot)
}

// NewListingView creates a new ListingView
func NewListingView(catalog repository.CatalogRepositoryInterface) *ListingView {
	return &ListingView{
		catalog: catalog,
		snapshot: ListingSnapshot{
			Result: models.PagedResult{Items: []models.ProductSummary{}, TotalPages: 1},
			Pager:  Pager{Page: 1, TotalPages: 1},
		},
	}
}

// OnApplied registers a callback run after a load result is displayed
func (v *ListingView) OnApplied(fn func(ListingSnapshot)) {
	v.mu.Lock()
	v.onApplied = fn
	v.mu.Unlock()
}

// Submit makes query the current one and starts loading it in the
// background. It returns the generation assigned to the query.
func (v *ListingView) Submit(ctx context.Context, query models.ProductQuery) uint64 {
	query = query.Normalized()

	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.snapshot.Query = query
	v.snapshot.Loading = true
	v.snapshot.Generation = gen
	v.mu.Unlock()

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		result, categories, err := v.load(ctx, query)
		v.complete(gen, query, result, categories, err)
	}()
	return gen
}

// Load submits query and waits until that load completes, returning the
// snapshot at that point. If a newer query was submitted meanwhile, the
// returned snapshot belongs to it.
func (v *ListingView) Load(ctx context.Context, query models.ProductQuery) ListingSnapshot {
	v.Submit(ctx, query)
	v.Wait()
	return v.Snapshot()
}

// Snapshot returns the displayed state
func (v *ListingView) Snapshot() ListingSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// Discarded returns how many stale results were dropped
func (v *ListingView) Discarded() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.discarded
}

// Wait blocks until every submitted load has finished
func (v *ListingView) Wait() {
	v.wg.Wait()
}

// load fetches the products and categories concurrently
func (v *ListingView) load(ctx context.Context, query models.ProductQuery) (models.PagedResult, []string, error) {
	var result models.PagedResult
	var categories []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = v.catalog.ListProducts(gctx, query)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = v.catalog.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PagedResult{}, nil, err
	}
	return result, categories, nil
}

func (v *ListingView) complete(gen uint64, query models.ProductQuery, result models.PagedResult, categories []string, err error) {
	v.mu.Lock()
	if gen != v.generation {
		v.discarded++
		v.mu.Unlock()
		logger.Log.Debugf("ListingView: Discarding stale result for generation %d (current %d)", gen, v.generation)
		return
	}

	v.snapshot.Loading = false
	v.snapshot.Err = err
	if err == nil {
		v.snapshot.Result = result
		v.snapshot.Categories = categories
		v.snapshot.Pager = NewPager(query.Page, result)
	} else {
		var fetchErr *repository.FetchError
		if errors.As(err, &fetchErr) {
			logger.Log.Errorf("❌ ListingView: %s", fetchErr.Message())
		}
	}
	snap := v.snapshot
	onApplied := v.onApplied
	v.mu.Unlock()

	if onApplied != nil {
		onApplied(snap)
	}
}
