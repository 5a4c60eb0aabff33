package fleetapi

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/nurpe/fleet-reports/internal/model"
)

// Lister is the subset of Client used by Fetcher.
type Lister interface {
	List(ctx context.Context, resource string, query url.Values) ([]model.Record, error)
}

// FetchResult holds one slot per collection. A failed collection has an
// empty record slice and an entry in Failures.
type FetchResult struct {
	Records  map[model.Collection][]model.Record
	Failures map[model.Collection]error
}

// Failed reports whether the collection could not be loaded.
func (r FetchResult) Failed(c model.Collection) bool {
	_, ok := r.Failures[c]
	return ok
}

// FailureMessages renders failures keyed by collection name.
func (r FetchResult) FailureMessages() map[string]string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Failures))
	for c, err := range r.Failures {
		out[string(c)] = err.Error()
	}
	return out
}

type Fetcher struct {
	lister      Lister
	collections []model.Collection
}

func NewFetcher(lister Lister, collections ...model.Collection) *Fetcher {
	if len(collections) == 0 {
		collections = model.Collections
	}
	return &Fetcher{lister: lister, collections: collections}
}

// FetchAll lists every collection concurrently and waits for all of them.
// It never fails as a whole.
func (f *Fetcher) FetchAll(ctx context.Context) FetchResult {
	type slot struct {
		records []model.Record
		err     error
	}
	slots := make([]slot, len(f.collections))

	var g errgroup.Group
	for i, collection := range f.collections {
		i, collection := i, collection
		g.Go(func() error {
			records, err := f.lister.List(ctx, string(collection), nil)
			if err != nil {
				records = []model.Record{}
			}
			slots[i] = slot{records: Normalize(records), err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := FetchResult{
		Records:  make(map[model.Collection][]model.Record, len(f.collections)),
		Failures: make(map[model.Collection]error),
	}
	for i, collection := range f.collections {
		result.Records[collection] = slots[i].records
		if slots[i].err != nil {
			result.Failures[collection] = slots[i].err
		}
	}
	return result
}
