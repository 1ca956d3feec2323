// Package ingest fetches upstream artifacts, normalizes them and writes
// them into the store.
//
// Missing upstream data is never an error: the affected tables are left
// untouched and the next run will try again.
package ingest

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/repository"
	"github.com/mpapenbr/wrc-timing-go/pkg/tabular"
	"github.com/mpapenbr/wrc-timing-go/pkg/upstream"
)

// ErrNoData is returned when a mandatory artifact (e.g. the event itself)
// is not available from upstream.
var ErrNoData = errors.New("no upstream data")

// Source selects the endpoint family used for stage scoped results
type Source int

const (
	SourceTiming Source = iota
	SourceResults
)

// Counts holds the number of upserted rows per table
type Counts map[string]int

func (c Counts) add(other Counts) Counts {
	for k, v := range other {
		c[k] += v
	}
	return c
}

// Tables returns the table names in sorted order
func (c Counts) Tables() []string {
	return slices.Sorted(maps.Keys(c))
}

type Ingester struct {
	fetcher      upstream.Fetcher
	store        *repository.Store
	log          *log.Logger
	source       Source
	championship string
}

type Option func(*Ingester)

func WithSource(s Source) Option {
	return func(i *Ingester) {
		i.source = s
	}
}

func WithLogger(l *log.Logger) Option {
	return func(i *Ingester) {
		i.log = l
	}
}

// WithChampionship sets the championship key sent to the results family
func WithChampionship(key string) Option {
	return func(i *Ingester) {
		i.championship = key
	}
}

//nolint:whitespace // can't make both editor and linter happy
func New(
	f upstream.Fetcher, store *repository.Store, opts ...Option,
) *Ingester {
	ret := &Ingester{
		fetcher:      f,
		store:        store,
		log:          log.Default().Named("ingest"),
		source:       SourceTiming,
		championship: "wrc",
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (i *Ingester) get(ctx context.Context, e upstream.Endpoint) (any, bool) {
	data, ok := upstream.Get(ctx, i.fetcher, e)
	if !ok {
		i.log.Debug("no data", log.String("path", e.Path))
	}
	return data, ok
}

type batch struct {
	table string
	t     *tabular.Table
	pk    []string
}

func item(table string, t *tabular.Table, pk ...string) batch {
	return batch{table: table, t: t, pk: pk}
}

// write upserts all batches within one transaction
func (i *Ingester) write(ctx context.Context, items ...batch) (Counts, error) {
	counts := Counts{}
	err := i.store.RunInTx(ctx, func(ctx context.Context) error {
		for _, b := range items {
			if b.t == nil || b.t.IsEmpty() {
				continue
			}
			n, err := i.store.Upsert(ctx, b.table, b.t, b.pk...)
			if err != nil {
				return err
			}
			counts[b.table] += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
