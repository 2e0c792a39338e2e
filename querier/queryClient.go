// queryClient.go
package querier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tablefs/tablefs-querier/core"
)

// QueryTarget is one requested path plus its transform settings.
// The path arrives fully resolved; template variable substitution is the
// caller's responsibility.
type QueryTarget struct {
	Target  string `json:"target"`
	Changes bool   `json:"changes,omitempty"`
	ChangesColumns
}

// QueryResult is one flattened response entry: either a raw table
// (Columns+Rows) or a named series (Datapoints).
type QueryResult struct {
	Target     string      `json:"target"`
	Columns    []string    `json:"columns,omitempty"`
	Rows       [][]any     `json:"rows,omitempty"`
	Datapoints []Datapoint `json:"datapoints,omitempty"`
}

// TargetError reports a failed target without sinking the whole query.
type TargetError struct {
	Target string `json:"target"`
	Error  string `json:"error"`
}

// QueryClient resolves query targets against one storage backend through
// a shared table cache.
type QueryClient struct {
	fs    core.FileSystem
	cache *TableCache
}

// NewQueryClient creates a client over the given backend and cache.
// Passing the same cache to several clients shares parsed tables between
// them.
func NewQueryClient(fs core.FileSystem, cache *TableCache) *QueryClient {
	return &QueryClient{fs: fs, cache: cache}
}

// ResolveTable returns the parsed table at path, fetching and parsing on
// a cache miss. Concurrent calls for the same uncached path share one
// backend fetch.
func (c *QueryClient) ResolveTable(ctx context.Context, path string) (*Table, error) {
	return c.cache.GetOrFill(ctx, path, func(ctx context.Context) (*Table, error) {
		resp, err := c.fs.Fetch(ctx, path, BinaryPath(path))
		if err != nil {
			return nil, err
		}
		return Parse(resp)
	})
}

// Query resolves all targets concurrently and flattens the results in
// target order (series order within a changes target). Targets with an
// empty path are dropped before any backend call; a query with nothing
// left returns an empty result immediately.
//
// Failures are isolated per target and reported in the returned
// TargetError list. The error return is non-nil only when every
// remaining target failed.
func (c *QueryClient) Query(ctx context.Context, targets []QueryTarget) ([]QueryResult, []TargetError, error) {
	var pending []QueryTarget
	for _, t := range targets {
		if t.Target != "" {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return []QueryResult{}, nil, nil
	}

	perTarget := make([][]QueryResult, len(pending))
	perErr := make([]error, len(pending))

	var wg sync.WaitGroup
	for i, target := range pending {
		wg.Add(1)
		go func(i int, target QueryTarget) {
			defer wg.Done()
			perTarget[i], perErr[i] = c.resolveTarget(ctx, target)
		}(i, target)
	}
	wg.Wait()

	var (
		results   = []QueryResult{}
		errList   []TargetError
		failures  []error
		succeeded bool
	)
	for i, target := range pending {
		if perErr[i] != nil {
			core.Errorf(ctx, "target %s failed: %v", target.Target, perErr[i])
			errList = append(errList, TargetError{Target: target.Target, Error: perErr[i].Error()})
			failures = append(failures, fmt.Errorf("%s: %w", target.Target, perErr[i]))
			continue
		}
		succeeded = true
		results = append(results, perTarget[i]...)
	}
	if !succeeded {
		return nil, errList, errors.Join(failures...)
	}
	return results, errList, nil
}

// resolveTarget produces the flattened entries for a single target: one
// raw-table entry, or one entry per series when the changes flag is set.
func (c *QueryClient) resolveTarget(ctx context.Context, target QueryTarget) ([]QueryResult, error) {
	table, err := c.ResolveTable(ctx, target.Target)
	if err != nil {
		return nil, err
	}
	if !target.Changes {
		return []QueryResult{{Target: target.Target, Columns: table.Columns, Rows: table.Rows}}, nil
	}

	info, err := Changes(table, target.ChangesColumns)
	if err != nil {
		return nil, err
	}
	entries := make([]QueryResult, 0, len(info.Order))
	for _, name := range info.Order {
		entries = append(entries, QueryResult{Target: name, Datapoints: info.Series[name]})
	}
	return entries, nil
}

// TestConnection lists the backend root and reports the entry count.
// Used by the connectivity check endpoint.
func (c *QueryClient) TestConnection(ctx context.Context) (*core.DirectoryInfo, error) {
	return c.fs.List(ctx, "")
}
