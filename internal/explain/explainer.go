package explain

import (
	"slices"
	"sync"

	"github.com/scbrown/cheeky/internal/catalog"
	"github.com/scbrown/cheeky/internal/model"
)

// Explainer resolves invocations against one catalog and memoizes results
// keyed on the raw input string. The cache is bounded and evicts the oldest
// entry first; a size of zero disables it.
type Explainer struct {
	cat  *catalog.Catalog
	size int

	mu    sync.Mutex
	cache map[string]cached
	order []string
}

type cached struct {
	e   *model.Explanation
	err error
}

// NewExplainer returns an Explainer for cat caching up to size results.
func NewExplainer(cat *catalog.Catalog, size int) *Explainer {
	return &Explainer{
		cat:   cat,
		size:  size,
		cache: make(map[string]cached),
	}
}

// Catalog returns the catalog the Explainer resolves against.
func (x *Explainer) Catalog() *catalog.Catalog {
	return x.cat
}

// Explain resolves raw, serving repeated inputs from the cache.
func (x *Explainer) Explain(raw string) (*model.Explanation, error) {
	if x.size <= 0 {
		return Resolve(raw, x.cat)
	}

	x.mu.Lock()
	c, ok := x.cache[raw]
	x.mu.Unlock()
	if ok {
		return clone(c.e), c.err
	}

	e, err := Resolve(raw, x.cat)

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.cache[raw]; !ok {
		if len(x.order) >= x.size {
			delete(x.cache, x.order[0])
			x.order = x.order[1:]
		}
		x.cache[raw] = cached{e: clone(e), err: err}
		x.order = append(x.order, raw)
	}
	return e, err
}

// ExplainChain explains every segment of a chained command line.
func (x *Explainer) ExplainChain(line string) []Step {
	return resolveSegments(line, x.Explain)
}

// Len returns the number of cached results.
func (x *Explainer) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.cache)
}

func clone(e *model.Explanation) *model.Explanation {
	if e == nil {
		return nil
	}
	out := *e
	out.Flags = make([]model.FlagExplanation, len(e.Flags))
	for i, f := range e.Flags {
		f.Aliases = slices.Clone(f.Aliases)
		out.Flags[i] = f
	}
	out.Unrecognized = slices.Clone(e.Unrecognized)
	return &out
}
