package async

import (
	"context"
	"reflect"
	"sync"

	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/observe"
	"go.uber.org/zap"
)

// PageParams are request parameters that carry a 1-based page number.
// WithPage must return a modified copy.
type PageParams[P any] interface {
	PageNumber() int
	WithPage(page int) P
}

// PageResult is what a page fetch returns.
type PageResult[T any] struct {
	Items []T
	Total int
	Pages int
}

// PageFetcher loads one page.
type PageFetcher[T any, P any] func(ctx context.Context, params P) (PageResult[T], error)

// PageState is a snapshot of a Paginated list.
type PageState[T any] struct {
	Items       []T
	Total       int
	Pages       int
	CurrentPage int
	Loading     bool
	Error       string
	HasMore     bool
}

// PaginatedOptions configures a Paginated list.
type PaginatedOptions struct {
	OnError func(error)
	Logger  *zap.Logger
}

type pageOutcome[T any] struct {
	page   int
	result PageResult[T]
	err    error
}

// Paginated accumulates the pages of a list endpoint. Page 1 replaces the
// list, later pages append. Results are applied in request order, so page 1
// always precedes page 2 even when page 2 arrives first. Changing any
// parameter other than the page, or calling Refresh, starts a new generation:
// in-flight fetches are cancelled and their results dropped.
type Paginated[T any, P PageParams[P]] struct {
	fetch  PageFetcher[T, P]
	opts   PaginatedOptions
	logger *zap.Logger

	mu        sync.Mutex
	params    P
	items     []T
	total     int
	pages     int
	errMsg    string
	gen       uint64
	genCtx    context.Context
	genCancel context.CancelFunc
	nextID    uint64
	queue     []uint64
	results   map[uint64]pageOutcome[T]

	subs observe.Hub[PageState[T]]
}

// NewPaginated creates a list for initial params. Nothing is fetched until
// Load, LoadMore, Refresh or SetParams is called.
func NewPaginated[T any, P PageParams[P]](fetch PageFetcher[T, P], initial P, opts PaginatedOptions) *Paginated[T, P] {
	p := &Paginated[T, P]{
		fetch:   fetch,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger),
		params:  initial,
		results: make(map[uint64]pageOutcome[T]),
	}
	p.genCtx, p.genCancel = context.WithCancel(context.Background())
	return p
}

// Load fetches the page named by the current params.
func (p *Paginated[T, P]) Load(ctx context.Context) error {
	p.mu.Lock()
	params := p.params
	id, gen, genCtx := p.enqueueLocked()
	p.mu.Unlock()
	p.notify()

	return p.run(ctx, genCtx, gen, id, params)
}

// LoadMore requests the next page if the current page is below the page
// count. It is a no-op (returning nil) otherwise, including before the
// first page has arrived.
func (p *Paginated[T, P]) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	next := p.params.PageNumber() + 1
	if next > p.pages {
		p.mu.Unlock()
		return nil
	}
	p.params = p.params.WithPage(next)
	params := p.params
	id, gen, genCtx := p.enqueueLocked()
	p.mu.Unlock()
	p.notify()

	return p.run(ctx, genCtx, gen, id, params)
}

// Refresh clears the list and refetches page 1.
func (p *Paginated[T, P]) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.resetLocked(p.params.WithPage(1))
	params := p.params
	id, gen, genCtx := p.enqueueLocked()
	p.mu.Unlock()
	p.notify()

	return p.run(ctx, genCtx, gen, id, params)
}

// SetParams replaces the parameters. If anything besides the page differs
// the list restarts from page 1, as Refresh does. A change of page alone
// fetches that page: page 1 replaces the list, any other page is appended.
// Identical params are a no-op.
func (p *Paginated[T, P]) SetParams(ctx context.Context, params P) error {
	p.mu.Lock()
	current := p.params
	filterChanged := !reflect.DeepEqual(current.WithPage(1), params.WithPage(1))

	switch {
	case filterChanged || (params.PageNumber() == 1 && current.PageNumber() != 1):
		p.resetLocked(params.WithPage(1))
	case params.PageNumber() == current.PageNumber():
		p.mu.Unlock()
		return nil
	default:
		p.params = params
	}

	req := p.params
	id, gen, genCtx := p.enqueueLocked()
	p.mu.Unlock()
	p.notify()

	return p.run(ctx, genCtx, gen, id, req)
}

// resetLocked starts a new generation with params and an empty list.
func (p *Paginated[T, P]) resetLocked(params P) {
	p.genCancel()
	p.gen++
	p.genCtx, p.genCancel = context.WithCancel(context.Background())
	p.queue = nil
	p.results = make(map[uint64]pageOutcome[T])
	p.items = nil
	p.errMsg = ""
	p.params = params
}

func (p *Paginated[T, P]) enqueueLocked() (uint64, uint64, context.Context) {
	p.nextID++
	id := p.nextID
	p.queue = append(p.queue, id)
	p.errMsg = ""
	return id, p.gen, p.genCtx
}

// run performs one fetch. The fetch context ends when either ctx or the
// generation ends.
func (p *Paginated[T, P]) run(ctx context.Context, genCtx context.Context, gen, id uint64, params P) error {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(genCtx, cancel)
	defer stop()

	result, err := p.fetch(fetchCtx, params)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.logger.Debug("discarding page from a previous generation",
			zap.Int("page", params.PageNumber()),
			zap.Uint64("generation", gen))
		return err
	}
	p.results[id] = pageOutcome[T]{page: params.PageNumber(), result: result, err: err}
	failed := p.drainLocked()
	p.mu.Unlock()
	p.notify()

	if failed != nil && p.opts.OnError != nil {
		p.opts.OnError(failed)
	}
	return err
}

// drainLocked applies every outcome at the head of the queue. A failed page
// stops the generation: later requests are dropped and the page counter goes
// back to the last page applied so LoadMore can retry.
func (p *Paginated[T, P]) drainLocked() error {
	for len(p.queue) > 0 {
		out, ok := p.results[p.queue[0]]
		if !ok {
			return nil
		}
		delete(p.results, p.queue[0])
		p.queue = p.queue[1:]

		if out.err != nil {
			p.errMsg = ErrorMessage(out.err)
			lastGood := out.page - 1
			if lastGood < 1 {
				lastGood = 1
			}
			params := p.params.WithPage(lastGood)
			errMsg := p.errMsg
			items := p.items
			p.resetLocked(params)
			p.items = items
			p.errMsg = errMsg
			return out.err
		}

		if out.page <= 1 {
			p.items = append([]T(nil), out.result.Items...)
		} else {
			p.items = append(p.items, out.result.Items...)
		}
		p.total = out.result.Total
		p.pages = out.result.Pages
		p.errMsg = ""
	}
	return nil
}

func (p *Paginated[T, P]) snapshotLocked() PageState[T] {
	current := p.params.PageNumber()
	return PageState[T]{
		Items:       append([]T(nil), p.items...),
		Total:       p.total,
		Pages:       p.pages,
		CurrentPage: current,
		Loading:     len(p.queue) > 0,
		Error:       p.errMsg,
		HasMore:     current < p.pages,
	}
}

func (p *Paginated[T, P]) notify() {
	p.mu.Lock()
	snap, ver := p.snapshotLocked(), p.subs.Stamp()
	p.mu.Unlock()
	p.subs.Publish(ver, snap)
}

// State returns a snapshot of the list.
func (p *Paginated[T, P]) State() PageState[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Items returns a copy of the accumulated items.
func (p *Paginated[T, P]) Items() []T { return p.State().Items }

// HasMore reports whether LoadMore would fetch another page.
func (p *Paginated[T, P]) HasMore() bool { return p.State().HasMore }

// Loading reports whether a fetch of the current generation is outstanding.
func (p *Paginated[T, P]) Loading() bool { return p.State().Loading }

// Params returns the current parameters.
func (p *Paginated[T, P]) Params() P {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (p *Paginated[T, P]) Subscribe(fn func(PageState[T])) func() {
	return p.subs.Subscribe(fn)
}
