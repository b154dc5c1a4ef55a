package pool

import (
	"errors"
	"fmt"
	"log"
	"strconv"
)

var (
	ErrPoolExhausted = errors.New("pool: exhausted")
	ErrInvalidSize   = errors.New("pool: invalid size")
	ErrNilFactory    = errors.New("pool: nil factory")
)

// Item is a reusable pooled instance. Activate receives the spawn parameters
// of the shot that claimed it; Deactivate returns it to its idle state.
type Item[S any] interface {
	Activate(spawn S)
	Deactivate()
}

// Factory builds new instances of one concrete type.
type Factory[T any] interface {
	New() T
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc[T any] func() T

func (f FactoryFunc[T]) New() T {
	return f()
}

// Handle identifies one claim on a pool slot. It goes stale once the slot is
// released or recycled.
type Handle uint64

const handleIndexBits = 32

func makeHandle(index int, gen uint32) Handle {
	return Handle(uint64(gen)<<handleIndexBits | uint64(uint32(index+1)))
}

// Index returns the slot index, or -1 for the zero handle.
func (h Handle) Index() int {
	return int(uint32(h)) - 1
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

func (h Handle) String() string {
	return strconv.Itoa(h.Index()) + "v" + strconv.FormatUint(uint64(h.generation()), 10)
}

type slot[T any] struct {
	item   T
	gen    uint32
	active bool
	stamp  uint64
}

// Pool hands out pre-allocated instances of T. It never shrinks and never
// destroys an instance before the pool itself is dropped.
type Pool[S any, T Item[S]] struct {
	factory Factory[T]
	cfg     Config

	slots  []slot[T]
	free   []int
	active int
	clock  uint64

	// OnRecycle runs when an active instance is forcibly reclaimed under
	// ExhaustRecycle, after it has been deactivated and before it is reused.
	OnRecycle func(stale Handle, item T)
}

// New creates a pool and eagerly builds cfg.Size inactive instances.
func New[S any, T Item[S]](factory Factory[T], cfg Config) (*Pool[S, T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if cfg.Size < 0 || (cfg.Size == 0 && !cfg.AutoExpand) {
		return nil, fmt.Errorf("%w: %d (auto expand %t)", ErrInvalidSize, cfg.Size, cfg.AutoExpand)
	}

	p := &Pool[S, T]{
		factory: factory,
		cfg:     cfg,
		slots:   make([]slot[T], 0, cfg.Size),
		free:    make([]int, 0, cfg.Size),
	}
	for i := 0; i < cfg.Size; i++ {
		p.grow()
	}
	// Hand out low slots first.
	for i, j := 0, len(p.free)-1; i < j; i, j = i+1, j-1 {
		p.free[i], p.free[j] = p.free[j], p.free[i]
	}
	return p, nil
}

func (p *Pool[S, T]) grow() int {
	item := p.factory.New()
	item.Deactivate()
	p.slots = append(p.slots, slot[T]{item: item})
	idx := len(p.slots) - 1
	p.free = append(p.free, idx)
	return idx
}

// Get claims an inactive instance and activates it with spawn. The most
// recently released instance is handed out first.
func (p *Pool[S, T]) Get(spawn S) (Handle, T, error) {
	var zero T
	if p == nil {
		return 0, zero, ErrPoolExhausted
	}

	idx, err := p.claim()
	if err != nil {
		return 0, zero, err
	}

	s := &p.slots[idx]
	p.clock++
	s.active = true
	s.stamp = p.clock
	p.active++
	s.item.Activate(spawn)
	return makeHandle(idx, s.gen), s.item, nil
}

func (p *Pool[S, T]) claim() (int, error) {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return idx, nil
	}
	if p.cfg.AutoExpand {
		p.grow()
		idx := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		return idx, nil
	}
	if p.cfg.Policy == ExhaustFail {
		return -1, fmt.Errorf("%w: %d of %d active", ErrPoolExhausted, p.active, len(p.slots))
	}
	return p.recycleOldest()
}

func (p *Pool[S, T]) recycleOldest() (int, error) {
	oldest := -1
	for i := range p.slots {
		if !p.slots[i].active {
			continue
		}
		if oldest < 0 || p.slots[i].stamp < p.slots[oldest].stamp {
			oldest = i
		}
	}
	if oldest < 0 {
		return -1, ErrPoolExhausted
	}

	s := &p.slots[oldest]
	stale := makeHandle(oldest, s.gen)
	s.item.Deactivate()
	s.active = false
	s.gen++
	p.active--
	log.Printf("pool: recycled active instance %s", stale)
	if p.OnRecycle != nil {
		p.OnRecycle(stale, s.item)
	}
	return oldest, nil
}

// Release deactivates the instance behind h and makes it available again.
// A stale or already released handle is a no-op returning false.
func (p *Pool[S, T]) Release(h Handle) bool {
	s, ok := p.slotFor(h)
	if !ok {
		log.Printf("pool: release of stale handle %s ignored", h)
		return false
	}
	s.item.Deactivate()
	s.active = false
	s.gen++
	p.active--
	p.free = append(p.free, h.Index())
	return true
}

func (p *Pool[S, T]) slotFor(h Handle) (*slot[T], bool) {
	if p == nil {
		return nil, false
	}
	idx := h.Index()
	if idx < 0 || idx >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[idx]
	if !s.active || s.gen != h.generation() {
		return nil, false
	}
	return s, true
}

// EachActive calls fn for every active instance in slot order. fn may
// release the handle it is given.
func (p *Pool[S, T]) EachActive(fn func(h Handle, item T)) {
	if p == nil || fn == nil {
		return
	}
	for i := range p.slots {
		s := &p.slots[i]
		if !s.active {
			continue
		}
		fn(makeHandle(i, s.gen), s.item)
	}
}

// Reset releases every active instance.
func (p *Pool[S, T]) Reset() {
	p.EachActive(func(h Handle, _ T) {
		p.Release(h)
	})
}

// Active returns the number of claimed instances.
func (p *Pool[S, T]) Active() int {
	if p == nil {
		return 0
	}
	return p.active
}

// Len returns the number of instances the pool owns.
func (p *Pool[S, T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.slots)
}

func (p *Pool[S, T]) Config() Config {
	if p == nil {
		return Config{}
	}
	return p.cfg
}
