package world

import (
	"sort"

	"go.uber.org/zap"
)

// ObjectPoolManager keeps stacks of inactive renderable handles keyed
// by pool name and subtype, so frequently recycled objects skip
// construction entirely. The manager does not police membership:
// callers must detach a handle from scene and grid before Put, and
// must not Put a handle twice. That boundary is a documented contract,
// enforced by the single mutation path through the chunk manager.
type ObjectPoolManager struct {
	stacks   map[poolKey][]*Renderable
	log      *zap.Logger
	disposed int
}

type poolKey struct {
	pool    string
	subtype string
}

func NewObjectPoolManager(log *zap.Logger) *ObjectPoolManager {
	return &ObjectPoolManager{
		stacks: make(map[poolKey][]*Renderable),
		log:    log,
	}
}

// Get pops a handle from the matching stack, LIFO. The second return
// is false when the stack is empty and the caller must construct
// fresh. Subtype keying exists because some pools hold visually
// distinct shapes that must not substitute for each other.
func (p *ObjectPoolManager) Get(pool, subtype string) (*Renderable, bool) {
	k := poolKey{pool: pool, subtype: subtype}
	stack := p.stacks[k]
	if len(stack) == 0 {
		return nil, false
	}
	r := stack[len(stack)-1]
	p.stacks[k] = stack[:len(stack)-1]
	return r, true
}

// Put pushes a detached handle onto its stack. No disposal happens;
// the handle stays fully constructed for instant reuse.
func (p *ObjectPoolManager) Put(pool string, r *Renderable) {
	if r == nil {
		p.log.Warn("pool: nil handle", zap.String("pool", pool))
		return
	}
	if r.Disposed {
		p.log.Warn("pool: disposed handle dropped",
			zap.String("pool", pool), zap.Uint64("id", r.ID))
		return
	}
	k := poolKey{pool: pool, subtype: r.Subtype}
	p.stacks[k] = append(p.stacks[k], r)
}

// Clear drains every stack, disposing underlying resources. Used on
// full world reset or level change, never on ordinary chunk unload.
func (p *ObjectPoolManager) Clear() {
	for k, stack := range p.stacks {
		for _, r := range stack {
			r.Dispose()
			p.disposed++
		}
		delete(p.stacks, k)
	}
}

// Size returns the number of pooled handles for one pool name across
// all subtypes.
func (p *ObjectPoolManager) Size(pool string) int {
	n := 0
	for k, stack := range p.stacks {
		if k.pool == pool {
			n += len(stack)
		}
	}
	return n
}

// TotalSize returns the number of pooled handles across all stacks.
func (p *ObjectPoolManager) TotalSize() int {
	n := 0
	for _, stack := range p.stacks {
		n += len(stack)
	}
	return n
}

// DisposedCount returns how many handles Clear has disposed so far.
func (p *ObjectPoolManager) DisposedCount() int {
	return p.disposed
}

// PoolNames returns the distinct pool names with at least one stack,
// sorted, for metrics iteration.
func (p *ObjectPoolManager) PoolNames() []string {
	seen := make(map[string]struct{})
	for k := range p.stacks {
		seen[k.pool] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
