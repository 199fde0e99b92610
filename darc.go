// Package darc provides dynamically-atomic reference-counted handles.
//
// A value starts out owned by a Local handle whose reference count is a
// plain integer, updated without synchronization. That is legal because a
// Local handle and all of its clones are confined to a single goroutine.
// The first time a Shared handle is requested via Share, the block's
// counting discipline switches, once and irrevocably, to sync/atomic
// operations; from then on every handle to that block, including Local
// clones made before the switch, coordinates through the atomic counter and
// the value may safely cross goroutine boundaries.
//
// If a Shared handle is never created, clone and release never pay for an
// atomic instruction.
//
// Key properties of darc handles:
//   - Clone/Release/Value are non-blocking and lock-free in both modes
//   - The mode switch happens at most once per block and never reverts
//   - The payload is destroyed exactly once, by whichever handle's Release
//     brings the count to zero, with release/acquire ordering between the
//     last payload write and its destruction
//   - Counter words are padded onto their own cache line so shared-mode
//     clone/release traffic does not false-share with the payload
//
// A Local handle must stay on the goroutine that created its block for as
// long as the block is in local mode. The package cannot express this
// restriction in the type system the way Send/Sync-style capability markers
// would; violating it is undefined behavior. Builds with the
// `darc_opt_check` tag turn the violation into a deterministic panic
// instead, at the cost of a goroutine-id probe per local-mode operation.
package darc

import (
	"sync/atomic"
	"unsafe"
)

const (
	// modeLocal means the count is a plain cell and every handle to the
	// block lives on one goroutine.
	modeLocal uint32 = iota
	// modeShared means the count is atomic and handles may be cloned and
	// released concurrently. A block enters this mode at most once.
	modeShared
)

// maxRefs is a soft limit on the number of live handles per block.
// Exceeding it panics (although not necessarily at exactly maxRefs+1
// handles when incremented concurrently).
const maxRefs = uint64(1) << 63

// inner is the shared control block: one heap allocation per New, owned
// jointly by all handles that reference it and freed by the GC once the
// last handle drops it.
type inner[T any] struct {
	plain  uint64        // count cell while mode == modeLocal
	shared atomic.Uint64 // count cell once mode == modeShared
	mode   uint32        // written once, by promote, with a release store
	owner  ownerCheck
	_      [(CacheLineSize - unsafe.Sizeof(struct {
		plain  uint64
		shared atomic.Uint64
		mode   uint32
		owner  ownerCheck
	}{})%CacheLineSize) % CacheLineSize]byte
	value T
	drop  func(T)
}

// incRef adds one reference, dispatching on the block's current mode.
func (b *inner[T]) incRef() {
	if loadMode(&b.mode) == modeShared {
		b.incShared()
		return
	}
	b.owner.assertOwner()
	if b.plain == 0 {
		panic("darc: reference count revived from zero")
	}
	b.plain++
	if b.plain > maxRefs {
		panic("darc: reference count overflow")
	}
}

// decRef removes one reference and reports whether this call brought the
// count to zero, making the caller responsible for destroying the payload.
func (b *inner[T]) decRef() bool {
	if loadMode(&b.mode) == modeShared {
		return b.decShared()
	}
	b.owner.assertOwner()
	if b.plain == 0 {
		panic("darc: reference count released below zero")
	}
	b.plain--
	return b.plain == 0
}

func (b *inner[T]) incShared() {
	n := b.shared.Add(1)
	if n == 1 {
		panic("darc: reference count revived from zero")
	}
	if n > maxRefs {
		panic("darc: reference count overflow")
	}
}

// decShared is the atomic release path. Go's atomics are sequentially
// consistent, which subsumes the required pairing: every decrement is a
// release of the payload writes made before it, and the decrement that
// observes zero acquires them before destruction runs.
func (b *inner[T]) decShared() bool {
	n := b.shared.Add(^uint64(0))
	if n == ^uint64(0) {
		panic("darc: reference count released below zero")
	}
	return n == 0
}

// promote flips the block into shared mode. Caller must hold a live handle,
// which by the local-mode confinement invariant makes the calling goroutine
// the block's sole accessor. No-op if the block is already shared.
func (b *inner[T]) promote() {
	if loadMode(&b.mode) == modeShared {
		return
	}
	b.owner.assertOwner()
	// Migrate the count into the atomic cell, then publish the mode flip.
	// The release store orders the counter initialization before the flag:
	// any goroutine that observes modeShared also observes the migrated
	// count.
	b.shared.Store(b.plain)
	atomic.StoreUint32(&b.mode, modeShared)
}

// destroy runs the drop hook, then zeroes the payload so anything it
// references is released to the GC even while the block itself lingers
// behind stale (already invalid) handle pointers.
func (b *inner[T]) destroy() {
	if fn := b.drop; fn != nil {
		b.drop = nil
		fn(b.value)
	}
	var zero T
	b.value = zero
}

// Config defines configurable handle options.
type Config[T any] struct {
	drop func(T)
}

// WithDrop registers fn as the payload destructor. It runs exactly once,
// with the payload, on whichever goroutine releases the last handle of
// either kind.
func WithDrop[T any](fn func(T)) func(*Config[T]) {
	return func(c *Config[T]) {
		c.drop = fn
	}
}

// New allocates a control block owning value and returns its first handle.
// The block starts in local mode: reference counting is unsynchronized and
// the handle must not leave the creating goroutine until promoted via
// Share.
func New[T any](value T, options ...func(*Config[T])) *Local[T] {
	var c Config[T]
	for _, o := range options {
		o(&c)
	}
	b := &inner[T]{plain: 1, value: value, drop: c.drop}
	b.owner.initOwner()
	return &Local[T]{b}
}

// NewShared is sugar for New followed by Share: the returned handle's block
// is already in shared mode.
func NewShared[T any](value T, options ...func(*Config[T])) *Shared[T] {
	return New(value, options...).Share()
}

// Local is a goroutine-confined handle. Clones share the block's payload
// and its reference count. While the block is in local mode the handle must
// not be sent to, or used from, another goroutine; once a sibling promotes
// the block, a Local keeps working (its operations route through the atomic
// path) but remains a single-goroutine value by contract.
//
// A Local is invalidated by Release and consumed by Share; any use after
// either panics.
type Local[T any] struct {
	b *inner[T]
}

func (l *Local[T]) block() *inner[T] {
	b := l.b
	if b == nil {
		panic("darc: use of a released or shared-away Local handle")
	}
	return b
}

// Clone returns a new handle to the same block, incrementing the count.
func (l *Local[T]) Clone() *Local[T] {
	b := l.block()
	b.incRef()
	return &Local[T]{b}
}

// Release drops this handle's reference and invalidates the handle. If it
// was the last reference of either kind, the payload is destroyed.
func (l *Local[T]) Release() {
	b := l.block()
	l.b = nil
	if b.decRef() {
		b.destroy()
	}
}

// Value returns a pointer to the payload. The pointer stays valid while at
// least one handle to the block is live; reading it after the last Release
// is a use-after-free bug on the caller's side.
func (l *Local[T]) Value() *T {
	return &l.block().value
}

// Share promotes the block to shared mode and returns a thread-safe handle
// over it, consuming l. The count is unchanged: the returned handle takes
// over this handle's reference. Sharing a block that a sibling already
// promoted only wraps, the block is left as is.
func (l *Local[T]) Share() *Shared[T] {
	b := l.block()
	l.b = nil
	b.promote()
	return &Shared[T]{b}
}

// IsShared reports whether the block has been promoted to atomic counting.
func (l *Local[T]) IsShared() bool {
	return loadMode(&l.block().mode) == modeShared
}

// Refs returns the current reference count, for diagnostics and tests. In
// shared mode the value may be stale by the time it is returned.
func (l *Local[T]) Refs() uint64 {
	b := l.block()
	if loadMode(&b.mode) == modeShared {
		return b.shared.Load()
	}
	return b.plain
}

// Shared is a thread-safe handle. Its block is in shared mode by
// construction (Share and NewShared are the only introduction rules), so
// its operations take the atomic path unconditionally, and instances may be
// sent across goroutines and cloned or released concurrently.
//
// A Shared is invalidated by Release; any use after that panics.
type Shared[T any] struct {
	b *inner[T]
}

func (s *Shared[T]) block() *inner[T] {
	b := s.b
	if b == nil {
		panic("darc: use of a released Shared handle")
	}
	return b
}

// Clone returns a new handle to the same block, incrementing the count.
// Safe to call concurrently with clones and releases of other handles to
// the block.
func (s *Shared[T]) Clone() *Shared[T] {
	b := s.block()
	b.incShared()
	return &Shared[T]{b}
}

// Release drops this handle's reference and invalidates the handle. If it
// was the last reference of either kind, the payload is destroyed on the
// calling goroutine, with all prior payload writes visible to it.
func (s *Shared[T]) Release() {
	b := s.block()
	s.b = nil
	if b.decShared() {
		b.destroy()
	}
}

// Value returns a pointer to the payload. The pointer stays valid while at
// least one handle to the block is live.
func (s *Shared[T]) Value() *T {
	return &s.block().value
}

// IsShared always reports true; it exists so both handle kinds expose the
// same diagnostic surface.
func (s *Shared[T]) IsShared() bool {
	s.block()
	return true
}

// Refs returns the current reference count, for diagnostics and tests. The
// value may be stale by the time it is returned.
func (s *Shared[T]) Refs() uint64 {
	return s.block().shared.Load()
}
