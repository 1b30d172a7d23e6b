package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/accountkit/observe"
	"github.com/jonwraymond/accountkit/record"
	"github.com/jonwraymond/accountkit/resilience"
)

// Cache is the two-tier differential account cache.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use. Mutations of one
//   account are serialized; different accounts never block each other.
// - Context: ctx scopes the memory side of an operation. Background writes
//   run detached from the caller's cancellation and are never abandoned.
// - Errors: invalid ids and a closed cache are reported to the caller;
//   persist failures are reported only through the returned Flush.
type Cache struct {
	store        Store
	sealer       Sealer
	codec        record.Codec
	mapping      map[string]record.AnyKey
	exec         *resilience.Executor
	flushOnClose bool
	mw           *observe.Middleware
	logger       observe.Logger

	mu    sync.Mutex
	slots map[string]*slot
	group singleflight.Group

	lifecycle sync.RWMutex
	closed    bool
	wg        sync.WaitGroup

	counters counters
}

// slot serializes everything that happens to one account.
type slot struct {
	refs int // guarded by Cache.mu

	mu    sync.RWMutex
	entry *entry // nil when not resident

	// version counts scheduled writes; written is the last version that
	// reached the store. They differ while the entry is dirty.
	version atomic.Uint64
	written atomic.Uint64
	writeMu sync.Mutex
}

func (s *slot) dirty() bool {
	return s.version.Load() != s.written.Load()
}

// entry is the resident form of one account.
type entry struct {
	storage *record.Storage
	known   record.KeySet
	raw     map[string][]byte // persisted fields no known key claims
}

func newEntry() *entry {
	return &entry{storage: record.NewStorage(), raw: make(map[string][]byte)}
}

func (e *entry) learn(keys record.KeySet) {
	for _, k := range keys.Keys() {
		// A conflicting key leaves the first registration in place.
		_ = e.known.Add(k)
	}
}

// forget drops raw fields that keys now own.
func (e *entry) forget(keys []record.AnyKey) {
	for _, k := range keys {
		delete(e.raw, k.ID())
		for _, legacy := range k.LegacyIDs() {
			delete(e.raw, legacy)
		}
	}
}

// view returns the entry as a snapshot, resolving raw fields that keys
// or previously seen keys understand. Resident bindings win.
func (e *entry) view(keys record.KeySet, mapping map[string]record.AnyKey, codec record.Codec) record.Snapshot {
	if len(e.raw) == 0 {
		return e.storage.Snapshot()
	}
	all, err := e.known.Union(keys)
	if err != nil {
		all = keys
	}
	decoded := record.DecodeFields(e.raw, record.DecodeConfig{Keys: all, IdentifierMapping: mapping}, codec)
	if decoded.Snapshot.IsEmpty() {
		return e.storage.Snapshot()
	}
	merged := decoded.Snapshot.Storage()
	merged.Merge(e.storage, true)
	return merged.Snapshot()
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	sealer   Sealer
	codec    record.Codec
	mapping  map[string]record.AnyKey
	policy   Policy
	exec     *resilience.Executor
	observer observe.Observer
	mw       *observe.Middleware
	logger   observe.Logger
}

// WithSealer sets the sealing capability. Default: Plaintext.
func WithSealer(s Sealer) Option {
	return func(o *options) { o.sealer = s }
}

// WithCodec sets the wire codec. Default: canonical CBOR.
func WithCodec(c record.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithIdentifierMapping adds extra wire identifiers resolved at decode time.
func WithIdentifierMapping(m map[string]record.AnyKey) Option {
	return func(o *options) { o.mapping = m }
}

// WithPolicy sets the persistence policy. Default: DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithExecutor guards writes with e instead of the policy's executor.
func WithExecutor(e *resilience.Executor) Option {
	return func(o *options) { o.exec = e }
}

// WithObserver instruments the cache with obs.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithMiddleware instruments the cache with m. It takes precedence over
// WithObserver.
func WithMiddleware(m *observe.Middleware) Option {
	return func(o *options) { o.mw = m }
}

// WithLogger sets the logger used for cache-specific events.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a cache over store.
func New(store Store, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := options{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.sealer == nil {
		o.sealer = Plaintext()
	}
	if o.codec == nil {
		o.codec = record.MustCBORCodec()
	}
	if o.exec == nil {
		o.exec = o.policy.Executor()
	}
	if o.mw == nil {
		if o.observer != nil {
			mw, err := observe.MiddlewareFromObserver(o.observer)
			if err != nil {
				return nil, fmt.Errorf("cache: instrument: %w", err)
			}
			o.mw = mw
		} else {
			o.mw = observe.NewMiddleware(nil, nil, o.logger)
		}
	}
	if o.logger == nil {
		o.logger = o.mw.Logger()
	}

	return &Cache{
		store:        store,
		sealer:       o.sealer,
		codec:        o.codec,
		mapping:      o.mapping,
		exec:         o.exec,
		flushOnClose: o.policy.FlushOnClose,
		mw:           o.mw,
		logger:       o.logger,
		slots:        make(map[string]*slot),
	}, nil
}

// acquire returns the slot for id with a reference held, creating it when
// create is set. Every acquire is paired with releaseSlot, and s.mu is only
// taken while a reference is held.
func (c *Cache) acquire(id string, create bool) *slot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[id]
	if !ok {
		if !create {
			return nil
		}
		s = &slot{}
		c.slots[id] = s
	}
	s.refs++
	return s
}

// releaseSlot drops a reference taken by acquire. The last reference to a
// slot with no resident entry and no unwritten version removes it.
func (c *Cache) releaseSlot(id string, s *slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.refs--
	if s.refs > 0 || s.dirty() {
		return
	}
	s.mu.RLock()
	idle := s.entry == nil
	s.mu.RUnlock()
	if idle && c.slots[id] == s {
		delete(c.slots, id)
	}
}

// begin validates id and holds the lifecycle read lock until the returned
// release is called.
func (c *Cache) begin(id string) (release func(), err error) {
	if err := ValidateAccountID(id); err != nil {
		return nil, err
	}
	c.lifecycle.RLock()
	if c.closed {
		c.lifecycle.RUnlock()
		return nil, ErrClosed
	}
	return c.lifecycle.RUnlock, nil
}

// LoadEntry returns the snapshot for id, promoting a disk-only entry to
// memory. keys decides which persisted fields are decoded; fields outside
// keys stay raw. A miss, including an unreadable persisted entry, returns
// false.
func (c *Cache) LoadEntry(ctx context.Context, id string, keys record.KeySet) (record.Snapshot, bool) {
	snap, found := record.Empty(), false

	_ = c.observed(ctx, OpLoad, id, func(ctx context.Context) error {
		release, err := c.begin(id)
		if err != nil {
			return err
		}
		defer release()

		s := c.acquire(id, true)
		defer c.releaseSlot(id, s)
		if snap, found = c.view(s, keys); found {
			c.counters.hits.Add(1)
			return nil
		}

		err = c.promote(ctx, s, id, keys)
		if err == nil {
			snap, found = c.view(s, keys)
		}
		if !found {
			c.counters.misses.Add(1)
		}
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})

	return snap, found
}

// view returns the resident entry restricted to keys, so a resident read
// and a read after promotion agree.
func (c *Cache) view(s *slot, keys record.KeySet) (record.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.entry == nil {
		return record.Empty(), false
	}
	return s.entry.view(keys, c.mapping, c.codec).Filter(keys), true
}

// promote decodes the persisted entry into memory once per concurrent burst
// of loads. The decode holds the slot write lock, so readers of the same
// account wait for it.
func (c *Cache) promote(ctx context.Context, s *slot, id string, keys record.KeySet) error {
	detached := context.WithoutCancel(ctx)
	_, err, _ := c.group.Do(id, func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.entry != nil {
			return nil, nil
		}
		e, err := c.readDisk(detached, id, keys)
		if err != nil {
			return nil, err
		}
		s.entry = e
		return nil, nil
	})
	return err
}

// readDisk loads, opens and decodes the persisted entry for id. The caller
// holds the slot write lock.
func (c *Cache) readDisk(ctx context.Context, id string, keys record.KeySet) (*entry, error) {
	var (
		e       *entry
		missing bool
	)
	err := c.observed(ctx, OpPromote, id, func(ctx context.Context) error {
		sealed, err := c.store.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			missing = true
			return nil
		}
		if err != nil {
			return err
		}

		c.counters.decodes.Add(1)
		plain, err := c.sealer.Open(id, sealed)
		if err != nil {
			return fmt.Errorf("%w: open: %w", ErrCorruptEntry, err)
		}
		decoded, err := record.Decode(plain, record.DecodeConfig{Keys: keys, IdentifierMapping: c.mapping}, c.codec)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptEntry, err)
		}
		if n := len(decoded.Errors); n > 0 {
			c.counters.fieldErrors.Add(int64(n))
			c.log(OpPromote, id).Warn(ctx, "persisted fields failed to decode",
				observe.F("fields", n),
				observe.F("error", decoded.Err()),
			)
		}

		e = &entry{storage: decoded.Snapshot.Storage(), raw: decoded.Unresolved}
		e.learn(keys)
		c.counters.diskLoads.Add(1)
		return nil
	})
	if missing {
		return nil, ErrNotFound
	}
	return e, err
}

// CommunicateRemoteChanges merges details from the source of truth into the
// entry for id, overwriting bindings it already holds. An absent entry is
// created; a disk-only one is promoted first so fields missing from details
// survive. The returned Flush completes once the merged entry is persisted.
func (c *Cache) CommunicateRemoteChanges(ctx context.Context, id string, details record.Snapshot) (*Flush, error) {
	var flush *Flush
	err := c.observed(ctx, OpRemote, id, func(ctx context.Context) error {
		var err error
		flush, err = c.mutate(ctx, OpRemote, id, details.KeySet(), true, func(e *entry) {
			e.forget(details.Keys())
			e.storage.Merge(details.Storage(), true)
		})
		return err
	})
	return flush, err
}

// CommunicateModifications applies mod to the entry for id: the modified
// side is merged with overwrite, then every removed key the modified side
// does not bind is dropped. It returns ErrEntryNotFound when id is neither
// resident nor persisted.
func (c *Cache) CommunicateModifications(ctx context.Context, id string, mod record.Modification) (*Flush, error) {
	var flush *Flush
	err := c.observed(ctx, OpModify, id, func(ctx context.Context) error {
		if err := mod.Validate(); err != nil {
			c.log(OpModify, id).Debug(ctx, "modified side wins over removal", observe.F("error", err))
		}
		keys := mod.Keys()
		var err error
		flush, err = c.mutate(ctx, OpModify, id, keys, false, func(e *entry) {
			e.forget(keys.Keys())
			mod.ApplyStorage(e.storage)
		})
		return err
	})
	return flush, err
}

// mutate applies fn to the resident entry for id under the slot lock and
// schedules a persist of the result.
func (c *Cache) mutate(ctx context.Context, name, id string, keys record.KeySet, create bool, fn func(*entry)) (*Flush, error) {
	release, err := c.begin(id)
	if err != nil {
		return nil, err
	}
	defer release()

	s := c.acquire(id, true)
	defer c.releaseSlot(id, s)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == nil {
		e, err := c.readDisk(ctx, id, keys)
		switch {
		case err == nil:
			s.entry = e
		case errors.Is(err, ErrNotFound) && create:
			s.entry = newEntry()
		case errors.Is(err, ErrNotFound):
			return nil, ErrEntryNotFound
		case errors.Is(err, ErrCorruptEntry) && create:
			c.log(name, id).Warn(ctx, "replacing unreadable persisted entry", observe.F("error", err))
			s.entry = newEntry()
		default:
			return nil, err
		}
	}

	fn(s.entry)
	s.entry.learn(keys)

	payload, err := c.encode(s.entry)
	if err != nil {
		c.counters.persistFailures.Add(1)
		c.log(name, id).Error(ctx, "entry cannot be encoded; memory copy kept", observe.F("error", err))
		return completedFlush(err), nil
	}
	return c.schedule(ctx, s, id, payload, s.version.Add(1)), nil
}

// encode serializes the entry, re-emitting raw fields alongside the
// resident bindings.
func (c *Cache) encode(e *entry) ([]byte, error) {
	fields, err := record.EncodeFields(e.storage.Snapshot(), c.codec)
	if err != nil {
		return nil, err
	}
	for id, raw := range e.raw {
		if _, ok := fields[id]; !ok {
			fields[id] = raw
		}
	}
	return c.codec.JoinFields(fields)
}

// schedule persists payload in the background. The caller holds the
// lifecycle read lock, so Close cannot miss the write.
func (c *Cache) schedule(ctx context.Context, s *slot, id string, payload []byte, version uint64) *Flush {
	f := newFlush()
	detached := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		f.complete(c.persist(detached, s, id, payload, version))
	}()
	return f
}

// persist writes payload unless a newer version has been scheduled since.
func (c *Cache) persist(ctx context.Context, s *slot, id string, payload []byte, version uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.version.Load() != version {
		c.counters.superseded.Add(1)
		return nil
	}

	return c.observed(ctx, OpPersist, id, func(ctx context.Context) error {
		sealed, err := c.sealer.Seal(id, payload)
		if err != nil {
			c.counters.persistFailures.Add(1)
			return fmt.Errorf("cache: seal entry: %w", err)
		}
		err = c.exec.Execute(ctx, func(ctx context.Context) error {
			return c.store.Save(ctx, id, sealed)
		})
		if err != nil {
			c.counters.persistFailures.Add(1)
			return err
		}
		s.written.Store(version)
		c.counters.persists.Add(1)
		return nil
	})
}

// flushSlot synchronously rewrites a dirty resident entry. The caller holds
// the slot write lock.
func (c *Cache) flushSlot(ctx context.Context, s *slot, id string) error {
	if s.entry == nil || !s.dirty() {
		return nil
	}
	payload, err := c.encode(s.entry)
	if err != nil {
		return err
	}
	return c.persist(ctx, s, id, payload, s.version.Add(1))
}

// PurgeMemoryCache drops the memory copy of id after making sure the disk
// copy is current. If that write fails the memory copy is kept and the
// error returned.
func (c *Cache) PurgeMemoryCache(ctx context.Context, id string) error {
	return c.observed(ctx, OpPurge, id, func(ctx context.Context) error {
		release, err := c.begin(id)
		if err != nil {
			return err
		}
		defer release()

		s := c.acquire(id, false)
		if s == nil {
			return nil
		}
		defer c.releaseSlot(id, s)
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := c.flushSlot(ctx, s, id); err != nil {
			return fmt.Errorf("cache: flush before purge: %w", err)
		}
		s.entry = nil
		return nil
	})
}

// ClearEntry removes id from memory and from the store. Writes scheduled
// before the clear are discarded.
func (c *Cache) ClearEntry(ctx context.Context, id string) error {
	return c.observed(ctx, OpClear, id, func(ctx context.Context) error {
		release, err := c.begin(id)
		if err != nil {
			return err
		}
		defer release()

		s := c.acquire(id, true)
		defer c.releaseSlot(id, s)
		s.mu.Lock()
		defer s.mu.Unlock()

		s.entry = nil
		version := s.version.Add(1)

		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		err = c.exec.Execute(ctx, func(ctx context.Context) error {
			return c.store.Delete(ctx, id)
		})
		if err != nil {
			return fmt.Errorf("cache: delete persisted entry: %w", err)
		}
		s.written.Store(version)
		c.counters.clears.Add(1)
		return nil
	})
}

// IsResident reports whether id currently has a memory copy.
func (c *Cache) IsResident(id string) bool {
	s := c.acquire(id, false)
	if s == nil {
		return false
	}
	defer c.releaseSlot(id, s)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entry != nil
}

// FlushAll synchronously rewrites every resident entry whose last write
// failed or is still pending.
func (c *Cache) FlushAll(ctx context.Context) error {
	c.lifecycle.RLock()
	defer c.lifecycle.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return c.flushAll(ctx)
}

func (c *Cache) flushAll(ctx context.Context) error {
	return c.observed(ctx, OpFlushAll, "", func(ctx context.Context) error {
		var errs []error
		for _, id := range c.ids() {
			s := c.acquire(id, false)
			if s == nil {
				continue
			}
			s.mu.Lock()
			if err := c.flushSlot(ctx, s, id); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
			}
			s.mu.Unlock()
			c.releaseSlot(id, s)
		}
		return errors.Join(errs...)
	})
}

func (c *Cache) ids() []string {
	c.mu.Lock()
	ids := make([]string, 0, len(c.slots))
	for id := range c.slots {
		ids = append(ids, id)
	}
	c.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Wait blocks until every scheduled background write has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close stops accepting operations, waits for background writes and, when
// the policy asks for it, rewrites entries whose last write failed. The
// store is not closed.
func (c *Cache) Close(ctx context.Context) error {
	c.lifecycle.Lock()
	if c.closed {
		c.lifecycle.Unlock()
		return nil
	}
	c.closed = true
	c.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if c.flushOnClose {
		return c.flushAll(ctx)
	}
	return nil
}
