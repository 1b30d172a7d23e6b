package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/accountkit/auth"
	"github.com/jonwraymond/accountkit/cache"
	"github.com/jonwraymond/accountkit/observe"
	"github.com/jonwraymond/accountkit/record"
)

// Coordinator keeps the authority, the secondary storage and the cache in
// step for every account operation.
//
// Contract:
// - Concurrency: safe for concurrent use; per-account ordering is the
//   cache's.
// - Errors: authority and secondary failures are returned before the cache
//   is touched, so the cache never runs ahead of the source of truth.
type Coordinator struct {
	service   Service
	secondary SecondaryStorage
	cache     *cache.Cache
	keys      record.KeySet
	defaults  *record.Defaults
	authn     auth.Authenticator
	claims    ClaimMapping
	mw        *observe.Middleware
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithSecondary stores unsupported attributes in s.
func WithSecondary(s SecondaryStorage) Option {
	return func(c *Coordinator) error {
		c.secondary = s
		return nil
	}
}

// WithKeys adds integrator keys to the standard catalogue.
func WithKeys(keys ...record.AnyKey) Option {
	return func(c *Coordinator) error {
		for _, k := range keys {
			if err := c.keys.Add(k); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithAuthenticator enables token sign-in, mapping claims with m.
func WithAuthenticator(a auth.Authenticator, m ClaimMapping) Option {
	return func(c *Coordinator) error {
		c.authn = a
		c.claims = m
		return nil
	}
}

// WithMiddleware instruments coordinator operations.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(c *Coordinator) error {
		c.mw = mw
		return nil
	}
}

// NewCoordinator creates a coordinator over service and c.
func NewCoordinator(service Service, c *cache.Cache, opts ...Option) (*Coordinator, error) {
	if service == nil || c == nil {
		return nil, errors.New("account: service and cache are required")
	}
	co := &Coordinator{
		service: service,
		cache:   c,
		keys:    Keys(),
		mw:      observe.NopMiddleware(),
	}
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return nil, fmt.Errorf("account: %w", err)
		}
	}
	co.defaults = record.DefaultsFor(co.keys)
	return co, nil
}

// Keys returns the catalogue the coordinator loads with.
func (c *Coordinator) Keys() record.KeySet {
	return c.keys
}

func (c *Coordinator) run(ctx context.Context, name, id string, fn observe.OpFunc) error {
	return c.mw.Run(ctx, observe.Op{Component: "account", Name: name, AccountID: id}, fn)
}

// SignUp creates an account at the authority and caches the combined
// details, marked with IsNewUser.
func (c *Coordinator) SignUp(ctx context.Context, creds Credentials, details record.Snapshot) (record.Snapshot, error) {
	var out record.Snapshot
	err := c.run(ctx, "sign_up", "", func(ctx context.Context) error {
		created, err := c.service.SignUp(ctx, creds, details)
		if err != nil {
			return err
		}
		id, ok := UserID.Get(created)
		if !ok {
			return ErrMissingUserID
		}

		_, extra := Split(details, c.service.SupportedKeys())
		out = created.Builder().Merge(extra, false).Set(IsNewUser.Bind(true)).Build()
		_, err = c.supply(ctx, id, out)
		return err
	})
	return out, err
}

// Login verifies creds with the authority and refreshes the cache with the
// authority's details and any secondary attributes.
func (c *Coordinator) Login(ctx context.Context, creds Credentials) (record.Snapshot, error) {
	var out record.Snapshot
	err := c.run(ctx, "login", "", func(ctx context.Context) error {
		details, err := c.service.Login(ctx, creds)
		if err != nil {
			return err
		}
		id, ok := UserID.Get(details)
		if !ok {
			return ErrMissingUserID
		}

		if c.secondary != nil {
			extra, err := c.secondary.Load(ctx, id, c.keys)
			switch {
			case err == nil:
				details = details.Builder().Merge(extra, false).Build()
			case !errors.Is(err, ErrNotFound):
				return fmt.Errorf("account: load secondary: %w", err)
			}
		}

		if _, err := c.cache.CommunicateRemoteChanges(ctx, id, details); err != nil {
			return err
		}
		out = details
		return nil
	})
	return out, err
}

// Authenticate verifies token, merges the identity's claims into the
// account's cached details and returns ctx carrying the identity.
func (c *Coordinator) Authenticate(ctx context.Context, token string) (context.Context, record.Snapshot, error) {
	if c.authn == nil {
		return ctx, record.Empty(), ErrNoAuthenticator
	}
	var (
		identity *auth.Identity
		out      record.Snapshot
	)
	err := c.run(ctx, "authenticate", "", func(ctx context.Context) error {
		var err error
		identity, err = c.authn.Authenticate(ctx, token)
		if err != nil {
			return err
		}
		details := DetailsFromIdentity(identity, c.claims)
		if _, err := c.supply(ctx, identity.Principal, details); err != nil {
			return err
		}
		out, err = c.Load(ctx, identity.Principal)
		return err
	})
	if err != nil {
		return ctx, record.Empty(), err
	}
	return auth.WithIdentity(ctx, identity), out, nil
}

// Supply records details that came from the source of truth: the
// unsupported part goes to the secondary storage and everything to the
// cache.
func (c *Coordinator) Supply(ctx context.Context, userID string, details record.Snapshot) (*cache.Flush, error) {
	var flush *cache.Flush
	err := c.run(ctx, "supply", userID, func(ctx context.Context) error {
		var err error
		flush, err = c.supply(ctx, userID, details)
		return err
	})
	return flush, err
}

func (c *Coordinator) supply(ctx context.Context, userID string, details record.Snapshot) (*cache.Flush, error) {
	if c.secondary != nil {
		_, extra := Split(details, c.service.SupportedKeys())
		if extra = durable(extra); !extra.IsEmpty() {
			if err := c.secondary.Store(ctx, userID, extra); err != nil {
				return nil, fmt.Errorf("account: store secondary: %w", err)
			}
		}
	}
	return c.cache.CommunicateRemoteChanges(ctx, userID, details)
}

// Modify pushes mod to the authority and the secondary storage, then to the
// cache. When the account has no local entry only the collaborators are
// updated and the returned Flush is nil.
func (c *Coordinator) Modify(ctx context.Context, userID string, mod record.Modification) (*cache.Flush, error) {
	var flush *cache.Flush
	err := c.run(ctx, "modify", userID, func(ctx context.Context) error {
		primary, extra := SplitModification(mod, c.service.SupportedKeys())
		if !primary.IsEmpty() {
			if err := c.service.Update(ctx, userID, primary); err != nil {
				return err
			}
		}
		if c.secondary != nil && !extra.IsEmpty() {
			if err := c.secondary.Modify(ctx, userID, extra); err != nil {
				return fmt.Errorf("account: modify secondary: %w", err)
			}
		}

		var err error
		flush, err = c.cache.CommunicateModifications(ctx, userID, mod)
		if errors.Is(err, cache.ErrEntryNotFound) {
			return nil
		}
		return err
	})
	return flush, err
}

// Load returns the cached details for userID with catalogue defaults
// filled in.
func (c *Coordinator) Load(ctx context.Context, userID string) (record.Snapshot, error) {
	snap, ok := c.cache.LoadEntry(ctx, userID, c.keys)
	if !ok {
		return record.Empty(), fmt.Errorf("%w: %s", ErrNotFound, userID)
	}
	return record.NewBuilder(record.WithDefaults(c.defaults)).Merge(snap, true).Build(), nil
}

// Current loads the account of the identity carried by ctx.
func (c *Coordinator) Current(ctx context.Context) (record.Snapshot, error) {
	id := auth.PrincipalFromContext(ctx)
	if id == "" {
		return record.Empty(), auth.ErrMissingCredentials
	}
	return c.Load(ctx, id)
}

// Logout ends the authority session and drops the memory copy. The
// persisted entry stays for offline reads.
func (c *Coordinator) Logout(ctx context.Context, userID string) error {
	return c.run(ctx, "logout", userID, func(ctx context.Context) error {
		if err := c.service.Logout(ctx, userID); err != nil {
			return err
		}
		return c.cache.PurgeMemoryCache(ctx, userID)
	})
}

// Delete removes the account everywhere.
func (c *Coordinator) Delete(ctx context.Context, userID string) error {
	return c.run(ctx, "delete", userID, func(ctx context.Context) error {
		if err := c.service.Delete(ctx, userID); err != nil {
			return err
		}
		if c.secondary != nil {
			if err := c.secondary.Delete(ctx, userID); err != nil {
				return fmt.Errorf("account: delete secondary: %w", err)
			}
		}
		return c.cache.ClearEntry(ctx, userID)
	})
}

// durable drops transient bindings.
func durable(s record.Snapshot) record.Snapshot {
	b := s.Builder()
	for _, k := range s.Keys() {
		if k.Transient() {
			b.Remove(k)
		}
	}
	return b.Build()
}
