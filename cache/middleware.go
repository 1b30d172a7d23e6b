package cache

import (
	"context"

	"github.com/jonwraymond/accountkit/observe"
)

// Operation names reported to the observer.
const (
	OpLoad     = "load"
	OpRemote   = "remote_changes"
	OpModify   = "modifications"
	OpPurge    = "purge"
	OpClear    = "clear"
	OpPersist  = "persist"
	OpPromote  = "promote"
	OpFlushAll = "flush_all"
)

// op describes a cache operation on one account.
func (c *Cache) op(name, id string) observe.Op {
	return observe.Op{Component: "cache", Name: name, AccountID: id, Store: c.store.Kind()}
}

// observed runs fn inside the observer middleware.
func (c *Cache) observed(ctx context.Context, name, id string, fn observe.OpFunc) error {
	return c.mw.Run(ctx, c.op(name, id), fn)
}

// log returns the logger scoped to an operation.
func (c *Cache) log(name, id string) observe.Logger {
	return c.logger.WithOp(c.op(name, id))
}
