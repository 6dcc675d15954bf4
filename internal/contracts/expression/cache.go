// Package expression is a thin integration harness showing how an
// expression engine would sit on top of cache/concurrent: two independent
// caches, one for parsed expressions and one for parsed templates, each
// keyed by source text and populated through GetOrCompute so concurrent
// parses of the same source are coalesced.
//
// Parsing itself is out of scope here; Parser is the minimal abstraction
// this package depends on, supplied by the caller.
package expression

import (
	"context"

	"github.com/vanyastaff/nebula-memcache/cache/concurrent"
)

// Parser turns source text into a parsed form. Implementations are
// expected to be pure functions of their input: GetOrCompute may invoke
// Parse concurrently for distinct keys, and at most once at a time for a
// given key.
type Parser interface {
	ParseExpression(ctx context.Context, source string) (any, error)
	ParseTemplate(ctx context.Context, source string) (any, error)
}

// Cache wraps two cache/concurrent.Cache[string, any] instances behind a
// parser, one for expressions and one for templates.
type Cache struct {
	expressions concurrent.Cache[string, any]
	templates   concurrent.Cache[string, any]
}

// NewExpressionCache constructs a Cache with independent capacities for
// expressions and templates, mirroring a with_cache_sizes-style
// constructor: callers size each pool according to its own churn.
func NewExpressionCache(parser Parser, exprCapacity, templateCapacity int) *Cache {
	return &Cache{
		expressions: concurrent.New[string, any](concurrent.Config[string, any]{
			Capacity: exprCapacity,
			Loader: func(ctx context.Context, source string) (any, error) {
				return parser.ParseExpression(ctx, source)
			},
		}),
		templates: concurrent.New[string, any](concurrent.Config[string, any]{
			Capacity: templateCapacity,
			Loader: func(ctx context.Context, source string) (any, error) {
				return parser.ParseTemplate(ctx, source)
			},
		}),
	}
}

// GetExpression returns the parsed form of source, parsing and caching it
// on a miss.
func (c *Cache) GetExpression(ctx context.Context, source string) (any, error) {
	return c.expressions.GetOrCompute(ctx, source)
}

// GetTemplate returns the parsed form of source, parsing and caching it on
// a miss.
func (c *Cache) GetTemplate(ctx context.Context, source string) (any, error) {
	return c.templates.GetOrCompute(ctx, source)
}

// InvalidateExpression drops a cached expression, e.g. after a source hot
// reload.
func (c *Cache) InvalidateExpression(source string) bool { return c.expressions.Remove(source) }

// InvalidateTemplate drops a cached template.
func (c *Cache) InvalidateTemplate(source string) bool { return c.templates.Remove(source) }

// Len returns the combined resident entry count across both caches.
func (c *Cache) Len() int { return c.expressions.Len() + c.templates.Len() }

// Close releases both underlying caches.
func (c *Cache) Close() error {
	err1 := c.expressions.Close()
	err2 := c.templates.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
