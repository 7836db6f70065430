package application

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// flightGroup joins concurrent calls for the same key into one execution.
// Every caller can leave on its own context; the shared execution runs on a
// context that is canceled once no caller is waiting for it.
type flightGroup struct {
	group singleflight.Group

	mu    sync.Mutex
	calls map[string]*sharedCall
}

type sharedCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func newFlightGroup() *flightGroup {
	return &flightGroup{calls: make(map[string]*sharedCall)}
}

func (g *flightGroup) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	c := g.join(ctx, key)
	ch := g.group.DoChan(key, func() (any, error) { return fn(c.ctx) })
	select {
	case res := <-ch:
		g.leave(key, c)
		return res.Val, res.Err
	case <-ctx.Done():
		g.leave(key, c)
		return nil, ctx.Err()
	}
}

// join registers a waiter. The first waiter creates the shared context; it
// keeps the caller's values but not its deadline or cancellation.
func (g *flightGroup) join(ctx context.Context, key string) *sharedCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		c.waiters++
		return c
	}
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &sharedCall{ctx: sctx, cancel: cancel, waiters: 1}
	g.calls[key] = c
	return c
}

// leave drops a waiter. The last one out cancels the shared context and makes
// singleflight forget the key, so a later caller starts a fresh execution
// instead of joining a canceled one.
func (g *flightGroup) leave(key string, c *sharedCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.waiters--
	if c.waiters > 0 {
		return
	}
	c.cancel()
	if g.calls[key] == c {
		delete(g.calls, key)
		g.group.Forget(key)
	}
}
