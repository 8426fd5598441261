package main

import "golang.org/x/sync/errgroup"

// Run executes the serve command. The HTTP server and the Kafka consumer
// run until the context is canceled or either fails.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" {
		addr = deps.Config.HTTP.Addr
	}

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return deps.Server.ListenAndServe(ctx, addr)
	})
	if deps.Consumer != nil && !c.NoKafka {
		g.Go(func() error {
			return deps.Consumer.Run(ctx)
		})
	} else {
		deps.Logger.Info("kafka consumer disabled")
	}
	return g.Wait()
}

