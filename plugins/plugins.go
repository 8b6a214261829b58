package plugins

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Yamashou/gqlhint/client"
	"github.com/Yamashou/gqlhint/config"
	"github.com/Yamashou/gqlhint/plugins/cachehint"
)

// Plugin is a stage of the client pipeline.
type Plugin interface {
	Name() string
	Middleware(next client.Handler) client.Handler
}

var _ Plugin = (*cachehint.Plugin)(nil)

// New returns the stages enabled by cfg, outermost first. cfg.LoadSchema must have been called.
func New(cfg *config.Config, logger *zap.Logger) []Plugin {
	return []Plugin{
		cachehint.NewWithSchema(cfg.GraphQLSchema, cachehint.Config{Debug: cfg.Debug, Logger: logger}),
	}
}

// Middlewares adapts plugins for client.WithMiddleware.
func Middlewares(plugins []Plugin) []client.Middleware {
	middlewares := make([]client.Middleware, 0, len(plugins))
	for _, plugin := range plugins {
		middlewares = append(middlewares, plugin.Middleware)
	}

	return middlewares
}

// Chain wraps last in plugins, the first plugin being the outermost.
func Chain(plugins []Plugin, last client.Handler) client.Handler {
	handler := last
	for _, plugin := range slices.Backward(plugins) {
		handler = plugin.Middleware(handler)
	}

	return handler
}
