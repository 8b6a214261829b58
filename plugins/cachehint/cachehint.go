// Package cachehint is a client pipeline stage that adds list element types to the invalidation
// hints of every operation.
//
// A normalised cache can only invalidate a list it knows the element type of. When a query
// selects a list that is empty, or whose elements are of a type the response never names, a later
// mutation of that type would leave the list stale. The stage detects the element types of every
// list the query selects (see package listtypes) and appends them to the operation's
// AdditionalTypenames, trading cache precision for correctness.
package cachehint

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Yamashou/gqlhint/client"
	"github.com/Yamashou/gqlhint/introspection"
	"github.com/Yamashou/gqlhint/listtypes"
)

const tracerName = "github.com/Yamashou/gqlhint/plugins/cachehint"

var errNoSchema = errors.New("schema is required")

var _ client.Middleware = (&Plugin{}).Middleware

// Config holds the options of the stage.
type Config struct {
	// Schema is an introspection payload, full or minified.
	Schema []byte
	// Debug logs the detected typenames of every operation.
	Debug  bool
	Logger *zap.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Plugin detects list element types of outgoing operations.
type Plugin struct {
	schema *ast.Schema
	debug  bool
	logger *zap.Logger
	tracer trace.Tracer
}

// New builds the stage. A schema that cannot be loaded is an error here, before any operation
// is processed.
func New(cfg Config) (*Plugin, error) {
	if len(cfg.Schema) == 0 {
		return nil, errNoSchema
	}

	schema, err := introspection.LoadSchema("cachehint", cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	return NewWithSchema(schema, cfg), nil
}

// NewWithSchema builds the stage from an already loaded schema; cfg.Schema is ignored.
func NewWithSchema(schema *ast.Schema, cfg Config) *Plugin {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Plugin{
		schema: schema,
		debug:  cfg.Debug,
		logger: logger,
		tracer: tp.Tracer(tracerName),
	}
}

// Name returns the name of the stage.
func (p *Plugin) Name() string {
	return "cachehint"
}

// Middleware implements client.Middleware.
func (p *Plugin) Middleware(next client.Handler) client.Handler {
	return func(ctx context.Context, op *client.Operation) (*client.Response, error) {
		if op.Document == nil {
			return next(ctx, op)
		}

		opCtx := op.Context.Clone()
		opCtx.AdditionalTypenames = p.Detect(ctx, op)

		return next(ctx, op.WithContext(opCtx))
	}
}

// Detect returns the operation's existing hints followed by the list element types of its query.
func (p *Plugin) Detect(ctx context.Context, op *client.Operation) []string {
	_, span := p.tracer.Start(ctx, "cachehint.detect", trace.WithAttributes(
		attribute.String("graphql.operation.name", op.Name),
		attribute.String("graphql.operation.type", string(op.Kind)),
	))
	defer span.End()

	typenames := listtypes.Detect(p.schema, op.Document, op.Context.AdditionalTypenames)

	span.SetAttributes(attribute.Int("cachehint.typenames", len(typenames)))
	if p.debug {
		p.logger.Debug("detected list types",
			zap.String("operation", op.Name),
			zap.String("kind", string(op.Kind)),
			zap.String("key", op.Key),
			zap.Strings("typenames", typenames),
		)
	}

	return typenames
}
