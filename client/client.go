package client

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/Yamashou/gqlhint/graphqljson"
)

type Client struct {
	client      *http.Client
	header      http.Header
	endpoint    string
	middlewares []Middleware
}

// NewClient creates a new http client wrapper.
func NewClient(endpoint string, options ...Option) *Client {
	client := &Client{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}

	return client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.client = httpClient
	}
}

func WithHTTPHeader(header http.Header) Option {
	return func(c *Client) {
		c.header = header
	}
}

// WithMiddleware appends stages to the pipeline. The first registered stage sees operations first.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// Handler processes an operation and returns the server response.
type Handler func(ctx context.Context, op *Operation) (*Response, error)

// Middleware wraps the next stage of the pipeline. Stages must not mutate the operation they
// receive; they pass a copy (see Operation.WithContext) to next instead.
type Middleware func(next Handler) Handler

// NewOperation parses query and builds an operation bound to the client's endpoint and headers.
func (c *Client) NewOperation(operationName, query string, variables map[string]any, options ...OperationOption) (*Operation, error) {
	op, err := NewOperation(operationName, query, variables)
	if err != nil {
		return nil, err
	}

	op.Context.URL = c.endpoint
	op.Context.Header = c.header.Clone()
	for _, option := range options {
		option(op)
	}

	return op, nil
}

// Do sends op through the middlewares and then to the server. GraphQL errors are left in the
// response; only transport and HTTP failures are returned as errors.
func (c *Client) Do(ctx context.Context, op *Operation) (*Response, error) {
	return c.handler()(ctx, op)
}

func (c *Client) handler() Handler {
	handler := c.send
	for _, middleware := range slices.Backward(c.middlewares) {
		handler = middleware(handler)
	}

	return handler
}

func (c *Client) send(ctx context.Context, op *Operation) (*Response, error) {
	req, err := NewRequest(ctx, op.Context.URL, op.Name, op.Query, op.Variables)
	if err != nil {
		return nil, fmt.Errorf("failed to create post request: %w", err)
	}
	for key, values := range op.Context.Header {
		req.Header[key] = values
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	res, err := ParseResponse(resp)
	if err != nil {
		return nil, err
	}
	res.Operation = op

	return res, nil
}

// Post sends a single operation and decodes its data into out. GraphQL errors are returned after
// whatever data came with them has been decoded.
func (c *Client) Post(ctx context.Context, operationName, query string, variables map[string]any, out any, options ...OperationOption) error {
	op, err := c.NewOperation(operationName, query, variables, options...)
	if err != nil {
		return err
	}

	resp, err := c.Do(ctx, op)
	if err != nil {
		return err
	}

	if err := graphqljson.UnmarshalData(resp.Data, out); err != nil {
		if !graphqljson.IsNoData(err) || len(resp.Errors) == 0 {
			return err
		}
	}

	if len(resp.Errors) > 0 {
		return resp.Errors
	}

	return nil
}
