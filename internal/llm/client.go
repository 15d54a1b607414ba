package llm

import (
	"context"
	"errors"
	"net/http"
)

// backend is the vendor-specific half of a Client: it turns a Request into
// an SDK call for an already resolved model and reads the reply back.
type backend interface {
	send(ctx context.Context, model string, req Request) (*Response, error)

	// status extracts the HTTP status from an SDK error.
	status(err error) (int, bool)
}

// Client is a Provider for one vendor. It resolves model names, checks
// structured replies and classifies failures; the backend does the rest.
type Client struct {
	name    string
	model   string
	aliases map[string]string
	api     backend
}

func newClient(name, model string, aliases map[string]string, api backend) *Client {
	return &Client{name: name, model: resolveModel(model, aliases), aliases: aliases, api: api}
}

// Name is the provider name used in configuration and the request log.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) ModelID() string {
	return c.model
}

// modelFor picks the model for req: its override, resolved through the
// provider's friendly names, or the default.
func (c *Client) modelFor(req Request) string {
	if req.Model != "" {
		return resolveModel(req.Model, c.aliases)
	}
	return c.model
}

func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.api.send(ctx, c.modelFor(req), req)
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			perr.Provider = c.name
			return nil, perr
		}
		return nil, c.classify(err)
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &ProviderError{Provider: c.name, Kind: ErrTruncated, Content: resp.Content}
	}
	if err := req.Schema.Check(resp.Content); err != nil {
		return nil, &ProviderError{Provider: c.name, Kind: ErrInvalidResponse, Content: resp.Content, Err: err}
	}
	return resp, nil
}

func (c *Client) classify(err error) error {
	kind := ErrUnavailable
	if code, ok := c.api.status(err); ok && code == http.StatusTooManyRequests {
		kind = ErrRateLimited
	}
	return &ProviderError{Provider: c.name, Kind: kind, Err: err}
}
