// Package statsmcp talks to the remote baseball statistics MCP server.
//
// It covers two operations: listing the tool catalog and invoking a named
// tool. The SSE session is established lazily on first use and reused for the
// client's lifetime.
package statsmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrCatalogUnavailable signals that the tool catalog could not be fetched or
// was malformed. Fatal to the tool-using strategy only.
var ErrCatalogUnavailable = errors.New("tool catalog unavailable")

// ToolDescriptor is the normalized name/description/schema triple used by the
// rest of the system.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// transportBuilder is overridden in tests to stub the SSE transport.
var transportBuilder = func(endpoint string) (mcp.Transport, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("statsmcp: server endpoint is empty")
	}
	return &mcp.SSEClientTransport{Endpoint: endpoint}, nil
}

// Client is a lazily connected MCP client for one stats server endpoint.
type Client struct {
	endpoint string
	impl     *mcp.Client

	once       sync.Once
	session    *mcp.ClientSession
	connectErr error
}

func New(endpoint string) *Client {
	impl := mcp.NewClient(&mcp.Implementation{Name: "mlbchat", Version: "dev"}, nil)
	return &Client{endpoint: endpoint, impl: impl}
}

func (c *Client) ensureConnected(ctx context.Context) error {
	c.once.Do(func() {
		transport, err := transportBuilder(c.endpoint)
		if err != nil {
			c.connectErr = err
			return
		}
		session, err := c.impl.Connect(ctx, transport, nil)
		if err != nil {
			c.connectErr = fmt.Errorf("connect %s: %w", c.endpoint, err)
			return
		}
		c.session = session
	})
	return c.connectErr
}

// FetchCatalog lists the server's tools and normalizes each descriptor.
// A fetch against an unchanged server yields structurally identical catalogs.
func (c *Client) FetchCatalog(ctx context.Context) ([]ToolDescriptor, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	var catalog []ToolDescriptor
	for tool, err := range c.session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		desc, err := normalize(tool)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		catalog = append(catalog, desc)
	}
	return catalog, nil
}

func normalize(tool *mcp.Tool) (ToolDescriptor, error) {
	if tool == nil || tool.Name == "" {
		return ToolDescriptor{}, fmt.Errorf("descriptor is missing a tool name")
	}
	schema, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return ToolDescriptor{}, fmt.Errorf("tool %s: bad input schema: %v", tool.Name, err)
	}
	return ToolDescriptor{Name: tool.Name, Description: tool.Description, InputSchema: schema}, nil
}

// CallTool invokes a named tool with raw JSON arguments and returns the
// flattened text of the result. isError reports a tool-level failure the
// server chose to surface as a result rather than a protocol error.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (text string, isError bool, err error) {
	if err := c.ensureConnected(ctx); err != nil {
		return "", false, err
	}
	params := &mcp.CallToolParams{Name: name}
	if len(args) > 0 {
		params.Arguments = args
	}
	result, err := c.session.CallTool(ctx, params)
	if err != nil {
		return "", false, fmt.Errorf("call %s: %w", name, err)
	}
	return flattenContent(result.Content), result.IsError, nil
}

// flattenContent joins text blocks in order; non-text blocks are carried as
// their JSON form so nothing the server returned is dropped.
func flattenContent(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, item := range content {
		switch v := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if b, err := json.Marshal(item); err == nil {
				parts = append(parts, string(b))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Close shuts down the underlying session, if any.
func (c *Client) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}
