package statsmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func setupTestClient(t *testing.T) *Client {
	t.Helper()
	server := mcp.NewServer(&mcp.Implementation{Name: "stats-test", Version: "test"}, nil)
	registerStatsTools(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session, err := server.Connect(ctx, serverTransport, nil)
		if err != nil {
			ready <- err
			return
		}
		ready <- nil
		<-ctx.Done()
		_ = session.Close()
	}()

	originalBuilder := transportBuilder
	transportBuilder = func(endpoint string) (mcp.Transport, error) {
		return clientTransport, nil
	}
	client := New("inmemory")
	t.Cleanup(func() {
		transportBuilder = originalBuilder
		_ = client.Close()
		cancel()
		<-done
		if err := <-ready; err != nil {
			t.Errorf("server connect failed: %v", err)
		}
	})
	return client
}

func registerStatsTools(server *mcp.Server) {
	server.AddTool(&mcp.Tool{
		Name:        "get_roster",
		Description: "Current roster for a team",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"team": {Type: "string"},
			},
			Required: []string{"team"},
		},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var payload map[string]string
		if err := json.Unmarshal(req.Params.Arguments, &payload); err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: "roster:" + payload["team"]},
				&mcp.TextContent{Text: "40-man"},
			},
		}, nil
	})

	server.AddTool(&mcp.Tool{
		Name:        "get_standings",
		Description: "League standings",
		InputSchema: &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}},
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "standings feed is down"}},
		}, nil
	})
}

func TestFetchCatalog_NormalizesDescriptors(t *testing.T) {
	client := setupTestClient(t)

	catalog, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(catalog))
	}
	byName := map[string]ToolDescriptor{}
	for _, d := range catalog {
		byName[d.Name] = d
	}
	roster, ok := byName["get_roster"]
	if !ok {
		t.Fatalf("get_roster missing: %+v", catalog)
	}
	if roster.Description != "Current roster for a team" {
		t.Errorf("description: got %q", roster.Description)
	}
	var schema map[string]any
	if err := json.Unmarshal(roster.InputSchema, &schema); err != nil {
		t.Fatalf("schema should be valid JSON: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("unexpected schema: %+v", schema)
	}
}

func TestFetchCatalog_IdempotentForUnchangedServer(t *testing.T) {
	client := setupTestClient(t)

	first, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("catalogs differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCallTool_FlattensTextContentInOrder(t *testing.T) {
	client := setupTestClient(t)

	text, isErr, err := client.CallTool(context.Background(), "get_roster", json.RawMessage(`{"team":"Nationals"}`))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if isErr {
		t.Fatal("unexpected tool error")
	}
	if text != "roster:Nationals\n40-man" {
		t.Errorf("flattened text: got %q", text)
	}
}

func TestCallTool_ServerSideToolFailure(t *testing.T) {
	client := setupTestClient(t)

	text, isErr, err := client.CallTool(context.Background(), "get_standings", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected transport err: %v", err)
	}
	if !isErr {
		t.Fatal("expected isError for failing tool")
	}
	if text != "standings feed is down" {
		t.Errorf("failure text: got %q", text)
	}
}

func TestFetchCatalog_ConnectFailure(t *testing.T) {
	originalBuilder := transportBuilder
	transportBuilder = func(endpoint string) (mcp.Transport, error) {
		return failingTransport{}, nil
	}
	t.Cleanup(func() { transportBuilder = originalBuilder })

	client := New("http://unreachable/sse")
	_, err := client.FetchCatalog(context.Background())
	if !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("want ErrCatalogUnavailable, got %v", err)
	}
}

func TestNew_EmptyEndpoint(t *testing.T) {
	client := New("")
	if _, err := client.FetchCatalog(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("want ErrCatalogUnavailable for empty endpoint, got %v", err)
	}
}

type failingTransport struct{}

func (failingTransport) Connect(context.Context) (mcp.Connection, error) {
	return nil, fmt.Errorf("connect failed")
}
