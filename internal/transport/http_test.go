package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

type echoOutput struct {
	Text string `json:"text"`
}

func newEchoServer() *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "echo", Version: "v0.0.1"}, nil)
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: "echo", Description: "echo text"},
		func(_ context.Context, _ *sdkmcp.CallToolRequest, in echoInput) (*sdkmcp.CallToolResult, echoOutput, error) {
			return nil, echoOutput{Text: in.Text}, nil
		})
	return server
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(NewMCPHandler(newEchoServer()), BearerAuth("secret"), nil))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MCPRequiresToken(t *testing.T) {
	server := httptest.NewServer(NewServer(NewMCPHandler(newEchoServer()), BearerAuth("secret"), nil))
	t.Cleanup(server.Close)

	body := strings.NewReader(`{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	req, err := http.NewRequest(http.MethodPost, server.URL+"/mcp", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPServer_StreamableSession(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(NewServer(NewMCPHandler(newEchoServer()), nil, nil))
	t.Cleanup(server.Close)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: server.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer session.Close()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "hello"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, map[string]any{"text": "hello"}, result.StructuredContent)
}
