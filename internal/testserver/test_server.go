package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ganot/punchlist/internal/app"
	"github.com/ganot/punchlist/internal/mcp"
	"github.com/ganot/punchlist/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full HTTP stack over an ephemeral app.
type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Token  string
}

// New starts a server that requires token as a bearer token. An empty token
// disables auth.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	a, err := app.Open(context.Background(), app.Options{Ephemeral: true})
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      a.Services(),
		TransportMode: "http",
		Version:       "test",
	})

	var auth func(http.Handler) http.Handler
	if token != "" {
		auth = transport.BearerAuth(token)
	}
	server := httptest.NewServer(transport.NewServer(transport.NewMCPHandler(mcpServer), auth, nil))

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, Token: token}
}

// Connect opens an MCP client session over streamable HTTP.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := ts.Server.Client()
	if ts.Token != "" {
		httpClient = &http.Client{Transport: &bearerTransport{token: ts.Token, base: ts.Server.Client().Transport}}
	}

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}
