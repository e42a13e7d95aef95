package graphqlmcp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SSETransportManager manages SSE transports for MCP servers
type SSETransportManager struct {
	transports map[string]*mcp.Server
	mu         sync.RWMutex
}

// NewSSETransportManager creates a new transport manager
func NewSSETransportManager() *SSETransportManager {
	return &SSETransportManager{
		transports: make(map[string]*mcp.Server),
	}
}

// GetOrCreateServer gets an existing server or creates a new one for the session
func (tm *SSETransportManager) GetOrCreateServer(sessionID string, createServer func() (*mcp.Server, error)) (*mcp.Server, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if server, exists := tm.transports[sessionID]; exists {
		return server, nil
	}

	server, err := createServer()
	if err != nil {
		return nil, err
	}

	tm.transports[sessionID] = server
	return server, nil
}

// RemoveServer removes a server from the manager
func (tm *SSETransportManager) RemoveServer(sessionID string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.transports, sessionID)
}

// HTTPServer wraps an MCP server to be served over HTTP with SSE support
type HTTPServer struct {
	transportManager *SSETransportManager
	createServer     func() (*mcp.Server, error)
	timeout          time.Duration
}

// NewHTTPServer creates a new HTTP server wrapper for MCP
func NewHTTPServer(createServer func() (*mcp.Server, error)) *HTTPServer {
	return &HTTPServer{
		transportManager: NewSSETransportManager(),
		createServer:     createServer,
		timeout:          30 * time.Second,
	}
}

// SetTimeout sets the request timeout
func (h *HTTPServer) SetTimeout(timeout time.Duration) {
	h.timeout = timeout
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Handle CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Mcp-Session-Id")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// Use the streamable handler for all requests
	// This handles both GET (SSE) and POST (MCP messages) automatically
	handler := mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			// Get or create server for this request
			sessionID := r.URL.Query().Get("sessionId")
			if sessionID == "" {
				sessionID = fmt.Sprintf("session_%d", time.Now().UnixNano())
			}

			server, err := h.transportManager.GetOrCreateServer(sessionID, h.createServer)
			if err != nil {
				log.Printf("Failed to create MCP server for session %s: %v", sessionID, err)
				return nil
			}
			return server
		},
		nil,
	)

	// Delegate to the MCP handler
	handler.ServeHTTP(w, r)
}

// Note: We now use the MCP SDK's built-in StreamableHTTPHandler
// which handles all the HTTP transport details including SSE support

// GetMux builds the legacy single-shot entry point's HTTP routes. MCP
// request/response bodies over this mux share the MCPRequest/MCPResponse/
// MCPError shapes http_client.go's HTTPMCPClient also uses.
func GetMux(server *MCPGraphQLServer) *http.ServeMux {
	// Create a mux for routing
	mux := http.NewServeMux()

	// MCP endpoint using the streamable handler
	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			return server.GetMCPServer()
		},
		nil,
	)
	mux.Handle("/mcp", mcpHandler)

	// Add a health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "graphql-mcp-server",
		})
	})

	// Add a schema endpoint to view the GraphQL schema
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		schema := server.GetSchema()
		response := map[string]interface{}{
			"schema": schema,
			"sdl":    schema.GetSchemaSDL(),
		}
		json.NewEncoder(w).Encode(response)
	})

	// Add a tools endpoint to list available MCP tools
	mux.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		// Get available tools from the schema
		queries := server.GetSchema().GetQueries()
		mutations := server.GetSchema().GetMutations()

		tools := make([]map[string]interface{}, 0, len(queries)+len(mutations))

		// Add query tools
		for _, query := range queries {
			inputSchema := server.createInputSchema(query)
			tools = append(tools, map[string]interface{}{
				"name":        "query_" + query.Name,
				"description": query.Description,
				"type":        "query",
				"inputSchema": inputSchema,
			})
		}

		// Add mutation tools
		for _, mutation := range mutations {
			inputSchema := server.createInputSchema(mutation)
			tools = append(tools, map[string]interface{}{
				"name":        "mutation_" + mutation.Name,
				"description": mutation.Description,
				"type":        "mutation",
				"inputSchema": inputSchema,
			})
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"tools": tools,
			"count": len(tools),
		})
	})

	return mux
}

