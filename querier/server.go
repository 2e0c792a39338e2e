// server.go
package querier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tablefs/tablefs-querier/core"
)

// Server exposes the query pipeline over HTTP.
type Server struct {
	QueryClient *QueryClient
}

// NewServer creates a new server instance over an existing client.
func NewServer(client *QueryClient) *Server {
	return &Server{QueryClient: client}
}

// QueryRequest represents a query API request. ScopedVars is accepted for
// wire compatibility with templating hosts; substitution happens before
// targets reach this server, so the field is not interpreted here.
type QueryRequest struct {
	Targets    []QueryTarget              `json:"targets"`
	ScopedVars map[string]json.RawMessage `json:"scopedVars,omitempty"`
}

// QueryResponse represents a query API response.
type QueryResponse struct {
	Results []QueryResult `json:"results"`
	Errors  []TargetError `json:"errors,omitempty"`
}

// TestResponse reports the outcome of a connectivity check.
type TestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

var reqID int32

// addCORSHeaders adds CORS headers to the response
func addCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleQuery handles the /query endpoint.
func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := core.WithDefaultLogger(r.Context(), fmt.Sprintf("req-%d", atomic.AddInt32(&reqID, 1)))
	addCORSHeaders(w)

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Only allow POST
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	core.Infof(ctx, "Executing query with %d targets", len(req.Targets))

	results, targetErrs, err := s.QueryClient.Query(ctx, req.Targets)
	if err != nil {
		core.Errorf(ctx, "Query error: %v", err)
		sendErrorResponse(w, fmt.Sprintf("Query execution failed: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(QueryResponse{
		Results: results,
		Errors:  targetErrs,
	})
}

// HandleTest handles the connectivity check endpoint. Backend failures
// are converted into a status object rather than propagated.
func (s *Server) HandleTest(w http.ResponseWriter, r *http.Request) {
	ctx := core.WithDefaultLogger(r.Context(), fmt.Sprintf("req-%d", atomic.AddInt32(&reqID, 1)))
	addCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	info, err := s.QueryClient.TestConnection(ctx)
	if err != nil {
		status := TestResponse{Status: "error", Message: err.Error()}
		if r.Context().Err() != nil {
			status.Message = "cancelled"
		}
		core.Errorf(ctx, "Connectivity check failed: %v", err)
		json.NewEncoder(w).Encode(status)
		return
	}

	json.NewEncoder(w).Encode(TestResponse{
		Status:  "success",
		Message: fmt.Sprintf("root directory contains %d entries", info.Count),
	})
}

// HandleSearch handles the /search stub endpoint.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sendEmptyList(w, r)
}

// HandleTagKeys handles the /tag-keys stub endpoint.
func (s *Server) HandleTagKeys(w http.ResponseWriter, r *http.Request) {
	sendEmptyList(w, r)
}

// HandleTagValues handles the /tag-values stub endpoint.
func (s *Server) HandleTagValues(w http.ResponseWriter, r *http.Request) {
	sendEmptyList(w, r)
}

// sendEmptyList answers a stub endpoint with an empty JSON array.
func sendEmptyList(w http.ResponseWriter, r *http.Request) {
	addCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte("[]\n"))
}

// Send an error response in JSON format
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// HandleHealth is the health check endpoint.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	addCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
