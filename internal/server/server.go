// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"aquaform/internal/advisor"
	"aquaform/internal/catalog"
	"aquaform/internal/models"
)

const Version = "1.0.0"

// Store is the persistence the server needs; nil disables the formulation tools.
type Store interface {
	SaveFormulation(ctx context.Context, f *models.Formulation) error
	GetFormulations(ctx context.Context, speciesID string, limit int) ([]*models.Formulation, error)
	GetFormulation(ctx context.Context, id string) (*models.Formulation, error)
	DeleteFormulation(ctx context.Context, id string) error
}

type Config struct {
	Host string
	Port int
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type FeedServer struct {
	httpServer *http.Server
	catalog    *catalog.Catalog
	advisor    advisor.Advisor
	store      Store
	logger     *zap.Logger
	info       protocol.Implementation
	tools      map[string]toolHandler
	now        func() time.Time
}

func NewFeedServer(cfg *Config, lib *catalog.Catalog, adv advisor.Advisor, store Store, logger *zap.Logger) *FeedServer {
	if adv == nil {
		adv = advisor.Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FeedServer{
		catalog: lib,
		advisor: adv,
		store:   store,
		logger:  logger,
		info: protocol.Implementation{
			Name:    "aquaform",
			Version: Version,
		},
		now: time.Now,
	}
	s.tools = s.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHTTP)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the tool endpoint, mainly for tests.
func (s *FeedServer) Handler() http.Handler { return s.httpServer.Handler }

func (s *FeedServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &request)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("tool failed",
			zap.String("tool", request.Name), zap.Int("status", status), zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.Debug("tool call", zap.String("tool", request.Name), zap.Duration("took", time.Since(start)))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// Start serves until Stop is called or ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	s.logger.Info("starting feed formulation server", zap.String("addr", s.httpServer.Addr))

	stop := context.AfterFunc(ctx, func() { _ = s.Stop() })
	defer stop()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *FeedServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *FeedServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
