// Package api exposes the gateway, the reference multisig and ledger
// queries as a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/gateway"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/ledger"
	"coin-guardian/internal/observability"
	"coin-guardian/internal/storage"
	"coin-guardian/internal/supply"
)

// Governance is a governance module that can also be voted on and inspected.
type Governance interface {
	governance.Module
	Get(ctx context.Context, id domain.ProposalID) (*domain.Proposal, error)
	List(ctx context.Context, status domain.ProposalStatus) ([]*domain.Proposal, error)
	Votes(ctx context.Context, id domain.ProposalID) ([]*domain.Vote, error)
	Vote(ctx context.Context, id domain.ProposalID, voter domain.Address, approve bool) (domain.ProposalStatus, error)
}

// Deps are the components served by the API.
type Deps struct {
	Gateway    *gateway.Gateway
	Authority  *gateway.Authority
	Governance Governance
	Policy     *supply.Policy
	Ledger     *ledger.Ledger
	Metadata   storage.MetadataStore
	Events     storage.EventStore
	Stream     http.Handler // websocket event stream, optional
	Logger     *slog.Logger
}

// Server routes API requests.
type Server struct {
	deps   Deps
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates the API server.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		deps:   deps,
		logger: logger.With("component", "api"),
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.mux.Handle("GET /metrics", observability.Handler())

	s.mux.HandleFunc("GET /supply", s.handleSupply)
	s.mux.HandleFunc("GET /balances/{address}", s.handleBalance)
	s.mux.HandleFunc("GET /metadata", s.handleMetadata)

	s.mux.HandleFunc("POST /proposals/mint", s.handleProposeMint)
	s.mux.HandleFunc("POST /proposals/burn", s.handleProposeBurn)
	s.mux.HandleFunc("POST /proposals/metadata", s.handleProposeMetadata)
	s.mux.HandleFunc("GET /proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /proposals/{id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /proposals/{id}/votes", s.handleVote)
	s.mux.HandleFunc("POST /proposals/{id}/execute", s.handleExecute)

	s.mux.HandleFunc("GET /events", s.handleEvents)
	if s.deps.Stream != nil {
		s.mux.Handle("GET /events/stream", s.deps.Stream)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
