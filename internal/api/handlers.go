package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

const maxBodyBytes = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func proposalID(r *http.Request) (domain.ProposalID, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid proposal id %q", errBadRequest, raw)
	}
	return domain.ProposalID(id), nil
}

type supplyResponse struct {
	TotalSupply uint64 `json:"totalSupply"`
	MaxSupply   uint64 `json:"maxSupply"`
	Decimals    int    `json:"decimals"`
	Formatted   string `json:"formatted"`
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	total, err := s.deps.Ledger.TotalSupply(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	maxSupply, err := s.deps.Gateway.GetMaxSupply(ctx, s.deps.Policy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supplyResponse{
		TotalSupply: total,
		MaxSupply:   maxSupply,
		Decimals:    domain.Decimals,
		Formatted:   domain.FormatAmount(total),
	})
}

type balanceResponse struct {
	Address   domain.Address `json:"address"`
	Balance   uint64         `json:"balance"`
	Formatted string         `json:"formatted"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(r.PathValue("address"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	bal, err := s.deps.Ledger.Balance(r.Context(), addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Address: addr, Balance: bal, Formatted: domain.FormatAmount(bal)})
}

type metadataResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Decimals    int    `json:"decimals"`
	UpdatedAt   int64  `json:"updatedAt"`
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Metadata.Get(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metadataResponse{
		Name:        m.Name,
		Symbol:      m.Symbol,
		Description: m.Description,
		IconURL:     m.IconURL,
		Decimals:    m.Decimals,
		UpdatedAt:   m.UpdatedAt,
	})
}

type proposedResponse struct {
	ProposalID domain.ProposalID `json:"proposalId"`
}

type proposeMintRequest struct {
	Caller    domain.Address `json:"caller"`
	Amount    uint64         `json:"amount"`
	Recipient domain.Address `json:"recipient"`
}

func (s *Server) handleProposeMint(w http.ResponseWriter, r *http.Request) {
	var req proposeMintRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.deps.Gateway.ProposeMint(r.Context(), s.deps.Authority, s.deps.Governance, s.deps.Policy, req.Caller, req.Amount, req.Recipient)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposedResponse{ProposalID: id})
}

type proposeBurnRequest struct {
	Caller domain.Address `json:"caller"`
	Amount uint64         `json:"amount"`
}

func (s *Server) handleProposeBurn(w http.ResponseWriter, r *http.Request) {
	var req proposeBurnRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.deps.Gateway.ProposeBurn(r.Context(), s.deps.Authority, s.deps.Governance, req.Caller, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposedResponse{ProposalID: id})
}

// proposeMetadataRequest keeps the cap in force at execution when
// MaxSupply is omitted or zero.
type proposeMetadataRequest struct {
	Caller      domain.Address `json:"caller"`
	Name        string         `json:"name"`
	Symbol      string         `json:"symbol"`
	Description string         `json:"description"`
	IconURL     string         `json:"iconUrl"`
	MaxSupply   uint64         `json:"maxSupply"`
}

func (s *Server) handleProposeMetadata(w http.ResponseWriter, r *http.Request) {
	var req proposeMetadataRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	update := domain.MetadataPayload{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		IconURL:     req.IconURL,
		MaxSupply:   req.MaxSupply,
	}
	id, err := s.deps.Gateway.ProposeMetadataUpdate(r.Context(), s.deps.Authority, s.deps.Governance, req.Caller, update)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposedResponse{ProposalID: id})
}

type voteView struct {
	Voter   domain.Address `json:"voter"`
	Approve bool           `json:"approve"`
	CastAt  int64          `json:"castAt"`
}

type proposalResponse struct {
	ID               domain.ProposalID     `json:"id"`
	Kind             domain.OperationKind  `json:"kind"`
	Description      string                `json:"description"`
	Status           domain.ProposalStatus `json:"status"`
	Proposer         domain.Address        `json:"proposer"`
	Payload          domain.Payload        `json:"payload,omitempty"`
	PayloadExtracted bool                  `json:"payloadExtracted"`
	CreatedAt        int64                 `json:"createdAt"`
	UpdatedAt        int64                 `json:"updatedAt"`
	Votes            []voteView            `json:"votes"`
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := proposalID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.deps.Governance.Get(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	votes, err := s.deps.Governance.Votes(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := proposalResponse{
		ID:               p.ID,
		Kind:             p.Kind,
		Description:      p.Description,
		Status:           p.Status,
		Proposer:         p.Proposer,
		Payload:          p.Payload,
		PayloadExtracted: p.PayloadExtracted,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Votes:            make([]voteView, 0, len(votes)),
	}
	for _, v := range votes {
		resp.Votes = append(resp.Votes, voteView{Voter: v.Voter, Approve: v.Approve, CastAt: v.CastAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

type proposalSummary struct {
	ID               domain.ProposalID     `json:"id"`
	Kind             domain.OperationKind  `json:"kind"`
	Status           domain.ProposalStatus `json:"status"`
	Proposer         domain.Address        `json:"proposer"`
	PayloadExtracted bool                  `json:"payloadExtracted"`
	CreatedAt        int64                 `json:"createdAt"`
}

// handleListProposals serves GET /proposals?status=PENDING.
func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	status := domain.ProposalStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if status != "" && !status.IsValid() {
		s.writeError(w, fmt.Errorf("%w: unknown status %q", errBadRequest, status))
		return
	}
	proposals, err := s.deps.Governance.List(r.Context(), status)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]proposalSummary, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, proposalSummary{
			ID:               p.ID,
			Kind:             p.Kind,
			Status:           p.Status,
			Proposer:         p.Proposer,
			PayloadExtracted: p.PayloadExtracted,
			CreatedAt:        p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type voteRequest struct {
	Voter   domain.Address `json:"voter"`
	Approve bool           `json:"approve"`
}

type voteResponse struct {
	ProposalID domain.ProposalID     `json:"proposalId"`
	Status     domain.ProposalStatus `json:"status"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, err := proposalID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req voteRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	status, err := s.deps.Governance.Vote(r.Context(), id, req.Voter, req.Approve)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{ProposalID: id, Status: status})
}

type executeRequest struct {
	Caller  domain.Address `json:"caller"`
	Approve bool           `json:"approve"`
}

type executeResponse struct {
	ProposalID domain.ProposalID `json:"proposalId"`
	Executed   bool              `json:"executed"`
}

// handleExecute dispatches to the execute entry point matching the
// proposal's operation kind.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := proposalID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req executeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.deps.Governance.Get(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	d := s.deps
	var ok bool
	switch p.Kind {
	case domain.OperationMint:
		ok, err = d.Gateway.ExecuteMint(ctx, d.Authority, d.Governance, d.Policy, req.Caller, id, req.Approve)
	case domain.OperationBurn:
		ok, err = d.Gateway.ExecuteBurn(ctx, d.Authority, d.Governance, d.Policy, req.Caller, id, req.Approve)
	case domain.OperationMetadataUpdate:
		ok, err = d.Gateway.ExecuteMetadataUpdate(ctx, d.Authority, d.Governance, d.Metadata, d.Policy, req.Caller, id, req.Approve)
	default:
		err = fmt.Errorf("unknown operation kind %q", p.Kind)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, executeResponse{ProposalID: id, Executed: ok})
}

// handleEvents lists events by ?proposal=<id> or by ?from=&to= (unix ms).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	var (
		evs []*domain.Event
		err error
	)
	switch {
	case q.Has("proposal"):
		id, parseErr := strconv.ParseUint(q.Get("proposal"), 10, 64)
		if parseErr != nil {
			s.writeError(w, fmt.Errorf("%w: invalid proposal %q", errBadRequest, q.Get("proposal")))
			return
		}
		evs, err = s.deps.Events.GetByProposalID(ctx, domain.ProposalID(id))
	case q.Has("from") || q.Has("to"):
		from, fromErr := strconv.ParseInt(q.Get("from"), 10, 64)
		to, toErr := strconv.ParseInt(q.Get("to"), 10, 64)
		if err := errors.Join(fromErr, toErr); err != nil {
			s.writeError(w, fmt.Errorf("%w: from and to must be unix milliseconds", errBadRequest))
			return
		}
		evs, err = s.deps.Events.GetByTimeRange(ctx, from, to)
	default:
		s.writeError(w, fmt.Errorf("%w: proposal or from/to is required", errBadRequest))
		return
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, err)
		return
	}
	if evs == nil {
		evs = []*domain.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}
