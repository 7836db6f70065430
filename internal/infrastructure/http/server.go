package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/domain"
	"marketdata-aggregator/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

// MarketData is the slice of the aggregator the HTTP surface serves.
type MarketData interface {
	FetchAndCache(ctx context.Context, symbol, currency string) (domain.PriceSnapshot, error)
	FetchMultiple(ctx context.Context, symbols []string, currency string) []application.FetchResult
	FetchHistorical(ctx context.Context) ([]domain.PriceSnapshot, error)
	FindBySymbol(ctx context.Context, symbol string) ([]domain.PriceSnapshot, error)
	FindByAssetType(ctx context.Context, assetType string) ([]domain.PriceSnapshot, error)
}

var _ MarketData = (*application.MarketDataService)(nil)

type Server struct {
	svc  MarketData
	ping func(ctx context.Context) error
}

func NewServer(svc MarketData) *Server { return &Server{svc: svc} }

// SetReadyCheck installs the check behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type Snapshot struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	AssetType string    `json:"assetType"`
	Price     string    `json:"price"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func toDTO(s domain.PriceSnapshot) Snapshot {
	return Snapshot{
		ID:        s.ID,
		Symbol:    s.Symbol,
		AssetType: string(s.AssetType),
		Price:     s.Price.String(),
		Currency:  s.Currency,
		Source:    s.Source,
		Timestamp: s.Timestamp,
	}
}

func toDTOs(in []domain.PriceSnapshot) []Snapshot {
	out := make([]Snapshot, 0, len(in))
	for _, s := range in {
		out = append(out, toDTO(s))
	}
	return out
}

// GetSingle handles GET /single?symbol=&currency=.
func (s *Server) GetSingle(w http.ResponseWriter, r *http.Request) {
	var symbol, currency string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "symbol", q, &symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "currency", q, &currency); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.svc.FetchAndCache(r.Context(), symbol, currency)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(snap))
}

// GetMultiple handles GET /multiple?symbols=a,b,c&currency=. Symbols that fail
// are left out; if all of them fail, the error of the first symbol in request
// order decides the response.
func (s *Server) GetMultiple(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	var currency string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", false, true, "symbols", q, &symbols); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "currency", q, &currency); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results := s.svc.FetchMultiple(r.Context(), symbols, currency)
	if len(results) == 0 {
		writeError(w, http.StatusBadRequest, "symbols: at least one symbol is required")
		return
	}
	out := make([]Snapshot, 0, len(results))
	var firstErr error
	for _, res := range results {
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		out = append(out, toDTO(res.Snapshot))
	}
	if len(out) == 0 && firstErr != nil {
		s.fail(w, r, firstErr)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetAll(w http.ResponseWriter, r *http.Request) {
	all, err := s.svc.FetchHistorical(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(all))
}

func (s *Server) GetBySymbol(w http.ResponseWriter, r *http.Request) {
	var symbol string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "symbol", runtime.ParamLocationPath, chi.URLParam(r, "symbol"), &symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.svc.FindBySymbol(r.Context(), symbol)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(out))
}

func (s *Server) GetByAssetType(w http.ResponseWriter, r *http.Request) {
	var assetType string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "assetType", runtime.ParamLocationPath, chi.URLParam(r, "assetType"), &assetType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := s.svc.FindByAssetType(r.Context(), assetType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(out))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logx.WithFields(r.Context()).Error("request_failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	var (
		invalid     *domain.InvalidSymbolError
		unavailable *domain.UpstreamUnavailableError
	)
	switch {
	case errors.Is(err, application.ErrBadRequest), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSymbolNotFound), errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidSnapshot):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Code: status, Message: msg})
}
