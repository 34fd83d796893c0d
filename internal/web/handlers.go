package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/pattern"
	"address-autocomplete/internal/results"
	"address-autocomplete/internal/search"
	"address-autocomplete/internal/settings"
	apierr "address-autocomplete/pkg/errors"
	"address-autocomplete/pkg/events"
	"address-autocomplete/pkg/logging"
	"address-autocomplete/pkg/metrics"
)

// Server carries the shared dependencies behind the HTTP API.
type Server struct {
	// baseCtx outlives individual requests; session orchestrators search on
	// it long after the creating request returned.
	baseCtx  context.Context
	registry *Registry
	client   geocode.Client
	settings *settings.Service
	opts     search.Options
	bus      *events.Bus
	log      *logging.Logger
	reqLog   *logging.ComponentLogger
	reg      *metrics.Registry

	mLookups *metrics.Counter
}

func NewServer(baseCtx context.Context, registry *Registry, client geocode.Client, svc *settings.Service, opts search.Options, bus *events.Bus, log *logging.Logger, reg *metrics.Registry) *Server {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	s := &Server{
		baseCtx:  baseCtx,
		registry: registry,
		client:   client,
		settings: svc,
		opts:     opts,
		bus:      bus,
		log:      log,
		reg:      reg,
	}
	if log != nil {
		s.reqLog = log.WithComponent("web")
	}
	if reg != nil {
		s.mLookups = reg.Counter("address_lookups_total", "Stateless one-shot lookups served")
	}
	return s
}

// Routes registers the API on the given router.
func (s *Server) Routes(router *mux.Router) {
	router.HandleFunc("/api/sessions", s.createSessionHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}", s.stateHandler).Methods("GET")
	router.HandleFunc("/api/sessions/{id}", s.deleteSessionHandler).Methods("DELETE")
	router.HandleFunc("/api/sessions/{id}/input", s.inputHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/focus", s.focusHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/blur", s.blurHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/panel/open", s.panelOpenHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/panel/close", s.panelCloseHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/select", s.selectHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/clear", s.clearHandler).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/dismiss-error", s.dismissErrorHandler).Methods("POST")
	router.HandleFunc("/api/address-lookup", s.addressLookupHandler).Methods("GET")
}

type createSessionRequest struct {
	UserID     string `json:"userId"`
	CountrySet string `json:"countrySet"`
}

type createSessionResponse struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Warning  string `json:"warning,omitempty"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	opts := s.opts
	if req.CountrySet != "" {
		opts.CountrySet = req.CountrySet
	}

	var warning string
	if req.UserID != "" {
		st, err := s.settings.UserSettings(r.Context(), req.UserID)
		if err != nil {
			s.writeAPIError(w, err)
			return
		}
		opts.Language = st.Language
		warning = st.Warning
	}

	id := uuid.NewString()
	fetch := s.postalFetcher(opts.Language)
	orch := search.New(s.baseCtx, id, s.client, fetch, opts, s.bus, s.log, s.reg)
	s.registry.Add(&Session{ID: id, UserID: req.UserID, Language: opts.Language, Orch: orch})

	if s.reqLog != nil {
		s.reqLog.Info("session created", logging.Session(id), logging.String("language", opts.Language))
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: id, Language: opts.Language, Warning: warning})
}

// postalFetcher binds the postal-code expansion to this server's geocoder and
// the session's language.
func (s *Server) postalFetcher(language string) results.PostalCodeFetcher {
	return func(ctx context.Context, municipality, countryCode string) ([]string, error) {
		return geocode.PostalCodesFor(ctx, s.client, municipality, countryCode, language)
	}
}

type errorPayload struct {
	Source     string   `json:"source"`
	Code       string   `json:"code"`
	HTTPStatus int      `json:"httpStatus,omitempty"`
	Message    string   `json:"message"`
	Target     string   `json:"target,omitempty"`
	Details    []string `json:"details,omitempty"`
}

type stateResponse struct {
	search.Snapshot
	Error *errorPayload `json:"error,omitempty"`
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	st := sess.Orch.State()
	resp := stateResponse{Snapshot: st}
	if st.Error != nil {
		resp.Error = payloadFrom(st.Error)
	}
	writeJSON(w, http.StatusOK, resp)
}

type inputRequest struct {
	Text string `json:"text"`
}

func (s *Server) inputHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess.Orch.Input(req.Text)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) focusHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Orch.Focus()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) blurHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Orch.Blur()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) panelOpenHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Orch.OpenPanel()
	w.WriteHeader(http.StatusNoContent)
}

type panelCloseRequest struct {
	Cancelled bool `json:"cancelled"`
}

func (s *Server) panelCloseHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req panelCloseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	sess.Orch.ClosePanel(req.Cancelled)
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	ResultID string `json:"resultId"`
}

func (s *Server) selectHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResultID == "" {
		http.Error(w, "resultId required", http.StatusBadRequest)
		return
	}
	if err := sess.Orch.Select(req.ResultID); err != nil {
		if _, typed := apierr.AsAPIError(err); typed {
			s.writeAPIError(w, err)
			return
		}
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	st := sess.Orch.State()
	writeJSON(w, http.StatusOK, stateResponse{Snapshot: st})
}

func (s *Server) clearHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Orch.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dismissErrorHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Orch.DismissError()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.registry.Remove(id) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lookupResponse struct {
	Intent  string           `json:"intent"`
	Query   string           `json:"query"`
	Results []geocode.Result `json:"results"`
}

// addressLookupHandler runs the full pipeline once, without any session
// state. Useful for server-side integrations and smoke checks.
func (s *Server) addressLookupHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Error(w, "q required", http.StatusBadRequest)
		return
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		language = s.opts.Language
	}

	pat := pattern.Parse(q, r.URL.Query().Get("countrySet"))
	req := geocode.Request{
		Query:               geocode.BuildQuery(pat.Query, pat.Intent),
		Language:            language,
		CountrySet:          pat.CountrySet,
		Limit:               s.opts.Limit,
		ExtendedPostalCodes: true,
	}
	if pat.Intent == pattern.IntentPostalCode {
		req.EntityType = geocode.EntityMunicipality
	}

	rs, err := s.client.Search(r.Context(), req)
	if err == nil {
		rs = results.Normalize(rs)
		rs, err = results.ProcessByIntent(r.Context(), pat.Intent, pat.Query, rs, s.postalFetcher(language))
	}
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	if s.mLookups != nil {
		s.mLookups.Inc(1)
	}
	if rs == nil {
		rs = []geocode.Result{}
	}
	writeJSON(w, http.StatusOK, lookupResponse{Intent: string(pat.Intent), Query: pat.Query, Results: rs})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	sess, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// writeAPIError maps a typed error to a response. Provider statuses pass
// through when they are valid HTTP errors; everything else reads as a bad
// gateway.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	ae := apierr.WrapUnknown(err)
	status := ae.HTTPStatus
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	if s.reqLog != nil {
		s.reqLog.Error("request failed", ae)
	}
	writeJSON(w, status, map[string]*errorPayload{"error": payloadFrom(ae)})
}

func payloadFrom(ae *apierr.APIError) *errorPayload {
	return &errorPayload{
		Source:     string(ae.Source),
		Code:       ae.Code,
		HTTPStatus: ae.HTTPStatus,
		Message:    ae.Message,
		Target:     ae.Target,
		Details:    ae.Details,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
