// Package search drives the autocomplete pipeline for one search box:
// keystroke handling, debounce timing, the geocoder call, and result
// post-processing. One Orchestrator instance owns one widget session.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/pattern"
	"address-autocomplete/internal/results"
	apierr "address-autocomplete/pkg/errors"
	"address-autocomplete/pkg/events"
	"address-autocomplete/pkg/logging"
	"address-autocomplete/pkg/metrics"
)

// Options tunes one orchestrator instance.
type Options struct {
	MinChars   int           // inputs at or below this length never trigger a fetch
	Debounce   time.Duration // pause-in-typing interval before a fetch fires
	BlurGrace  time.Duration // delay before focus loss actually closes the dropdown
	Limit      int
	Language   string // default search language; SetLanguage overrides per user
	CountrySet string // pre-scoped country filter from widget configuration
}

// Selection is what the host adapter receives when the user commits.
type Selection struct {
	Empty     bool // explicit clear action, not a pick
	Result    geocode.Result
	Formatted string
}

// Snapshot is a point-in-time copy of the visible widget state.
type Snapshot struct {
	Text            string           `json:"text"`
	Focused         bool             `json:"focused"`
	DropdownOpen    bool             `json:"dropdownOpen"`
	Loading         bool             `json:"loading"`
	Intent          pattern.Intent   `json:"intent,omitempty"`
	Suggestions     []geocode.Result `json:"suggestions"`
	ShowErrorDialog bool             `json:"showErrorDialog"`
	Error           *apierr.APIError `json:"-"`
	Committed       *Selection       `json:"-"`
}

// Orchestrator is the search state machine: Idle -> Debouncing -> Fetching ->
// Idle with suggestions or with a surfaced error. Methods are safe for
// concurrent use; timers fire on their own goroutines.
type Orchestrator struct {
	mu          sync.Mutex
	id          string
	opts        Options
	client      geocode.Client
	fetchPostal results.PostalCodeFetcher
	bus         *events.Bus
	log         *logging.ComponentLogger
	ctx         context.Context
	onCommit    func(Selection)

	text         string
	language     string
	focused      bool
	dropdownOpen bool
	loading      bool
	intent       pattern.Intent
	suggestions  []geocode.Result
	apiErr       *apierr.APIError
	showError    bool
	panelOpen    bool
	keepOpen     bool
	committed    *Selection
	closed       bool

	// seq tags every state change that invalidates in-flight work; a fetch
	// whose tag no longer matches discards its response instead of racing a
	// newer one for the suggestion list.
	seq       uint64
	debounce  *time.Timer
	blurTimer *time.Timer

	mSearches *metrics.Counter
	mFailures *metrics.Counter
	mStale    *metrics.Counter
	mLatency  *metrics.Histogram
}

// New builds an orchestrator for one session. bus, log and reg may be nil.
func New(ctx context.Context, id string, client geocode.Client, fetchPostal results.PostalCodeFetcher, opts Options, bus *events.Bus, log *logging.Logger, reg *metrics.Registry) *Orchestrator {
	if ctx == nil {
		ctx = context.Background()
	}
	o := &Orchestrator{
		ctx:         ctx,
		id:          id,
		opts:        opts,
		client:      client,
		fetchPostal: fetchPostal,
		bus:         bus,
		language:    opts.Language,
	}
	if log != nil {
		o.log = log.WithComponent("search")
	}
	if reg != nil {
		o.mSearches = reg.Counter("searches_total", "Search attempts dispatched to the geocoder")
		o.mFailures = reg.Counter("search_failures_total", "Search attempts that surfaced an error")
		o.mStale = reg.Counter("search_stale_responses_total", "Responses discarded because a newer attempt superseded them")
		o.mLatency = reg.Histogram("search_latency_ms", "End-to-end search latency (ms)", []float64{50, 100, 250, 500, 1000, 2500, 5000})
	}
	return o
}

// OnCommit registers the host adapter callback for selections and clears.
func (o *Orchestrator) OnCommit(fn func(Selection)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onCommit = fn
}

// SetLanguage switches the search language, typically after the user
// settings lookup resolves.
func (o *Orchestrator) SetLanguage(lang string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if lang != "" {
		o.language = lang
	}
}

// Input handles one keystroke batch. Short or unfocused input clears the
// dropdown immediately; anything else restarts the debounce window, so only
// the last pause in typing reaches the geocoder.
func (o *Orchestrator) Input(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.text = text
	o.seq++
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}

	if !o.focused || len(strings.TrimSpace(text)) <= o.opts.MinChars {
		o.suggestions = nil
		o.dropdownOpen = false
		return
	}

	o.dropdownOpen = true
	seq := o.seq
	o.debounce = time.AfterFunc(o.opts.Debounce, func() { o.fire(seq, text) })
}

// fire runs one search attempt. It re-checks the sequence tag around the
// network call so superseded attempts never touch the suggestion list.
func (o *Orchestrator) fire(seq uint64, text string) {
	o.mu.Lock()
	if o.closed || seq != o.seq {
		o.mu.Unlock()
		return
	}
	pat := pattern.Parse(text, o.opts.CountrySet)
	query := strings.TrimSpace(pat.Query)
	if query == "" {
		o.suggestions = nil
		o.dropdownOpen = false
		o.mu.Unlock()
		return
	}
	o.loading = true
	o.intent = pat.Intent
	lang := o.language
	o.mu.Unlock()

	if o.mSearches != nil {
		o.mSearches.Inc(1)
	}
	o.publish(events.SearchStarted{Base: o.eventBase(), Seq: seq, Intent: string(pat.Intent), Query: query})

	req := geocode.Request{
		Query:               geocode.BuildQuery(query, pat.Intent),
		Language:            lang,
		CountrySet:          pat.CountrySet,
		Limit:               o.opts.Limit,
		ExtendedPostalCodes: true,
	}
	if pat.Intent == pattern.IntentPostalCode {
		req.EntityType = geocode.EntityMunicipality
	}

	start := time.Now()
	rs, err := o.client.Search(o.ctx, req)
	if err == nil {
		rs = results.Normalize(rs)
		rs, err = results.ProcessByIntent(o.ctx, pat.Intent, query, rs, o.fetchPostal)
	}
	dur := time.Since(start)
	if o.mLatency != nil {
		o.mLatency.Observe(float64(dur / time.Millisecond))
	}

	o.mu.Lock()
	if o.closed || seq != o.seq {
		o.mu.Unlock()
		if o.mStale != nil {
			o.mStale.Inc(1)
		}
		o.publish(events.SearchCompleted{Base: o.eventBase(), Seq: seq, Intent: string(pat.Intent), Results: len(rs), Duration: dur, Stale: true})
		return
	}
	o.loading = false
	if err != nil {
		o.failLocked(seq, pat.Intent, err)
		o.mu.Unlock()
		return
	}
	o.suggestions = rs
	o.mu.Unlock()

	o.publish(events.SearchCompleted{Base: o.eventBase(), Seq: seq, Intent: string(pat.Intent), Results: len(rs), Duration: dur})
	if o.log != nil {
		o.log.Debug("search completed",
			logging.Session(o.id), logging.Intent(string(pat.Intent)),
			logging.Int("results", len(rs)), logging.Duration("duration", dur))
	}
}

// failLocked surfaces one terminal error, replacing any prior one. Callers
// hold the mutex; the event is published after unlock by the deferred state.
func (o *Orchestrator) failLocked(seq uint64, intent pattern.Intent, err error) {
	ae := apierr.WrapUnknown(err)
	o.suggestions = nil
	o.loading = false
	o.apiErr = ae
	o.showError = true

	if o.mFailures != nil {
		o.mFailures.Inc(1)
	}
	go o.publish(events.SearchFailed{Base: o.eventBase(), Seq: seq, Intent: string(intent), Source: string(ae.Source), Code: ae.Code, HTTPStatus: ae.HTTPStatus})
	if o.log != nil {
		o.log.Error("search failed", ae, logging.Session(o.id), logging.Intent(string(intent)))
	}
}

// Focus marks the input focused and cancels any pending dropdown close.
func (o *Orchestrator) Focus() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.focused = true
	if o.blurTimer != nil {
		o.blurTimer.Stop()
		o.blurTimer = nil
	}
}

// Blur schedules the dropdown close after a grace period, so a click that
// lands after focus loss can still select a suggestion.
func (o *Orchestrator) Blur() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.blurTimer != nil {
		o.blurTimer.Stop()
	}
	o.blurTimer = time.AfterFunc(o.opts.BlurGrace, o.finishBlur)
}

func (o *Orchestrator) finishBlur() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blurTimer = nil
	if o.panelOpen || o.keepOpen {
		o.keepOpen = false
		return
	}
	o.focused = false
	o.dropdownOpen = false
}

// OpenPanel marks the detail panel open; the dropdown survives blur while it
// shows.
func (o *Orchestrator) OpenPanel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panelOpen = true
}

// ClosePanel closes the detail panel. A cancel keeps the dropdown open for
// exactly one subsequent blur.
func (o *Orchestrator) ClosePanel(cancelled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.panelOpen = false
	if cancelled {
		o.keepOpen = true
	}
}

// Select handles a suggestion pick. Picking a municipality during a
// postal-code search narrows the list to that municipality's postal codes
// instead of committing; anything else commits the selection.
func (o *Orchestrator) Select(id string) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return fmt.Errorf("search: session closed")
	}
	var picked *geocode.Result
	for i := range o.suggestions {
		if o.suggestions[i].ID == id {
			picked = &o.suggestions[i]
			break
		}
	}
	if picked == nil {
		o.mu.Unlock()
		return fmt.Errorf("search: no suggestion with id %q", id)
	}
	r := *picked
	intent := o.intent
	seq := o.seq
	o.mu.Unlock()

	if intent == pattern.IntentPostalCode && r.EntityType == geocode.EntityMunicipality && o.fetchPostal != nil {
		codes, err := o.fetchPostal(o.ctx, r.Address.Municipality, r.Address.CountryCode)
		if err != nil {
			o.mu.Lock()
			o.failLocked(seq, intent, err)
			o.mu.Unlock()
			return err
		}
		if len(codes) > 0 {
			synth := results.SynthesizePostalCodes(r, codes)
			o.mu.Lock()
			o.suggestions = synth
			o.dropdownOpen = true
			o.mu.Unlock()
			return nil
		}
	}

	o.commit(r)
	return nil
}

func (o *Orchestrator) commit(r geocode.Result) {
	sel := Selection{Result: r, Formatted: FormatAddress(r)}
	o.mu.Lock()
	o.committed = &sel
	o.text = sel.Formatted
	o.suggestions = nil
	o.dropdownOpen = false
	cb := o.onCommit
	o.mu.Unlock()

	o.publish(events.SelectionCommitted{Base: o.eventBase(), ResultID: r.ID, PostalCode: r.Address.PostalCode})
	if cb != nil {
		cb(sel)
	}
}

// Clear resets all derived fields and notifies the host with an empty
// selection, distinct from a normal pick.
func (o *Orchestrator) Clear() {
	sel := Selection{Empty: true}
	o.mu.Lock()
	o.seq++
	o.committed = &sel
	o.text = ""
	o.suggestions = nil
	o.dropdownOpen = false
	cb := o.onCommit
	o.mu.Unlock()

	o.publish(events.SelectionCleared{Base: o.eventBase()})
	if cb != nil {
		cb(sel)
	}
}

// DismissError clears the error dialog flag and the stored error together.
func (o *Orchestrator) DismissError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.showError = false
	o.apiErr = nil
}

// State returns a copy of the visible widget state.
func (o *Orchestrator) State() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	suggestions := make([]geocode.Result, len(o.suggestions))
	copy(suggestions, o.suggestions)
	return Snapshot{
		Text:            o.text,
		Focused:         o.focused,
		DropdownOpen:    o.dropdownOpen,
		Loading:         o.loading,
		Intent:          o.intent,
		Suggestions:     suggestions,
		ShowErrorDialog: o.showError,
		Error:           o.apiErr,
		Committed:       o.committed,
	}
}

// Close stops the timers. In-flight fetches notice the closed flag and drop
// their responses; the requests themselves are never aborted.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
	if o.blurTimer != nil {
		o.blurTimer.Stop()
		o.blurTimer = nil
	}
}

func (o *Orchestrator) eventBase() events.Base {
	return events.Base{Ts: time.Now(), SID: o.id}
}

func (o *Orchestrator) publish(e events.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}

// FormatAddress renders the committed display string for a result: the
// provider's freeform address when present, otherwise assembled from parts.
func FormatAddress(r geocode.Result) string {
	if r.Address.FreeformAddress != "" {
		return r.Address.FreeformAddress
	}
	var parts []string
	if r.Address.StreetName != "" {
		street := r.Address.StreetName
		if r.Address.StreetNumber != "" {
			street += " " + r.Address.StreetNumber
		}
		parts = append(parts, street)
	}
	cityLine := strings.TrimSpace(r.Address.PostalCode + " " + r.Address.Municipality)
	if cityLine != "" {
		parts = append(parts, cityLine)
	}
	if r.Address.Country != "" {
		parts = append(parts, r.Address.Country)
	}
	return strings.Join(parts, ", ")
}
