// Package host adapts the search orchestrator to a host UI platform that
// speaks in lifecycle calls and flat property bindings. Everything
// host-facing lives here; the rest of the codebase never sees binding names.
package host

import (
	"strconv"

	"address-autocomplete/internal/geocode"
	"address-autocomplete/internal/search"
)

// Bindings is the property surface the host exposes to the widget. Getters
// return zero values for unset properties.
type Bindings interface {
	String(name string) string
	Int(name string) int
	Bool(name string) bool
	Option(name string) string
	// NotifyChanged tells the host the output fields changed and should be
	// re-read.
	NotifyChanged()
}

// StringLookup resolves a localized UI string, always falling back to the
// supplied default when the key has no translation.
type StringLookup func(key, fallback string) string

// Binding property names, fixed by the host platform manifest.
const (
	PropValue      = "value"
	PropCountrySet = "countrySet"
	PropDisabled   = "disabled"
)

// Outputs is the flat committed-selection view the host reads back. A clear
// resets every field.
type Outputs struct {
	StreetName           string `json:"streetName"`
	StreetNumber         string `json:"streetNumber"`
	Municipality         string `json:"municipality"`
	Subdivision          string `json:"subdivision"`
	SecondarySubdivision string `json:"secondarySubdivision"`
	PostalCode           string `json:"postalCode"`
	Country              string `json:"country"`
	CountryCode          string `json:"countryCode"`
	CountryCodeISO3      string `json:"countryCodeIso3"`
	Latitude             string `json:"latitude"`
	Longitude            string `json:"longitude"`
	Formatted            string `json:"formatted"`
	HasValue             bool   `json:"hasValue"`
}

// Adapter bridges host lifecycle calls to one orchestrator instance.
type Adapter struct {
	orch     *search.Orchestrator
	bindings Bindings
	lookup   StringLookup

	lastValue string
	outputs   Outputs
}

// NewAdapter wires the adapter and registers for selection commits. lookup
// may be nil; placeholder text then uses the built-in fallbacks.
func NewAdapter(orch *search.Orchestrator, bindings Bindings, lookup StringLookup) *Adapter {
	if lookup == nil {
		lookup = func(_, fallback string) string { return fallback }
	}
	a := &Adapter{orch: orch, bindings: bindings, lookup: lookup}
	orch.OnCommit(a.handleCommit)
	return a
}

// Init runs once when the host mounts the widget.
func (a *Adapter) Init() {
	a.lastValue = a.bindings.String(PropValue)
	if a.lastValue != "" {
		a.orch.Input(a.lastValue)
	}
}

// UpdateView runs on every host render pass. Only a genuinely changed bound
// value reaches the orchestrator; the host re-renders far more often than the
// user types.
func (a *Adapter) UpdateView() {
	if a.bindings.Bool(PropDisabled) {
		return
	}
	v := a.bindings.String(PropValue)
	if v == a.lastValue {
		return
	}
	a.lastValue = v
	a.orch.Input(v)
}

// Outputs returns the committed selection as flat fields.
func (a *Adapter) Outputs() Outputs {
	return a.outputs
}

// Placeholder returns the localized input placeholder.
func (a *Adapter) Placeholder() string {
	return a.lookup("addressInput.placeholder", "Search address or postal code")
}

// Destroy releases the orchestrator's timers.
func (a *Adapter) Destroy() {
	a.orch.Close()
}

func (a *Adapter) handleCommit(sel search.Selection) {
	if sel.Empty {
		a.outputs = Outputs{}
	} else {
		a.outputs = outputsFrom(sel.Result, sel.Formatted)
	}
	a.bindings.NotifyChanged()
}

func outputsFrom(r geocode.Result, formatted string) Outputs {
	o := Outputs{
		StreetName:           r.Address.StreetName,
		StreetNumber:         r.Address.StreetNumber,
		Municipality:         r.Address.Municipality,
		Subdivision:          r.Address.CountrySubdivision,
		SecondarySubdivision: r.Address.CountrySecondarySubdivision,
		PostalCode:           r.Address.PostalCode,
		Country:              r.Address.Country,
		CountryCode:          r.Address.CountryCode,
		CountryCodeISO3:      r.Address.CountryCodeISO3,
		Formatted:            formatted,
		HasValue:             true,
	}
	if r.Position != nil {
		o.Latitude = strconv.FormatFloat(r.Position.Lat, 'f', -1, 64)
		o.Longitude = strconv.FormatFloat(r.Position.Lon, 'f', -1, 64)
	}
	return o
}
