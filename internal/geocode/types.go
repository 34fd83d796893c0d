package geocode

// Entity types the provider tags results with. Only the ones the pipeline
// branches on are named here.
const (
	EntityMunicipality   = "Municipality"
	EntityPostalCodeArea = "PostalCodeArea"
)

// Request carries the parameters of one search call against the provider.
type Request struct {
	Query      string
	Language   string
	CountrySet string // comma-separated ISO2 codes, empty = worldwide
	Limit      int
	Lat        *float64
	Lon        *float64
	Radius     int    // meters, only meaningful with Lat/Lon
	EntityType string // restrict to one entity type, empty = all
	// ExtendedPostalCodes asks the provider to include the extended postal
	// code field on matching entity types.
	ExtendedPostalCodes bool
}

// LatLon is a WGS84 position.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Address is a flat record of optional strings. Absence of any field means
// "unknown", never an error; every consumer must tolerate empty values.
type Address struct {
	FreeformAddress             string `json:"freeformAddress,omitempty"`
	StreetName                  string `json:"streetName,omitempty"`
	StreetNumber                string `json:"streetNumber,omitempty"`
	Municipality                string `json:"municipality,omitempty"`
	MunicipalitySubdivision     string `json:"municipalitySubdivision,omitempty"`
	LocalName                   string `json:"localName,omitempty"`
	CountrySecondarySubdivision string `json:"countrySecondarySubdivision,omitempty"`
	CountrySubdivision          string `json:"countrySubdivision,omitempty"`
	PostalCode                  string `json:"postalCode,omitempty"`
	ExtendedPostalCode          string `json:"extendedPostalCode,omitempty"`
	Country                     string `json:"country,omitempty"`
	CountryCode                 string `json:"countryCode,omitempty"`     // ISO2
	CountryCodeISO3             string `json:"countryCodeISO3,omitempty"` // ISO3
}

// Result is one suggestion returned by the provider. Owned transiently by the
// orchestrator between API response and UI hand-off; not mutated after
// normalization except for postal-code back-filling during normalization
// itself.
type Result struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Score      float64 `json:"score,omitempty"`
	EntityType string  `json:"entityType,omitempty"`
	Address    Address `json:"address"`
	Position   *LatLon `json:"position,omitempty"`
}
