package pricing

// ModeType tags a curated pricing variant.
type ModeType string

const (
	ModeToken        ModeType = "token"
	ModeSubscription ModeType = "subscription"
	ModeCredit       ModeType = "credit"
	ModeCompute      ModeType = "compute"
	ModeRange        ModeType = "range"
)

// Units used by curated modes.
const (
	UnitPerMonth = "perMonth"
	UnitPerYear  = "perYear"
)

// Mode is one tagged pricing variant of a curated model. Which fields are
// required depends on Type; see schema.ValidateCatalog.
type Mode struct {
	Type    ModeType `json:"type" yaml:"type"`
	Input   *float64 `json:"input,omitempty" yaml:"input,omitempty"`
	Output  *float64 `json:"output,omitempty" yaml:"output,omitempty"`
	Price   *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Unit    string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Credits *float64 `json:"credits,omitempty" yaml:"credits,omitempty"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Notes   string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// CatalogModel is a curated, non-scraped offering.
type CatalogModel struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category" yaml:"category"`
	Provider string   `json:"provider" yaml:"provider"`
	Vendor   string   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Modes    []Mode   `json:"modes" yaml:"modes"`
}

// AdditionalProviderPayload groups a curated provider's models.
type AdditionalProviderPayload struct {
	Provider   string         `json:"provider" yaml:"provider"`
	CatalogURL string         `json:"catalogUrl,omitempty" yaml:"catalogUrl,omitempty"`
	Models     []CatalogModel `json:"models" yaml:"models"`
}

// AdditionalProviderPayloads maps a curated provider key to its catalog.
type AdditionalProviderPayloads map[string]AdditionalProviderPayload
