package model

type EntityType string

const (
	TypeVessel     EntityType = "Vessel"
	TypeAircraft   EntityType = "Aircraft"
	TypeEntity     EntityType = "Entity"
	TypeIndividual EntityType = "Individual"
	TypeUnknown    EntityType = "Unknown"
)

// Entity is one sanctioned party, flattened so it can be searched without
// the source document.
type Entity struct {
	EntityID  int64      `json:"entity_id"`
	Type      EntityType `json:"type"`
	Names     []Alias    `json:"names"`
	Programs  []string   `json:"programs"`
	Addresses []Address  `json:"addresses"`
	Remarks   *string    `json:"remarks"`
}

type Alias struct {
	FullName       string `json:"full_name"`
	NormalizedName string `json:"normalized_name"`
	IsPrimary      bool   `json:"is_primary"`
	TypeID         string `json:"type_id"`
}

type Address struct {
	AddressLine *string `json:"address_line"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	CountryISO2 *string `json:"country_iso2,omitempty"`
}

// PrimaryName returns the first primary alias, falling back to the first
// alias, or "" when the entity has none.
func (e Entity) PrimaryName() string {
	for _, alias := range e.Names {
		if alias.IsPrimary {
			return alias.FullName
		}
	}
	if len(e.Names) > 0 {
		return e.Names[0].FullName
	}
	return ""
}

// Normalized fills empty slices so records always encode lists, never null.
func (e Entity) Normalized() Entity {
	if e.Names == nil {
		e.Names = []Alias{}
	}
	if e.Programs == nil {
		e.Programs = []string{}
	}
	if e.Addresses == nil {
		e.Addresses = []Address{}
	}
	if e.Type == "" {
		e.Type = TypeUnknown
	}
	return e
}

func StringPtr(s string) *string {
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
