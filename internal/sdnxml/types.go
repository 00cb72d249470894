package sdnxml

import (
	"bytes"
	"io"
	"os"
	"strings"
)

type Country struct {
	ID   string `xml:"ID,attr"`
	ISO2 string `xml:"ISO2,attr"`
	Text string `xml:",chardata"`
}

type Location struct {
	ID      string           `xml:"ID,attr"`
	Country *LocationCountry `xml:"LocationCountry"`
	Parts   []LocationPart   `xml:"LocationPart"`
}

type LocationCountry struct {
	CountryID string `xml:"CountryID,attr"`
}

type LocationPart struct {
	TypeID string              `xml:"LocPartTypeID,attr"`
	Values []LocationPartValue `xml:"LocationPartValue"`
}

// LocationPartValue carries its text either directly or in a Value child,
// depending on the publication revision.
type LocationPartValue struct {
	Value *string `xml:"Value"`
	Text  string  `xml:",chardata"`
}

// Text returns the trimmed value of the first non-empty part value.
func (p LocationPart) Text() string {
	for _, v := range p.Values {
		if v.Value != nil {
			if s := strings.TrimSpace(*v.Value); s != "" {
				return s
			}
			continue
		}
		if s := strings.TrimSpace(v.Text); s != "" {
			return s
		}
	}
	return ""
}

type SanctionsEntry struct {
	ProfileID string             `xml:"ProfileID,attr"`
	Measures  []SanctionsMeasure `xml:"SanctionsMeasure"`
}

type SanctionsMeasure struct {
	Comment *string `xml:"Comment"`
}

type DistinctParty struct {
	FixedRef string   `xml:"FixedRef,attr"`
	Comment  *string  `xml:"Comment"`
	Profile  *Profile `xml:"Profile"`
}

type Profile struct {
	ID             string    `xml:"ID,attr"`
	PartySubTypeID string    `xml:"PartySubTypeID,attr"`
	Identity       *Identity `xml:"Identity"`
	Features       []Feature `xml:"Feature"`
}

type Identity struct {
	Aliases []Alias `xml:"Alias"`
}

type Alias struct {
	Primary         string           `xml:"Primary,attr"`
	AliasTypeID     string           `xml:"AliasTypeID,attr"`
	DocumentedNames []DocumentedName `xml:"DocumentedName"`
}

// FirstName returns the alias's first DocumentedName. Later ones are
// alternate-script renderings of the same name.
func (a Alias) FirstName() (DocumentedName, bool) {
	if len(a.DocumentedNames) == 0 {
		return DocumentedName{}, false
	}
	return a.DocumentedNames[0], true
}

type DocumentedName struct {
	Parts []DocumentedNamePart `xml:"DocumentedNamePart"`
}

type DocumentedNamePart struct {
	Values []string `xml:"NamePartValue"`
}

// Text returns the trimmed first NamePartValue of the part.
func (p DocumentedNamePart) Text() string {
	if len(p.Values) == 0 {
		return ""
	}
	return strings.TrimSpace(p.Values[0])
}

type Feature struct {
	FeatureTypeID string           `xml:"FeatureTypeID,attr"`
	Versions      []FeatureVersion `xml:"FeatureVersion"`
}

type FeatureVersion struct {
	Locations []VersionLocation `xml:"VersionLocation"`
}

type VersionLocation struct {
	LocationID string `xml:"LocationID,attr"`
}

// FirstLocationID returns the first VersionLocation reference of the
// feature, or "".
func (f Feature) FirstLocationID() string {
	for _, version := range f.Versions {
		if len(version.Locations) > 0 {
			return version.Locations[0].LocationID
		}
	}
	return ""
}

// FileSource reads the document from a path on disk.
type FileSource string

func (p FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesSource serves an in-memory document.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}
