package availability

import (
	"strings"

	"rentdom/internal/domain/listings"
)

// Mapping binds a free-text sheet label to a catalog property.
type Mapping struct {
	CSVName    string
	PropertyID listings.PropertyID
}

// PropertyMapper resolves sheet labels with exact, case-insensitive matching.
type PropertyMapper struct {
	entries []Mapping
}

func NewPropertyMapper(entries ...Mapping) PropertyMapper {
	return PropertyMapper{entries: append([]Mapping(nil), entries...)}
}

// DefaultMappings is the label table used by the published spreadsheet.
func DefaultMappings() []Mapping {
	return []Mapping{
		{CSVName: "Ленинский 36 1 комната", PropertyID: 2},
		{CSVName: "Ленинский 36 2 комнаты", PropertyID: 1},
		{CSVName: "Ленинский 36 комната 2", PropertyID: 1},
		{CSVName: "Согласия 50", PropertyID: 3},
	}
}

func DefaultPropertyMapper() PropertyMapper {
	return NewPropertyMapper(DefaultMappings()...)
}

// Lookup returns the property for label, or false when the label is unknown.
func (m PropertyMapper) Lookup(label string) (listings.PropertyID, bool) {
	for _, e := range m.entries {
		if strings.EqualFold(e.CSVName, label) {
			return e.PropertyID, true
		}
	}
	return 0, false
}

func (m PropertyMapper) Entries() []Mapping {
	return append([]Mapping(nil), m.entries...)
}
