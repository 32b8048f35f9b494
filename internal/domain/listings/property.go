package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrPropertyNotFound = errors.New("listings: property not found")
	ErrPropertyID       = errors.New("listings: property id must be positive")
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrNegativePrice    = errors.New("listings: price must be non-negative")
	ErrDuplicateID      = errors.New("listings: duplicate property id")
)

// PropertyID is the canonical identifier used by the catalog and the availability sheet mapping.
type PropertyID int

// Property is one rental unit as published in the catalog document.
type Property struct {
	ID          PropertyID `json:"id"`
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Price       int64      `json:"price"`
	Address     string     `json:"address"`
	Area        string     `json:"area"`
	Rooms       int        `json:"rooms"`
	Floor       string     `json:"floor"`
	Amenities   []string   `json:"amenities"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Available   bool       `json:"available"`
	Rating      float64    `json:"rating"`
	Reviews     int        `json:"reviews"`
}

func (p Property) Validate() error {
	if p.ID <= 0 {
		return ErrPropertyID
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Clone returns a copy that shares no slices with p.
func (p Property) Clone() Property {
	out := p
	out.Amenities = append([]string(nil), p.Amenities...)
	out.Images = append([]string(nil), p.Images...)
	return out
}

// Repository exposes the read side of the catalog.
type Repository interface {
	ByID(ctx context.Context, id PropertyID) (Property, error)
	Search(ctx context.Context, filter Filter) ([]Property, error)
}

type document struct {
	Properties []Property `json:"properties"`
}

// DecodeDocument reads a `{ "properties": [...] }` catalog document and validates every record.
func DecodeDocument(r io.Reader) ([]Property, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("listings: decode catalog: %w", err)
	}
	seen := make(map[PropertyID]struct{}, len(doc.Properties))
	for i, p := range doc.Properties {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("listings: property #%d: %w", i, err)
		}
		if _, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return doc.Properties, nil
}
