package listings

import "strings"

const (
	FilterAll       = "all"
	FilterAvailable = "available"
)

// Filter selects catalog entries: "all", "available", or a substring of the property type.
type Filter struct {
	Category string
}

// Normalized returns a sanitized copy of f.
func (f Filter) Normalized() Filter {
	out := f
	out.Category = strings.TrimSpace(out.Category)
	if out.Category == "" {
		out.Category = FilterAll
	}
	return out
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Property) bool {
	f = f.Normalized()
	switch f.Category {
	case FilterAll:
		return true
	case FilterAvailable:
		return p.Available
	default:
		return strings.Contains(p.Type, f.Category)
	}
}

// Apply filters properties preserving catalog order.
func (f Filter) Apply(items []Property) []Property {
	out := make([]Property, 0, len(items))
	for _, p := range items {
		if f.Match(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}
