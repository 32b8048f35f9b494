package listings

import (
	"time"
)

// CatalogLoaded is recorded when a catalog document replaces the served properties.
type CatalogLoaded struct {
	Source      string
	PropertyIDs []PropertyID
	Available   int
	At          time.Time
}

func (e CatalogLoaded) EventName() string     { return "catalog.loaded" }
func (e CatalogLoaded) AggregateID() string   { return "catalog" }
func (e CatalogLoaded) OccurredAt() time.Time { return e.At }

func CatalogLoadedEvent(source string, props []Property, at time.Time) CatalogLoaded {
	ev := CatalogLoaded{Source: source, PropertyIDs: make([]PropertyID, 0, len(props)), At: at}
	for _, p := range props {
		ev.PropertyIDs = append(ev.PropertyIDs, p.ID)
		if p.Available {
			ev.Available++
		}
	}
	return ev
}
