package memory

import (
	"context"
	"sync"

	domainlistings "rentdom/internal/domain/listings"
)

// CatalogRepository keeps the property catalog in memory in document order.
type CatalogRepository struct {
	mu    sync.RWMutex
	order []domainlistings.PropertyID
	items map[domainlistings.PropertyID]domainlistings.Property
}

func NewCatalogRepository(props ...domainlistings.Property) *CatalogRepository {
	r := &CatalogRepository{}
	r.Replace(props)
	return r
}

// Replace swaps the whole catalog. Later duplicates overwrite earlier ones.
func (r *CatalogRepository) Replace(props []domainlistings.Property) {
	order := make([]domainlistings.PropertyID, 0, len(props))
	items := make(map[domainlistings.PropertyID]domainlistings.Property, len(props))
	for _, p := range props {
		if _, ok := items[p.ID]; !ok {
			order = append(order, p.ID)
		}
		items[p.ID] = p.Clone()
	}
	r.mu.Lock()
	r.order, r.items = order, items
	r.mu.Unlock()
}

func (r *CatalogRepository) ByID(ctx context.Context, id domainlistings.PropertyID) (domainlistings.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return domainlistings.Property{}, domainlistings.ErrPropertyNotFound
	}
	return p.Clone(), nil
}

func (r *CatalogRepository) Search(ctx context.Context, filter domainlistings.Filter) ([]domainlistings.Property, error) {
	r.mu.RLock()
	all := make([]domainlistings.Property, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.items[id])
	}
	r.mu.RUnlock()
	return filter.Apply(all), nil
}

func (r *CatalogRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

var _ domainlistings.Repository = (*CatalogRepository)(nil)
