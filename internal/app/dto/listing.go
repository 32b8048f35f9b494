package dto

import (
	"rentdom/internal/domain/listings"
)

type PropertyCollection struct {
	Filter string              `json:"filter"`
	Items  []listings.Property `json:"items"`
	Total  int                 `json:"total"`
}

func MapPropertyCollection(filter listings.Filter, items []listings.Property) PropertyCollection {
	if items == nil {
		items = []listings.Property{}
	}
	return PropertyCollection{Filter: filter.Normalized().Category, Items: items, Total: len(items)}
}

// PropertyDetails adds the spreadsheet view of the current month to a catalog record.
type PropertyDetails struct {
	listings.Property
	RentedNow          bool   `json:"rented_now"`
	RentedDays         []int  `json:"rented_days"`
	AvailabilityStatus string `json:"availability_status"`
}
