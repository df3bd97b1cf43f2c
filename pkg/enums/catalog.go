package enums

import "fmt"

// CatalogKind tags which table a catalog item came from.
type CatalogKind string

const (
	CatalogKindProduct CatalogKind = "product"
	CatalogKindCard    CatalogKind = "card"
)

// String implements fmt.Stringer.
func (k CatalogKind) String() string {
	return string(k)
}

// StockFilter narrows catalog results by availability.
type StockFilter string

const (
	StockFilterAll        StockFilter = "all"
	StockFilterInStock    StockFilter = "inStock"
	StockFilterOutOfStock StockFilter = "outOfStock"
)

var validStockFilters = []StockFilter{
	StockFilterAll,
	StockFilterInStock,
	StockFilterOutOfStock,
}

// IsValid reports whether the value is a known StockFilter.
func (f StockFilter) IsValid() bool {
	for _, candidate := range validStockFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseStockFilter converts raw input into a StockFilter. Empty input means all.
func ParseStockFilter(value string) (StockFilter, error) {
	if value == "" {
		return StockFilterAll, nil
	}
	if f := StockFilter(value); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("invalid stock filter %q", value)
}

// SortOrder selects the catalog ordering.
type SortOrder string

const (
	SortOrderDefault   SortOrder = "default"
	SortOrderPriceAsc  SortOrder = "priceAsc"
	SortOrderPriceDesc SortOrder = "priceDesc"
	SortOrderNameAsc   SortOrder = "nameAsc"
)

var validSortOrders = []SortOrder{
	SortOrderDefault,
	SortOrderPriceAsc,
	SortOrderPriceDesc,
	SortOrderNameAsc,
}

// IsValid reports whether the value is a known SortOrder.
func (o SortOrder) IsValid() bool {
	for _, candidate := range validSortOrders {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseSortOrder converts raw input into a SortOrder. Empty input means default.
func ParseSortOrder(value string) (SortOrder, error) {
	if value == "" {
		return SortOrderDefault, nil
	}
	if o := SortOrder(value); o.IsValid() {
		return o, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
