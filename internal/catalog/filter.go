package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/phoolcraft/phool-backend/pkg/enums"
	"github.com/phoolcraft/phool-backend/pkg/types"
)

// Filter describes a shop listing query. Zero prices mean "no bound".
type Filter struct {
	SearchText string
	Category   string
	Stock      enums.StockFilter
	MinPrice   int64
	MaxPrice   int64
	Sort       enums.SortOrder
}

// Apply runs text, category, stock and price filters in that order, then
// sorts. Filtering keeps input order; only the final sort reorders.
func Apply(items []Item, f Filter) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if !MatchesText(item, f.SearchText) ||
			!MatchesCategory(item, f.Category) ||
			!MatchesStock(item, f.Stock) ||
			!MatchesPrice(item, f.MinPrice, f.MaxPrice) {
			continue
		}
		out = append(out, item)
	}
	Sort(out, f.Sort)
	return out
}

// MatchesText is a case-insensitive substring match against the name,
// description or category. Blank text matches everything.
func MatchesText(item Item, text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle) ||
		strings.Contains(strings.ToLower(item.Category), needle)
}

// MatchesCategory reports whether category is one of the item's tags.
// Blank and "All" match everything.
func MatchesCategory(item Item, category string) bool {
	return types.HasCategory(item.Category, category)
}

// MatchesStock applies the availability filter. Unknown values keep all.
func MatchesStock(item Item, stock enums.StockFilter) bool {
	switch stock {
	case enums.StockFilterInStock:
		return item.InStock
	case enums.StockFilterOutOfStock:
		return !item.InStock
	default:
		return true
	}
}

// MatchesPrice keeps items within [min, max]; non-positive bounds are ignored.
func MatchesPrice(item Item, min, max int64) bool {
	if min > 0 && item.Price < min {
		return false
	}
	if max > 0 && item.Price > max {
		return false
	}
	return true
}

// Sort orders items in place. The sort is stable so ties keep their
// filtered order, and SortOrderDefault leaves items untouched.
func Sort(items []Item, order enums.SortOrder) {
	switch order {
	case enums.SortOrderPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	case enums.SortOrderPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case enums.SortOrderNameAsc:
		col := collate.New(language.English, collate.IgnoreCase, collate.Loose)
		sort.SliceStable(items, func(i, j int) bool {
			return col.CompareString(items[i].Name, items[j].Name) < 0
		})
	}
}

// Categories lists every distinct tag across items in first-seen order.
func Categories(items []Item) []string {
	var joined []string
	for _, item := range items {
		joined = append(joined, item.Category)
	}
	return types.ParseCategories(strings.Join(joined, ","))
}
