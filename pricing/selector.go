package pricing

import (
	"slices"
	"strings"

	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
)

// SelectBestLTRPrice picks the retail price of the first locally redundant
// candidate, matching "lrs" in the meter or SKU name regardless of case. When no
// candidate is LRS the first one wins; an empty list yields FallbackPrice.
func SelectBestLTRPrice(items []azure.PriceItem) float64 {
	if item, ok := selectBestLTRItem(items); ok {
		return item.RetailPrice
	}
	return FallbackPrice
}

func selectBestLTRItem(items []azure.PriceItem) (azure.PriceItem, bool) {
	if len(items) == 0 {
		return azure.PriceItem{}, false
	}
	for _, item := range items {
		if isLRS(item) {
			return item, true
		}
	}
	return items[0], true
}

func isLRS(item azure.PriceItem) bool {
	return strings.Contains(strings.ToLower(item.MeterName), "lrs") ||
		strings.Contains(strings.ToLower(item.SkuName), "lrs")
}

// AggregateRegions returns the distinct, non-blank ARM region names of items in
// ascending order. Names are kept exactly as the API returned them.
func AggregateRegions(items []azure.PriceItem) []string {
	regions := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.ArmRegionName) == "" {
			continue
		}
		regions = append(regions, item.ArmRegionName)
	}
	slices.Sort(regions)
	return slices.Compact(regions)
}
