package pricing

import (
	"time"

	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
)

// Values used when the Retail Prices API cannot answer. Tests assert against
// these rather than literals.
const (
	// FallbackPrice is the per GB/month price reported when no upstream price is usable.
	FallbackPrice = 0.05

	// FallbackMarker fills every id field of a synthesized PriceItem.
	FallbackMarker = "fallback"

	DefaultCurrency = "USD"

	FallbackMeterName     = "Backup Storage LRS"
	FallbackProductName   = "SQL Database"
	FallbackSkuName       = "General Purpose"
	FallbackServiceFamily = "Databases"
	FallbackUnitOfMeasure = "GB/Month"
	FallbackPriceType     = "Consumption"
)

var fallbackRegions = [...]string{
	"eastus",
	"westus",
	"westus2",
	"eastus2",
	"centralus",
	"northeurope",
	"westeurope",
	"eastasia",
	"southeastasia",
}

// FallbackRegions returns the regions offered when region discovery fails, in
// their documented order. Each call returns a fresh slice.
func FallbackRegions() []string {
	return append([]string(nil), fallbackRegions[:]...)
}

// fallbackPriceItem synthesizes the backup storage price for region. The ARM
// name is normalized, the location keeps the caller's spelling.
func fallbackPriceItem(region string, now time.Time) azure.PriceItem {
	return azure.PriceItem{
		CurrencyCode:       DefaultCurrency,
		TierMinimumUnits:   0,
		RetailPrice:        FallbackPrice,
		UnitPrice:          FallbackPrice,
		ArmRegionName:      azure.NormalizeRegion(region),
		Location:           region,
		EffectiveStartDate: now.UTC().Format(time.RFC3339),
		MeterID:            FallbackMarker,
		MeterName:          FallbackMeterName,
		ProductID:          FallbackMarker,
		SkuID:              FallbackMarker,
		ProductName:        FallbackProductName,
		SkuName:            FallbackSkuName,
		ServiceName:        azure.SQLDatabaseService,
		ServiceID:          FallbackMarker,
		ServiceFamily:      FallbackServiceFamily,
		UnitOfMeasure:      FallbackUnitOfMeasure,
		Type:               FallbackPriceType,
	}
}

// IsFallback reports whether item was synthesized rather than read from the API.
func IsFallback(item azure.PriceItem) bool {
	return item.MeterID == FallbackMarker && item.SkuID == FallbackMarker && item.ProductID == FallbackMarker
}
