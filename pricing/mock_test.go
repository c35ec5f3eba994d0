package pricing

import (
	"context"
	"sync"

	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
)

// mockRetailPricesClient implements azure.RetailPricesClient for testing and
// records every filter it was asked for.
type mockRetailPricesClient struct {
	FetchPricesFn func(ctx context.Context, filter string) ([]azure.PriceItem, error)

	mu      sync.Mutex
	filters []string
}

func (m *mockRetailPricesClient) FetchPrices(ctx context.Context, filter string) ([]azure.PriceItem, error) {
	m.mu.Lock()
	m.filters = append(m.filters, filter)
	m.mu.Unlock()
	if m.FetchPricesFn != nil {
		return m.FetchPricesFn(ctx, filter)
	}
	return []azure.PriceItem{}, nil
}

func (m *mockRetailPricesClient) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.filters...)
}

func priceItem(region, meterName, skuName string, price float64) azure.PriceItem {
	return azure.PriceItem{
		CurrencyCode:       "USD",
		RetailPrice:        price,
		UnitPrice:          price,
		ArmRegionName:      region,
		Location:           region,
		EffectiveStartDate: "2024-01-01T00:00:00Z",
		MeterID:            "meter-" + meterName,
		MeterName:          meterName,
		ProductID:          "product",
		SkuID:              "sku",
		ProductName:        "SQL Database",
		SkuName:            skuName,
		ServiceName:        "SQL Database",
		ServiceID:          "service",
		ServiceFamily:      "Databases",
		UnitOfMeasure:      "1 GB/Month",
		Type:               "Consumption",
	}
}
