package azure

import "context"

// RetailPricesClient fetches price records from the Azure Retail Prices API.
type RetailPricesClient interface {
	// FetchPrices runs a single query with the given OData filter.
	FetchPrices(ctx context.Context, filter string) ([]PriceItem, error)
}

// ClientFactory creates Azure API clients, enabling dependency injection for testing.
type ClientFactory interface {
	NewRetailPricesClient() RetailPricesClient
}
