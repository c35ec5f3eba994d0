package azure

import (
	"fmt"

	"github.com/goccy/go-json"
)

// PricesResponse represents one page returned by the Azure Retail Prices API.
type PricesResponse struct {
	BillingCurrency    string      `json:"BillingCurrency"`
	CustomerEntityID   string      `json:"CustomerEntityId"`
	CustomerEntityType string      `json:"CustomerEntityType"`
	Items              []PriceItem `json:"Items"`
	NextPageLink       string      `json:"NextPageLink"`
	Count              int         `json:"Count"`
}

// PriceItem represents a single price record from the Azure Retail Prices API.
type PriceItem struct {
	CurrencyCode       string  `json:"currencyCode"`
	TierMinimumUnits   float64 `json:"tierMinimumUnits"`
	RetailPrice        float64 `json:"retailPrice"`
	UnitPrice          float64 `json:"unitPrice"`
	ArmRegionName      string  `json:"armRegionName"`
	Location           string  `json:"location"`
	EffectiveStartDate string  `json:"effectiveStartDate"`
	MeterID            string  `json:"meterId"`
	MeterName          string  `json:"meterName"`
	ProductID          string  `json:"productId"`
	SkuID              string  `json:"skuId"`
	ProductName        string  `json:"productName"`
	SkuName            string  `json:"skuName"`
	ServiceName        string  `json:"serviceName"`
	ServiceID          string  `json:"serviceId"`
	ServiceFamily      string  `json:"serviceFamily"`
	UnitOfMeasure      string  `json:"unitOfMeasure"`
	Type               string  `json:"type"`
}

// requiredItemFields lists the keys every upstream price record must carry.
var requiredItemFields = []string{
	"currencyCode", "tierMinimumUnits", "retailPrice", "unitPrice",
	"armRegionName", "location", "effectiveStartDate",
	"meterId", "meterName", "productId", "skuId", "productName", "skuName",
	"serviceName", "serviceId", "serviceFamily", "unitOfMeasure", "type",
}

// UnmarshalJSON rejects records with missing or null fields.
func (p *PriceItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range requiredItemFields {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("price item: missing field %q", name)
		}
	}

	type plain PriceItem
	return json.Unmarshal(data, (*plain)(p))
}

// UnmarshalJSON rejects pages without an Items array.
func (r *PricesResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["Items"]; !ok || string(raw) == "null" {
		return fmt.Errorf("prices response: missing field %q", "Items")
	}

	type plain PricesResponse
	return json.Unmarshal(data, (*plain)(r))
}
