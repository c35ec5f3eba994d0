package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/jz-wilson/sql-backup-pricing/pricing"
	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
	"github.com/jz-wilson/sql-backup-pricing/pricing/estimate"
)

// PricingSourceHeader is set to "fallback" when the response contains synthesized prices.
const PricingSourceHeader = "X-Pricing-Source"

// PricingService is the set of lookups served over HTTP. *pricing.Resolver implements it.
type PricingService interface {
	SQLBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error)
	LTRBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error)
	BestLTRPrice(ctx context.Context, region string) (float64, error)
	BackupPricing(ctx context.Context, service, meterSuffix, region string) ([]azure.PriceItem, error)
	AvailableRegions(ctx context.Context) ([]string, error)
}

type handlers struct {
	pricing PricingService
}

// regionParam returns the decoded region route parameter. chi matches on
// RawPath when the request carries one, leaving the value escaped.
func regionParam(r *http.Request) string {
	raw := chi.URLParam(r, "region")
	if r.URL.RawPath == "" {
		return raw
	}
	if region, err := url.PathUnescape(raw); err == nil {
		return region
	}
	return raw
}

func markFallback(w http.ResponseWriter, items []azure.PriceItem) {
	for _, item := range items {
		if pricing.IsFallback(item) {
			w.Header().Set(PricingSourceHeader, "fallback")
			return
		}
	}
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "Azure Pricing API is healthy")
}

func (h *handlers) sqlBackupPricing(w http.ResponseWriter, r *http.Request) {
	region := regionParam(r)
	items, err := h.pricing.SQLBackupPricing(r.Context(), region)
	if err != nil {
		log.WithError(err).Errorf("error fetching SQL backup pricing [region=%s]", region)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch pricing: %v", err))
		return
	}
	markFallback(w, items)
	writeSuccess(w, items)
}

func (h *handlers) ltrBackupPricing(w http.ResponseWriter, r *http.Request) {
	region := regionParam(r)
	items, err := h.pricing.LTRBackupPricing(r.Context(), region)
	if err != nil {
		log.WithError(err).Errorf("error fetching LTR backup pricing [region=%s]", region)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch LTR pricing: %v", err))
		return
	}
	markFallback(w, items)
	writeSuccess(w, items)
}

func (h *handlers) bestLTRPricing(w http.ResponseWriter, r *http.Request) {
	region := regionParam(r)
	price, err := h.pricing.BestLTRPrice(r.Context(), region)
	if err != nil {
		log.WithError(err).Errorf("error fetching best LTR pricing [region=%s]", region)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch best LTR pricing: %v", err))
		return
	}
	writeSuccess(w, PriceResponse{Price: price, Currency: pricing.DefaultCurrency, Region: region})
}

func (h *handlers) backupPricing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	service, meterSuffix := q.Get("service"), q.Get("meter_suffix")
	if service == "" || meterSuffix == "" {
		writeError(w, http.StatusBadRequest, "Query parameters service and meter_suffix are required")
		return
	}
	region := q.Get("region")

	items, err := h.pricing.BackupPricing(r.Context(), service, meterSuffix, region)
	if err != nil {
		log.WithError(err).Errorf("error fetching Azure backup pricing [service=%s, meter_suffix=%s, region=%s]", service, meterSuffix, region)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch backup pricing: %v", err))
		return
	}
	writeSuccess(w, items)
}

func (h *handlers) availableRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.pricing.AvailableRegions(r.Context())
	if err != nil {
		log.WithError(err).Error("error fetching available regions")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch regions: %v", err))
		return
	}
	writeSuccess(w, RegionsResponse{Regions: regions})
}

// EstimateResponse is the body of the LTR cost estimate endpoint.
type EstimateResponse struct {
	Region       string              `json:"region"`
	Currency     string              `json:"currency"`
	StoragePrice float64             `json:"storagePrice"`
	Parameters   estimate.Parameters `json:"parameters"`
	Breakdown    estimate.Breakdown  `json:"breakdown"`
	Timeline     *estimate.Timeline  `json:"timeline,omitempty"`
}

func (h *handlers) ltrEstimate(w http.ResponseWriter, r *http.Request) {
	region := regionParam(r)
	q := r.URL.Query()

	var perr error
	floatParam := func(name string, def float64) float64 {
		raw := q.Get(name)
		if raw == "" || perr != nil {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			perr = fmt.Errorf("query parameter %s: %w", name, err)
		}
		return v
	}
	intParam := func(name string) int {
		raw := q.Get(name)
		if raw == "" || perr != nil {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			perr = fmt.Errorf("query parameter %s: %w", name, err)
		}
		return v
	}

	params := estimate.Parameters{
		DBSizeGB:            floatParam("db_size", 0),
		AnnualGrowthPercent: floatParam("growth_rate", 0),
		Retention: estimate.RetentionSettings{
			Weekly:  intParam("weekly"),
			Monthly: intParam("monthly"),
			Yearly:  intParam("yearly"),
		},
	}
	timelineYears := floatParam("timeline_years", 0)
	interval, err := estimate.ParseInterval(q.Get("interval"))
	if perr == nil && err != nil {
		perr = err
	}
	if perr == nil {
		perr = params.Validate()
	}
	if perr == nil {
		perr = estimate.ValidateTimelineYears(timelineYears)
	}
	if perr != nil {
		writeError(w, http.StatusBadRequest, perr.Error())
		return
	}

	price, err := h.pricing.BestLTRPrice(r.Context(), region)
	if err != nil {
		log.WithError(err).Errorf("error fetching best LTR pricing for estimate [region=%s]", region)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch best LTR pricing: %v", err))
		return
	}
	params.StoragePrice = price

	breakdown, err := estimate.CurrentBreakdown(params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := EstimateResponse{
		Region:       region,
		Currency:     pricing.DefaultCurrency,
		StoragePrice: price,
		Parameters:   params,
		Breakdown:    breakdown,
	}
	if timelineYears > 0 {
		tl, err := estimate.BuildTimeline(params.DBSizeGB, params.AnnualGrowthPercent, params.Retention, price, timelineYears, interval)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		resp.Timeline = &tl
	}
	writeSuccess(w, resp)
}
