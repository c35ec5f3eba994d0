package pricing

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jz-wilson/sql-backup-pricing/pricing/azure"
)

const (
	opSQLBackup = "sql_backup"
	opLTRBackup = "ltr_backup"
	opBestLTR   = "best_ltr"
	opBackup    = "azure_backup"
	opRegions   = "regions"

	stageUpstream   = "upstream"
	stageSynthetic  = "synthetic"
	stageSQLBackup  = "sql_backup"
	stageStaticList = "static_regions"
)

// Resolver answers backup storage pricing questions from the Azure Retail Prices
// API. It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	client  azure.RetailPricesClient
	metrics *Metrics
	now     func() time.Time
}

// NewResolver returns a Resolver querying client. metrics may be nil.
func NewResolver(client azure.RetailPricesClient, metrics *Metrics) *Resolver {
	return &Resolver{
		client:  client,
		metrics: metrics,
		now:     time.Now,
	}
}

// SQLBackupPricing returns the SQL Database backup storage prices for region.
// A failed lookup yields a single synthesized item priced at FallbackPrice; a
// successful lookup with no matches yields an empty list.
func (r *Resolver) SQLBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error) {
	r.metrics.resolved(opSQLBackup)
	return r.sqlBackupPricing(ctx, region)
}

func (r *Resolver) sqlBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error) {
	return cascade[[]azure.PriceItem]{
		operation: opSQLBackup,
		metrics:   r.metrics,
		stages: []stage[[]azure.PriceItem]{
			{
				name: stageUpstream,
				run: func(ctx context.Context) ([]azure.PriceItem, error) {
					return r.client.FetchPrices(ctx, azure.BackupStorageFilter(region))
				},
			},
			{
				name: stageSynthetic,
				run: func(context.Context) ([]azure.PriceItem, error) {
					return []azure.PriceItem{fallbackPriceItem(region, r.now())}, nil
				},
			},
		},
	}.run(ctx)
}

// LTRBackupPricing returns the long-term retention prices for region. When the
// LTR query fails or matches nothing, the answer of SQLBackupPricing is used.
func (r *Resolver) LTRBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error) {
	r.metrics.resolved(opLTRBackup)
	return r.ltrBackupPricing(ctx, region)
}

func (r *Resolver) ltrBackupPricing(ctx context.Context, region string) ([]azure.PriceItem, error) {
	return cascade[[]azure.PriceItem]{
		operation: opLTRBackup,
		metrics:   r.metrics,
		stages: []stage[[]azure.PriceItem]{
			{
				name: stageUpstream,
				run: func(ctx context.Context) ([]azure.PriceItem, error) {
					return r.client.FetchPrices(ctx, azure.LTRFilter(region))
				},
				usable: nonEmpty[azure.PriceItem],
			},
			{
				name: stageSQLBackup,
				run: func(ctx context.Context) ([]azure.PriceItem, error) {
					return r.sqlBackupPricing(ctx, region)
				},
			},
		},
	}.run(ctx)
}

// BestLTRPrice returns a single LTR price per GB/month for region, preferring
// locally redundant storage. It returns FallbackPrice when nothing else is known.
func (r *Resolver) BestLTRPrice(ctx context.Context, region string) (float64, error) {
	r.metrics.resolved(opBestLTR)
	items, err := r.ltrBackupPricing(ctx, region)
	if err != nil {
		return 0, err
	}
	price := SelectBestLTRPrice(items)
	// Only API-sourced prices are exported, labeled with the API's region name.
	if best, ok := selectBestLTRItem(items); ok && !IsFallback(best) && best.ArmRegionName != "" {
		r.metrics.setBestLTRPrice(best.ArmRegionName, price)
	}
	log.Debugf("resolved best LTR price [region=%s, candidates=%d, price=%f]", region, len(items), price)
	return price, nil
}

// BackupPricing returns standard consumption backup prices of any service whose
// meter name ends with meterSuffix, optionally limited to region. There is no
// fallback: upstream errors are returned unchanged.
func (r *Resolver) BackupPricing(ctx context.Context, service, meterSuffix, region string) ([]azure.PriceItem, error) {
	r.metrics.resolved(opBackup)
	items, err := r.client.FetchPrices(ctx, azure.GenericBackupFilter(service, meterSuffix, region))
	if err != nil {
		log.WithError(err).Errorf("error while fetching backup prices [service=%s, meter_suffix=%s, region=%s]", service, meterSuffix, region)
		return nil, err
	}
	return items, nil
}

// AvailableRegions lists the ARM regions with SQL Database prices. When the
// lookup fails the static FallbackRegions list is returned.
func (r *Resolver) AvailableRegions(ctx context.Context) ([]string, error) {
	r.metrics.resolved(opRegions)
	return cascade[[]string]{
		operation: opRegions,
		metrics:   r.metrics,
		stages: []stage[[]string]{
			{
				name: stageUpstream,
				run: func(ctx context.Context) ([]string, error) {
					items, err := r.client.FetchPrices(ctx, azure.RegionDiscoveryFilter())
					if err != nil {
						return nil, err
					}
					return AggregateRegions(items), nil
				},
			},
			{
				name: stageStaticList,
				run: func(context.Context) ([]string, error) {
					return FallbackRegions(), nil
				},
			},
		},
	}.run(ctx)
}
