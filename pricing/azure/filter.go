package azure

import (
	"fmt"
	"strings"
)

const (
	SQLDatabaseService = "SQL Database"

	backupStorageMeter   = "Backup Storage"
	ltrMeterShort        = "LTR"
	ltrMeterLong         = "Long Term Retention"
	backupProductName    = "Backup"
	consumptionPriceType = "Consumption"
	standardSkuName      = "Standard"
)

// NormalizeRegion turns a display or mixed-case region into the ARM form used by
// the API, e.g. "US East 2" -> "useast2".
func NormalizeRegion(region string) string {
	return strings.Join(strings.Fields(strings.ToLower(region)), "")
}

func joinAnd(clauses ...string) string {
	return strings.Join(clauses, " and ")
}

func eq(field, value string) string {
	return fmt.Sprintf("%s eq '%s'", field, value)
}

func regionClause(region string) string {
	return eq("armRegionName", NormalizeRegion(region))
}

// BackupStorageFilter selects SQL Database backup storage meters in a region.
func BackupStorageFilter(region string) string {
	return joinAnd(
		eq("serviceName", SQLDatabaseService),
		regionClause(region),
		fmt.Sprintf("contains(meterName, '%s')", backupStorageMeter),
	)
}

// LTRFilter selects SQL Database long-term retention meters in a region.
func LTRFilter(region string) string {
	return joinAnd(
		eq("serviceName", SQLDatabaseService),
		regionClause(region),
		fmt.Sprintf("contains(meterName, '%s') or contains(meterName, '%s')", ltrMeterShort, ltrMeterLong),
	)
}

// GenericBackupFilter selects standard consumption backup meters of any service whose
// meter name ends with meterSuffix. The region clause is only added when region is set.
func GenericBackupFilter(service, meterSuffix, region string) string {
	clauses := []string{
		eq("serviceName", service),
		fmt.Sprintf("endswith(meterName,'%s')", meterSuffix),
		eq("productName", backupProductName),
		eq("type", consumptionPriceType),
		eq("skuName", standardSkuName),
	}
	if region != "" {
		clauses = append(clauses, regionClause(region))
	}
	return joinAnd(clauses...)
}

// RegionDiscoveryFilter matches every SQL Database price so the regions serving it
// can be enumerated.
func RegionDiscoveryFilter() string {
	return eq("serviceName", SQLDatabaseService)
}
