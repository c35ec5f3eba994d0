// Package estimate projects the storage cost of SQL Database long-term
// retention backups from a per GB/month price.
package estimate

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// weeksPerMonth is the average number of weeks in a month.
const weeksPerMonth = 4.33

// Input limits.
const (
	MaxWeeklyBackups  = 520
	MaxMonthlyBackups = 120
	MaxYearlyBackups  = 10
	MaxAnnualGrowth   = 100
	MaxTimelineYears  = 10
)

var (
	weeksPerMonthDec = decimal.NewFromFloat(weeksPerMonth)
	two              = decimal.NewFromInt(2)
	twelve           = decimal.NewFromInt(12)
	hundred          = decimal.NewFromInt(100)
)

// RetentionSettings is the number of weekly, monthly and yearly backups kept.
type RetentionSettings struct {
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
	Yearly  int `json:"yearly"`
}

func (r RetentionSettings) keepsBackups() bool {
	return r.Weekly > 0 || r.Monthly > 0 || r.Yearly > 0
}

func (r RetentionSettings) validate() error {
	if r.Weekly < 0 || r.Monthly < 0 || r.Yearly < 0 {
		return fmt.Errorf("retention counts must not be negative: %+v", r)
	}
	if r.Weekly > MaxWeeklyBackups || r.Monthly > MaxMonthlyBackups || r.Yearly > MaxYearlyBackups {
		return fmt.Errorf("retention counts exceed %d weekly, %d monthly or %d yearly backups: %+v",
			MaxWeeklyBackups, MaxMonthlyBackups, MaxYearlyBackups, r)
	}
	return nil
}

// checkNumber rejects NaN, infinities and values outside [0, limit]. A limit
// of zero means no upper bound.
func checkNumber(name string, v, limit float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("%s must be a finite number", name)
	case v < 0:
		return fmt.Errorf("%s must not be negative", name)
	case limit > 0 && v > limit:
		return fmt.Errorf("%s must not exceed %g", name, limit)
	}
	return nil
}

func validateInputs(size, growth, price float64, retention RetentionSettings) error {
	if err := checkNumber("database size", size, 0); err != nil {
		return err
	}
	if err := checkNumber("annual growth", growth, MaxAnnualGrowth); err != nil {
		return err
	}
	if err := checkNumber("storage price", price, 0); err != nil {
		return err
	}
	return retention.validate()
}

// Parameters describe one database for a cost breakdown.
type Parameters struct {
	DBSizeGB            float64           `json:"dbSizeGb"`
	AnnualGrowthPercent float64           `json:"annualGrowthPercent"`
	Retention           RetentionSettings `json:"retention"`
	StoragePrice        float64           `json:"storagePrice"`
}

// Validate reports the first parameter that is not finite or is out of range.
func (p Parameters) Validate() error {
	return validateInputs(p.DBSizeGB, p.AnnualGrowthPercent, p.StoragePrice, p.Retention)
}

// ValidateTimelineYears reports whether years is an acceptable timeline length.
func ValidateTimelineYears(years float64) error {
	return checkNumber("timeline years", years, MaxTimelineYears)
}

// Breakdown is the steady-state monthly cost of each retention tier.
type Breakdown struct {
	WeeklyBackupCost  float64 `json:"weeklyBackupCost"`
	MonthlyBackupCost float64 `json:"monthlyBackupCost"`
	YearlyBackupCost  float64 `json:"yearlyBackupCost"`
	TotalMonthlyCost  float64 `json:"totalMonthlyCost"`
	TotalYearlyCost   float64 `json:"totalYearlyCost"`
}

// CurrentBreakdown prices the backups retained for a database of the given
// size. Each tier is billed at the average size of its retained backups,
// assuming linear growth over the retention window.
func CurrentBreakdown(p Parameters) (Breakdown, error) {
	if err := p.Validate(); err != nil {
		return Breakdown{}, err
	}

	size := decimal.NewFromFloat(p.DBSizeGB)
	price := decimal.NewFromFloat(p.StoragePrice)
	growth := decimal.NewFromFloat(p.AnnualGrowthPercent).Div(hundred).Div(twelve)

	weekly := decimal.NewFromInt(int64(p.Retention.Weekly))
	monthly := decimal.NewFromInt(int64(p.Retention.Monthly))
	yearly := decimal.NewFromInt(int64(p.Retention.Yearly))

	averageSize := func(months decimal.Decimal) decimal.Decimal {
		return size.Add(size.Mul(growth).Mul(months).Div(two))
	}

	weeklyCost := averageSize(weekly.Div(weeksPerMonthDec)).Mul(weekly).Mul(price)
	monthlyCost := averageSize(monthly).Mul(monthly).Mul(price)
	yearlyCost := averageSize(yearly.Mul(twelve)).Mul(yearly).Mul(price)
	totalMonthly := weeklyCost.Add(monthlyCost).Add(yearlyCost)

	return Breakdown{
		WeeklyBackupCost:  round(weeklyCost),
		MonthlyBackupCost: round(monthlyCost),
		YearlyBackupCost:  round(yearlyCost),
		TotalMonthlyCost:  round(totalMonthly),
		TotalYearlyCost:   round(totalMonthly.Mul(twelve)),
	}, nil
}

func round(d decimal.Decimal) float64 {
	return d.Round(6).InexactFloat64()
}

// Costs is the storage cost of the backups retained at one point in time.
type Costs struct {
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
	Total   float64 `json:"total"`
}

// CostAtMonth prices the backups that exist month months after the first
// backup, for a database currently currentSize GB growing by monthlyGrowth per
// month. Older backups are scaled back by the growth rate.
func CostAtMonth(month, currentSize float64, retention RetentionSettings, price, monthlyGrowth float64) Costs {
	var c Costs
	sizeMonthsAgo := func(months float64) float64 {
		return currentSize * math.Pow(1+monthlyGrowth, -months)
	}

	if retention.Weekly > 0 {
		weeks := math.Min(month*weeksPerMonth, float64(retention.Weekly))
		for week := 0; float64(week) < weeks; week++ {
			c.Weekly += sizeMonthsAgo(math.Floor(float64(week)/weeksPerMonth)) * price
		}
	}

	for m := 0; m < retention.Monthly; m++ {
		if month-float64(m) >= 0 {
			c.Monthly += sizeMonthsAgo(float64(m)) * price
		}
	}

	for y := 0; y < retention.Yearly; y++ {
		if month-float64(y*12) >= 0 {
			c.Yearly += sizeMonthsAgo(float64(y*12)) * price
		}
	}

	c.Total = c.Weekly + c.Monthly + c.Yearly
	return c
}

// Interval is the spacing of timeline points.
type Interval string

const (
	Weekly    Interval = "weekly"
	Monthly   Interval = "monthly"
	Quarterly Interval = "quarterly"
	Yearly    Interval = "yearly"
)

// ParseInterval accepts weekly, monthly, quarterly or yearly. Empty means monthly.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case "":
		return Monthly, nil
	case Weekly, Monthly, Quarterly, Yearly:
		return Interval(s), nil
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// step returns the distance between points in months.
func (i Interval) step() float64 {
	switch i {
	case Weekly:
		return 0.25
	case Quarterly:
		return 3
	case Yearly:
		return 12
	}
	return 1
}

func (i Interval) label(month float64) string {
	switch i {
	case Weekly:
		return "Week " + strconv.Itoa(int(math.Floor(month*weeksPerMonth)))
	case Quarterly:
		return "Q" + strconv.Itoa(int(math.Floor(month/3)))
	case Yearly:
		return "Year " + strconv.Itoa(int(math.Floor(month/12)))
	}
	return "Month " + strconv.FormatFloat(month, 'f', -1, 64)
}

// Series is one plotted line of a Timeline.
type Series struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Timeline holds cost series sampled at Labels.
type Timeline struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

const (
	SeriesTotal   = "Total Cost"
	SeriesWeekly  = "Weekly Backups"
	SeriesMonthly = "Monthly Backups"
	SeriesYearly  = "Yearly Backups"
)

// BuildTimeline samples CostAtMonth over years years at the given interval for
// a database starting at initialSize GB. A series is only included when its
// retention tier keeps backups; the total only when any tier does.
func BuildTimeline(initialSize, annualGrowthPercent float64, retention RetentionSettings, price, years float64, interval Interval) (Timeline, error) {
	if err := validateInputs(initialSize, annualGrowthPercent, price, retention); err != nil {
		return Timeline{}, err
	}
	if err := ValidateTimelineYears(years); err != nil {
		return Timeline{}, err
	}
	if _, err := ParseInterval(string(interval)); err != nil {
		return Timeline{}, err
	}

	months := years * 12
	growth := annualGrowthPercent / 100 / 12
	step := interval.step()

	var tl Timeline
	var total, weekly, monthly, yearly []float64
	for month := 0.0; month <= months; month = math.Round((month+step)*100) / 100 {
		size := initialSize * math.Pow(1+growth, month)
		c := CostAtMonth(month, size, retention, price, growth)

		tl.Labels = append(tl.Labels, interval.label(month))
		total = append(total, c.Total)
		weekly = append(weekly, c.Weekly)
		monthly = append(monthly, c.Monthly)
		yearly = append(yearly, c.Yearly)
	}

	if retention.keepsBackups() {
		tl.Series = append(tl.Series, Series{Label: SeriesTotal, Data: total})
	}
	if retention.Weekly > 0 {
		tl.Series = append(tl.Series, Series{Label: SeriesWeekly, Data: weekly})
	}
	if retention.Monthly > 0 {
		tl.Series = append(tl.Series, Series{Label: SeriesMonthly, Data: monthly})
	}
	if retention.Yearly > 0 {
		tl.Series = append(tl.Series, Series{Label: SeriesYearly, Data: yearly})
	}
	return tl, nil
}
