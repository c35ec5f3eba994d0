package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRetention = RetentionSettings{Weekly: 4, Monthly: 3, Yearly: 1}

func TestCurrentBreakdown_ZeroRetention(t *testing.T) {
	b, err := CurrentBreakdown(Parameters{DBSizeGB: 100, AnnualGrowthPercent: 10, StoragePrice: 0.10})
	require.NoError(t, err)
	assert.Equal(t, Breakdown{}, b)
}

func TestCurrentBreakdown_NoGrowth(t *testing.T) {
	b, err := CurrentBreakdown(Parameters{DBSizeGB: 100, Retention: defaultRetention, StoragePrice: 0.05})
	require.NoError(t, err)
	assert.InDelta(t, 20, b.WeeklyBackupCost, 1e-9)
	assert.InDelta(t, 15, b.MonthlyBackupCost, 1e-9)
	assert.InDelta(t, 5, b.YearlyBackupCost, 1e-9)
	assert.InDelta(t, 40, b.TotalMonthlyCost, 1e-9)
	assert.InDelta(t, 480, b.TotalYearlyCost, 1e-9)
}

func TestCurrentBreakdown_WithGrowth(t *testing.T) {
	// 12% a year is 1% a month; yearly tier averages 100 + 100*0.01*12/2 = 106 GB.
	b, err := CurrentBreakdown(Parameters{DBSizeGB: 100, AnnualGrowthPercent: 12, Retention: RetentionSettings{Yearly: 1}, StoragePrice: 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 10.6, b.YearlyBackupCost, 1e-9)
}

func TestCurrentBreakdown_ConsistentTotals(t *testing.T) {
	b, err := CurrentBreakdown(Parameters{DBSizeGB: 50, AnnualGrowthPercent: 12, Retention: defaultRetention, StoragePrice: 0.2})
	require.NoError(t, err)
	assert.InDelta(t, b.WeeklyBackupCost+b.MonthlyBackupCost+b.YearlyBackupCost, b.TotalMonthlyCost, 1e-5)
	assert.InDelta(t, b.TotalMonthlyCost*12, b.TotalYearlyCost, 1e-4)
}

func TestCurrentBreakdown_ScalesWithSizeAndPrice(t *testing.T) {
	base, err := CurrentBreakdown(Parameters{DBSizeGB: 10, Retention: defaultRetention, StoragePrice: 0.1})
	require.NoError(t, err)
	bigger, err := CurrentBreakdown(Parameters{DBSizeGB: 20, Retention: defaultRetention, StoragePrice: 0.1})
	require.NoError(t, err)
	pricier, err := CurrentBreakdown(Parameters{DBSizeGB: 10, Retention: defaultRetention, StoragePrice: 0.2})
	require.NoError(t, err)

	assert.Greater(t, bigger.TotalMonthlyCost, base.TotalMonthlyCost)
	assert.Greater(t, pricier.TotalMonthlyCost, base.TotalMonthlyCost)
}

func TestCurrentBreakdown_RejectsNegativeInput(t *testing.T) {
	_, err := CurrentBreakdown(Parameters{DBSizeGB: -1})
	assert.Error(t, err)
	_, err = CurrentBreakdown(Parameters{DBSizeGB: 1, Retention: RetentionSettings{Monthly: -1}})
	assert.Error(t, err)
	_, err = CurrentBreakdown(Parameters{DBSizeGB: 1, StoragePrice: -0.1})
	assert.Error(t, err)
}

func TestCurrentBreakdown_RejectsNonFiniteInput(t *testing.T) {
	for _, p := range []Parameters{
		{DBSizeGB: math.NaN(), Retention: defaultRetention, StoragePrice: 0.1},
		{DBSizeGB: math.Inf(1), Retention: defaultRetention, StoragePrice: 0.1},
		{DBSizeGB: 10, AnnualGrowthPercent: math.NaN(), StoragePrice: 0.1},
		{DBSizeGB: 10, AnnualGrowthPercent: math.Inf(-1), StoragePrice: 0.1},
		{DBSizeGB: 10, StoragePrice: math.NaN()},
	} {
		_, err := CurrentBreakdown(p)
		assert.ErrorContains(t, err, "finite", "%+v", p)
	}
}

func TestCurrentBreakdown_RejectsOutOfRangeInput(t *testing.T) {
	for _, p := range []Parameters{
		{DBSizeGB: 10, AnnualGrowthPercent: MaxAnnualGrowth + 1, StoragePrice: 0.1},
		{DBSizeGB: 10, AnnualGrowthPercent: -5, StoragePrice: 0.1},
		{DBSizeGB: 10, Retention: RetentionSettings{Weekly: MaxWeeklyBackups + 1}, StoragePrice: 0.1},
		{DBSizeGB: 10, Retention: RetentionSettings{Monthly: MaxMonthlyBackups + 1}, StoragePrice: 0.1},
		{DBSizeGB: 10, Retention: RetentionSettings{Yearly: MaxYearlyBackups + 1}, StoragePrice: 0.1},
	} {
		_, err := CurrentBreakdown(p)
		assert.Error(t, err, "%+v", p)
	}

	_, err := CurrentBreakdown(Parameters{
		DBSizeGB:            10,
		AnnualGrowthPercent: MaxAnnualGrowth,
		Retention:           RetentionSettings{Weekly: MaxWeeklyBackups, Monthly: MaxMonthlyBackups, Yearly: MaxYearlyBackups},
		StoragePrice:        0.1,
	})
	assert.NoError(t, err)
}

func TestCostAtMonth_ZeroRetention(t *testing.T) {
	assert.Equal(t, Costs{}, CostAtMonth(0, 100, RetentionSettings{}, 0.1, 0.01))
}

func TestCostAtMonth_WeeklyWithinRetention(t *testing.T) {
	c := CostAtMonth(1, 100, RetentionSettings{Weekly: 4}, 0.1, 0)
	assert.InDelta(t, 40, c.Weekly, 1e-9)
	assert.InDelta(t, 40, c.Total, 1e-9)
}

func TestCostAtMonth_MonthlyRespectsRetention(t *testing.T) {
	c := CostAtMonth(5, 200, RetentionSettings{Monthly: 3}, 0.05, 0)
	assert.InDelta(t, 30, c.Monthly, 1e-9)
}

func TestCostAtMonth_OnlyExistingYearlyBackups(t *testing.T) {
	c := CostAtMonth(10, 500, RetentionSettings{Yearly: 2}, 0.02, 0)
	assert.InDelta(t, 10, c.Yearly, 1e-9)
}

func TestCostAtMonth_GrowthAppliedBackwards(t *testing.T) {
	const growth = 0.02
	current := 100 * math.Pow(1+growth, 6)
	c := CostAtMonth(6, current, RetentionSettings{Monthly: 3}, 0.1, growth)

	var want float64
	for m := 0; m < 3; m++ {
		want += current * math.Pow(1+growth, -float64(m)) * 0.1
	}
	assert.InDelta(t, want, c.Monthly, 1e-9)
}

func TestBuildTimeline_NoRetentionHasNoSeries(t *testing.T) {
	tl, err := BuildTimeline(100, 0, RetentionSettings{}, 0.1, 1, Monthly)
	require.NoError(t, err)
	assert.Empty(t, tl.Series)
	assert.Len(t, tl.Labels, 13)
}

func TestBuildTimeline_SeriesPerRetentionTier(t *testing.T) {
	tl, err := BuildTimeline(100, 0, RetentionSettings{Weekly: 1, Monthly: 1, Yearly: 1}, 0.1, 1, Monthly)
	require.NoError(t, err)

	var labels []string
	for _, s := range tl.Series {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{SeriesTotal, SeriesWeekly, SeriesMonthly, SeriesYearly}, labels)
}

func TestBuildTimeline_WeeklyGranularity(t *testing.T) {
	tl, err := BuildTimeline(100, 0, defaultRetention, 0.05, 0.5, Weekly)
	require.NoError(t, err)
	assert.Len(t, tl.Labels, 25)
	assert.Len(t, tl.Series[0].Data, 25)
	assert.Equal(t, "Week 0", tl.Labels[0])
	assert.Equal(t, "Week 1", tl.Labels[1])
}

func TestBuildTimeline_YearlyGranularity(t *testing.T) {
	tl, err := BuildTimeline(100, 0, defaultRetention, 0.05, 3, Yearly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Year 0", "Year 1", "Year 2", "Year 3"}, tl.Labels)
}

func TestBuildTimeline_QuarterlyLabels(t *testing.T) {
	tl, err := BuildTimeline(100, 0, defaultRetention, 0.05, 1, Quarterly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q0", "Q1", "Q2", "Q3", "Q4"}, tl.Labels)
}

func TestBuildTimeline_CostsGrowOverTime(t *testing.T) {
	tl, err := BuildTimeline(100, 24, defaultRetention, 0.1, 1, Monthly)
	require.NoError(t, err)
	total := tl.Series[0].Data
	assert.Equal(t, SeriesTotal, tl.Series[0].Label)
	assert.Greater(t, total[len(total)-1], total[0])
}

func TestBuildTimeline_RejectsInvalidInput(t *testing.T) {
	_, err := BuildTimeline(math.NaN(), 0, defaultRetention, 0.1, 1, Monthly)
	assert.Error(t, err)
	_, err = BuildTimeline(100, math.NaN(), defaultRetention, 0.1, 1, Monthly)
	assert.Error(t, err)
	_, err = BuildTimeline(100, 0, defaultRetention, 0.1, math.Inf(1), Monthly)
	assert.Error(t, err)
	_, err = BuildTimeline(100, 0, defaultRetention, 0.1, MaxTimelineYears+1, Weekly)
	assert.Error(t, err)
	_, err = BuildTimeline(100, 0, RetentionSettings{Weekly: MaxWeeklyBackups + 1}, 0.1, 1, Monthly)
	assert.Error(t, err)
}

func TestBuildTimeline_LongestTimeline(t *testing.T) {
	tl, err := BuildTimeline(100, 0, defaultRetention, 0.1, MaxTimelineYears, Yearly)
	require.NoError(t, err)
	assert.Len(t, tl.Labels, MaxTimelineYears+1)
}

func TestBuildTimeline_RejectsUnknownInterval(t *testing.T) {
	_, err := BuildTimeline(100, 0, defaultRetention, 0.1, 1, Interval("daily"))
	assert.Error(t, err)
}

func TestParseInterval(t *testing.T) {
	for in, want := range map[string]Interval{"": Monthly, "weekly": Weekly, "quarterly": Quarterly, "yearly": Yearly} {
		got, err := ParseInterval(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseInterval("hourly")
	assert.Error(t, err)
}
