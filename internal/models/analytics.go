package models

// AnalyticsOverview is the headline block of the analytics page.
type AnalyticsOverview struct {
	TotalUsers         int     `json:"totalUsers"`
	TotalReports       int     `json:"totalReports"`
	ActiveLoans        int     `json:"activeLoans"`
	TotalDisputes      int     `json:"totalDisputes"`
	AverageCreditScore float64 `json:"averageCreditScore"`
	Revenue            float64 `json:"revenue"`
	GrowthRate         struct {
		Users   float64 `json:"users"`
		Reports float64 `json:"reports"`
		Revenue float64 `json:"revenue"`
	} `json:"growthRate"`
}

type MonthlyTrend struct {
	Month    string  `json:"month"`
	Users    int     `json:"users"`
	Reports  int     `json:"reports"`
	Revenue  float64 `json:"revenue"`
	Disputes int     `json:"disputes"`
}

type CreditScoreBucket struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type LoanTypeShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color,omitempty"`
}

type GeographicData struct {
	City         string  `json:"city"`
	State        string  `json:"state"`
	Users        int     `json:"users"`
	Reports      int     `json:"reports"`
	AverageScore float64 `json:"averageScore"`
}

type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// Analytics metrics and grouping periods accepted by the backend.
const (
	MetricUsers    = "users"
	MetricReports  = "reports"
	MetricRevenue  = "revenue"
	MetricDisputes = "disputes"

	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
	GroupByYear  = "year"
)
