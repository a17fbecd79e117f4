package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
)

// DefaultTenureMonths is used when a tenure column exists but holds no
// positive numbers.
const DefaultTenureMonths = 12.0

// monthlyFromTotal estimates monthly revenue when no monthly column exists.
// It is an approximation, not a computation.
const monthlyFromTotal = 0.1

// DerivedMetrics is the headline metric set for one dataset. Every field that
// depends on a column role is NA when that role is unbound or has no usable
// values.
type DerivedMetrics struct {
	TotalRevenue          Value  `json:"totalRevenue"`
	MonthlyRevenue        Value  `json:"monthlyRevenue"`
	AvgRevenuePerCustomer Value  `json:"avgRevenuePerCustomer"`
	CustomerLifetimeValue Value  `json:"customerLifetimeValue"`
	ChurnRate             string `json:"churnRate"`
	ChurnedCustomers      Value  `json:"churnedCustomers"`
	ActiveCustomers       Value  `json:"activeCustomers"`
	AvgTenure             Value  `json:"avgTenure"`
	DataHealth            int    `json:"dataHealth"`
	CustomerCount         int    `json:"customerCount"`
	UniqueCustomers       Value  `json:"uniqueCustomers"`

	// ChurnPercent is the numeric churn rate behind ChurnRate.
	ChurnPercent Value   `json:"-"`
	Roles        RoleMap `json:"roles,omitempty"`
}

// Derive computes metrics over ds.Rows(). It never mutates ds.
func Derive(ds *dataset.Dataset, roles RoleMap) DerivedMetrics {
	rows := ds.Rows()
	m := DerivedMetrics{
		TotalRevenue:          NA,
		MonthlyRevenue:        NA,
		AvgRevenuePerCustomer: NA,
		CustomerLifetimeValue: NA,
		ChurnRate:             NotAvailable,
		UniqueCustomers:       NA,
		CustomerCount:         len(rows),
		Roles:                 roles,
	}
	if ds != nil {
		m.DataHealth = dataHealth(ds.RowCount)
	}

	if col, ok := roles.Column(RoleRevenue); ok {
		if sum, n := sumPositive(rows, col, parseMoney); n > 0 {
			m.TotalRevenue = Of(sum)
			m.AvgRevenuePerCustomer = Of(sum / float64(n))
		}
	}

	// A bound monthly column is never estimated; without values it stays N/A.
	if col, ok := roles.Column(RoleMonthlyRevenue); ok {
		if sum, n := sumPositive(rows, col, parseMoney); n > 0 {
			m.MonthlyRevenue = Of(sum)
		}
	} else if m.TotalRevenue.Available() {
		m.MonthlyRevenue = Of(m.TotalRevenue.Or(0) * monthlyFromTotal)
	}

	if col, ok := roles.Column(RoleChurnStatus); ok && len(rows) > 0 {
		churned := 0
		for _, r := range rows {
			if isChurned(dataset.Get(r, col).String()) {
				churned++
			}
		}
		m.ChurnedCustomers = Of(float64(churned))
		m.ActiveCustomers = Of(float64(len(rows) - churned))
		m.ChurnPercent = Of(float64(churned) / float64(len(rows)) * 100)
		m.ChurnRate = fmt.Sprintf("%.1f%%", m.ChurnPercent.Or(0))
	}

	if col, ok := roles.Column(RoleTenure); ok {
		if sum, n := sumPositive(rows, col, parseLeadingFloat); n > 0 {
			m.AvgTenure = Of(sum / float64(n))
		} else {
			m.AvgTenure = Of(DefaultTenureMonths)
		}
	}

	if rev, ok := m.AvgRevenuePerCustomer.Float(); ok {
		if ten, ok := m.AvgTenure.Float(); ok {
			m.CustomerLifetimeValue = Of(rev * ten)
		}
	}

	if col, ok := roles.Column(RoleCustomerID); ok {
		seen := make(map[string]struct{}, len(rows))
		for _, r := range rows {
			if v := strings.TrimSpace(dataset.Get(r, col).String()); v != "" {
				seen[v] = struct{}{}
			}
		}
		m.UniqueCustomers = Of(float64(len(seen)))
	}
	return m
}

// sumPositive adds every positive value parse accepts in column col.
func sumPositive(rows []dataset.Row, col string, parse func(string) (float64, bool)) (float64, int) {
	var sum float64
	n := 0
	for _, r := range rows {
		c := dataset.Get(r, col)
		if c.IsEmpty() {
			continue
		}
		f, ok := parse(c.String())
		if !ok || f <= 0 {
			continue
		}
		sum += f
		n++
	}
	return sum, n
}

func isChurned(v string) bool {
	s := strings.ToLower(v)
	return strings.Contains(s, "yes") || strings.Contains(s, "churn") ||
		strings.Contains(s, "inactive") || s == "1"
}

// dataHealth is a row-volume heuristic, not a data quality measure.
func dataHealth(rowCount int) int {
	if rowCount <= 0 {
		return 0
	}
	n := float64(rowCount)
	score := n / (n + math.Max(100, n*0.05)) * 100
	return int(math.Floor(score))
}

// Field is one labelled metric ready for display.
type Field struct {
	Key   string
	Label string
	Text  string
}

// Display lists the metrics in presentation order with human formatting.
func (m DerivedMetrics) Display() []Field {
	return []Field{
		{"totalRevenue", "Total Revenue", formatCurrency(m.TotalRevenue)},
		{"monthlyRevenue", "Monthly Revenue", formatCurrency(m.MonthlyRevenue)},
		{"avgRevenuePerCustomer", "Avg Revenue / Customer", formatCurrency(m.AvgRevenuePerCustomer)},
		{"customerLifetimeValue", "Customer Lifetime Value", formatCurrency(m.CustomerLifetimeValue)},
		{"churnRate", "Churn Rate", m.ChurnRate},
		{"churnedCustomers", "Churned Customers", formatCount(m.ChurnedCustomers)},
		{"activeCustomers", "Active Customers", formatCount(m.ActiveCustomers)},
		{"avgTenure", "Avg Tenure", formatMonths(m.AvgTenure)},
		{"dataHealth", "Data Health", fmt.Sprintf("%d%%", m.DataHealth)},
		{"customerCount", "Customers Analyzed", formatCount(Of(float64(m.CustomerCount)))},
		{"uniqueCustomers", "Unique Customers", formatCount(m.UniqueCustomers)},
	}
}

// Summary renders the metrics as a plain text block, one "Label: value" per line.
func (m DerivedMetrics) Summary() string {
	var b strings.Builder
	for _, f := range m.Display() {
		fmt.Fprintf(&b, "- %s: %s\n", f.Label, f.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
