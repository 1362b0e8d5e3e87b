// Package report derives dashboard figures from a user's expense rows.
package report

import (
	"github.com/kez1254/budget-app/internal/models"
)

// Report summarizes a user's spending against their declared salary.
type Report struct {
	Rows       []models.Expense
	Total      float64
	Salary     float64
	OverBudget bool
	ByCategory map[models.Category]float64
}

// Summarize computes the total spend, per-category sums and the
// over-budget flag. The total is a left-to-right sum over rows. An
// empty row set yields a valid zero report; what to show for it is the
// caller's decision.
func Summarize(rows []models.Expense, salary float64) Report {
	r := Report{
		Rows:       rows,
		Salary:     salary,
		ByCategory: make(map[models.Category]float64),
	}

	for _, e := range rows {
		r.Total += e.Amount
		r.ByCategory[e.Category] += e.Amount
	}

	// Spending exactly the salary is still within budget.
	r.OverBudget = r.Total > salary

	return r
}
