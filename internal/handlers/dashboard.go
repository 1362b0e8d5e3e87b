package handlers

import (
	"log"
	"net/http"

	"github.com/kez1254/budget-app/internal/models"
	"github.com/kez1254/budget-app/internal/report"
)

// ExpenseItem represents an expense row in the dashboard table.
type ExpenseItem struct {
	models.Expense
	DateLabel string
}

// CategoryShare represents one bar of the category breakdown.
type CategoryShare struct {
	Category   models.Category
	Total      float64
	Count      int
	Percentage float64
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	Username    string
	Salary      float64
	Total       float64
	OverBudget  bool
	HasExpenses bool
	Items       []ExpenseItem
	Shares      []CategoryShare
}

// Dashboard renders the spending summary: all expenses newest first,
// the running total against the declared salary, an over-budget alert
// and a per-category breakdown.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	rows, err := h.db.ListExpensesForUser(user.ID)
	if err != nil {
		log.Printf("ListExpensesForUser error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	salary, err := h.db.Salary(user.ID)
	if err != nil {
		log.Printf("Salary error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rep := report.Summarize(rows, salary)

	items := make([]ExpenseItem, 0, len(rep.Rows))
	for _, e := range rep.Rows {
		items = append(items, ExpenseItem{
			Expense:   e,
			DateLabel: e.Date.Format("2006-01-02"),
		})
	}

	totals, err := h.db.CategoryTotalsForUser(user.ID)
	if err != nil {
		log.Printf("CategoryTotalsForUser error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	shares := make([]CategoryShare, 0, len(totals))
	for _, ct := range totals {
		percentage := 0.0
		if rep.Total > 0 {
			percentage = ct.Total / rep.Total * 100
		}
		shares = append(shares, CategoryShare{
			Category:   ct.Category,
			Total:      ct.Total,
			Count:      ct.Count,
			Percentage: percentage,
		})
	}

	h.render(w, r, "dashboard.html", DashboardViewModel{
		Username:    user.Username,
		Salary:      rep.Salary,
		Total:       rep.Total,
		OverBudget:  rep.OverBudget,
		HasExpenses: len(rep.Rows) > 0,
		Items:       items,
		Shares:      shares,
	})
}
