package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kez1254/budget-app/internal/models"
)

// ExpenseFormViewModel is the data passed to the add-expense template.
type ExpenseFormViewModel struct {
	Categories []models.Category
	Today      string
	Error      string
}

// AddExpenseForm renders the form to log a new expense.
func (h *Handlers) AddExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "expense.html", ExpenseFormViewModel{
		Categories: models.Categories,
		Today:      time.Now().Format("2006-01-02"),
	})
}

// CreateExpense handles the add-expense form submission.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	amount, category, desc, date, err := parseExpenseForm(r)
	if err != nil {
		h.render(w, r, "expense.html", ExpenseFormViewModel{
			Categories: models.Categories,
			Today:      time.Now().Format("2006-01-02"),
			Error:      err.Error(),
		})
		return
	}

	if _, err := h.db.CreateExpense(user.ID, amount, category, desc, date); err != nil {
		log.Printf("CreateExpense error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Location", `{"path":"/dashboard", "target":"#content"}`)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func parseExpenseForm(r *http.Request) (amount float64, category models.Category, desc string, date time.Time, err error) {
	if err := r.ParseForm(); err != nil {
		return 0, "", "", time.Time{}, err
	}

	amount, err = strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		return 0, "", "", time.Time{}, errors.New("amount must be a number")
	}

	cat := r.FormValue("category")
	if !models.ValidCategory(cat) {
		return 0, "", "", time.Time{}, errors.New("unknown category")
	}

	desc = r.FormValue("description")

	// Date is optional and defaults to today.
	if dateStr := r.FormValue("date"); dateStr != "" {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return 0, "", "", time.Time{}, errors.New("date must be YYYY-MM-DD")
		}
	}

	return amount, models.Category(cat), desc, date, nil
}
