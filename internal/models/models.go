package models

import "time"

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood      Category = "Food"
	CategoryHousing   Category = "Housing"
	CategoryTransport Category = "Transport"
	CategoryHealth    Category = "Health"
	CategoryLeisure   Category = "Leisure"
	CategoryOther     Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryHousing,
	CategoryTransport,
	CategoryHealth,
	CategoryLeisure,
	CategoryOther,
}

// ValidCategory reports whether s is one of the enumerated categories.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// User represents a registered account with a declared monthly salary.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Salary       float64   `json:"salary"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense represents a single logged expense belonging to a user.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}
