package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kez1254/budget-app/internal/auth"
	"github.com/kez1254/budget-app/internal/models"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel errors distinguishing the recoverable failure kinds.
// Anything else returned from this package is a storage failure that
// should abort the current interaction.
var (
	// ErrUsernameTaken is returned when registering a username that
	// already exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned on any authentication mismatch.
	// Unknown username and wrong password are intentionally
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownUser is returned when an expense references a user id
	// that does not exist.
	ErrUnknownUser = errors.New("unknown user")
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	// The pragma rides on the DSN so every pooled connection enforces
	// the schema foreign keys, not just the one that ran it.
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(conn); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser registers a new user with a hashed password and declared
// monthly salary. Returns ErrUsernameTaken when the username is
// already present.
func (db *DB) CreateUser(username, passwordHash string, salary float64) (*models.User, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	result, err := db.conn.Exec(
		"INSERT INTO users (username, password_hash, salary) VALUES (?, ?, ?)",
		username, passwordHash, salary,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, salary, created_at FROM users WHERE id = ?",
		id,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salary, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, password_hash, salary, created_at FROM users WHERE username = ?",
		username,
	)

	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Salary, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate looks up the user and verifies the password, returning
// ErrInvalidCredentials for an unknown username and a wrong password
// alike.
func (db *DB) Authenticate(username, password string) (*models.User, error) {
	user, err := db.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Salary returns the declared monthly salary for a user, or 0 when the
// user does not exist.
func (db *DB) Salary(userID int64) (float64, error) {
	var salary float64
	err := db.conn.QueryRow("SELECT salary FROM users WHERE id = ?", userID).Scan(&salary)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return salary, nil
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateExpense appends an expense for a user. A zero date defaults to
// the current time. Returns ErrUnknownUser when the user id references
// no existing user.
func (db *DB) CreateExpense(userID int64, amount float64, category models.Category, description string, date time.Time) (*models.Expense, error) {
	if date.IsZero() {
		date = time.Now()
	}

	var exists bool
	if err := db.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownUser, userID)
	}

	result, err := db.conn.Exec(
		"INSERT INTO expenses (user_id, amount, category, description, date) VALUES (?, ?, ?, ?, ?)",
		userID, amount, string(category), description, date,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownUser, userID)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		ID:          id,
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	}, nil
}

// ListExpensesForUser retrieves all expenses for a user, ordered by
// date descending. Order within the same date is unspecified.
func (db *DB) ListExpensesForUser(userID int64) ([]models.Expense, error) {
	return db.queryExpenses(
		"SELECT id, user_id, amount, category, description, date FROM expenses WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
}

// ExpensesForExport retrieves all expenses for a user without any
// ordering guarantee.
func (db *DB) ExpensesForExport(userID int64) ([]models.Expense, error) {
	return db.queryExpenses(
		"SELECT id, user_id, amount, category, description, date FROM expenses WHERE user_id = ?",
		userID,
	)
}

func (db *DB) queryExpenses(query string, args ...any) ([]models.Expense, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Date); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// CategoryTotal holds the aggregate spend for a single category.
type CategoryTotal struct {
	Category models.Category
	Total    float64
	Count    int
}

// CategoryTotalsForUser returns per-category sums for a user, largest
// total first.
func (db *DB) CategoryTotalsForUser(userID int64) ([]CategoryTotal, error) {
	rows, err := db.conn.Query(
		"SELECT category, SUM(amount), COUNT(*) FROM expenses WHERE user_id = ? GROUP BY category ORDER BY SUM(amount) DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}

	return totals, rows.Err()
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isForeignKeyViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
