package storage

import (
	"testing"
	"time"

	"github.com/kez1254/budget-app/internal/auth"
	"github.com/kez1254/budget-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// UserStoreTestSuite provides a test suite for user operations
type UserStoreTestSuite struct {
	suite.Suite
	db *DB
}

// SetupTest runs before each test
func (suite *UserStoreTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
}

// TearDownTest runs after each test
func (suite *UserStoreTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *UserStoreTestSuite) createUser(username, password string, salary float64) *models.User {
	hash, err := auth.HashPassword(password)
	require.NoError(suite.T(), err, "failed to hash password")

	user, err := suite.db.CreateUser(username, hash, salary)
	require.NoError(suite.T(), err, "failed to create user %s", username)
	return user
}

func (suite *UserStoreTestSuite) TestCreateUser() {
	user := suite.createUser("alice", "pw1", 1000)

	assert.NotZero(suite.T(), user.ID)
	assert.Equal(suite.T(), "alice", user.Username)
	assert.Equal(suite.T(), 1000.0, user.Salary)
}

func (suite *UserStoreTestSuite) TestCreateUser_DuplicateUsername() {
	suite.createUser("alice", "pw1", 1000)

	hash, err := auth.HashPassword("pw2")
	require.NoError(suite.T(), err)

	_, err = suite.db.CreateUser("alice", hash, 2000)
	assert.ErrorIs(suite.T(), err, ErrUsernameTaken)

	// The table gains exactly one row.
	count, err := suite.db.UserCount()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)
}

func (suite *UserStoreTestSuite) TestCreateUser_EmptyUsername() {
	hash, err := auth.HashPassword("pw")
	require.NoError(suite.T(), err)

	_, err = suite.db.CreateUser("", hash, 0)
	assert.Error(suite.T(), err)
}

func (suite *UserStoreTestSuite) TestAuthenticate() {
	created := suite.createUser("alice", "pw1", 1000)

	user, err := suite.db.Authenticate("alice", "pw1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.ID, user.ID)
}

func (suite *UserStoreTestSuite) TestAuthenticate_MismatchesIndistinguishable() {
	suite.createUser("alice", "pw1", 1000)

	// Wrong password and unknown username return the same error.
	_, wrongPass := suite.db.Authenticate("alice", "nope")
	_, unknownUser := suite.db.Authenticate("bob", "pw1")

	assert.ErrorIs(suite.T(), wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(suite.T(), unknownUser, ErrInvalidCredentials)
	assert.Equal(suite.T(), wrongPass, unknownUser)
}

func (suite *UserStoreTestSuite) TestSalary() {
	user := suite.createUser("alice", "pw1", 1500.50)

	salary, err := suite.db.Salary(user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1500.50, salary)
}

func (suite *UserStoreTestSuite) TestSalary_UnknownUserDefaultsToZero() {
	salary, err := suite.db.Salary(9999)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, salary)
}

// ExpenseStoreTestSuite provides a test suite for expense operations
type ExpenseStoreTestSuite struct {
	suite.Suite
	db   *DB
	user *models.User
}

// SetupTest runs before each test
func (suite *ExpenseStoreTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db

	hash, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err, "failed to hash password")

	user, err := suite.db.CreateUser("testuser", hash, 1000)
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *ExpenseStoreTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ExpenseStoreTestSuite) TestCreateExpense() {
	e, err := suite.db.CreateExpense(suite.user.ID, 10.50, models.CategoryFood, "Lunch", time.Now())
	require.NoError(suite.T(), err)

	assert.NotZero(suite.T(), e.ID)
	assert.Equal(suite.T(), suite.user.ID, e.UserID)
	assert.Equal(suite.T(), models.CategoryFood, e.Category)
}

func (suite *ExpenseStoreTestSuite) TestCreateExpense_ZeroDateDefaultsToNow() {
	e, err := suite.db.CreateExpense(suite.user.ID, 5.00, models.CategoryOther, "", time.Time{})
	require.NoError(suite.T(), err)

	assert.WithinDuration(suite.T(), time.Now(), e.Date, 5*time.Second)
}

func (suite *ExpenseStoreTestSuite) TestCreateExpense_UnknownUser() {
	_, err := suite.db.CreateExpense(9999, 10.00, models.CategoryFood, "orphan", time.Now())
	assert.ErrorIs(suite.T(), err, ErrUnknownUser)
}

func (suite *ExpenseStoreTestSuite) TestExpenseForeignKey_EnforcedBySchema() {
	// Insert directly, bypassing the application-level existence
	// check: the schema constraint must still reject the orphan row.
	_, err := suite.db.conn.Exec(
		"INSERT INTO expenses (user_id, amount, category, description) VALUES (?, ?, ?, ?)",
		int64(9999), 10.0, string(models.CategoryFood), "orphan",
	)
	require.Error(suite.T(), err)
	assert.True(suite.T(), isForeignKeyViolation(err), "expected a foreign key violation, got: %v", err)
}

func (suite *ExpenseStoreTestSuite) TestListExpensesForUser_OrderedByDateDesc() {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	expenses := []struct {
		amount float64
		desc   string
		offset time.Duration
	}{
		{20.00, "Bus", 24 * time.Hour},
		{5.00, "Coffee", 48 * time.Hour},
		{15.00, "Snack", 72 * time.Hour},
	}

	for _, exp := range expenses {
		_, err := suite.db.CreateExpense(suite.user.ID, exp.amount, models.CategoryFood, exp.desc, base.Add(exp.offset))
		require.NoError(suite.T(), err, "failed to create expense: %s", exp.desc)
	}

	result, err := suite.db.ListExpensesForUser(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), result, 3, "expected 3 expenses")

	// Latest date first.
	assert.Equal(suite.T(), "Snack", result[0].Description)
	assert.Equal(suite.T(), "Coffee", result[1].Description)
	assert.Equal(suite.T(), "Bus", result[2].Description)
}

func (suite *ExpenseStoreTestSuite) TestListExpensesForUser_ScopedToOwner() {
	hash, err := auth.HashPassword("otherpass")
	require.NoError(suite.T(), err)
	other, err := suite.db.CreateUser("other", hash, 500)
	require.NoError(suite.T(), err)

	_, err = suite.db.CreateExpense(suite.user.ID, 10.00, models.CategoryFood, "mine", time.Now())
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateExpense(other.ID, 99.00, models.CategoryLeisure, "theirs", time.Now())
	require.NoError(suite.T(), err)

	result, err := suite.db.ListExpensesForUser(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), "mine", result[0].Description)
}

func (suite *ExpenseStoreTestSuite) TestExpensesForExport() {
	_, err := suite.db.CreateExpense(suite.user.ID, 10.00, models.CategoryFood, "lunch", time.Now())
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateExpense(suite.user.ID, 20.00, models.CategoryHousing, "rent", time.Now())
	require.NoError(suite.T(), err)

	result, err := suite.db.ExpensesForExport(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
}

func (suite *ExpenseStoreTestSuite) TestCategoryTotalsForUser() {
	now := time.Now()
	_, err := suite.db.CreateExpense(suite.user.ID, 50.00, models.CategoryFood, "", now)
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateExpense(suite.user.ID, 30.00, models.CategoryFood, "", now)
	require.NoError(suite.T(), err)
	_, err = suite.db.CreateExpense(suite.user.ID, 200.00, models.CategoryHousing, "", now)
	require.NoError(suite.T(), err)

	totals, err := suite.db.CategoryTotalsForUser(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), totals, 2)

	// Largest total first.
	assert.Equal(suite.T(), models.CategoryHousing, totals[0].Category)
	assert.Equal(suite.T(), 200.00, totals[0].Total)
	assert.Equal(suite.T(), 1, totals[0].Count)
	assert.Equal(suite.T(), models.CategoryFood, totals[1].Category)
	assert.Equal(suite.T(), 80.00, totals[1].Total)
	assert.Equal(suite.T(), 2, totals[1].Count)
}

// Test suite runners
func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreTestSuite))
}

func TestExpenseStoreSuite(t *testing.T) {
	suite.Run(t, new(ExpenseStoreTestSuite))
}
