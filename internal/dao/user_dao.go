package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/libreclinica/api-gateway/internal/database"
	"github.com/libreclinica/api-gateway/internal/models"
)

// UserDAO handles read access to the user_account table
type UserDAO struct {
	db *database.DB
}

// NewUserDAO creates a new UserDAO instance
func NewUserDAO(db *database.DB) *UserDAO {
	return &UserDAO{db: db}
}

const userSelectColumns = `
	user_id, user_name, first_name, last_name, email, passwd,
	user_type_id, status_id
`

// GetByUsername retrieves an active user account by username
func (dao *UserDAO) GetByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_account
		WHERE user_name = $1
	`, userSelectColumns)

	var user models.UserAccount
	err := dao.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %s", username)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user account by id
func (dao *UserDAO) GetByID(ctx context.Context, userID int64) (*models.UserAccount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_account
		WHERE user_id = $1
	`, userSelectColumns)

	var user models.UserAccount
	err := dao.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %d", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
