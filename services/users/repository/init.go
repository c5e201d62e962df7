package repository

import (
	"github.com/jmoiron/sqlx"
)

// UserRepo is the Postgres credential store
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}
