// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrBadRequest indicates that the request could not be understood.
	ErrBadRequest = errors.New("bad request")
)

// Account holds the balance of a single user in the smallest currency unit.
type Account struct {
	ID        int64     `json:"userId"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"-"`
}
