package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTransfer indicates that the transfer request breaks its preconditions.
	ErrInvalidTransfer = errors.New("invalid transfer")
	// ErrInvalidAccounts indicates that one or both transfer accounts do not exist.
	ErrInvalidAccounts = errors.New("invalid accounts")
	// ErrInsufficientFunds indicates that the sender balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceOverflow indicates that the receiver balance would not fit into int64.
	ErrBalanceOverflow = errors.New("balance overflow")
	// ErrTransferConflict indicates that a concurrent transaction holds one of the accounts.
	ErrTransferConflict = errors.New("transfer conflict")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errors.New("transfer not found")
)

// Transfer holds transfer data between two accounts.
type Transfer struct {
	ID            int64     `json:"transferId"`
	FromAccountID int64     `json:"userIdFrom"`
	ToAccountID   int64     `json:"userIdTo"`
	Amount        int64     `json:"amount"` // must be positive
	CreatedAt     time.Time `json:"-"`
}

// CreateTransferParams is the input data for the transfer transaction.
type CreateTransferParams struct {
	FromAccountID int64 `json:"userIdFrom"`
	ToAccountID   int64 `json:"userIdTo"`
	Amount        int64 `json:"amount"`
}

// TransferOutcome is the terminal state of a transfer attempt.
type TransferOutcome int

const (
	// OutcomeCommitted means both balances and the transfer record were committed.
	OutcomeCommitted TransferOutcome = iota + 1
	// OutcomeInvalidAccounts means one or both accounts do not exist.
	OutcomeInvalidAccounts
	// OutcomeInsufficientFunds means the sender cannot cover the amount.
	OutcomeInsufficientFunds
	// OutcomeConflict means a concurrent transaction held one of the rows,
	// or the database refused to commit.
	OutcomeConflict
)

func (o TransferOutcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeInvalidAccounts:
		return "invalid_accounts"
	case OutcomeInsufficientFunds:
		return "insufficient_funds"
	case OutcomeConflict:
		return "conflict"
	}

	return "unknown"
}

// TransferResult is the result of the transfer transaction.
//
// Transfer is set only when Outcome is OutcomeCommitted.
type TransferResult struct {
	Outcome  TransferOutcome
	Transfer Transfer
}
