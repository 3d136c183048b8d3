package shared

import (
	"fmt"

	"github.com/rielbooks/rielbooks/internal/shared"
)

var (
	// ErrNoEntries indicates a page posted without any entry lines.
	ErrNoEntries = fmt.Errorf("%w: journal page requires at least one entry", shared.ErrValidation)
	// ErrBothSides indicates a line carrying both a debit and a credit.
	ErrBothSides = fmt.Errorf("%w: journal entry cannot carry both debit and credit", shared.ErrValidation)
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = fmt.Errorf("%w: journal amounts must not be negative", shared.ErrValidation)
	// ErrPageNotFound indicates a missing journal page.
	ErrPageNotFound = fmt.Errorf("%w: journal page", shared.ErrNotFound)
	// ErrAccountNotFound indicates a missing or disabled account.
	ErrAccountNotFound = fmt.Errorf("%w: account", shared.ErrNotFound)
	// ErrDuplicateAccountNumber indicates an account number already in use.
	ErrDuplicateAccountNumber = fmt.Errorf("%w: duplicate account number", shared.ErrConflict)
	// ErrInvalidCurrency indicates a report currency outside USD/KHR.
	ErrInvalidCurrency = fmt.Errorf("%w: report currency must be USD or KHR", shared.ErrValidation)
	// ErrInvalidExchangeRate indicates a non-positive exchange rate.
	ErrInvalidExchangeRate = fmt.Errorf("%w: exchange rate must be positive", shared.ErrValidation)
	// ErrInvalidNormalBalance indicates a normal balance outside DEBIT/CREDIT.
	ErrInvalidNormalBalance = fmt.Errorf("%w: normal balance must be DEBIT or CREDIT", shared.ErrValidation)
)
