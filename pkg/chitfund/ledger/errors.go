package ledger

import (
	"errors"
	"fmt"

	"github.com/mikepea/chitfund/pkg/chitfund/calculator"
)

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrCapacityExceeded     = errors.New("scheme is full")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this scheme")
	ErrInvalidSecret        = errors.New("invalid owner secret code")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrInvalidInput         = errors.New("invalid input")

	// ErrNegativeInstallment is returned by RecordAuction under the reject policy
	ErrNegativeInstallment = calculator.ErrNegativeInstallment
)

// CapacityError is returned when enrolling into a group that already has
// TotalMembers linked members
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Scheme is full. Limit is %d members.", e.Limit)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
}
