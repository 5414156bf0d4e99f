package game

import "errors"

// Purchase rejections.
var (
	ErrNameMissing         = errors.New("player name is required")
	ErrInsufficientBalance = errors.New("insufficient balance to buy tickets")
	ErrRoundLocked         = errors.New("tickets already purchased for this draw")
	ErrInvalidTicketCount  = errors.New("ticket count must be a positive integer")
)

// Draw rejections.
var (
	ErrRoundOpen           = errors.New("no tickets purchased for this draw")
	ErrInsufficientTickets = errors.New("not enough tickets for the draw")
)

var validationErrors = []error{
	ErrNameMissing,
	ErrInsufficientBalance,
	ErrRoundLocked,
	ErrInvalidTicketCount,
	ErrRoundOpen,
	ErrInsufficientTickets,
}

// IsValidation reports whether err is a rejected operation rather than a failure.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
