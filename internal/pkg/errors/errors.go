package errors

import "errors"

// Application errors. The messages are shown to users as-is by the command surfaces.
var (
	// Parse errors
	ErrUnparseableCommand = errors.New("I was unable to understand that command, use `<time> | <message>`")
	ErrUnparseableTime    = errors.New("I was unable to understand that time")

	// Validation errors
	ErrTimeNotInFuture     = errors.New("the time specified occurs in the past")
	ErrNonPositiveDuration = errors.New("the duration must be greater than zero")
	ErrDurationTooShort    = errors.New("the reminder time is too close to now")
	ErrDurationTooLong     = errors.New("the reminder time is too far in the future")
	ErrEmptyText           = errors.New("the reminder message is empty")
	ErrTextTooLong         = errors.New("the reminder message is too long")
	ErrTimezoneNotSet      = errors.New("you need to set your timezone before creating reminders")
	ErrUnknownTimezone     = errors.New("that is not a valid timezone")
	ErrInvalidOwner        = errors.New("the reminder target is incomplete")

	ErrReminderNotFound  = errors.New("no such reminder")
	ErrDatabaseOperation = errors.New("database operation failed")

	// Delivery errors
	ErrDeliveryPermanent = errors.New("destination is unreachable")
	ErrDeliveryTransient = errors.New("delivery failed temporarily")

	ErrInternalServer = errors.New("internal error")
)

// IsUserError reports whether err is a parse or validation failure the caller caused.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrUnparseableCommand, ErrUnparseableTime, ErrTimeNotInFuture, ErrNonPositiveDuration,
		ErrDurationTooShort, ErrDurationTooLong, ErrEmptyText, ErrTextTooLong,
		ErrTimezoneNotSet, ErrUnknownTimezone, ErrInvalidOwner,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// UserMessage returns the sentinel text at the root of err suitable for display.
func UserMessage(err error) string {
	for _, target := range []error{
		ErrUnparseableCommand, ErrUnparseableTime, ErrTimeNotInFuture, ErrNonPositiveDuration,
		ErrDurationTooShort, ErrDurationTooLong, ErrEmptyText, ErrTextTooLong,
		ErrTimezoneNotSet, ErrUnknownTimezone, ErrInvalidOwner, ErrReminderNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "something went wrong, please try again later"
}
