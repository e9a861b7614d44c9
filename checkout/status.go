package checkout

// Status is where the shopper is in the purchase sequence.
type Status string

const (
	// StatusReviewing: a draft is present and the order sheet is open.
	StatusReviewing Status = "REVIEWING"
	// StatusBlocked: a submit was attempted with incomplete agreements.
	StatusBlocked Status = "BLOCKED"
	// StatusSubmitting: the order-creation call is in flight.
	StatusSubmitting Status = "SUBMITTING"
	// StatusConfirmed: the shop accepted the order.
	StatusConfirmed Status = "CONFIRMED"
	// StatusFailed: the submission was rejected or errored.
	StatusFailed Status = "FAILED"
)

// IsTerminal reports whether the sequence finished successfully.
// Blocked and Failed are not terminal: the shopper can fix the cause
// and submit again from the same sheet.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed
}

func (s Status) String() string {
	return string(s)
}

// canSubmit reports whether a submit attempt may start from s. Failed
// allows a retry from the same sheet.
func (s Status) canSubmit() bool {
	return s == StatusReviewing || s == StatusFailed
}
