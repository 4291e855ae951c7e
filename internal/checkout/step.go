package checkout

type Step string

const (
	StepShipping  Step = "SHIPPING"
	StepPayment   Step = "PAYMENT"
	StepReview    Step = "REVIEW"
	StepSubmitted Step = "SUBMITTED"
)

// IsTerminal reports whether the checkout attempt has finished.
func (s Step) IsTerminal() bool {
	return s == StepSubmitted
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}
