package enum

// PaymentType is how the customer settled (or partially settled) a sale.
type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentCard     PaymentType = "card"
	PaymentTransfer PaymentType = "transfer"
)

// IsValid checks if the payment type is one the register accepts
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// String returns the string representation
func (p PaymentType) String() string {
	return string(p)
}
