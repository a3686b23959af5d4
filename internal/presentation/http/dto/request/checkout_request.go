package request

// CheckoutRequest confirms the working cart as a sale.
type CheckoutRequest struct {
	PaymentType  string `json:"payment_type" binding:"required"`
	Paid         int64  `json:"paid" binding:"min=0"`
	PrintReceipt bool   `json:"print_receipt"`
}

// ForcedOfflineRequest toggles the operator's offline override.
type ForcedOfflineRequest struct {
	Forced *bool `json:"forced" binding:"required"`
}
