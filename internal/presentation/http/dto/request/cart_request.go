package request

// AddItemRequest adds a product to the working cart, by ID or by scanned code.
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"omitempty,uuid"`
	Code      string `json:"code" binding:"omitempty,max=100"`
}

// SetQuantityRequest sets a line's quantity. Zero removes the line.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// NegotiateRequest overrides a line's tier pricing with an operator markup
// percent. Sent as a string so fractional percents survive JSON intact.
type NegotiateRequest struct {
	MarkupPercent string `json:"markup_percent" binding:"required"`
}

// SetCustomerRequest attaches a customer to the cart; empty detaches.
type SetCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"omitempty,uuid"`
}

// SuspendCartRequest parks the working cart under a label.
type SuspendCartRequest struct {
	Label string `json:"label" binding:"omitempty,max=100"`
}
