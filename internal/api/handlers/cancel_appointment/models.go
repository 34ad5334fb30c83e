package cancel_appointment

// CancelResponse HTTP response model
type CancelResponse struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	RefundAmount float64 `json:"refund_amount"`
}
