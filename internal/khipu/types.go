package khipu

// CreatePaymentRequest is the body of POST /payments.
type CreatePaymentRequest struct {
	Subject          string  `json:"subject"`
	Amount           int     `json:"amount"`
	Currency         string  `json:"currency,omitempty"`
	TransactionID    string  `json:"transaction_id"`
	ReturnURL        string  `json:"return_url"`
	CancelURL        string  `json:"cancel_url"`
	NotifyURL        string  `json:"notify_url"`
	NotifyAPIVersion string  `json:"notify_api_version"`
	PayerEmail       string  `json:"payer_email,omitempty"`
	Custom           string  `json:"custom,omitempty"`
}

// CreatePaymentResponse is Khipu's answer to a payment creation.
type CreatePaymentResponse struct {
	PaymentID            string `json:"payment_id"`
	PaymentURL           string `json:"payment_url"`
	SimplifiedTransferURL string `json:"simplified_transfer_url,omitempty"`
	TransferURL          string `json:"transfer_url,omitempty"`
	AppURL               string `json:"app_url,omitempty"`
	ReadyForTerminal     bool   `json:"ready_for_terminal,omitempty"`
}

// GetPaymentResponse is the authoritative payment state fetched from Khipu.
type GetPaymentResponse struct {
	PaymentID     string `json:"payment_id"`
	PaymentURL    string `json:"payment_url"`
	Amount        int    `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	ReceiverID    int    `json:"receiver_id"`
}
