package dto

type PaymentAccountResponse struct {
	ID        int64  `json:"id"`
	StripeID  string `json:"stripe_id"`
	Connected bool   `json:"stripe_connected"`
	Complete  bool   `json:"stripe_complete"`
}

type AccountStatusResponse struct {
	Detail         string `json:"detail"`
	Connected      bool   `json:"stripe_connected"`
	AccountLinkURL string `json:"account_link_url,omitempty"`
}

type OnboardingResponse struct {
	AccountLinkURL string `json:"account_link_url"`
}

type CheckoutRequest struct {
	EventID int64 `json:"eventId" validate:"required,gt=0"`
}

type UserCheckoutRequest struct {
	TransferRequestID int64 `json:"transferRequestId" validate:"required,gt=0"`
}

type CheckoutResponse struct {
	ClientSecret string `json:"clientSecret"`
}
