// Package payments wraps the Stripe Connect flows: onboarding club and
// user accounts and creating payment intents with the platform fee.
package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/accountlink"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// Platform cut of every paid ticket.
var feeRate = decimal.NewFromFloat(0.10)

type Config struct {
	SecretKey  string
	Currency   string
	RefreshURL string
	ReturnURL  string
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyGBP)
	}
	return &Client{cfg: cfg}
}

// CreateClubAccount creates a custom connected account managed by the
// platform on the club's behalf.
func (c *Client) CreateClubAccount(email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeCustom)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create club account: %w", err)
	}
	return acct.ID, nil
}

// CreateUserAccount creates an express connected account so a seller can
// receive ticket resale money.
func (c *Client) CreateUserAccount(email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create user account: %w", err)
	}
	return acct.ID, nil
}

// OnboardingLink returns a one-time URL where the account holder finishes
// Stripe onboarding.
func (c *Client) OnboardingLink(accountID string) (string, error) {
	link, err := accountlink.New(&stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(c.cfg.RefreshURL),
		ReturnURL:  stripe.String(c.cfg.ReturnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}
	return link.URL, nil
}

// PayoutsEnabled reports whether the connected account finished onboarding.
func (c *Client) PayoutsEnabled(accountID string) (bool, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to fetch account: %w", err)
	}
	return acct.PayoutsEnabled, nil
}

// Fee returns the platform's cut of a ticket price.
func Fee(price decimal.Decimal) decimal.Decimal {
	return price.Mul(feeRate).Round(2)
}

// CreatePaymentIntent charges the buyer, routes the money to the
// destination account and keeps the platform fee.
func (c *Client) CreatePaymentIntent(price decimal.Decimal, destinationAccount string) (string, error) {
	amount := price.Shift(2).IntPart()
	fee := Fee(price).Shift(2).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(amount),
		Currency:             stripe.String(c.cfg.Currency),
		ApplicationFeeAmount: stripe.Int64(fee),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(destinationAccount),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
