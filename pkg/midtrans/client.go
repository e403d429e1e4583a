package midtrans

import (
	"context"
	"errors"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/simasosial/simasosial-backend/pkg/config"
)

// SnapTransaction is the checkout handle returned to the frontend widget.
type SnapTransaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Client wraps the Midtrans Snap API.
type Client struct {
	snap      snap.Client
	serverKey string
}

// New builds a Snap client against the configured environment.
func New(cfg config.MidtransConfig) (*Client, error) {
	if cfg.ServerKey == "" {
		return nil, errors.New("midtrans server key is required")
	}
	env := midtrans.Sandbox
	if cfg.IsProduction() {
		env = midtrans.Production
	}
	var s snap.Client
	s.New(cfg.ServerKey, env)
	return &Client{snap: s, serverKey: cfg.ServerKey}, nil
}

// ServerKey exposes the shared secret used for webhook signature checks.
func (c *Client) ServerKey() string {
	return c.serverKey
}

// CreateTransaction registers a payment with the gateway and returns the Snap
// token the checkout widget consumes. The SDK carries no context, so ctx only
// guards the call site today.
func (c *Client) CreateTransaction(_ context.Context, orderID string, grossAmount int64, customerName, customerEmail string) (*SnapTransaction, error) {
	if orderID == "" {
		return nil, errors.New("order id is required")
	}
	if grossAmount <= 0 {
		return nil, errors.New("gross amount must be positive")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customerName,
			Email: customerEmail,
		},
	}

	resp, err := c.snap.CreateTransaction(req)
	if err != nil {
		return nil, fmt.Errorf("snap create transaction: %w", err)
	}
	return &SnapTransaction{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
