package midtranswebhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/simasosial/simasosial-backend/pkg/errors"
)

// NormalizeGrossAmount renders the gateway amount with exactly two decimal
// places. Midtrans signs with the two-decimal form but may deliver the
// notification amount without cents, so both "50000" and "50000.00" must
// normalize to the same string.
func NormalizeGrossAmount(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "gross amount is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "gross amount is not a decimal")
	}
	return amount.StringFixed(2), nil
}

// ComputeSignature returns the hex sha512 over the concatenation Midtrans
// documents: order_id + status_code + gross_amount + server_key.
func ComputeSignature(orderID, statusCode, normalizedGrossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + normalizedGrossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature normalizes the raw gross amount and compares the expected
// signature against the one supplied in the notification.
func VerifySignature(orderID, statusCode, rawGrossAmount, serverKey, provided string) (bool, error) {
	if serverKey == "" {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "server key not configured")
	}
	normalized, err := NormalizeGrossAmount(rawGrossAmount)
	if err != nil {
		return false, err
	}
	expected := ComputeSignature(orderID, statusCode, normalized, serverKey)
	supplied := strings.ToLower(strings.TrimSpace(provided))
	return hmac.Equal([]byte(expected), []byte(supplied)), nil
}
