package serverutils

import (
	"testing"

	"podcast-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type currencyRequest struct {
	Currency string `json:"currency" validate:"omitempty,currency"`
}

func TestValidateRequest_CurrencyIgnoresCase(t *testing.T) {
	for _, code := range []string{"", "USD", "usd", "Eur", "gbp"} {
		assert.NoError(t, ValidateRequest(&currencyRequest{Currency: code}), code)
	}

	err := ValidateRequest(&currencyRequest{Currency: "jpy"})
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "must be one of: USD EUR GBP INR", appErr.Fields["currency"])
}
