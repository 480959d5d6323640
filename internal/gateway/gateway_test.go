package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	a, b := NewReference(), NewReference()

	assert.True(t, strings.HasPrefix(a, ReferencePrefix))
	assert.Len(t, a, len(ReferencePrefix)+26)
	assert.NotEqual(t, a, b)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(500000), ToMinorUnits(decimal.NewFromInt(5000)))
	assert.Equal(t, int64(10050), ToMinorUnits(decimal.RequireFromString("100.50")))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "5000", want: 5000},
		{input: " 10,000 ", want: 10000},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "0", wantErr: true},
		{input: "-50", wantErr: true},
		{input: "12.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.IntPart())
		})
	}
}

func TestNewConfig(t *testing.T) {
	s := &models.FundingSession{Reference: "fund_x", UserID: "u1", Email: "a@b.co", Amount: decimal.NewFromInt(5000)}

	cfg := NewConfig(s, "pk_test", "https://app/callback")

	assert.Equal(t, int64(500000), cfg.Amount)
	assert.Equal(t, "pk_test", cfg.PublicKey)
	assert.Equal(t, map[string]string{"purpose": PurposeWalletFunding, "user_id": "u1"}, cfg.Metadata)
}

func TestHosted_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet/fund/initialize" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"reference": "fund_x", "authorizationUrl": "https://checkout/x", "accessCode": "ac",
		}})
	}))
	defer srv.Close()

	h := NewHosted(backend.New(srv.URL))
	co, err := h.Initialize(context.Background(), Config{Reference: "fund_x", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout/x", co.AuthorizationURL)

	broken := NewHosted(backend.New(srv.URL + "/down"))
	_, err = broken.Initialize(context.Background(), Config{Reference: "fund_y"})
	assert.ErrorIs(t, err, models.ErrGatewayUnavailable)
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback(url.Values{"reference": {"pay_123"}, "status": {"success"}})
	require.NoError(t, err)
	assert.Equal(t, Callback{Reference: "pay_123", Outcome: OutcomeSuccess}, cb)

	cb, err = ParseCallback(url.Values{"trxref": {"pay_9"}, "status": {"closed"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, cb.Outcome)

	_, err = ParseCallback(url.Values{})
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}
