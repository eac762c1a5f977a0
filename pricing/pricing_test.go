package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/depot-client/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMargin(t *testing.T) {
	tests := []struct {
		name          string
		purchase      string
		sale          string
		wantAmount    string
		wantPercent   string
		wantFormatted string
	}{
		{"profit", "8.50", "10", "1.50", "15.00", "1.50 (15.00%)"},
		{"loss", "12", "10", "-2.00", "-20.00", "-2.00 (-20.00%)"},
		{"rounded", "1", "3", "2.00", "66.67", "2.00 (66.67%)"},
		{"free sale", "5", "0", "-5.00", "0.00", "-5.00 (0.00%)"},
		{"break even", "4.2", "4.2", "0.00", "0.00", "0.00 (0.00%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := pricing.Margin(d(tt.purchase), d(tt.sale))
			require.NoError(t, err)
			require.True(t, m.Amount.Equal(d(tt.wantAmount)), "amount %s", m.Amount)
			require.True(t, m.Percent.Equal(d(tt.wantPercent)), "percent %s", m.Percent)
			require.Equal(t, tt.wantFormatted, m.String())
		})
	}
}

func TestMargin_NegativePrice(t *testing.T) {
	_, err := pricing.Margin(d("-1"), d("10"))
	require.ErrorIs(t, err, pricing.ErrNegativePrice)
}

func TestParseMargin(t *testing.T) {
	m, err := pricing.ParseMargin("2.5", "3.75")
	require.NoError(t, err)
	require.Equal(t, "1.25 (33.33%)", m.String())

	_, err = pricing.ParseMargin("abc", "3")
	require.Error(t, err)
	_, err = pricing.ParseMargin("3", "")
	require.Error(t, err)
}

func TestDeliveryTotal(t *testing.T) {
	lines := []pricing.DeliveryLine{
		{ProductID: "water-1.5l", Quantity: d("24"), Returned: d("4"), UnitPrice: d("0.85")},
		{ProductID: "milk-1l", Quantity: d("10"), Returned: decimal.Zero, UnitPrice: d("1.333")},
	}

	total, err := pricing.DeliveryTotal(lines)

	require.NoError(t, err)
	require.Equal(t, "30.33", total.StringFixed(2))
	require.True(t, lines[0].Net().Equal(d("20")))
}

func TestDeliveryTotal_Empty(t *testing.T) {
	total, err := pricing.DeliveryTotal(nil)
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestDeliveryTotal_InvalidLines(t *testing.T) {
	tests := []struct {
		name string
		line pricing.DeliveryLine
		want error
	}{
		{"negative quantity", pricing.DeliveryLine{Quantity: d("-1"), UnitPrice: d("1")}, pricing.ErrNegativeQuantity},
		{"negative price", pricing.DeliveryLine{Quantity: d("1"), UnitPrice: d("-1")}, pricing.ErrNegativePrice},
		{"over returned", pricing.DeliveryLine{Quantity: d("2"), Returned: d("3"), UnitPrice: d("1")}, pricing.ErrTooManyReturned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pricing.DeliveryTotal([]pricing.DeliveryLine{tt.line})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDelivery_Total(t *testing.T) {
	data := []byte(`{"id":"d1","items":[
		{"productId":"water-1.5l","quantity":"24","returnedQuantity":4,"unitPrice":"0.85"},
		{"productId":"milk-1l","quantity":10,"unitPrice":1.333}
	]}`)

	var d pricing.Delivery
	require.NoError(t, json.Unmarshal(data, &d))
	total, err := d.Total()

	require.NoError(t, err)
	require.Equal(t, "d1", d.ID)
	require.Equal(t, "30.33", total.StringFixed(2))
}
