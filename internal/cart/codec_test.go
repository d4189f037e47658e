package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := New()
	_, _ = c.AddLine("P1", 2, white, []domain.Accessory{accB, accA})
	_, _ = c.AddLine("P2", 1, grey, nil)
	_, _ = c.ApplyCoupon("WELCOME10", coupons())

	data, err := c.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, c.Lines(), got.Lines())
	assert.Equal(t, c.Coupon(), got.Coupon())
}

func TestDecode_FallsBackToEmptyCart(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"absent", nil, false},
		{"corrupt", []byte("{not json"), true},
		{"wrong shape", []byte(`{"lines":"oops"}`), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(tt.data)
			require.NotNil(t, c)
			assert.True(t, c.IsEmpty())
			assert.Nil(t, c.Coupon())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromState_Sanitizes(t *testing.T) {
	state := domain.CartState{
		Lines: []domain.CartLine{
			{ProductID: "P1", Quantity: 0, Color: white},
			{ProductID: "", Quantity: 3, Color: white},
			{ProductID: "P1", Quantity: 2, Color: white},
		},
		Coupon: &domain.Coupon{Code: "BAD", DiscountPercent: 250},
	}

	c := FromState(state)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Nil(t, c.Coupon())
}
