package ordering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

type stubSource struct {
	products map[string]ProductView
	err      error
	calls    []string
}

func (s *stubSource) ProductView(_ context.Context, productID string, _ int) (ProductView, error) {
	s.calls = append(s.calls, productID)
	if s.err != nil {
		return ProductView{}, s.err
	}
	p, ok := s.products[productID]
	if !ok {
		return ProductView{}, apperr.NotFound("product %s not found", productID)
	}
	return p, nil
}

type stubGate struct {
	active map[string]bool
	err    error
}

func (g *stubGate) IsActive(_ context.Context, stallID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.active[stallID], nil
}

func catalogue() map[string]ProductView {
	return map[string]ProductView{
		"taco":     {ID: "taco", StallID: "stall-1", Price: 25, Stock: 10, Available: true},
		"tamal":    {ID: "tamal", StallID: "stall-1", Price: 18, Stock: 3, Available: true},
		"churro":   {ID: "churro", StallID: "stall-2", Price: 12, Stock: 50, Available: true},
		"retirado": {ID: "retirado", StallID: "stall-1", Price: 30, Stock: 5, Available: false},
	}
}

func TestValidateCart(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		gate     *stubGate
		wantCode apperr.Code
	}{
		{
			name:  "single line ok",
			lines: []Line{{ProductID: "taco", Quantity: 2}},
		},
		{
			name:  "two lines same stall",
			lines: []Line{{ProductID: "taco", Quantity: 2}, {ProductID: "tamal", Quantity: 1}},
		},
		{
			name:     "empty cart",
			lines:    nil,
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "missing product id",
			lines:    []Line{{ProductID: "", Quantity: 1}},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "zero quantity",
			lines:    []Line{{ProductID: "taco", Quantity: 0}},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "negative quantity",
			lines:    []Line{{ProductID: "taco", Quantity: -3}},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "unknown product",
			lines:    []Line{{ProductID: "fantasma", Quantity: 1}},
			wantCode: apperr.CodeNotFound,
		},
		{
			name:     "insufficient stock",
			lines:    []Line{{ProductID: "tamal", Quantity: 4}},
			wantCode: apperr.CodeUnavailable,
		},
		{
			name:     "product unavailable",
			lines:    []Line{{ProductID: "retirado", Quantity: 1}},
			wantCode: apperr.CodeUnavailable,
		},
		{
			name:     "mixed stalls",
			lines:    []Line{{ProductID: "taco", Quantity: 1}, {ProductID: "churro", Quantity: 1}},
			wantCode: apperr.CodeValidation,
		},
		{
			name:     "inactive stall",
			lines:    []Line{{ProductID: "churro", Quantity: 1}},
			gate:     &stubGate{active: map[string]bool{"stall-1": true}},
			wantCode: apperr.CodeUnavailable,
		},
		{
			name:  "active stall passes the gate",
			lines: []Line{{ProductID: "taco", Quantity: 1}},
			gate:  &stubGate{active: map[string]bool{"stall-1": true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubSource{products: catalogue()}
			var gate StallGate
			if tt.gate != nil {
				gate = tt.gate
			}
			stallID, priced, err := NewValidator(source, gate).ValidateCart(context.Background(), tt.lines)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, stallID)
			assert.Len(t, priced, len(tt.lines))
		})
	}
}

func TestValidateCartSnapshotsPrice(t *testing.T) {
	source := &stubSource{products: catalogue()}
	_, priced, err := NewValidator(source, nil).ValidateCart(context.Background(),
		[]Line{{ProductID: "taco", Quantity: 2}, {ProductID: "tamal", Quantity: 1}})

	require.NoError(t, err)
	require.Len(t, priced, 2)
	assert.Equal(t, 25.0, priced[0].Price)
	assert.Equal(t, 18.0, priced[1].Price)
	assert.Equal(t, "stall-1", priced[0].StallID)
}

func TestValidateCartShortCircuits(t *testing.T) {
	source := &stubSource{products: catalogue()}
	_, _, err := NewValidator(source, nil).ValidateCart(context.Background(), []Line{
		{ProductID: "tamal", Quantity: 99},
		{ProductID: "taco", Quantity: 1},
	})

	require.Error(t, err)
	// The second line is never looked up once the first fails.
	assert.Equal(t, []string{"tamal"}, source.calls)
}

func TestValidateCartFailsClosedOnSourceError(t *testing.T) {
	source := &stubSource{err: apperr.Transport("products service unreachable")}
	_, _, err := NewValidator(source, nil).ValidateCart(context.Background(),
		[]Line{{ProductID: "taco", Quantity: 1}})

	require.Error(t, err)
	assert.Equal(t, apperr.CodeTransport, apperr.CodeOf(err))
}

func TestValidateCartFailsClosedOnGateError(t *testing.T) {
	source := &stubSource{products: catalogue()}
	gate := &stubGate{err: apperr.Transport("stalls service unreachable")}
	_, _, err := NewValidator(source, gate).ValidateCart(context.Background(),
		[]Line{{ProductID: "taco", Quantity: 1}})

	require.Error(t, err)
}
