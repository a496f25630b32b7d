package validator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/showtime-booking-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	SeatIDs       []int                `validate:"required,min=1,max=10,unique,dive,gt=0"`
	PaymentMethod domain.PaymentMethod `validate:"required,payment_method"`
	Page          int                  `validate:"min=1"`
}

func TestValidationMessages(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		input testRequest
		field string
		want  string
	}{
		{
			name:  "missing seats",
			input: testRequest{PaymentMethod: domain.PaymentMethodCash, Page: 1},
			field: "SeatIDs",
			want:  ErrRequired,
		},
		{
			name:  "empty seat list",
			input: testRequest{SeatIDs: []int{}, PaymentMethod: domain.PaymentMethodCash, Page: 1},
			field: "SeatIDs",
			want:  fmt.Sprintf(ErrMinItems, "1"),
		},
		{
			name:  "duplicate seats",
			input: testRequest{SeatIDs: []int{1, 1}, PaymentMethod: domain.PaymentMethodCash, Page: 1},
			field: "SeatIDs",
			want:  ErrUniqueItems,
		},
		{
			name:  "unsupported payment method",
			input: testRequest{SeatIDs: []int{1}, PaymentMethod: "cheque", Page: 1},
			field: "PaymentMethod",
			want:  ErrPaymentMethod,
		},
		{
			name:  "page below minimum",
			input: testRequest{SeatIDs: []int{1}, PaymentMethod: domain.PaymentMethodEWallet},
			field: "Page",
			want:  fmt.Sprintf(ErrMinValue, "1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)

			var validationErrs validator.ValidationErrors
			require.True(t, errors.As(err, &validationErrs))

			messages := make(map[string]string)
			for _, fieldErr := range validationErrs {
				messages[fieldErr.Field()] = ValidationMessage(fieldErr)
			}

			assert.Equal(t, tt.want, messages[tt.field])
		})
	}
}

func TestValidRequest(t *testing.T) {
	err := NewValidator().Struct(testRequest{
		SeatIDs:       []int{1, 2},
		PaymentMethod: domain.PaymentMethodBankTransfer,
		Page:          1,
	})

	assert.NoError(t, err)
}

func TestFieldsUseJSONNames(t *testing.T) {
	type request struct {
		SeatIdList []int `json:"seatIdList" validate:"required"`
	}

	err := NewValidator().Struct(request{})

	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))
	assert.Equal(t, "seatIdList", validationErrs[0].Field())
}
