package validate

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Count int    `json:"count" validate:"gt=0"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "nope"})
	require.Error(t, err)

	var errs Errs
	require.True(t, errors.As(err, &errs))
	assert.ElementsMatch(t, Errs{
		{Field: "name", Msg: "required"},
		{Field: "email", Msg: "must be a valid email"},
		{Field: "count", Msg: "must be greater than 0"},
	}, errs)
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "a", Count: 1}))
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500", ""},
		{"0.01", ""},
		{"12.50", ""},
		{"0", "must be > 0"},
		{"-3", "must be > 0"},
		{"1.005", "at most 2 decimal places"},
		{"9999999999999999.99", ""},
		{"10000000000000000", "must be at most 9999999999999999.99"},
		{"100000000000000000000", "must be at most 9999999999999999.99"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Money("amount", decimal.RequireFromString(tt.in))
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Msg)
		})
	}
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	err := Merge(Errs{{Field: "a", Msg: "required"}}, &ErrField{Field: "b", Msg: "bad"})
	assert.EqualError(t, err, "a: required; b: bad")

	plain := errors.New("boom")
	assert.Same(t, plain, Merge(plain))
}
