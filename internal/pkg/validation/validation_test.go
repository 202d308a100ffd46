package validation

import (
	"testing"

	"erp-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string   `json:"itemName" validate:"required"`
	Quantity *float64 `json:"quantity" validate:"required,gte=0"`
	Role     string   `json:"role" validate:"omitempty,oneof=Admin Manager"`
}

func TestStruct_Valid(t *testing.T) {
	q := 2.0
	assert.NoError(t, Struct(sample{Name: "Cement", Quantity: &q, Role: "Admin"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	q := -1.0
	err := Struct(sample{Quantity: &q, Role: "Clerk"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "itemName is required")
	assert.Contains(t, err.Error(), "quantity must be at least 0")
	assert.Contains(t, err.Error(), "role must be one of [Admin Manager]")
}

func TestStruct_MissingPointerIsRequired(t *testing.T) {
	err := Struct(sample{Name: "Sand"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "quantity is required")
}
