package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedRole(t *testing.T) {
	assert.True(t, AllowedRole(ApproveQuotation, "director"))
	assert.True(t, AllowedRole(RejectQuotation, " Manager "))
	assert.False(t, AllowedRole(ApproveQuotation, "Clerk"))
	assert.False(t, AllowedRole("delete_everything", Admin))
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]string{"QS Lead"}, "qs lead"))
	assert.False(t, HasRole(nil, Admin))
}
