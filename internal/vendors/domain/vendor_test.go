package domain

import (
	"testing"

	"rfp-backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVendorValidate(t *testing.T) {
	t.Parallel()

	v := &Vendor{Name: "  Dell Technologies ", Email: " Sales@Dell.COM ", ContactPerson: " John Smith"}
	require.NoError(t, v.Validate())
	assert.Equal(t, "Dell Technologies", v.Name)
	assert.Equal(t, "sales@dell.com", v.Email)
	assert.Equal(t, "John Smith", v.ContactPerson)

	for _, bad := range []*Vendor{
		{Email: "a@b.com"},
		{Name: "HP"},
		{Name: "HP", Email: "not-an-email"},
		{Name: "HP", Email: "HP Sales <enterprise@hp.com>"},
	} {
		assert.ErrorIs(t, bad.Validate(), apperr.ErrValidation)
	}
}
