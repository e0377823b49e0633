package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemdesk/internal/apperr"
)

func TestValidateGeneralItem(t *testing.T) {
	f := ItemFields{Category: CategoryGeneral, Name: "Projector"}
	assert.NoError(t, f.Validate())
}

func TestValidateUnknownCategory(t *testing.T) {
	f := ItemFields{Category: "furniture", Name: "Desk"}
	assert.Equal(t, apperr.Validation, apperr.KindOf(f.Validate()))
}

func TestValidateEmptyName(t *testing.T) {
	f := ItemFields{Category: CategoryGeneral}
	assert.Equal(t, apperr.Validation, apperr.KindOf(f.Validate()))
}

func TestValidateBookRequiresAuthorAndISBN(t *testing.T) {
	f := ItemFields{Category: CategoryBook, Name: "The Go Programming Language", Author: "Donovan"}
	assert.Equal(t, apperr.Validation, apperr.KindOf(f.Validate()))

	f.ISBN = "978-0134190440"
	assert.NoError(t, f.Validate())

	f.Author = ""
	assert.Equal(t, apperr.Validation, apperr.KindOf(f.Validate()))
}

func TestValidateLaptopNormalizesMAC(t *testing.T) {
	f := ItemFields{Category: CategoryLaptop, Name: "ThinkPad", MACAddress: "00-1A-2B-3C-4D-5E"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "00:1a:2b:3c:4d:5e", f.MACAddress)

	f.MACAddress = "not-a-mac"
	assert.Equal(t, apperr.Validation, apperr.KindOf(f.Validate()))
}
