package kernel_test

import (
	"testing"

	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := kernel.ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, kernel.RoleAdmin, r)

	_, err = kernel.ParseRole("dispatcher")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestActor(t *testing.T) {
	driver, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleDriver)
	require.NoError(t, err)

	assert.True(t, driver.IsDriver())
	assert.False(t, driver.IsAdmin())
	assert.True(t, driver.HasAnyRole(kernel.RoleAdmin, kernel.RoleDriver))
	assert.False(t, driver.HasAnyRole(kernel.RoleCustomer))

	_, err = kernel.NewActor(kernel.UUID{}, kernel.RoleAdmin)
	require.Error(t, err)

	require.Error(t, kernel.Actor{ID: kernel.NewUUID(), Role: "root"}.Validate())
}
