package deposit_test

import (
	"fmt"
	"github.com/openaccess/exchange/deposit"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestDepositError(t *testing.T) {
	err := deposit.NewDepositError("No OSF token provided.")
	assert.Equal(t, "No OSF token provided.", err.Error())
	assert.True(t, deposit.IsDepositError(err))

	err = deposit.NewDepositErrorf("Unable to create project %s", "x")
	assert.Equal(t, "Unable to create project x", err.Error())

	// Wrapped errors still count.
	wrapped := errors.Wrap(err, "step 3")
	depositErr, ok := deposit.AsDepositError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Unable to create project x", depositErr.Message)

	assert.False(t, deposit.IsDepositError(fmt.Errorf("plain")))
	assert.False(t, deposit.IsDepositError(nil))
}
