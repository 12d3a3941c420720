package guard_test

import (
	"errors"
	"sync"
	"testing"

	"fleet/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTicketNotConstructed = errors.New("ticket must be created via newTicket")

type ticket struct {
	code  string
	guard guard.ConstructorGuard
}

func newTicket(code string) (ticket, error) {
	if code == "" {
		return ticket{}, errors.New("code is required")
	}
	return ticket{code: code, guard: guard.NewConstructorGuard()}, nil
}

func (t ticket) Validate() error {
	return t.guard.Validate(errTicketNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("unused")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_given_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("entity not constructed")

		assert.Equal(t, expected, g.Validate(expected))
	})

	t.Run("zero_value_falls_back_to_default_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	t.Run("built_through_constructor", func(t *testing.T) {
		tk, err := newTicket("D-1")
		require.NoError(t, err)
		require.NoError(t, tk.Validate())
	})

	t.Run("struct_literal_is_rejected", func(t *testing.T) {
		tk := ticket{code: "D-1"}
		assert.ErrorIs(t, tk.Validate(), errTicketNotConstructed)
	})

	t.Run("copies_keep_the_flag", func(t *testing.T) {
		tk, err := newTicket("D-2")
		require.NoError(t, err)

		cp := tk
		require.NoError(t, cp.Validate())
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(errTicketNotConstructed))
		}()
	}
	wg.Wait()
}
