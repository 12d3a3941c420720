package delivery_test

import (
	"testing"

	"fleet/internal/core/domain/model/delivery"
	"fleet/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StringAndParse(t *testing.T) {
	for _, s := range delivery.AllStatuses() {
		parsed, err := delivery.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := delivery.ParseStatus("lost")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	assert.Equal(t, "unknown", delivery.Unknown.String())
	require.Error(t, delivery.Unknown.Validate())
}

func TestStatus_TransitionGraphIsExhaustive(t *testing.T) {
	edges := map[delivery.Status][]delivery.Status{
		delivery.Pending:   {delivery.Assigned, delivery.Cancelled},
		delivery.Assigned:  {delivery.OnRoute, delivery.Cancelled},
		delivery.OnRoute:   {delivery.PickedUp, delivery.Cancelled},
		delivery.PickedUp:  {delivery.Delivered, delivery.Cancelled},
		delivery.Delivered: {},
		delivery.Cancelled: {},
	}

	for _, from := range delivery.AllStatuses() {
		for _, to := range delivery.AllStatuses() {
			allowed := false
			for _, e := range edges[from] {
				if e == to {
					allowed = true
				}
			}

			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				next, err := from.TransitionTo(to)
				if allowed {
					require.NoError(t, err)
					assert.Equal(t, to, next)
					return
				}

				require.ErrorIs(t, err, delivery.ErrInvalidTransition)
				var transitionErr *delivery.InvalidTransitionError
				require.ErrorAs(t, err, &transitionErr)
				assert.Equal(t, from, transitionErr.Current)
				assert.Equal(t, to, transitionErr.Requested)
				assert.Equal(t, delivery.Unknown, next)
			})
		}
	}
}

func TestStatus_TerminalStatesHaveNoEdges(t *testing.T) {
	assert.Empty(t, delivery.Delivered.AllowedTransitions())
	assert.Empty(t, delivery.Cancelled.AllowedTransitions())
	assert.True(t, delivery.Delivered.IsTerminal())
	assert.True(t, delivery.Cancelled.IsTerminal())
	assert.False(t, delivery.PickedUp.IsTerminal())
}

func TestStatus_AllowedTransitionsReturnsCopy(t *testing.T) {
	edges := delivery.Pending.AllowedTransitions()
	edges[0] = delivery.Delivered

	assert.Equal(t, []delivery.Status{delivery.Assigned, delivery.Cancelled}, delivery.Pending.AllowedTransitions())
}

func TestStatus_Classification(t *testing.T) {
	assert.ElementsMatch(t, []delivery.Status{delivery.Assigned, delivery.OnRoute, delivery.PickedUp}, delivery.ActiveStatuses())
	assert.ElementsMatch(t, []delivery.Status{delivery.OnRoute, delivery.PickedUp}, delivery.TrackableStatuses())

	for _, s := range delivery.AllStatuses() {
		assert.Equal(t, s == delivery.OnRoute || s == delivery.PickedUp, s.IsTrackable(), s.String())
	}
}

func TestStatus_AssignAndCancel(t *testing.T) {
	for _, s := range []delivery.Status{delivery.Pending, delivery.Assigned} {
		next, err := s.Assign()
		require.NoError(t, err)
		assert.Equal(t, delivery.Assigned, next)

		next, err = s.Cancel()
		require.NoError(t, err)
		assert.Equal(t, delivery.Cancelled, next)
	}

	for _, s := range []delivery.Status{delivery.OnRoute, delivery.PickedUp, delivery.Delivered, delivery.Cancelled} {
		_, err := s.Assign()
		require.ErrorIs(t, err, delivery.ErrInvalidTransition, s.String())

		_, err = s.Cancel()
		require.ErrorIs(t, err, delivery.ErrInvalidTransition, s.String())
	}
}

func TestParsePriority(t *testing.T) {
	p, err := delivery.ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, delivery.PriorityMedium, p)

	p, err = delivery.ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, delivery.PriorityHigh, p)

	_, err = delivery.ParsePriority("urgent")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
