package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaiFongPan/ndview/internal/ndconfig"
	"github.com/HaiFongPan/ndview/internal/selection"
)

func testDimensions() []ndconfig.Dimension {
	return []ndconfig.Dimension{
		ndconfig.NewDimension("surface", "Surface", []string{"land", "ocean", "ice"}),
		ndconfig.NewDimension("level", "Level", []string{"raw", "processed"}),
	}
}

// fixedOffers returns the same offered lists whatever the assignment
func fixedOffers(offered [][]string) RepopulateFunc {
	return func(selection.Assignment) ([][]string, error) {
		return offered, nil
	}
}

func TestSelector_New(t *testing.T) {
	initial := selection.Assignment{"land", "raw"}
	s := NewSelector(testDimensions(), initial)

	assert.Equal(t, []string{"land", "raw"}, []string(s.Current()))
	assert.Equal(t, []string{"land", "ocean", "ice"}, s.Offered(0))
	assert.Equal(t, 0, s.Focus())

	initial[0] = "ocean"
	assert.Equal(t, "land", s.Current()[0])
	assert.False(t, s.SwitchToLast())
}

func TestSelector_MoveFocus(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})

	s.MoveFocus(1)
	assert.Equal(t, 1, s.Focus())
	s.MoveFocus(1)
	assert.Equal(t, 0, s.Focus())
	s.MoveFocus(-1)
	assert.Equal(t, 1, s.Focus())
}

func TestSelector_Cycle(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})

	assert.True(t, s.Cycle(1))
	assert.Equal(t, "ocean", s.Current()[0])
	assert.True(t, s.Cycle(-2))
	assert.Equal(t, "ice", s.Current()[0])
	assert.True(t, s.Cycle(1))
	assert.Equal(t, "land", s.Current()[0])
}

func TestSelector_CycleSingleOffer(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})
	require.NoError(t, s.Settle(fixedOffers([][]string{{"land"}, {"raw", "processed"}})))

	assert.False(t, s.Cycle(1))
	assert.Equal(t, "land", s.Current()[0])
}

func TestSelector_SwitchToLastToggles(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})

	s.MoveFocus(1)
	require.True(t, s.Cycle(1))
	assert.Equal(t, []string{"land", "processed"}, []string(s.Current()))

	s.MoveFocus(1)
	assert.True(t, s.SwitchToLast())
	assert.Equal(t, []string{"land", "raw"}, []string(s.Current()))
	assert.True(t, s.SwitchToLast())
	assert.Equal(t, []string{"land", "processed"}, []string(s.Current()))
}

func TestSelector_SettleFallsBack(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"ice", "processed"})

	calls := 0
	repopulate := func(current selection.Assignment) ([][]string, error) {
		calls++
		if current[0] == "ice" {
			return [][]string{{"land", "ocean"}, {"raw"}}, nil
		}
		return [][]string{{"land", "ocean"}, {"raw", "processed"}}, nil
	}

	require.NoError(t, s.Settle(repopulate))
	assert.Equal(t, []string{"land", "raw"}, []string(s.Current()))
	assert.Equal(t, []string{"raw", "processed"}, s.Offered(1))
	assert.Equal(t, 2, calls)

	// fallbacks are not user changes
	assert.False(t, s.SwitchToLast())
}

func TestSelector_SettleKeepsUnofferedWhenEmpty(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"ice", "raw"})

	require.NoError(t, s.Settle(fixedOffers([][]string{{}, {}})))
	assert.Equal(t, []string{"ice", "raw"}, []string(s.Current()))
	assert.Empty(t, s.Offered(0))
	assert.False(t, s.Cycle(1))
}

func TestSelector_SettleError(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})
	boom := errors.New("boom")

	err := s.Settle(func(selection.Assignment) ([][]string, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"land", "raw"}, []string(s.Current()))
}

func TestSelector_SettleRejectsMisalignedOffers(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})

	err := s.Settle(fixedOffers([][]string{{"land"}}))
	require.Error(t, err)
	assert.Equal(t, []string{"land", "ocean", "ice"}, s.Offered(0))
}

func TestSelector_ApplyKeepsHistory(t *testing.T) {
	s := NewSelector(testDimensions(), selection.Assignment{"land", "raw"})
	require.True(t, s.Cycle(1))

	current := selection.Assignment{"ice", "processed"}
	s.Apply(current, [][]string{{"ice"}, {"processed"}})
	current[0] = "mutated"

	assert.Equal(t, []string{"ice", "processed"}, []string(s.Current()))
	assert.Equal(t, []string{"ice"}, s.Offered(0))
	assert.True(t, s.SwitchToLast())
	assert.Equal(t, []string{"land", "processed"}, []string(s.Current()))
}
