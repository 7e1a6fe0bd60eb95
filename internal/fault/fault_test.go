package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindValidation, KindOf(Validationf("op", "bad")))
	require.Equal(t, KindNotFound, KindOf(NotFound("op", "item", "x")))
	require.Equal(t, KindInsufficientStock, KindOf(InsufficientStock("op", "x", 5, 2)))
	require.Equal(t, KindStorage, KindOf(Storage("op", errors.New("disk"))))
	require.Equal(t, KindConflict, KindOf(Conflict("op", "raced")))
	// unclassified errors fall back to storage so callers retry
	require.Equal(t, KindStorage, KindOf(errors.New("mystery")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", InsufficientStock("catalog.reserve", "apple", 15, 10))
	require.True(t, IsKind(err, KindInsufficientStock))

	var fe *Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "apple", fe.Item)
	require.EqualValues(t, 15, fe.Requested)
	require.EqualValues(t, 10, fe.Available)
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t,
		`catalog.reserve: insufficient stock for "apple": requested 15, available 10`,
		InsufficientStock("catalog.reserve", "apple", 15, 10).Error())
	require.Equal(t,
		`catalog.remove: item not found: "caviar"`,
		NotFound("catalog.remove", "item", "caviar").Error())
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := Storage("snapshot.save", inner)
	require.ErrorIs(t, err, inner)
}
