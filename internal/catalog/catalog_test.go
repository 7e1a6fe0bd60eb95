package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/retail-checkout-service/internal/fault"
	"github.com/fairyhunter13/retail-checkout-service/internal/model"
)

func seed() *Catalog {
	return New([]model.Good{
		{Name: "apple", Quantity: 10, Price: decimal.NewFromFloat(2.0)},
		{Name: "bread", Quantity: 3, Price: decimal.NewFromFloat(1.5)},
	})
}

func TestReservePricesWholeCart(t *testing.T) {
	c := seed()
	priced, err := c.Reserve([]model.CartItem{
		{Name: "apple", Quantity: 3},
		{Name: "bread", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, priced, 2)
	require.Equal(t, "apple", priced[0].Name)
	require.True(t, priced[0].Price.Equal(decimal.NewFromFloat(2.0)))

	// Reserve alone must not touch stock.
	g, ok := c.FindByName("apple")
	require.True(t, ok)
	require.EqualValues(t, 10, g.Quantity)
}

func TestReserveUnknownItem(t *testing.T) {
	c := seed()
	_, err := c.Reserve([]model.CartItem{{Name: "caviar", Quantity: 1}})
	require.True(t, fault.IsKind(err, fault.KindNotFound))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "caviar", fe.Item)
}

func TestReserveInsufficientStock(t *testing.T) {
	c := seed()
	_, err := c.Reserve([]model.CartItem{{Name: "apple", Quantity: 15}})
	require.True(t, fault.IsKind(err, fault.KindInsufficientStock))

	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "apple", fe.Item)
	require.EqualValues(t, 15, fe.Requested)
	require.EqualValues(t, 10, fe.Available)
}

func TestReserveMergesDuplicateLines(t *testing.T) {
	c := seed()
	// 6+6 exceeds the 10 in stock; split across two lines it must still fail.
	_, err := c.Reserve([]model.CartItem{
		{Name: "apple", Quantity: 6},
		{Name: "apple", Quantity: 6},
	})
	require.True(t, fault.IsKind(err, fault.KindInsufficientStock))

	priced, err := c.Reserve([]model.CartItem{
		{Name: "apple", Quantity: 4},
		{Name: "apple", Quantity: 6},
	})
	require.NoError(t, err)
	require.Len(t, priced, 1)
	require.EqualValues(t, 10, priced[0].Quantity)
}

func TestCommitReserveDeductsStock(t *testing.T) {
	c := seed()
	items := []model.CartItem{{Name: "apple", Quantity: 3}}
	_, err := c.Reserve(items)
	require.NoError(t, err)
	require.NoError(t, c.CommitReserve(items))

	g, _ := c.FindByName("apple")
	require.EqualValues(t, 7, g.Quantity)
}

func TestCommitReserveWithoutReserveIsConflict(t *testing.T) {
	c := seed()
	err := c.CommitReserve([]model.CartItem{{Name: "apple", Quantity: 25}})
	require.True(t, fault.IsKind(err, fault.KindConflict))
}

func TestAddValidation(t *testing.T) {
	c := seed()
	require.True(t, fault.IsKind(c.Add(model.Good{Name: ""}), fault.KindValidation))
	require.True(t, fault.IsKind(c.Add(model.Good{Name: "x", Quantity: -1}), fault.KindValidation))
	require.True(t, fault.IsKind(c.Add(model.Good{Name: "x", Price: decimal.NewFromInt(-1)}), fault.KindValidation))

	require.NoError(t, c.Add(model.Good{Name: "milk", Quantity: 5, Price: decimal.NewFromFloat(0.9)}))
	g, ok := c.FindByName("milk")
	require.True(t, ok)
	require.EqualValues(t, 5, g.Quantity)
}

func TestRemove(t *testing.T) {
	c := seed()
	require.NoError(t, c.Remove("bread"))
	_, ok := c.FindByName("bread")
	require.False(t, ok)
	require.True(t, fault.IsKind(c.Remove("bread"), fault.KindNotFound))
}

func TestCloneIsIndependent(t *testing.T) {
	c := seed()
	cp := c.Clone()
	require.NoError(t, cp.CommitReserve([]model.CartItem{{Name: "apple", Quantity: 10}}))

	g, _ := c.FindByName("apple")
	require.EqualValues(t, 10, g.Quantity)
	gc, _ := cp.FindByName("apple")
	require.EqualValues(t, 0, gc.Quantity)
}

func TestGoodsSortedByName(t *testing.T) {
	c := seed()
	goods := c.Goods()
	require.Len(t, goods, 2)
	require.Equal(t, "apple", goods[0].Name)
	require.Equal(t, "bread", goods[1].Name)
}
