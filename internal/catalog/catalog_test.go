package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog(t *testing.T) {
	c := NewStatic()

	products := c.List()
	require.Len(t, products, 12)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(12), products[11].ID)

	p, err := c.Get(10)
	require.NoError(t, err)
	assert.Equal(t, "Casual Sneaker", p.Name)
	assert.Equal(t, 89.99, p.Price)

	_, err = c.Get(404)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestNewLineItem(t *testing.T) {
	p, err := NewStatic().Get(1)
	require.NoError(t, err)

	item, err := NewLineItem(p, "10", "Black", 2)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, int64(1), item.ProductID)
	assert.Equal(t, "Urban Runner Pro", item.Name)
	assert.Equal(t, 129.99, item.Price)
	assert.Equal(t, "/modern-running-shoe.jpg", item.Image)
	assert.Equal(t, "10", item.Size)
	assert.Equal(t, "Black", item.Color)
	assert.Equal(t, 2, item.Quantity)

	other, err := NewLineItem(p, "10", "Black", 1)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, other.ID)
}

func TestNewLineItemRejectsBadInput(t *testing.T) {
	p, err := NewStatic().Get(1)
	require.NoError(t, err)

	_, err = NewLineItem(p, "10", "Black", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewLineItem(p, "42", "Black", 1)
	assert.ErrorIs(t, err, ErrUnknownVariant)

	_, err = NewLineItem(p, "10", "Purple", 1)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
