package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

func TestObserveCart(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	items := []models.CartItem{
		models.NewCartItem(models.Product{ID: 1, Price: 266}, 2),
		models.NewCartItem(models.Product{ID: 2, Price: 1350}, 1),
	}
	m.ObserveCart(cart.Change{Op: enum.CartOperationAdd, Items: items, Total: 1882, Count: 3, Persisted: true})
	m.ObserveCart(cart.Change{Op: enum.CartOperationAdd, Items: items, Total: 1882, Count: 3, Persisted: false})
	m.ObserveCart(cart.Change{Op: enum.CartOperationReplace, Items: items[:1], Total: 532, Count: 2, Remote: true, Persisted: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("replace", "remote")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartLines))
	assert.Equal(t, 532.0, testutil.ToFloat64(m.cartTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures))

	count, err := testutil.GatherAndCount(reg, "storefront_cart_mutations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveOrderAndUser(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOrder(&models.Order{PaymentMethod: enum.PaymentMethodCOD, Total: 1500})
	m.ObserveOrder(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersPlaced.WithLabelValues("cod")))

	m.ObserveUser(&models.User{ID: 1})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signedIn))
	m.ObserveUser(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.signedIn))
}

func TestNilRegistererIsNoop(t *testing.T) {
	var nilMetrics *Metrics
	for _, m := range []*Metrics{New(nil), nilMetrics} {
		assert.NotPanics(t, func() {
			m.ObserveCart(cart.Change{Op: enum.CartOperationClear})
			m.ObserveOrder(&models.Order{})
			m.ObserveUser(nil)
		})
	}
}
