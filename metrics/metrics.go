package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"gofalre.io/storefront/cart"
	"gofalre.io/storefront/models"
)

const namespace = "storefront"

// Metrics exposes cart, checkout and session state as prometheus collectors.
// A nil *Metrics, or one built without a registerer, records nothing.
type Metrics struct {
	cartMutations   *prometheus.CounterVec
	cartItems       prometheus.Gauge
	cartLines       prometheus.Gauge
	cartTotal       prometheus.Gauge
	persistFailures prometheus.Counter
	ordersPlaced    *prometheus.CounterVec
	orderValue      prometheus.Histogram
	signedIn        prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	m := &Metrics{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Committed cart mutations by operation and origin.",
		}, []string{"op", "origin"}),
		cartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Sum of quantities in the cart.",
		}),
		cartLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_lines",
			Help:      "Distinct products in the cart.",
		}),
		cartTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_total",
			Help:      "Cart total in the store currency.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persist_failures_total",
			Help:      "Cart snapshots that could not be written.",
		}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed by payment method.",
		}, []string{"payment_method"}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value",
			Help:      "Order totals in the store currency.",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),
		signedIn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "user_signed_in",
			Help:      "1 while a user is signed in.",
		}),
	}

	reg.MustRegister(
		m.cartMutations,
		m.cartItems,
		m.cartLines,
		m.cartTotal,
		m.persistFailures,
		m.ordersPlaced,
		m.orderValue,
		m.signedIn,
	)
	return m
}

// ObserveCart has the shape of a cart.Observer.
func (m *Metrics) ObserveCart(change cart.Change) {
	if m == nil || m.cartMutations == nil {
		return
	}

	origin := "local"
	if change.Remote {
		origin = "remote"
	}
	m.cartMutations.WithLabelValues(string(change.Op), origin).Inc()
	m.cartItems.Set(float64(change.Count))
	m.cartLines.Set(float64(len(change.Items)))
	m.cartTotal.Set(change.Total)
	if !change.Persisted {
		m.persistFailures.Inc()
	}
}

func (m *Metrics) ObserveOrder(order *models.Order) {
	if m == nil || m.ordersPlaced == nil || order == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()
	m.orderValue.Observe(order.Total)
}

func (m *Metrics) ObserveUser(user *models.User) {
	if m == nil || m.signedIn == nil {
		return
	}
	if user == nil {
		m.signedIn.Set(0)
		return
	}
	m.signedIn.Set(1)
}
