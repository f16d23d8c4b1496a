package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
	"gofalre.io/storefront/storage"
)

var (
	urea = models.Product{ID: 1, Name: "Urea", Price: 500, Unit: "50 kg bag", Category: "chemical"}
	dap  = models.Product{ID: 2, Name: "DAP", Price: 1350, Unit: "50 kg bag", Category: "chemical"}
	neem = models.Product{ID: 3, Name: "Neem Cake", Price: 420.5, Unit: "25 kg bag", Category: "organic"}
)

func newTestStore(t *testing.T) (*Store, storage.Store) {
	t.Helper()

	kv := storage.NewMemory()
	return NewStore(context.Background(), NewRepository(kv, zap.NewNop()), zap.NewNop()), kv
}

func quantities(items []models.CartItem) map[uint64]int {
	out := make(map[uint64]int, len(items))
	for _, item := range items {
		out[item.ID] = item.Quantity
	}
	return out
}

func TestScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddToCart(ctx, urea, 2))
	assert.Equal(t, map[uint64]int{1: 2}, quantities(store.Items()))
	assert.Equal(t, 1000.0, store.Total())
	assert.Equal(t, 2, store.Count())

	require.NoError(t, store.AddToCart(ctx, urea, 1))
	assert.Equal(t, map[uint64]int{1: 3}, quantities(store.Items()))
	assert.Equal(t, 1500.0, store.Total())
	assert.Equal(t, 3, store.Count())

	store.UpdateQuantity(ctx, 1, 1)
	assert.Equal(t, 500.0, store.Total())
	assert.Equal(t, 1, store.Count())

	store.UpdateQuantity(ctx, 1, 0)
	assert.Empty(t, store.Items())
	assert.Equal(t, 0.0, store.Total())
	assert.Equal(t, 0, store.Count())
}

func TestAddToCartSumsRepeatedAdds(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, q := range []int{1, 4, 2, 1} {
		require.NoError(t, store.AddToCart(ctx, dap, q))
	}

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 8, items[0].Quantity)
}

func TestAddToCartKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddToCart(ctx, neem, 1))
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	require.NoError(t, store.AddToCart(ctx, dap, 1))
	require.NoError(t, store.AddToCart(ctx, neem, 1))

	items := store.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []uint64{3, 1, 2}, []uint64{items[0].ID, items[1].ID, items[2].ID})
}

func TestAddToCartCopiesProductFieldsOnFirstInsert(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddToCart(ctx, urea, 1))
	repriced := urea
	repriced.Price = 999
	require.NoError(t, store.AddToCart(ctx, repriced, 1))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "50 kg bag", items[0].Unit)
	assert.Equal(t, 500.0, items[0].Price)
	assert.Equal(t, 1000.0, store.Total())
}

func TestAddToCartRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	tests := []struct {
		name     string
		product  models.Product
		quantity int
		want     error
	}{
		{name: "missing id", product: models.Product{Price: 10}, quantity: 1, want: ErrInvalidProduct},
		{name: "negative price", product: models.Product{ID: 9, Price: -1}, quantity: 1, want: ErrInvalidProduct},
		{name: "zero quantity", product: urea, quantity: 0, want: ErrInvalidQuantity},
		{name: "negative quantity", product: urea, quantity: -3, want: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AddToCart(ctx, tt.product, tt.quantity)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, store.Len())
}

func TestAddToCartRejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, math.MaxInt))
	require.NoError(t, store.AddToCart(ctx, dap, 1))

	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })
	before, err := kv.Get(ctx, SnapshotKey)
	require.NoError(t, err)

	err = store.AddToCart(ctx, urea, 1)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, map[uint64]int{1: math.MaxInt, 2: 1}, quantities(store.Items()))
	assert.Positive(t, store.Count())
	assert.Positive(t, store.Total())
	assert.Empty(t, changes)

	after, err := kv.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// the line can still grow up to the limit
	store.UpdateQuantity(ctx, urea.ID, math.MaxInt-1)
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	assert.Equal(t, math.MaxInt, quantities(store.Items())[urea.ID])
}

func TestUpdateQuantityNonPositiveRemoves(t *testing.T) {
	ctx := context.Background()

	for _, q := range []int{0, -5} {
		store, _ := newTestStore(t)
		require.NoError(t, store.AddToCart(ctx, urea, 2))
		require.NoError(t, store.AddToCart(ctx, dap, 1))

		store.UpdateQuantity(ctx, urea.ID, q)

		assert.Equal(t, map[uint64]int{2: 1}, quantities(store.Items()))
		for _, item := range store.Items() {
			assert.Positive(t, item.Quantity)
		}
	}
}

func TestUpdateQuantitySetsExactly(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, dap, 2))

	store.UpdateQuantity(ctx, dap.ID, 5)
	assert.Equal(t, 5, store.Count())

	// decrementing from 1 removes
	store.UpdateQuantity(ctx, dap.ID, 1)
	store.UpdateQuantity(ctx, dap.ID, 0)
	assert.Zero(t, store.Len())
}

func TestUpdateQuantityInput(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 1))

	store.UpdateQuantityInput(ctx, urea.ID, " 4 ")
	assert.Equal(t, 4, store.Count())

	store.UpdateQuantityInput(ctx, urea.ID, "abc")
	assert.Zero(t, store.Len())
}

func TestRemoveFromCartAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 2))

	var notified int
	store.Subscribe(func(Change) { notified++ })

	before := store.Items()
	revision := store.Revision()
	store.RemoveFromCart(ctx, 42)
	store.UpdateQuantity(ctx, 42, 3)

	assert.Equal(t, before, store.Items())
	assert.Equal(t, revision, store.Revision())
	assert.Zero(t, notified)
}

func TestRemoveFromCartReindexes(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	require.NoError(t, store.AddToCart(ctx, dap, 1))
	require.NoError(t, store.AddToCart(ctx, neem, 1))

	store.RemoveFromCart(ctx, urea.ID)
	require.NoError(t, store.AddToCart(ctx, neem, 2))
	store.UpdateQuantity(ctx, dap.ID, 7)

	assert.Equal(t, map[uint64]int{2: 7, 3: 3}, quantities(store.Items()))
	assert.Equal(t, 2, store.Len())
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 2))
	require.NoError(t, store.AddToCart(ctx, neem, 3))

	store.ClearCart(ctx)
	assert.Zero(t, store.Count())
	assert.Zero(t, store.Total())

	// clearing an empty cart still succeeds
	store.ClearCart(ctx)
	assert.Zero(t, store.Count())
}

func TestDrainReturnsItemsAndEmpties(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 2))
	require.NoError(t, store.AddToCart(ctx, neem, 1))

	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	drained := store.Drain(ctx)
	assert.Equal(t, map[uint64]int{1: 2, 3: 1}, quantities(drained))
	assert.Equal(t, uint64(1), drained[0].ID)
	assert.Zero(t, store.Len())

	require.Len(t, changes, 1)
	assert.Equal(t, enum.CartOperationClear, changes[0].Op)
	assert.Empty(t, changes[0].Items)

	raw, err := kv.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	// draining an empty cart changes nothing
	assert.Empty(t, store.Drain(ctx))
	assert.Len(t, changes, 1)

	// the returned lines are the caller's
	drained[0].Quantity = 99
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	assert.Equal(t, 1, store.Count())
}

func TestTotalsTrackEveryMutation(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	check := func() {
		t.Helper()
		var total float64
		var count int
		for _, item := range store.Items() {
			total += item.Price * float64(item.Quantity)
			count += item.Quantity
		}
		assert.InDelta(t, total, store.Total(), 1e-9)
		assert.Equal(t, count, store.Count())
	}

	require.NoError(t, store.AddToCart(ctx, urea, 3))
	check()
	require.NoError(t, store.AddToCart(ctx, neem, 2))
	check()
	store.UpdateQuantity(ctx, urea.ID, 1)
	check()
	require.NoError(t, store.AddToCart(ctx, dap, 1))
	check()
	store.RemoveFromCart(ctx, neem.ID)
	check()
	assert.Equal(t, 1850.0, store.Total())
	assert.Equal(t, 2, store.Count())
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 1))

	items := store.Items()
	items[0].Quantity = 100

	assert.Equal(t, 1, store.Count())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, neem, 2))
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	require.NoError(t, store.AddToCart(ctx, dap, 4))

	restored := NewStore(ctx, NewRepository(kv, zap.NewNop()), zap.NewNop())

	assert.Equal(t, store.Items(), restored.Items())
	assert.Equal(t, store.Total(), restored.Total())
	assert.Equal(t, store.Count(), restored.Count())
}

func TestSnapshotFormat(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, models.Product{ID: 1, Price: 500}, 2))

	raw, err := kv.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"","description":"","price":500,"unit":"","image":"","category":"","rating":0,"stock":0,"quantity":2}]`, string(raw))

	store.ClearCart(ctx)
	raw, err = kv.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRestoreTreatsMalformedSnapshotAsEmpty(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{`not json`, `{"id":1}`, `[{"id":"x"}]`} {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(ctx, SnapshotKey, []byte(raw)))

		store := NewStore(ctx, NewRepository(kv, zap.NewNop()), zap.NewNop())
		assert.Zero(t, store.Len(), raw)
	}
}

func TestRestoreNormalizesRecords(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	raw := `[
		{"id":2,"price":10,"quantity":1},
		{"id":0,"price":10,"quantity":5},
		{"id":3,"price":10,"quantity":0},
		{"id":2,"price":10,"quantity":2},
		{"id":4,"price":-1,"quantity":1},
		{"id":5,"price":1,"quantity":1}
	]`
	require.NoError(t, kv.Set(ctx, SnapshotKey, []byte(raw)))

	store := NewStore(ctx, NewRepository(kv, zap.NewNop()), zap.NewNop())

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, uint64(2), items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, uint64(5), items[1].ID)
}

func TestRestoreCapsMergedQuantities(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	raw := fmt.Sprintf(`[
		{"id":1,"price":500,"quantity":%d},
		{"id":1,"price":500,"quantity":1},
		{"id":2,"price":10,"quantity":%d},
		{"id":2,"price":10,"quantity":%d}
	]`, math.MaxInt, math.MaxInt/2+1, math.MaxInt/2+1)
	require.NoError(t, kv.Set(ctx, SnapshotKey, []byte(raw)))

	store := NewStore(ctx, NewRepository(kv, zap.NewNop()), zap.NewNop())

	assert.Equal(t, map[uint64]int{1: math.MaxInt, 2: math.MaxInt}, quantities(store.Items()))
	for _, item := range store.Items() {
		assert.Positive(t, item.Quantity)
	}
	assert.Positive(t, store.Total())
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepository{saveErr: errors.New("quota exceeded")}
	store := NewStore(ctx, repo, zap.NewNop())

	var changes []Change
	store.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, store.AddToCart(ctx, urea, 2))
	assert.Equal(t, 2, store.Count())
	require.Len(t, changes, 1)
	assert.False(t, changes[0].Persisted)
	assert.Equal(t, 1, repo.saves)
}

func TestRestoreFailureStartsEmpty(t *testing.T) {
	store := NewStore(context.Background(), &failingRepository{loadErr: errors.New("unavailable")}, zap.NewNop())
	assert.Zero(t, store.Len())
}

func TestSubscribeNotifiesInOrderAfterPersist(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	var calls []string
	store.Subscribe(func(c Change) {
		// the snapshot is already written and reads see the new state
		raw, err := kv.Get(ctx, SnapshotKey)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"quantity":`)
		assert.Equal(t, c.Count, store.Count())
		calls = append(calls, "first:"+string(c.Op))
	})
	unsubscribe := store.Subscribe(func(c Change) {
		calls = append(calls, "second:"+string(c.Op))
	})

	require.NoError(t, store.AddToCart(ctx, urea, 1))
	unsubscribe()
	unsubscribe()
	store.UpdateQuantity(ctx, urea.ID, 3)

	assert.Equal(t, []string{"first:add", "second:add", "first:update"}, calls)
}

func TestChangeCarriesTotals(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	var last Change
	store.Subscribe(func(c Change) { last = c })

	require.NoError(t, store.AddToCart(ctx, urea, 2))
	assert.Equal(t, enum.CartOperationAdd, last.Op)
	assert.Equal(t, 1000.0, last.Total)
	assert.Equal(t, 2, last.Count)
	assert.True(t, last.Persisted)
	assert.False(t, last.Remote)

	store.UpdateQuantity(ctx, urea.ID, -1)
	assert.Equal(t, enum.CartOperationRemove, last.Op)
	assert.Empty(t, last.Items)
}

func TestRevisionIncreases(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	fixed := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.AddToCart(ctx, urea, 1))
	first := store.Revision()
	require.NoError(t, store.AddToCart(ctx, urea, 1))

	assert.Equal(t, fixed.UnixNano(), first)
	assert.Equal(t, first+1, store.Revision())
}

func TestReplaceLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)
	require.NoError(t, store.AddToCart(ctx, urea, 1))
	current := store.Revision()

	var remote []Change
	store.Subscribe(func(c Change) {
		if c.Remote {
			remote = append(remote, c)
		}
	})

	stale := []models.CartItem{models.NewCartItem(dap, 9)}
	assert.False(t, store.Replace(ctx, stale, current))
	assert.Equal(t, map[uint64]int{1: 1}, quantities(store.Items()))

	newer := []models.CartItem{models.NewCartItem(dap, 2), models.NewCartItem(neem, 0)}
	assert.True(t, store.Replace(ctx, newer, current+10))
	assert.Equal(t, map[uint64]int{2: 2}, quantities(store.Items()))
	assert.Equal(t, current+10, store.Revision())

	require.Len(t, remote, 1)
	assert.Equal(t, enum.CartOperationReplace, remote[0].Op)

	restored := NewStore(ctx, NewRepository(kv, zap.NewNop()), zap.NewNop())
	assert.Equal(t, store.Items(), restored.Items())
}

type failingRepository struct {
	loadErr error
	saveErr error
	saves   int
}

func (r *failingRepository) Load(context.Context) ([]models.CartItem, error) {
	return nil, r.loadErr
}

func (r *failingRepository) Save(context.Context, []models.CartItem) error {
	r.saves++
	return r.saveErr
}
