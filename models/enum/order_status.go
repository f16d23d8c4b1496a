package enum

// OrderStatus 表示訂單的狀態
type OrderStatus string

// 訂單只在本地建立，不會再往後推進
const OrderStatusPlaced OrderStatus = "placed"

func (s OrderStatus) Label() string {
	if s == OrderStatusPlaced {
		return "Order Placed"
	}
	return string(s)
}
