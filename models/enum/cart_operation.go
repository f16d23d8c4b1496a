package enum

// CartOperation 表示購物車變更的種類
type CartOperation string

const (
	CartOperationAdd     CartOperation = "add"
	CartOperationRemove  CartOperation = "remove"
	CartOperationUpdate  CartOperation = "update"
	CartOperationClear   CartOperation = "clear"
	CartOperationReplace CartOperation = "replace"
)
