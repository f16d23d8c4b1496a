package enum

// PaymentMethod 表示結帳時選擇的付款方式
type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodCOD:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodUPI:
		return "UPI Payment"
	case PaymentMethodCard:
		return "Credit/Debit Card"
	case PaymentMethodCOD:
		return "Cash on Delivery"
	}
	return string(m)
}
