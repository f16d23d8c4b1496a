package checkout

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"gofalre.io/storefront/models"
	"gofalre.io/storefront/models/enum"
)

type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepReview
)

var stepLabels = [...]string{
	StepShipping: "Shipping Address",
	StepPayment:  "Payment Method",
	StepReview:   "Review & Confirm",
}

func (s Step) String() string {
	if s < StepShipping || s > StepReview {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepLabels[s]
}

// Session walks one shopper through shipping, payment and review.
type Session struct {
	step     Step
	shipping models.ShippingAddress
	payment  enum.PaymentMethod
	validate *validator.Validate
}

func (s *Session) Step() Step {
	return s.step
}

func (s *Session) Shipping() models.ShippingAddress {
	return s.shipping
}

func (s *Session) SetShipping(addr models.ShippingAddress) {
	s.shipping = addr
}

func (s *Session) PaymentMethod() enum.PaymentMethod {
	return s.payment
}

func (s *Session) SetPaymentMethod(method enum.PaymentMethod) error {
	if !method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	s.payment = method
	return nil
}

// Next advances one step. Leaving the shipping step requires a valid address;
// the stored address is replaced by its trimmed form.
func (s *Session) Next() error {
	switch s.step {
	case StepShipping:
		addr, err := validateShipping(s.validate, s.shipping)
		if err != nil {
			return err
		}
		s.shipping = addr
	case StepPayment:
		if !s.payment.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s.payment)
		}
	case StepReview:
		return nil
	}
	s.step++
	return nil
}

func (s *Session) Back() {
	if s.step > StepShipping {
		s.step--
	}
}
