package checkout

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"gofalre.io/storefront/models"
)

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)
)

var fieldMessages = map[string]map[string]string{
	"full_name": {"required": "Name is required"},
	"phone":     {"required": "Phone is required", "phone": "Invalid phone number"},
	"address":   {"required": "Address is required"},
	"city":      {"required": "City is required"},
	"state":     {"required": "State is required"},
	"pincode":   {"required": "Pincode is required", "pincode": "Invalid pincode"},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(fl.Field().String())
	})
	return v
}

func normalizeShipping(addr models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		FullName: strings.TrimSpace(addr.FullName),
		Phone:    strings.TrimSpace(addr.Phone),
		Address:  strings.TrimSpace(addr.Address),
		City:     strings.TrimSpace(addr.City),
		State:    strings.TrimSpace(addr.State),
		Pincode:  strings.TrimSpace(addr.Pincode),
	}
}

// validateShipping trims every field and checks the form. It returns the
// trimmed address together with a *ValidationError when a field is wrong.
func validateShipping(v *validator.Validate, addr models.ShippingAddress) (models.ShippingAddress, error) {
	addr = normalizeShipping(addr)

	err := v.Struct(addr)
	if err == nil {
		return addr, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return addr, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fields[fe.Field()] = msg
	}
	return addr, &ValidationError{Fields: fields}
}
