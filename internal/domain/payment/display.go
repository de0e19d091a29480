// internal/domain/payment/display.go
package payment

import (
	"fmt"
	"strings"
	"unicode"
)

var paymentMethodNames = map[string]string{
	"cash":           "Наличными",
	"card":           "Банковской картой",
	"credit_card":    "Банковской картой",
	"online":         "Онлайн оплата",
	"online_payment": "Онлайн оплата",
	"bank_transfer":  "Банковский перевод",
	"credit":         "В кредит",
	"installment":    "Рассрочка",
	"payment":        "Оплата",
}

var deliveryMethodNames = map[string]string{
	"courier":           "Курьерская доставка",
	"courier_delivery":  "Курьерская доставка",
	"pickup":            "Самовывоз",
	"self_pickup":       "Самовывоз из магазина",
	"post":              "Почтовая доставка",
	"postal":            "Почтовая доставка",
	"express":           "Экспресс-доставка",
	"express_delivery":  "Экспресс-доставка",
	"standard":          "Стандартная доставка",
	"standard_delivery": "Стандартная доставка",
	"delivery":          "Доставка",
	"shipping":          "Доставка",
}

// DisplayName returns the customer-facing name of the payment method
func (m *PaymentMethod) DisplayName() string {
	return translate(m.Name, paymentMethodNames)
}

// DisplayName returns the customer-facing name of the delivery method
func (d *DeliveryMethod) DisplayName() string {
	return translate(d.Name, deliveryMethodNames)
}

// Label is the display name followed by the price, e.g. "Самовывоз (Бесплатно)"
func (d *DeliveryMethod) Label() string {
	price := d.Price()
	if price.IsPositive() {
		return fmt.Sprintf("%s (%s ₽)", d.DisplayName(), price.StringFixed(2))
	}
	return fmt.Sprintf("%s (Бесплатно)", d.DisplayName())
}

// IsPickup reports whether the method is collection in store
func (d *DeliveryMethod) IsPickup() bool {
	n := strings.ToLower(d.Name)
	return strings.Contains(n, "самовывоз") || strings.Contains(n, "pickup")
}

// translate leaves Cyrillic names as they are and looks the rest up by key
func translate(name string, table map[string]string) string {
	if hasCyrillic(name) {
		return name
	}
	if translated, ok := table[strings.ToLower(strings.TrimSpace(name))]; ok {
		return translated
	}
	return name
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
