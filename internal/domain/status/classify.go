// internal/domain/status/classify.go
package status

import "strings"

// Category is the semantic meaning of a status label
type Category string

const (
	CategoryCancelled Category = "cancelled"
	CategoryDelivered Category = "delivered"
	CategoryOther     Category = "other"
)

// IsTerminalForUser reports whether a customer can no longer cancel
func (c Category) IsTerminalForUser() bool {
	return c == CategoryCancelled || c == CategoryDelivered
}

// Classifier maps status labels to categories by substring roots.
// Roots are matched against the normalized label, so they must be lower case.
type Classifier struct {
	Cancelled []string
	Delivered []string
	Initial   []string
}

// DefaultRules recognizes only the Russian roots the store's labels use.
// Labels in other languages classify as other.
var DefaultRules = Classifier{
	Cancelled: []string{"отмен"},
	Delivered: []string{"доставлен"},
	Initial:   []string{"новый", "new"},
}

// BilingualRules adds English roots on top of DefaultRules. Enabled with
// ORDER_ENGLISH_STATUS_ROOTS.
var BilingualRules = Classifier{
	Cancelled: []string{"отмен", "cancelled", "canceled"},
	Delivered: []string{"доставлен", "delivered"},
	Initial:   []string{"новый", "new"},
}

// Classify uses DefaultRules
func Classify(name string) Category {
	return DefaultRules.Classify(name)
}

// Classify returns the category of a status label. Cancelled wins over delivered
// when a label carries both roots.
func (c Classifier) Classify(name string) Category {
	n := Normalize(name)
	if containsAny(n, c.Cancelled) {
		return CategoryCancelled
	}
	if containsAny(n, c.Delivered) {
		return CategoryDelivered
	}
	return CategoryOther
}

// IsInitial reports whether the label names the state a fresh order starts in
func (c Classifier) IsInitial(name string) bool {
	return containsAny(Normalize(name), c.Initial)
}

// Normalize lower-cases the label and folds ё into е
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(n, "ё", "е")
}

func containsAny(s string, roots []string) bool {
	for _, root := range roots {
		if root != "" && strings.Contains(s, root) {
			return true
		}
	}
	return false
}
