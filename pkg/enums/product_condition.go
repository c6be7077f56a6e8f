package enums

import "fmt"

// ProductCondition records the physical state of a stocked item.
type ProductCondition string

const (
	ProductConditionGood    ProductCondition = "good"
	ProductConditionDamaged ProductCondition = "damaged"
)

var validProductConditions = []ProductCondition{
	ProductConditionGood,
	ProductConditionDamaged,
}

// String implements fmt.Stringer.
func (p ProductCondition) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductCondition.
func (p ProductCondition) IsValid() bool {
	for _, candidate := range validProductConditions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductCondition converts raw input into a ProductCondition.
func ParseProductCondition(value string) (ProductCondition, error) {
	for _, candidate := range validProductConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product condition %q", value)
}
