package enums

import "fmt"

// Operation names an action a principal may attempt on an order, cart or
// split item.
type Operation string

const (
	OperationView     Operation = "view"
	OperationUpdate   Operation = "update"
	OperationDelete   Operation = "delete"
	OperationCreate   Operation = "create"
	OperationCheckout Operation = "checkout"
)

var validOperations = []Operation{
	OperationView,
	OperationUpdate,
	OperationDelete,
	OperationCreate,
	OperationCheckout,
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	return string(o)
}

// IsValid reports whether the value is a known Operation.
func (o Operation) IsValid() bool {
	for _, candidate := range validOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperation converts raw input into an Operation.
func ParseOperation(value string) (Operation, error) {
	for _, candidate := range validOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation %q", value)
}
