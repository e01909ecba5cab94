package domain

import "time"

// Receipt is the result of a completed purchase or sale. It is returned to
// the caller and is not persisted.
type Receipt struct {
	ID        string
	UserID    string
	EventName string
	Quantity  int
	UnitPrice Money
	Total     Money
	Kind      OperationKind
	At        time.Time
}
