package orders

import "github.com/anonb2b/orders-backend/internal/apperr"

type Status string

// PENDING is the sole initial status. DELIVERED and CANCELLED are terminal.
// CANCELLED is a side-exit reachable until the order ships.
const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return len(validNext[s]) == 0 && s.Valid()
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// ParseStatus validates an externally supplied status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", apperr.Validation("unknown order status %q", s)
	}
	return st, nil
}
