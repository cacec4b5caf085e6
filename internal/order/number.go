package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber returns a human-readable order code: the current date plus
// a short random suffix, e.g. "20260829-1A2B3C4D". Uniqueness is enforced by
// the orders.order_number column; the settlement retries with a fresh number
// on the rare collision.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return time.Now().Format("20060102") + "-" + suffix
}
