package framegraph

import (
	"math"
	"strconv"
)

// ResourceHandle identifies a resource within one Graph. Handles are dense
// indices in declaration order.
type ResourceHandle uint32

// PassHandle identifies a pass within one Graph. Handles are dense indices in
// declaration order.
type PassHandle uint32

// PlanStart is the source of the first barrier of every resource: the point
// before any pass of the plan has executed.
const PlanStart PassHandle = math.MaxUint32

// String returns "start" for PlanStart and the decimal index otherwise.
func (h PassHandle) String() string {
	if h == PlanStart {
		return "start"
	}
	return strconv.FormatUint(uint64(h), 10)
}
