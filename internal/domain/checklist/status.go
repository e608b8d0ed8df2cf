package checklist

// ComputeStatus classifies stock levels. It has no memory of the previous
// status and never yields ORDERED or NOT_NEEDED.
//
//	current == 0             -> OUT_OF_STOCK (also when needed == 0)
//	current >= needed        -> IN_STOCK
//	0 < current < needed     -> LOW_STOCK
func ComputeStatus(current, needed int) Status {
	switch {
	case current <= 0:
		return StatusOutOfStock
	case current >= needed:
		return StatusInStock
	default:
		return StatusLowStock
	}
}

// Recompute refreshes the item status from its unit counts and reports
// whether the status changed. A locked item is left alone unless force is
// set, in which case the lock is released first.
func (it *Item) Recompute(force bool) bool {
	if it.StatusLocked {
		if !force {
			return false
		}
		it.StatusLocked = false
	}
	next := ComputeStatus(it.CurrentUnits, it.UnitsNeeded)
	changed := next != it.Status
	it.Status = next
	return changed
}

// Override sets a manual status and locks it against recomputation.
func (it *Item) Override(s Status) {
	it.Status = s
	it.StatusLocked = true
}
