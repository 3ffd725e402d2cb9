package codegen

import "sort"

// TempPool hands out temporary ids using the AVAIL discipline: a released id
// is reused (lowest first) before a new one is minted.  Ids are shared between
// all data types; the type only selects the address range.
type TempPool struct {
	free []int
	next int
}

// Alloc returns the lowest available temporary id
func (tp *TempPool) Alloc() int {
	if len(tp.free) > 0 {
		id := tp.free[0]
		tp.free = tp.free[1:]
		return id
	}

	id := tp.next
	tp.next++
	return id
}

// Release returns a temporary id to the pool.  Releasing an id twice or an id
// that was never handed out is ignored.
func (tp *TempPool) Release(id int) {
	if id < 0 || id >= tp.next {
		return
	}

	i := sort.SearchInts(tp.free, id)
	if i < len(tp.free) && tp.free[i] == id {
		return
	}

	tp.free = append(tp.free, 0)
	copy(tp.free[i+1:], tp.free[i:])
	tp.free[i] = id
}

// Live returns the number of temporaries currently handed out
func (tp *TempPool) Live() int {
	return tp.next - len(tp.free)
}

// HighWater returns the number of distinct ids ever minted
func (tp *TempPool) HighWater() int {
	return tp.next
}
