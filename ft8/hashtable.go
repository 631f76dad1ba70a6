package ft8

import "sync"

/*
 * Callsign hash table for FT8/FT4.
 *
 * Non-standard callsigns (compound calls, many prefixes/suffixes) cannot be
 * packed into the 28-bit standard callsign field, so the transmitter sends
 * a truncated hash (22, 12 or 10 bits) instead and relies on the receiver
 * having already seen the full callsign in an earlier transmission this
 * session. This bounded, fixed-capacity, open-addressed table is the slot
 * layout and probing scheme of ft8_lib's callsign hash table
 * (original_source/ft8/hashtable.c), replacing the map+mutex+wall-clock
 * design of an unbounded hash table: age is tracked in decode slots, not
 * real time, and a full probe cycle refuses the insert instead of growing
 * or blocking.
 */

// HashType selects which truncated hash width a lookup is keyed on.
type HashType int

const (
	Hash22Bits HashType = iota
	Hash12Bits
	Hash10Bits
)

const (
	hashtableBucketCount  = 0x3FF // 10-bit bucket space, per original_source
	hashtableBucketStride = 23    // probing modulus, per original_source
	hashMask22            = 0x3FFFFF
	ageShift              = 24
	ageMask               = 0xFF
)

// CallsignHashTable is a fixed-capacity, open-addressed table mapping
// truncated callsign hashes back to the full callsign text.
type CallsignHashTable struct {
	mu       sync.Mutex
	capacity int
	maxAge   int
	occupied []bool
	word     []uint32 // (age<<24) | (hash22 & 0x3FFFFF)
	callsign []string
}

// NewCallsignHashTable creates a table with room for `capacity` entries.
// Entries not refreshed within maxAge calls to Age are evicted.
func NewCallsignHashTable(capacity, maxAge int) *CallsignHashTable {
	if capacity <= 0 {
		capacity = 256
	}
	if maxAge <= 0 {
		maxAge = 10
	}
	return &CallsignHashTable{
		capacity: capacity,
		maxAge:   maxAge,
		occupied: make([]bool, capacity),
		word:     make([]uint32, capacity),
		callsign: make([]string, capacity),
	}
}

// bucket10 returns the 10-bit slot-selection key for a hash of the given width.
func bucket10(hashType HashType, hash uint32) uint32 {
	switch hashType {
	case Hash12Bits:
		return (hash >> 2) & hashtableBucketCount
	case Hash10Bits:
		return hash & hashtableBucketCount
	default: // Hash22Bits
		return (hash >> 12) & hashtableBucketCount
	}
}

func (ht *CallsignHashTable) slotFor(bucket uint32) int {
	return int((uint64(bucket) * hashtableBucketStride) % uint64(ht.capacity))
}

// SaveCallsign computes the 22/12/10-bit hashes of callsign and stores (or
// refreshes) it in the table. ok is false if the callsign contains a
// character outside the alphanumeric/space/slash set, or if the table is
// saturated (every slot probed without a free or matching entry).
func (ht *CallsignHashTable) SaveCallsign(callsign string) (n22 uint32, n12 uint16, n10 uint16, ok bool) {
	n22, n12, n10, ok = computeCallsignHash(callsign)
	if !ok {
		return 0, 0, 0, false
	}

	ht.mu.Lock()
	defer ht.mu.Unlock()

	start := ht.slotFor(bucket10(Hash22Bits, n22))
	for probe := 0; probe < ht.capacity; probe++ {
		slot := (start + probe) % ht.capacity
		if !ht.occupied[slot] || (ht.word[slot]&hashMask22) == n22 {
			ht.occupied[slot] = true
			ht.word[slot] = n22 & hashMask22 // age resets to 0
			ht.callsign[slot] = callsign
			return n22, n12, n10, true
		}
	}

	return n22, n12, n10, false // table saturated: refuse the insert
}

// LookupHash resolves a truncated hash back to the full callsign text.
func (ht *CallsignHashTable) LookupHash(hashType HashType, hash uint32) (callsign string, found bool) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	start := ht.slotFor(bucket10(hashType, hash))
	for probe := 0; probe < ht.capacity; probe++ {
		slot := (start + probe) % ht.capacity
		if !ht.occupied[slot] {
			continue // a hole does not terminate the probe sequence
		}
		stored := ht.word[slot] & hashMask22
		var match bool
		switch hashType {
		case Hash22Bits:
			match = stored == hash
		case Hash12Bits:
			match = (stored >> 10) == hash
		case Hash10Bits:
			match = (stored >> 12) == hash
		}
		if match {
			return ht.callsign[slot], true
		}
	}

	return "", false
}

// Age advances every occupied slot's age by one decode slot, evicting
// entries that have exceeded maxAge. Call once per processed time slot.
func (ht *CallsignHashTable) Age() (evicted int) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	for slot := 0; slot < ht.capacity; slot++ {
		if !ht.occupied[slot] {
			continue
		}
		age := (ht.word[slot] >> ageShift) + 1
		if int(age) > ht.maxAge {
			ht.occupied[slot] = false
			ht.word[slot] = 0
			ht.callsign[slot] = ""
			evicted++
			continue
		}
		ht.word[slot] = (age&ageMask)<<ageShift | (ht.word[slot] & hashMask22)
	}
	return evicted
}

// Size returns the number of occupied slots.
func (ht *CallsignHashTable) Size() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	n := 0
	for _, occ := range ht.occupied {
		if occ {
			n++
		}
	}
	return n
}

// Clear empties the table.
func (ht *CallsignHashTable) Clear() {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	for i := range ht.occupied {
		ht.occupied[i] = false
		ht.word[i] = 0
		ht.callsign[i] = ""
	}
}
