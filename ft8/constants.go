package ft8

/*
 * FT8/FT4 protocol-mandated constant data: symbol-grid geometry, Costas
 * sync tone patterns, Gray-coded tone maps, LDPC(174,91) dimensions and the
 * CRC-14 polynomial. These values come from the published FT8/FT4 protocol
 * and are not a style choice; what belongs to this package is how they're
 * grouped and exposed (see the Protocol accessor methods below, used by
 * sync.go to drive one sync-score routine off either protocol's geometry
 * instead of duplicating it per protocol).
 */

// FT8 symbol structure: S D1 S D2 S
// S  - sync block (7 symbols of Costas pattern)
// D1 - first data block (29 symbols each encoding 3 bits)
// D2 - second data block (29 symbols each encoding 3 bits)
const (
	FT8_ND          = 58 // Data symbols
	FT8_NN          = 79 // Total channel symbols
	FT8_LENGTH_SYNC = 7  // Length of each sync group
	FT8_NUM_SYNC    = 3  // Number of sync groups
	FT8_SYNC_OFFSET = 36 // Offset between sync groups
)

// FT4 symbol structure: R Sa D1 Sb D2 Sc D3 Sd R
// R  - ramping symbol (no payload information)
// Sx - one of four different sync blocks (4 symbols of Costas pattern)
// Dy - data block (29 symbols each encoding 2 bits)
const (
	FT4_ND          = 87  // Data symbols
	FT4_NR          = 2   // Ramp symbols (beginning + end)
	FT4_NN          = 105 // Total channel symbols
	FT4_LENGTH_SYNC = 4   // Length of each sync group
	FT4_NUM_SYNC    = 4   // Number of sync groups
	FT4_SYNC_OFFSET = 33  // Offset between sync groups
)

// LDPC parameters
const (
	FTX_LDPC_N       = 174                  // Number of bits in encoded message
	FTX_LDPC_K       = 91                   // Number of payload bits (including CRC)
	FTX_LDPC_M       = 83                   // Number of LDPC checksum bits
	FTX_LDPC_N_BYTES = (FTX_LDPC_N + 7) / 8 // Bytes needed for 174 bits
	FTX_LDPC_K_BYTES = (FTX_LDPC_K + 7) / 8 // Bytes needed for 91 bits
)

// CRC parameters
const (
	FT8_CRC_POLYNOMIAL = 0x2757 // CRC-14 polynomial without leading 1
	FT8_CRC_WIDTH      = 14
)

// Costas 7x7 tone pattern for FT8 synchronization
var FT8_Costas_pattern = [7]uint8{3, 1, 4, 0, 6, 5, 2}

// Costas 4x4 tone patterns for FT4 synchronization (4 different patterns)
var FT4_Costas_pattern = [4][4]uint8{
	{0, 1, 3, 2},
	{1, 0, 2, 3},
	{2, 3, 1, 0},
	{3, 2, 0, 1},
}

// Gray code map to encode 8 symbols (tones) for FT8
var FT8_Gray_map = [8]uint8{0, 1, 3, 2, 5, 6, 4, 7}

// Gray code map to encode 4 symbols (tones) for FT4
var FT4_Gray_map = [4]uint8{0, 1, 3, 2}

// FT4 XOR sequence for data scrambling
var FT4_XOR_sequence = [10]uint8{0, 0, 0, 1, 1, 0, 0, 1, 0, 1}

// NumTones returns the tone alphabet size: 8 for FT8, 4 for FT4.
func (p Protocol) NumTones() int {
	if p == ProtocolFT4 {
		return 4
	}
	return 8
}

// GrayMap returns the Gray-coded tone map for the protocol.
func (p Protocol) GrayMap() []uint8 {
	if p == ProtocolFT4 {
		return FT4_Gray_map[:]
	}
	return FT8_Gray_map[:]
}

// CostasPattern returns the expected Costas tone sequence for sync group
// index m (0-based). FT8 reuses the same 7-tone pattern for all three of
// its sync groups; FT4 assigns a distinct 4-tone pattern to each of its
// four groups.
func (p Protocol) CostasPattern(group int) []uint8 {
	if p == ProtocolFT4 {
		return FT4_Costas_pattern[group][:]
	}
	return FT8_Costas_pattern[:]
}

// SyncGeometry returns the sync-group count, each group's symbol length,
// the symbol stride between group starts, and the symbol index the first
// group begins at. FT4 reserves symbol 0 as a ramp symbol, so its first
// sync group starts one symbol later than FT8's.
func (p Protocol) SyncGeometry() (groups, length, offset, start int) {
	if p == ProtocolFT4 {
		return FT4_NUM_SYNC, FT4_LENGTH_SYNC, FT4_SYNC_OFFSET, 1
	}
	return FT8_NUM_SYNC, FT8_LENGTH_SYNC, FT8_SYNC_OFFSET, 0
}
