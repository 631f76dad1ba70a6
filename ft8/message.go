package ft8

import (
	"fmt"
	"strings"
)

/*
 * Message unpacking: the algebraic inverse of message_encode.go's pack
 * functions, dispatched by message type (i3/n3) and expressed field by
 * field through bitCursor instead of one shift/mask expression per field.
 */

// Message type constants
const (
	NTOKENS  = 2063592 // Number of special tokens
	MAX22    = 4194304 // 2^22
	MAXGRID4 = 32400   // 18*10*18*10
)

// MessageType represents all FT8/FT4 message types
type MessageType int

const (
	MessageTypeFreeText   MessageType = iota // 0.0
	MessageTypeDXpedition                    // 0.1
	MessageTypeEUVHF                          // 0.2
	MessageTypeARRLFD                        // 0.3, 0.4
	MessageTypeTelemetry                      // 0.5
	MessageTypeContesting                     // 0.6
	MessageTypeStandard                       // 1, 2
	MessageTypeARRLRTTY                       // 3
	MessageTypeNonstdCall                     // 4
	MessageTypeWWDIGI                         // 5
	MessageTypeUnknown
)

// GetMessageType extracts the message type from a payload's i3/n3 bits.
func GetMessageType(payload [10]uint8) MessageType {
	i3 := (payload[9] >> 3) & 0x07
	n3 := ((payload[8] << 2) & 0x04) | ((payload[9] >> 6) & 0x03)

	switch i3 {
	case 0:
		switch n3 {
		case 0:
			return MessageTypeFreeText
		case 1:
			return MessageTypeDXpedition
		case 2:
			return MessageTypeEUVHF
		case 3, 4:
			return MessageTypeARRLFD
		case 5:
			return MessageTypeTelemetry
		case 6:
			return MessageTypeContesting
		default:
			return MessageTypeUnknown
		}
	case 1, 2:
		return MessageTypeStandard
	case 3:
		return MessageTypeARRLRTTY
	case 4:
		return MessageTypeNonstdCall
	case 5:
		return MessageTypeWWDIGI
	default:
		return MessageTypeUnknown
	}
}

// messageUnpackers dispatches by message type instead of a growing switch,
// so adding a type is adding a table entry rather than editing a branch.
var messageUnpackers = map[MessageType]func([10]uint8, *CallsignHashTable) string{
	MessageTypeFreeText:   func(p [10]uint8, _ *CallsignHashTable) string { return unpackFreeText(p) },
	MessageTypeTelemetry:  func(p [10]uint8, _ *CallsignHashTable) string { return unpackTelemetry(p) },
	MessageTypeStandard:   unpackStandard,
	MessageTypeNonstdCall: unpackNonstd,
	MessageTypeDXpedition: unpackDXpedition,
	MessageTypeContesting: unpackContesting,
}

// UnpackMessage unpacks a decoded payload into human-readable text, with no
// hash-table support (hash-based callsigns render as <...> placeholders).
func UnpackMessage(payload [10]uint8) string {
	return UnpackMessageWithHash(payload, nil)
}

// UnpackMessageWithHash unpacks a decoded payload into human-readable text,
// resolving (and populating) compound-callsign hashes through hashTable.
func UnpackMessageWithHash(payload [10]uint8, hashTable *CallsignHashTable) string {
	msgType := GetMessageType(payload)

	if fn, ok := messageUnpackers[msgType]; ok {
		return fn(payload, hashTable)
	}

	i3 := (payload[9] >> 3) & 0x07
	n3 := ((payload[8] << 2) & 0x04) | ((payload[9] >> 6) & 0x03)
	return fmt.Sprintf("[Type %d.%d - not yet implemented]", i3, n3)
}

// unpackFreeText unpacks free text messages (type 0.0): 71 bits of base-42
// digits, most significant character first, 13 characters wide.
func unpackFreeText(payload [10]uint8) string {
	b71 := extractB71(payload)

	var chars [13]byte
	for idx := 12; idx >= 0; idx-- {
		rem := divmod42(&b71)
		chars[idx] = Charn(int(rem), CharTableFull)
	}

	return Trim(string(chars[:]))
}

// unpackTelemetry unpacks telemetry data (type 0.5): 71 bits rendered as an
// 18-digit hex string, 4 bits per digit.
func unpackTelemetry(payload [10]uint8) string {
	b71 := extractB71(payload)

	var hex [18]byte
	for i, b := range b71 {
		hex[i*2] = hexChar(b >> 4)
		hex[i*2+1] = hexChar(b & 0x0F)
	}

	return fmt.Sprintf("Telemetry: %s", string(hex[:]))
}

func hexChar(nibble uint8) byte {
	if nibble > 9 {
		return nibble - 10 + 'A'
	}
	return nibble + '0'
}

// extractB71 pulls the 71-bit telemetry/free-text payload out of a 77-bit
// message, dropping the i3/n3 type bits that occupy the low-order 6 bits.
func extractB71(payload [10]uint8) [9]uint8 {
	var b71 [9]uint8
	var carry uint8
	for i := 0; i < 9; i++ {
		b71[i] = (carry << 7) | (payload[i] >> 1)
		carry = payload[i] & 0x01
	}
	return b71
}

// divmod42 divides the big-endian 9-byte integer in b71 by 42 in place and
// returns the remainder, mirroring unpackFreeText's repeated long division.
func divmod42(b71 *[9]uint8) uint16 {
	rem := uint16(0)
	for i := 0; i < 9; i++ {
		rem = (rem << 8) | uint16(b71[i])
		b71[i] = uint8(rem / 42)
		rem %= 42
	}
	return rem
}

// unpackStandard unpacks a type 1/2 standard message: c28 r1 c28 r1 R1 g15 i3.
func unpackStandard(payload [10]uint8, hashTable *CallsignHashTable) string {
	c := newBitCursor(payload[:])
	n29a := uint32(c.read(29))
	n29b := uint32(c.read(29))
	r1 := uint8(c.read(1))
	igrid4 := uint16(c.read(15))
	i3 := uint8(c.read(3))

	callTo := unpack28(n29a>>1, uint8(n29a&0x01), i3, hashTable)
	callDe := unpack28(n29b>>1, uint8(n29b&0x01), i3, hashTable)
	extra := unpackGrid(igrid4, r1)

	return joinNonEmpty(callTo, callDe, extra)
}

// unpackNonstd unpacks a type 4 non-standard callsign message: h12 c58
// iflip r2 icq.
func unpackNonstd(payload [10]uint8, hashTable *CallsignHashTable) string {
	c := newBitCursor(payload[:])
	h12 := uint32(c.read(12))
	n58 := c.read(58)
	iflip := c.read(1)
	nrpt := c.read(2)
	icq := c.read(1)

	callDecoded := unpack58(n58, hashTable)

	call3 := "<...>"
	if hashTable != nil {
		if found, ok := hashTable.LookupHash(Hash12Bits, h12); ok {
			call3 = "<" + found + ">"
		}
	}

	call1, call2 := call3, callDecoded
	if iflip == 1 {
		call1, call2 = callDecoded, call3
	}

	if icq != 0 {
		return joinNonEmpty("CQ", call2)
	}

	var extra string
	switch nrpt {
	case 1:
		extra = "RRR"
	case 2:
		extra = "RR73"
	case 3:
		extra = "73"
	}
	return joinNonEmpty(call1, call2, extra)
}

// unpackDXpedition unpacks a type 0.1 DXpedition-mode message: c28 c28 h10 r5.
func unpackDXpedition(payload [10]uint8, hashTable *CallsignHashTable) string {
	c := newBitCursor(payload[:])
	n28a := uint32(c.read(28))
	n28b := uint32(c.read(28))
	h10 := uint32(c.read(10))
	r5 := c.read(5)

	callRR := unpack28(n28a, 0, 0, hashTable) + " RR73;"
	callTo := unpack28(n28b, 0, 0, hashTable)

	callDe := "<...>"
	if hashTable != nil {
		if found, ok := hashTable.LookupHash(Hash10Bits, h10); ok {
			callDe = "<" + found + ">"
		}
	}

	report := IntToDD(int(r5)*2-30, 2, true)
	return fmt.Sprintf("%s %s %s %s", callRR, callTo, callDe, report)
}

// unpackContesting unpacks a type 0.6 contest-exchange message: c28 c28
// (1 reserved bit) g15.
func unpackContesting(payload [10]uint8, hashTable *CallsignHashTable) string {
	c := newBitCursor(payload[:])
	n28a := uint32(c.read(28))
	n28b := uint32(c.read(28))
	c.skip(1) // unused bit between the second callsign and the grid field
	g15 := uint16(c.read(15))

	callTo := unpack28(n28a, 0, 0, hashTable)
	callDe := unpack28(n28b, 0, 0, hashTable)
	grid := unpackGrid(g15, 0)

	return joinNonEmpty(callTo, callDe, grid)
}

// joinNonEmpty space-joins its non-empty arguments, in order.
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// unpack28 unpacks a 28-bit callsign field, handling the CQ/DE/QRZ tokens,
// "CQ nnn"/"CQ ABCD" shorthand, hashed compound calls and the Swaziland/
// Guinea special-prefix rewrites, mirroring pack28's encoding exactly.
func unpack28(n28 uint32, ip uint8, i3 uint8, hashTable *CallsignHashTable) string {
	if n28 < NTOKENS {
		return unpackSpecialToken(n28)
	}

	n28 -= NTOKENS
	if n28 < MAX22 {
		if hashTable != nil {
			if call, found := hashTable.LookupHash(Hash22Bits, n28); found {
				return "<" + call + ">"
			}
		}
		return fmt.Sprintf("<...%04X>", n28&0xFFFF)
	}

	result := unpackStandardCallsign(n28 - MAX22)
	if len(result) < 3 {
		return ""
	}

	if ip != 0 {
		switch i3 {
		case 1:
			result += "/R"
		case 2:
			result += "/P"
		}
	}

	if hashTable != nil {
		hashTable.SaveCallsign(result)
	}
	return result
}

// unpackSpecialToken decodes the DE/QRZ/CQ/"CQ nnn"/"CQ ABCD" tokens that
// precede the hashed and standard-callsign ranges of the 28-bit field.
func unpackSpecialToken(n28 uint32) string {
	switch {
	case n28 <= 2:
		return [...]string{"DE", "QRZ", "CQ"}[n28]
	case n28 <= 1002:
		return fmt.Sprintf("CQ %03d", n28-3)
	case n28 <= 532443:
		n := n28 - 1003
		var aaaa [4]byte
		for i := 3; i >= 0; i-- {
			aaaa[i] = Charn(int(n%27), CharTableLettersSpace)
			n /= 27
		}
		return "CQ " + TrimFront(string(aaaa[:]))
	default:
		return ""
	}
}

// unpackStandardCallsign decodes a plain up-to-6-character callsign and
// applies the two WSJT-X special-prefix rewrites that don't fit the
// standard alphabet (Swaziland 3D0 -> 3DA0, Guinea Q-prefix -> 3X).
func unpackStandardCallsign(n uint32) string {
	var callsign [6]byte
	callsign[5] = Charn(int(n%27), CharTableLettersSpace)
	n /= 27
	callsign[4] = Charn(int(n%27), CharTableLettersSpace)
	n /= 27
	callsign[3] = Charn(int(n%27), CharTableLettersSpace)
	n /= 27
	callsign[2] = Charn(int(n%10), CharTableNumeric)
	n /= 10
	callsign[1] = Charn(int(n%36), CharTableAlphanum)
	n /= 36
	callsign[0] = Charn(int(n%37), CharTableAlphanumSpace)

	result := string(callsign[:])
	switch {
	case StartsWith(result, "3D0") && !IsSpace(result[3]):
		return "3DA0" + Trim(result[3:])
	case result[0] == 'Q' && IsLetter(result[1]):
		return "3X" + Trim(result[1:])
	default:
		return Trim(result)
	}
}

// unpack58 unpacks a 58-bit non-standard callsign: 11 base-38 characters.
func unpack58(n58 uint64, hashTable *CallsignHashTable) string {
	var chars [11]byte
	for i := 10; i >= 0; i-- {
		chars[i] = Charn(int(n58%38), CharTableAlphanumSpaceSlash)
		n58 /= 38
	}

	callsign := Trim(string(chars[:]))
	if hashTable != nil && len(callsign) >= 3 {
		hashTable.SaveCallsign(callsign)
	}
	return callsign
}

// unpackGrid unpacks a 15-bit grid-or-report field, shared by the standard
// and contesting message types.
func unpackGrid(igrid4 uint16, r1 uint8) string {
	switch igrid4 {
	case 0, MAXGRID4 + 1:
		return ""
	case MAXGRID4 + 2:
		return "RRR"
	case MAXGRID4 + 3:
		return "RR73"
	case MAXGRID4 + 4:
		return "73"
	}

	if igrid4 <= MAXGRID4 {
		n := int(igrid4)
		var grid [4]byte
		grid[3] = '0' + byte(n%10)
		n /= 10
		grid[2] = '0' + byte(n%10)
		n /= 10
		grid[1] = 'A' + byte(n%18)
		n /= 18
		grid[0] = 'A' + byte(n%18)

		if r1 == 1 {
			return "R " + string(grid[:])
		}
		return string(grid[:])
	}

	irpt := int(igrid4) - MAXGRID4
	report := IntToDD(irpt-35, 2, true)
	if r1 == 1 {
		return "R" + report
	}
	return report
}
