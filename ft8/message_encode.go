package ft8

import (
	"fmt"
	"strings"
)

/*
 * Message packing: the algebraic inverse of message.go's unpack functions.
 * Needed to produce test codewords and to support transmit-side tooling;
 * ft8_lib's reference decoder this package is built from never implements
 * the pack direction, so these mirror the bit layouts unpack28/unpackGrid/
 * unpackStandard/unpack58 document and invert them field by field.
 */

// BuildA91 copies a 77-bit message (10 bytes, 3 padding bits) into a 91-bit
// (12-byte) buffer and fills in its CRC-14, ready for EncodeLDPC.
func BuildA91(payload77 [10]uint8) [FTX_LDPC_K_BYTES]uint8 {
	var a91 [FTX_LDPC_K_BYTES]uint8
	copy(a91[:], payload77[:])
	ApplyCRC(a91[:])
	return a91
}

// BuildA91FT4 is BuildA91 for FT4: the transmitted byte layout is scrambled
// with FT4_XOR_sequence (see descrambleFT4Payload) before the CRC is
// computed, mirroring the receive side's order of operations (LDPC decode,
// then CRC check, then descramble) so the two are each other's inverse.
func BuildA91FT4(payload77 [10]uint8) [FTX_LDPC_K_BYTES]uint8 {
	var a91 [FTX_LDPC_K_BYTES]uint8
	scrambled := descrambleFT4Payload(payload77)
	copy(a91[:], scrambled[:])
	ApplyCRC(a91[:])
	return a91
}

// pack28 is the inverse of unpack28: it encodes a callsign (optionally
// suffixed with /R or /P) into its 28-bit field and suffix flag. Callsigns
// that don't fit the 6-character standard pattern fall back to a 22-bit
// hash, saving the full text in hashTable (if non-nil) for later lookup.
func pack28(call string, hashTable *CallsignHashTable) (n28 uint32, ip uint8) {
	call = strings.ToUpper(Trim(call))

	base := call
	if strings.HasSuffix(call, "/R") {
		ip = 1
		base = strings.TrimSuffix(call, "/R")
	} else if strings.HasSuffix(call, "/P") {
		ip = 1
		base = strings.TrimSuffix(call, "/P")
	}

	switch base {
	case "DE":
		return 0, ip
	case "QRZ":
		return 1, ip
	case "CQ":
		return 2, ip
	}

	if strings.HasPrefix(base, "CQ ") {
		rest := base[3:]
		if n, ok := packCQDigits(rest); ok {
			return n, ip
		}
		if n, ok := packCQLetters(rest); ok {
			return n, ip
		}
	}

	// A call whose only digit is its second character (W1ABC, K5XYZ) is
	// right-aligned by one space so the digit lands in the numeric position.
	std := base
	if len(std) >= 2 && IsDigit(std[1]) && (len(std) < 3 || !IsDigit(std[2])) {
		std = " " + std
	}
	if n, ok := packStandardCallsign(std); ok {
		return NTOKENS + MAX22 + n, ip
	}

	n22, _, _, _ := computeCallsignHash(base)
	if hashTable != nil {
		hashTable.SaveCallsign(base)
	}
	return NTOKENS + n22, ip
}

// packCQDigits encodes "CQ nnn" (exactly 3 digits).
func packCQDigits(rest string) (uint32, bool) {
	if len(rest) != 3 {
		return 0, false
	}
	n := 0
	for i := 0; i < 3; i++ {
		if !IsDigit(rest[i]) {
			return 0, false
		}
		n = n*10 + int(rest[i]-'0')
	}
	return uint32(3 + n), true
}

// packCQLetters encodes "CQ ABCD" (up to 4 letters/space symbols).
func packCQLetters(rest string) (uint32, bool) {
	if len(rest) > 4 {
		return 0, false
	}
	padded := strings.Repeat(" ", 4-len(rest)) + rest
	var n uint32
	for i := 0; i < 4; i++ {
		idx := Nchar(padded[i], CharTableLettersSpace)
		if idx < 0 {
			return 0, false
		}
		n = n*27 + uint32(idx)
	}
	return 1003 + n, true
}

// packStandardCallsign encodes a plain up-to-6-character callsign using the
// same per-position alphabets unpack28's standard path decodes with.
func packStandardCallsign(call string) (uint32, bool) {
	if len(call) == 0 || len(call) > 6 {
		return 0, false
	}
	padded := call + strings.Repeat(" ", 6-len(call))
	tables := [6]CharTable{
		CharTableAlphanumSpace,
		CharTableAlphanum,
		CharTableNumeric,
		CharTableLettersSpace,
		CharTableLettersSpace,
		CharTableLettersSpace,
	}

	var idx [6]int
	for i := 0; i < 6; i++ {
		idx[i] = Nchar(padded[i], tables[i])
		if idx[i] < 0 {
			return 0, false
		}
	}

	n := uint32(idx[0])
	n = n*36 + uint32(idx[1])
	n = n*10 + uint32(idx[2])
	n = n*27 + uint32(idx[3])
	n = n*27 + uint32(idx[4])
	n = n*27 + uint32(idx[5])
	return n, true
}

// computeCallsignHash mirrors CallsignHashTable.SaveCallsign's hash
// computation without requiring a table, so pack28's fallback path works
// even when no hash table is supplied.
func computeCallsignHash(callsign string) (n22 uint32, n12 uint16, n10 uint16, ok bool) {
	n58 := uint64(0)
	i := 0
	for i < len(callsign) && i < 11 {
		j := Nchar(callsign[i], CharTableAlphanumSpaceSlash)
		if j < 0 {
			return 0, 0, 0, false
		}
		n58 = (38 * n58) + uint64(j)
		i++
	}
	for i < 11 {
		n58 = 38 * n58
		i++
	}
	n22 = uint32((47055833459 * n58) >> (64 - 22) & hashMask22)
	n12 = uint16(n22 >> 10)
	n10 = uint16(n22 >> 12)
	return n22, n12, n10, true
}

// packCall58 is the inverse of unpack58, encoding up to 11 base-38 characters.
func packCall58(call string) uint64 {
	padded := call
	if len(padded) < 11 {
		padded += strings.Repeat(" ", 11-len(padded))
	} else if len(padded) > 11 {
		padded = padded[:11]
	}

	var n58 uint64
	for i := 0; i < 11; i++ {
		idx := Nchar(padded[i], CharTableAlphanumSpaceSlash)
		if idx < 0 {
			idx = 0
		}
		n58 = n58*38 + uint64(idx)
	}
	return n58
}

// packGrid is the inverse of unpackGrid: it encodes a grid square, a
// +/-dB signal report, or one of the fixed report tokens (RRR/RR73/73)
// into the 15-bit igrid4 field plus its R prefix flag.
func packGrid(s string) (igrid4 uint16, r1 uint8) {
	s = strings.ToUpper(Trim(s))

	if strings.HasPrefix(s, "R ") {
		r1 = 1
		s = Trim(s[2:])
	} else if len(s) > 1 && s[0] == 'R' && (IsDigit(s[1]) || s[1] == '-' || s[1] == '+') {
		r1 = 1
		s = s[1:]
	}

	switch s {
	case "":
		return 0, r1
	case "RRR":
		return MAXGRID4 + 2, 0
	case "RR73":
		return MAXGRID4 + 3, 0
	case "73":
		return MAXGRID4 + 4, 0
	}

	if len(s) == 4 && IsLetter(s[0]) && IsLetter(s[1]) && IsDigit(s[2]) && IsDigit(s[3]) {
		g0 := int(s[0] - 'A')
		g1 := int(s[1] - 'A')
		g2 := int(s[2] - '0')
		g3 := int(s[3] - '0')
		n := ((g0*18+g1)*10+g2)*10 + g3
		return uint16(n), r1
	}

	irpt := DDToInt(s, len(s)) + 35
	return uint16(MAXGRID4 + irpt), r1
}

// EncodeStandard packs a type 1/2 standard message: two callsigns (either
// may carry a /R or /P suffix) plus a grid square, signal report, or one of
// RRR/RR73/73. It returns the 77-bit message payload (10 bytes, top 77 bits
// used); call BuildA91 and EncodeLDPC to get a transmittable codeword.
func EncodeStandard(callTo, callDe, extra string, hashTable *CallsignHashTable) [10]uint8 {
	var payload [10]uint8

	i3 := uint8(1)
	if strings.HasSuffix(strings.ToUpper(callTo), "/P") || strings.HasSuffix(strings.ToUpper(callDe), "/P") {
		i3 = 2
	}

	n28a, ipa := pack28(callTo, hashTable)
	n28b, ipb := pack28(callDe, hashTable)
	igrid4, r1 := packGrid(extra)

	n29a := (n28a << 1) | uint32(ipa)
	n29b := (n28b << 1) | uint32(ipb)

	payload[0] = uint8(n29a >> 21)
	payload[1] = uint8(n29a >> 13)
	payload[2] = uint8(n29a >> 5)
	payload[3] = uint8(n29a<<3) | uint8(n29b>>26)
	payload[4] = uint8(n29b >> 18)
	payload[5] = uint8(n29b >> 10)
	payload[6] = uint8(n29b >> 2)
	payload[7] = uint8(n29b<<6) | (r1 << 5) | uint8(igrid4>>10)
	payload[8] = uint8(igrid4 >> 2)
	payload[9] = uint8(igrid4<<6) | (i3 << 3)

	return payload
}

// EncodeNonstdCall packs a type 4 message for a non-standard (e.g.
// compound) callsign paired with a standard one, optionally with an
// RRR/RR73/73 report. hashedCall is looked up (or saved) via hashTable to
// produce the 12-bit truncated hash the receiver resolves it from.
func EncodeNonstdCall(nonstdCall, hashedCall string, report string, isCQ bool, hashTable *CallsignHashTable) [10]uint8 {
	var payload [10]uint8

	_, n12, _, _ := computeCallsignHash(strings.ToUpper(Trim(hashedCall)))
	if hashTable != nil {
		hashTable.SaveCallsign(strings.ToUpper(Trim(hashedCall)))
	}

	n58 := packCall58(strings.ToUpper(Trim(nonstdCall)))

	var nrpt uint8
	switch report {
	case "RRR":
		nrpt = 1
	case "RR73":
		nrpt = 2
	case "73":
		nrpt = 3
	}

	var icq uint8
	if isCQ {
		icq = 1
	}

	const iflip = uint8(1) // nonstdCall always encoded in call1 position here

	payload[0] = uint8(n12 >> 4)
	payload[1] = uint8(n12<<4) | uint8(n58>>54)
	payload[2] = uint8(n58 >> 46)
	payload[3] = uint8(n58 >> 38)
	payload[4] = uint8(n58 >> 30)
	payload[5] = uint8(n58 >> 22)
	payload[6] = uint8(n58 >> 14)
	payload[7] = uint8(n58 >> 6)
	payload[8] = uint8(n58<<2) | (iflip << 1) | (nrpt >> 1)
	payload[9] = uint8(nrpt<<7) | (icq << 6) | (4 << 3) // i3 = 4 (non-standard callsign)

	return payload
}

// EncodeFreeText packs up to 13 characters of free text (type 0.0).
func EncodeFreeText(text string) [10]uint8 {
	var payload [10]uint8

	text = FmtMsg(text)
	if len(text) > 13 {
		text = text[:13]
	}
	padded := text + strings.Repeat(" ", 13-len(text))

	// Big-number base-42 accumulation (9 bytes), the inverse of
	// unpackFreeText's repeated divide-by-42.
	var acc [9]uint8
	for i := 0; i < 13; i++ {
		idx := Nchar(padded[i], CharTableFull)
		if idx < 0 {
			idx = 36
		}
		carry := uint32(idx)
		for j := 8; j >= 0; j-- {
			v := uint32(acc[j])*42 + carry
			acc[j] = uint8(v)
			carry = v >> 8
		}
	}

	for i := 0; i < 9; i++ {
		payload[i] = acc[i] << 1
		if i+1 < 9 {
			payload[i] |= acc[i+1] >> 7
		}
	}
	payload[9] = 0 // type 0.0, i3=0 n3=0 already zero

	return payload
}

// EncodeTelemetry packs up to 18 hex digits (71 bits) of telemetry (type 0.5).
func EncodeTelemetry(hex string) ([10]uint8, error) {
	var payload [10]uint8

	hex = strings.ToUpper(Trim(hex))
	if len(hex) > 18 {
		return payload, fmt.Errorf("ft8: telemetry hex too long: %d digits", len(hex))
	}
	padded := hex + strings.Repeat("0", 18-len(hex))

	var b71 [9]uint8
	for i := 0; i < 9; i++ {
		hi, err := hexDigit(padded[i*2])
		if err != nil {
			return payload, err
		}
		lo, err := hexDigit(padded[i*2+1])
		if err != nil {
			return payload, err
		}
		b71[i] = (hi << 4) | lo
	}

	for i := 0; i < 9; i++ {
		payload[i] = b71[i] << 1
		if i+1 < 9 {
			payload[i] |= b71[i+1] >> 7
		}
	}
	// i3=0, n3=5 (telemetry): n3's bit2 lives in payload[8] bit0, its
	// bits 1,0 live in payload[9] bits 7,6 (see GetMessageType).
	payload[8] |= 0x01
	payload[9] = 0x40

	return payload, nil
}

func hexDigit(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("ft8: invalid hex digit %q", c)
	}
}
