package ft8

import (
	"strings"
)

/*
 * Character-table codecs and small string helpers used while packing and
 * unpacking FT8/FT4 message fields: callsigns, grids and free text are each
 * built from a restricted alphabet (a "table"), and a field's packed index
 * only means anything once mapped back through the same table it was
 * packed with.
 */

// CharTable identifies one of the restricted alphabets a packed field's
// digits are drawn from.
type CharTable int

const (
	CharTableFull               CharTable = iota // space 0-9 A-Z + - . / ?
	CharTableAlphanumSpace                       // space 0-9 A-Z
	CharTableAlphanum                            // 0-9 A-Z
	CharTableLettersSpace                        // space A-Z
	CharTableNumeric                             // 0-9
	CharTableAlphanumSpaceSlash                  // space 0-9 A-Z /
)

// charTableSpec describes one alphabet as an ordered concatenation of
// optional ranges: an implicit leading space, then digits, then letters,
// then a literal tail of extra symbols. Charn/Nchar walk the same spec in
// opposite directions instead of each hand-coding the per-table rules.
type charTableSpec struct {
	hasSpace   bool
	hasDigits  bool
	hasLetters bool
	extra      string
}

var charTables = [...]charTableSpec{
	CharTableFull:               {hasSpace: true, hasDigits: true, hasLetters: true, extra: "+-./?"},
	CharTableAlphanumSpace:      {hasSpace: true, hasDigits: true, hasLetters: true},
	CharTableAlphanum:           {hasDigits: true, hasLetters: true},
	CharTableLettersSpace:       {hasSpace: true, hasLetters: true},
	CharTableNumeric:            {hasDigits: true},
	CharTableAlphanumSpaceSlash: {hasSpace: true, hasDigits: true, hasLetters: true, extra: "/"},
}

// Charn maps a packed digit back to its character under table. Inverse of
// Nchar; an out-of-range digit (shouldn't occur on a well-formed payload)
// maps to '_'.
func Charn(c int, table CharTable) byte {
	spec := charTables[table]

	if spec.hasSpace {
		if c == 0 {
			return ' '
		}
		c--
	}
	if spec.hasDigits {
		if c < 10 {
			return '0' + byte(c)
		}
		c -= 10
	}
	if spec.hasLetters {
		if c < 26 {
			return 'A' + byte(c)
		}
		c -= 26
	}
	if c >= 0 && c < len(spec.extra) {
		return spec.extra[c]
	}
	return '_'
}

// Nchar maps a character to its packed digit under table, or -1 if c isn't
// part of table's alphabet. Inverse of Charn.
func Nchar(c byte, table CharTable) int {
	spec := charTables[table]
	n := 0

	if spec.hasSpace {
		if c == ' ' {
			return n
		}
		n++
	}
	if spec.hasDigits {
		if c >= '0' && c <= '9' {
			return n + int(c-'0')
		}
		n += 10
	}
	if spec.hasLetters {
		if c >= 'A' && c <= 'Z' {
			return n + int(c-'A')
		}
		n += 26
	}
	if spec.extra != "" {
		if idx := strings.IndexByte(spec.extra, c); idx >= 0 {
			return n + idx
		}
	}
	return -1
}

// TrimFront removes leading spaces, the padding convention callsign and
// grid fields use to fill out a fixed-width table.
func TrimFront(s string) string {
	return strings.TrimLeft(s, " ")
}

// Trim removes leading and trailing spaces.
func Trim(s string) string {
	return strings.Trim(s, " ")
}

// IsDigit reports whether c is '0'-'9'.
func IsDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsLetter reports whether c is 'A'-'Z' or 'a'-'z'.
func IsLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// IsSpace reports whether c is a space.
func IsSpace(c byte) bool {
	return c == ' '
}

// StartsWith reports whether s begins with prefix.
func StartsWith(s, prefix string) bool {
	return strings.HasPrefix(s, prefix)
}

// FmtMsg upper-cases msg and collapses runs of spaces to one, the
// normalization applied to free text before it's packed so that encoding
// and decoding the same message round-trips.
func FmtMsg(msg string) string {
	var result strings.Builder
	lastWasSpace := false

	for i := 0; i < len(msg); i++ {
		c := msg[i]
		if c == ' ' {
			if !lastWasSpace {
				result.WriteByte(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteByte(toUpperByte(c))
			lastWasSpace = false
		}
	}

	return result.String()
}

func toUpperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// DDToInt parses a signed decimal integer from the first length bytes of s.
func DDToInt(s string, length int) int {
	if s == "" || length == 0 {
		return 0
	}

	negative := false
	i := 0

	if s[0] == '-' {
		negative = true
		i = 1
	} else if s[0] == '+' {
		i = 1
	}

	result := 0
	for i < length && i < len(s) {
		if s[i] == 0 || !IsDigit(s[i]) {
			break
		}
		result = result*10 + int(s[i]-'0')
		i++
	}

	if negative {
		return -result
	}
	return result
}

// IntToDD formats value as a zero-padded decimal string of width digits,
// prefixed with '-' if negative or '+' if fullSign and non-negative — the
// signal-report format ("+05", "-12") used by standard messages.
func IntToDD(value, width int, fullSign bool) string {
	var result strings.Builder

	if value < 0 {
		result.WriteByte('-')
		value = -value
	} else if fullSign {
		result.WriteByte('+')
	}

	divisor := 1
	for i := 0; i < width-1; i++ {
		divisor *= 10
	}

	for divisor >= 1 {
		digit := value / divisor
		result.WriteByte('0' + byte(digit))
		value -= digit * divisor
		divisor /= 10
	}

	return result.String()
}
