package ft8

import (
	"strings"
	"testing"
)

func TestEncodeStandardRoundTrip(t *testing.T) {
	payload := EncodeStandard("CQ", "W1ABC", "FN42", nil)

	got := unpackStandard(payload, nil)
	want := "CQ W1ABC FN42"
	if got != want {
		t.Fatalf("unpackStandard() = %q, want %q", got, want)
	}
}

func TestEncodeStandardReportRoundTrip(t *testing.T) {
	payload := EncodeStandard("W1ABC", "K5XYZ", "RR73", nil)

	got := unpackStandard(payload, nil)
	if !strings.Contains(got, "RR73") {
		t.Fatalf("unpackStandard() = %q, want it to contain RR73", got)
	}
	if !strings.Contains(got, "W1ABC") || !strings.Contains(got, "K5XYZ") {
		t.Fatalf("unpackStandard() = %q, missing a callsign", got)
	}
}

func TestEncodeFreeTextRoundTrip(t *testing.T) {
	payload := EncodeFreeText("HELLO WORLD")

	if GetMessageType(payload) != MessageTypeFreeText {
		t.Fatalf("GetMessageType() = %v, want MessageTypeFreeText", GetMessageType(payload))
	}
	got := strings.TrimRight(unpackFreeText(payload), " ")
	if got != "HELLO WORLD" {
		t.Fatalf("unpackFreeText() = %q, want %q", got, "HELLO WORLD")
	}
}

// FT8's CRC covers the payload bytes directly.
func TestBuildA91FT8CRCChecks(t *testing.T) {
	payload := EncodeStandard("CQ", "W1ABC", "FN42", nil)
	a91 := BuildA91(payload)

	if !crc14Check(a91[:]) {
		t.Fatalf("crc14Check failed on a freshly built FT8 a91 buffer")
	}

	var recovered [10]uint8
	copy(recovered[:], a91[:10])
	recovered[9] &= 0xF8 // the low 3 bits of byte 9 hold CRC bits, not payload
	if recovered != payload {
		t.Fatalf("BuildA91 altered the payload bytes for FT8: got %v, want %v", recovered, payload)
	}
}

// FT4 scrambles the payload bytes before the CRC is computed; decoding
// reverses the order (CRC check first, descramble last), so BuildA91FT4
// and descrambleFT4Payload must be exact inverses of each other.
func TestBuildA91FT4RoundTrip(t *testing.T) {
	payload := EncodeStandard("CQ", "W1ABC", "FN42", nil)
	a91 := BuildA91FT4(payload)

	if !crc14Check(a91[:]) {
		t.Fatalf("crc14Check failed on a freshly built FT4 a91 buffer")
	}

	var scrambled [10]uint8
	copy(scrambled[:], a91[:10])
	recovered := descrambleFT4Payload(scrambled)
	recovered[9] &= 0xF8 // the low 3 bits of byte 9 hold CRC bits, not payload
	if recovered != payload {
		t.Fatalf("descrambleFT4Payload(BuildA91FT4(payload)) = %v, want %v", recovered, payload)
	}
}

func TestDescrambleFT4PayloadIsInvolution(t *testing.T) {
	var payload [10]uint8
	for i := range payload {
		payload[i] = uint8(i*37 + 11)
	}
	scrambled := descrambleFT4Payload(payload)
	back := descrambleFT4Payload(scrambled)
	if back != payload {
		t.Fatalf("descrambleFT4Payload is not an involution: got %v, want %v", back, payload)
	}
}
