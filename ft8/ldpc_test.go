package ft8

import "testing"

func TestEncodeLDPCRoundTrip(t *testing.T) {
	plain91 := make([]uint8, FTX_LDPC_K)
	for i := range plain91 {
		if i%3 == 0 {
			plain91[i] = 1
		}
	}

	codeword := EncodeLDPC(plain91)
	if len(codeword) != FTX_LDPC_N {
		t.Fatalf("EncodeLDPC returned %d bits, want %d", len(codeword), FTX_LDPC_N)
	}
	if errs := ldpcCheck(codeword); errs != 0 {
		t.Fatalf("EncodeLDPC produced a codeword failing %d parity checks", errs)
	}

	llr := make([]float32, FTX_LDPC_N)
	for i, b := range codeword {
		if b == 1 {
			llr[i] = 5.0
		} else {
			llr[i] = -5.0
		}
	}

	decoded, errCount := LDPCDecode(llr, 25)
	if errCount != 0 {
		t.Fatalf("LDPCDecode did not converge on a clean codeword: %d errors", errCount)
	}
	for i := 0; i < FTX_LDPC_K; i++ {
		if decoded[i] != plain91[i] {
			t.Fatalf("bit %d: decoded %d, want %d", i, decoded[i], plain91[i])
		}
	}
}

func TestLDPCDecodeConvergesWithWeakenedLLRs(t *testing.T) {
	plain91 := make([]uint8, FTX_LDPC_K)
	for i := range plain91 {
		if i%5 == 0 {
			plain91[i] = 1
		}
	}
	codeword := EncodeLDPC(plain91)

	llr := make([]float32, FTX_LDPC_N)
	for i, b := range codeword {
		if b == 1 {
			llr[i] = 4.0
		} else {
			llr[i] = -4.0
		}
	}
	// Weaken (not flip) a few LLRs to simulate noisy but still-correct-sign soft decisions.
	for _, i := range []int{2, 17, 40} {
		llr[i] *= 0.1
	}

	decoded, errCount := LDPCDecode(llr, 25)
	if errCount != 0 {
		t.Fatalf("LDPCDecode did not converge: %d errors", errCount)
	}
	for i := 0; i < FTX_LDPC_K; i++ {
		if decoded[i] != plain91[i] {
			t.Fatalf("bit %d: decoded %d, want %d", i, decoded[i], plain91[i])
		}
	}
}
