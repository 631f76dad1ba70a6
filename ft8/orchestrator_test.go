package ft8

import "testing"

// buildWaterfallFromTones lays out a full FT8 slot's worth of tone
// magnitudes (one per symbol block) at a fixed frequency offset, with a
// flat low noise floor elsewhere, so FindCandidates/ExtractLikelihood can
// recover the originally encoded message end to end.
func buildWaterfallFromTones(itone []int, freqOffset int) *Waterfall {
	const numBins = 24
	wf := &Waterfall{
		MaxBlocks:   FT8_NN,
		NumBlocks:   FT8_NN,
		NumBins:     numBins,
		MinBin:      0,
		TimeOSR:     1,
		FreqOSR:     1,
		BlockStride: numBins,
		Protocol:    ProtocolFT8,
	}
	wf.Mag = make([]uint8, wf.MaxBlocks*wf.BlockStride)
	for i := range wf.Mag {
		wf.Mag[i] = 50
	}
	for block, tone := range itone {
		idx := block*wf.BlockStride + freqOffset + tone
		if idx >= 0 && idx < len(wf.Mag) {
			wf.Mag[idx] = 220
		}
	}
	return wf
}

func TestOrchestratorGoldenPathFT8Decode(t *testing.T) {
	const freqOffset = 8

	original := EncodeStandard("CQ", "W1ABC", "FN42", nil)
	a91 := BuildA91(original)
	plain91 := UnpackBits(a91[:], FTX_LDPC_K)
	codeword := EncodeLDPC(plain91)
	itone := GetTonesFromBits(codeword, ProtocolFT8)

	wf := buildWaterfallFromTones(itone, freqOffset)

	candidates := FindCandidates(wf, 5, 0)
	if len(candidates) == 0 {
		t.Fatalf("FindCandidates found no candidates for a synthetic clean signal")
	}

	cand := candidates[0]
	if int(cand.TimeOffset) != 0 || int(cand.FreqOffset) != freqOffset {
		t.Fatalf("best candidate = %+v, want TimeOffset=0 FreqOffset=%d", cand, freqOffset)
	}

	log174 := ExtractLikelihood(wf, &cand, ProtocolFT8)
	decoded, errCount := LDPCDecode(log174, 25)
	if errCount != 0 {
		t.Fatalf("LDPCDecode failed to converge on a clean synthetic signal: %d errors", errCount)
	}

	decodedA91 := PackBits(decoded[:FTX_LDPC_K], FTX_LDPC_K)
	if !crc14Check(decodedA91) {
		t.Fatalf("crc14Check failed on a decode that should have converged cleanly")
	}

	var payload [10]uint8
	copy(payload[:], decodedA91[:10])

	text := UnpackMessageWithHash(payload, nil)
	want := "CQ W1ABC FN42"
	if text != want {
		t.Fatalf("UnpackMessageWithHash() = %q, want %q", text, want)
	}

	snr := CalculateSNRFromBits(wf, &cand, decoded, ProtocolFT8)
	if snr < -24.0 {
		t.Fatalf("CalculateSNRFromBits() = %f, below the clamp floor of -24", snr)
	}
}

func TestOrchestratorDedupWithinSlot(t *testing.T) {
	cfg := DefaultFT8Config()
	o := NewOrchestrator(cfg, nil)

	seen, ok := o.dedup.SeenOrAdd("CQ W1ABC FN42", int(freqOffsetForDedupTest))
	if !ok || seen {
		t.Fatalf("first SeenOrAdd in a fresh orchestrator should report unseen")
	}
	seen, ok = o.dedup.SeenOrAdd("CQ W1ABC FN42", int(freqOffsetForDedupTest))
	if !ok || !seen {
		t.Fatalf("repeat SeenOrAdd in the same slot should report seen")
	}
}

const freqOffsetForDedupTest = 1500
