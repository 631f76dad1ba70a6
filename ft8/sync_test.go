package ft8

import "testing"

// buildSyncedWaterfall constructs a minimal FT8 waterfall with a Costas
// sync pattern embedded at the given frequency offset and a flat noise
// floor everywhere else.
func buildSyncedWaterfall(freqOffset int) *Waterfall {
	const numBins = 16
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

	setTone := func(block, bin int, mag uint8) {
		idx := block*wf.BlockStride + bin
		if idx >= 0 && idx < len(wf.Mag) {
			wf.Mag[idx] = mag
		}
	}

	for m := 0; m < FT8_NUM_SYNC; m++ {
		for k := 0; k < FT8_LENGTH_SYNC; k++ {
			block := FT8_SYNC_OFFSET*m + k
			sm := int(FT8_Costas_pattern[k])
			setTone(block, freqOffset+sm, 200)
		}
	}

	return wf
}

func TestFindCandidatesLocatesEmbeddedSync(t *testing.T) {
	const freqOffset = 4
	wf := buildSyncedWaterfall(freqOffset)

	candidates := FindCandidates(wf, 5, 0)
	if len(candidates) == 0 {
		t.Fatalf("FindCandidates found no candidates for an embedded Costas pattern")
	}

	best := candidates[0]
	if int(best.TimeOffset) != 0 {
		t.Fatalf("best candidate TimeOffset = %d, want 0", best.TimeOffset)
	}
	if int(best.FreqOffset) != freqOffset {
		t.Fatalf("best candidate FreqOffset = %d, want %d", best.FreqOffset, freqOffset)
	}
	if best.Score <= 0 {
		t.Fatalf("best candidate score = %d, want a positive score for a clean sync", best.Score)
	}
}

func TestFindCandidatesSortedByScoreDescending(t *testing.T) {
	wf := buildSyncedWaterfall(4)
	candidates := FindCandidates(wf, 5, 0)

	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Fatalf("candidates not sorted descending by score at index %d: %d > %d",
				i, candidates[i].Score, candidates[i-1].Score)
		}
	}
}

func TestDeleteCandidatesPreservesOrder(t *testing.T) {
	candidates := []Candidate{
		{Score: 10, FreqOffset: 1},
		{Score: 8, FreqOffset: 2},
		{Score: 6, FreqOffset: 3},
	}
	kept := DeleteCandidates(candidates, []int{1})
	if len(kept) != 2 {
		t.Fatalf("len(kept) = %d, want 2", len(kept))
	}
	if kept[0].FreqOffset != 1 || kept[1].FreqOffset != 3 {
		t.Fatalf("DeleteCandidates did not preserve order: %+v", kept)
	}
}

func TestGetCandidateFrequencyAndTime(t *testing.T) {
	wf := &Waterfall{MinBin: 10, FreqOSR: 2, TimeOSR: 2}
	cand := &Candidate{TimeOffset: 3, FreqOffset: 5, TimeSub: 1, FreqSub: 1}

	const symbolPeriod = 0.16
	freq := GetCandidateFrequency(wf, cand, symbolPeriod)
	wantFreq := (10.0 + 5.0 + 0.5) / symbolPeriod
	if freq != wantFreq {
		t.Fatalf("GetCandidateFrequency() = %f, want %f", freq, wantFreq)
	}

	offset := GetCandidateTime(wf, cand, symbolPeriod)
	wantOffset := (3.0 + 0.5) * symbolPeriod
	if offset != wantOffset {
		t.Fatalf("GetCandidateTime() = %f, want %f", offset, wantOffset)
	}
}
