package ft8

import "math"

/*
 * Symbol Extraction
 * Extracts soft-decision log-likelihood ratios from waterfall
 */

// ExtractLikelihood extracts 174 log-likelihood values for LDPC decoding
func ExtractLikelihood(wf *Waterfall, cand *Candidate, protocol Protocol) []float32 {
	log174 := make([]float32, FTX_LDPC_N)

	if protocol == ProtocolFT4 {
		extractLikelihoodFT4(wf, cand, log174)
	} else {
		extractLikelihoodFT8(wf, cand, log174)
	}

	normalizeLikelihood(log174)

	return log174
}

// descrambleFT4Payload undoes FT4's transmit-side payload whitening: the 10
// payload bytes are XORed with FT4_XOR_sequence byte-for-byte. Codeword bits
// and tone-mapping are untouched by this; it applies only to the 10-byte
// payload recovered after LDPC decode and CRC verification.
func descrambleFT4Payload(payload [10]uint8) [10]uint8 {
	var out [10]uint8
	for i := range out {
		out[i] = payload[i] ^ FT4_XOR_sequence[i]
	}
	return out
}

// extractLikelihoodFT8 extracts likelihood for FT8 (58 data symbols, 3 bits each = 174 bits)
func extractLikelihoodFT8(wf *Waterfall, cand *Candidate, log174 []float32) {
	baseIdx := getCandidateIndex(wf, cand)

	// Go over 58 data symbols, skipping Costas sync symbols
	// FT8 structure: 7 sync, 29 data, 7 sync, 29 data, 7 sync
	for k := 0; k < FT8_ND; k++ {
		var symIdx int
		if k < 29 {
			symIdx = k + 7 // Skip first 7 sync symbols
		} else {
			symIdx = k + 14 // Skip first 7 + second 7 sync symbols
		}

		bitIdx := 3 * k

		block := int(cand.TimeOffset) + symIdx
		if block < 0 || block >= wf.NumBlocks {
			log174[bitIdx+0] = 0
			log174[bitIdx+1] = 0
			log174[bitIdx+2] = 0
		} else {
			magIdx := baseIdx + symIdx*wf.BlockStride
			extractSymbolFT8(wf.Mag, magIdx, log174[bitIdx:bitIdx+3])
		}
	}
}

// extractLikelihoodFT4 extracts likelihood for FT4 (87 data symbols, 2 bits each = 174 bits)
func extractLikelihoodFT4(wf *Waterfall, cand *Candidate, log174 []float32) {
	baseIdx := getCandidateIndex(wf, cand)

	// Go over 87 data symbols, skipping Costas sync symbols and ramp symbols
	// FT4 structure: R, 4 sync, 29 data, 4 sync, 29 data, 4 sync, 29 data, 4 sync, R
	for k := 0; k < FT4_ND; k++ {
		var symIdx int
		if k < 29 {
			symIdx = k + 5 // Skip R + 4 sync
		} else if k < 58 {
			symIdx = k + 9 // Skip R + 4 + 29 + 4 sync
		} else {
			symIdx = k + 13 // Skip R + 4 + 29 + 4 + 29 + 4 sync
		}

		bitIdx := 2 * k

		block := int(cand.TimeOffset) + symIdx
		if block < 0 || block >= wf.NumBlocks {
			log174[bitIdx+0] = 0
			log174[bitIdx+1] = 0
		} else {
			magIdx := baseIdx + symIdx*wf.BlockStride
			extractSymbolFT4(wf.Mag, magIdx, log174[bitIdx:bitIdx+2])
		}
	}
}

// extractSymbolFT8 extracts 3 soft bits from one FT8 symbol (8-FSK)
func extractSymbolFT8(mag []uint8, idx int, logl []float32) {
	s2 := make([]float32, 8)
	for j := 0; j < 8; j++ {
		grayIdx := FT8_Gray_map[j]
		if idx+int(grayIdx) < len(mag) {
			// Convert uint8 magnitude to float (0-255 -> -120 to +7.5 dB)
			s2[j] = float32(mag[idx+int(grayIdx)])*0.5 - 120.0
		}
	}

	// Each bit divides the 8 tones into two groups of 4; logl = max(bit=1 group) - max(bit=0 group)
	logl[0] = max4(s2[4], s2[5], s2[6], s2[7]) - max4(s2[0], s2[1], s2[2], s2[3]) // MSB
	logl[1] = max4(s2[2], s2[3], s2[6], s2[7]) - max4(s2[0], s2[1], s2[4], s2[5])
	logl[2] = max4(s2[1], s2[3], s2[5], s2[7]) - max4(s2[0], s2[2], s2[4], s2[6]) // LSB
}

// extractSymbolFT4 extracts 2 soft bits from one FT4 symbol (4-FSK)
func extractSymbolFT4(mag []uint8, idx int, logl []float32) {
	s2 := make([]float32, 4)
	for j := 0; j < 4; j++ {
		grayIdx := FT4_Gray_map[j]
		if idx+int(grayIdx) < len(mag) {
			s2[j] = float32(mag[idx+int(grayIdx)])*0.5 - 120.0
		}
	}

	logl[0] = max2(s2[2], s2[3]) - max2(s2[0], s2[1])
	logl[1] = max2(s2[1], s2[3]) - max2(s2[0], s2[2])
}

// normalizeLikelihood rescales the log-likelihood distribution to unit
// variance times 24, the scaling the LDPC decoder's min-sum update expects.
func normalizeLikelihood(log174 []float32) {
	var sum, sum2 float32
	for i := 0; i < FTX_LDPC_N; i++ {
		sum += log174[i]
		sum2 += log174[i] * log174[i]
	}

	invN := 1.0 / float32(FTX_LDPC_N)
	variance := (sum2 - (sum * sum * invN)) * invN
	if variance <= 0 {
		return
	}

	normFactor := float32(math.Sqrt(float64(24.0 / variance)))
	for i := 0; i < FTX_LDPC_N; i++ {
		log174[i] *= normFactor
	}
}

// getCandidateIndex calculates the waterfall array index for a candidate
func getCandidateIndex(wf *Waterfall, cand *Candidate) int {
	offset := int(cand.TimeOffset)
	offset = (offset * wf.TimeOSR) + int(cand.TimeSub)
	offset = (offset * wf.FreqOSR) + int(cand.FreqSub)
	offset = (offset * wf.NumBins) + int(cand.FreqOffset)
	return offset
}

// max2 returns the maximum of two values
func max2(a, b float32) float32 {
	if a >= b {
		return a
	}
	return b
}

// max4 returns the maximum of four values
func max4(a, b, c, d float32) float32 {
	return max2(max2(a, b), max2(c, d))
}
