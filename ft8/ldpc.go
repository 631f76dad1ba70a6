package ft8

import "math"

/*
 * LDPC(174,91) belief-propagation decoding: plain min-sum, damping 1.0.
 * Converted in spirit from ft8_lib's bp_decode (Karlis Goba, YL3JG); the
 * tanh-rule sum-product update is replaced by a direct min-sum update
 * against the Tanner graph built in ldpc_matrix.go.
 */

// LDPCDecode decodes a 174-value log-likelihood vector (positive => bit 1)
// using belief propagation. Returns the 174 hard-decided bits and the number
// of parity checks that still fail (0 = a valid codeword was found). An
// all-zero hard decision stops decoding at once and is reported as
// FTX_LDPC_M failing checks, so the all-zero word is never returned as a
// success.
func LDPCDecode(codeword []float32, maxIters int) ([]uint8, int) {
	return bpDecode(codeword, maxIters)
}

func bpDecode(codeword []float32, maxIters int) ([]uint8, int) {
	n := FTX_LDPC_N
	m := FTX_LDPC_M

	// msgVC[n][i]: message from variable n to its i-th neighboring check.
	// msgCV[m][j]: message from check m to its j-th neighboring variable.
	msgVC := make([][]float32, n)
	for i := range msgVC {
		msgVC[i] = make([]float32, len(ldpcVarToChecks[i]))
	}
	msgCV := make([][]float32, m)
	for i := range msgCV {
		msgCV[i] = make([]float32, len(ldpcCheckToVars[i]))
	}

	plain := make([]uint8, n)
	bestPlain := make([]uint8, n)
	minErrors := m

	for iter := 0; iter < maxIters; iter++ {
		// Variable-to-check update: total incoming belief minus the
		// contribution that arrived from this very edge.
		total := make([]float32, n)
		for nn := 0; nn < n; nn++ {
			sum := codeword[nn]
			for i, mm := range ldpcVarToChecks[nn] {
				sum += msgCV[mm][ldpcVarEdgePos[nn][i]]
			}
			total[nn] = sum
		}
		for nn := 0; nn < n; nn++ {
			for i, mm := range ldpcVarToChecks[nn] {
				msgVC[nn][i] = total[nn] - msgCV[mm][ldpcVarEdgePos[nn][i]]
			}
		}

		// Hard decision against the combined belief, then check parity.
		plainSum := 0
		for nn := 0; nn < n; nn++ {
			if total[nn] > 0 {
				plain[nn] = 1
			} else {
				plain[nn] = 0
			}
			plainSum += int(plain[nn])
		}
		if plainSum == 0 {
			break
		}

		errors := ldpcCheck(plain)
		if errors < minErrors {
			minErrors = errors
			copy(bestPlain, plain)
			if errors == 0 {
				break
			}
		}

		// Check-to-variable update: min-sum over every other neighbor.
		for mm := 0; mm < m; mm++ {
			vars := ldpcCheckToVars[mm]
			for j := range vars {
				sign := float32(1.0)
				minAbs := float32(math.MaxFloat32)
				for k, nn2 := range vars {
					if k == j {
						continue
					}
					v := msgVC[nn2][ldpcCheckEdgePos[mm][k]]
					if v > 0 {
						sign = -sign
					}
					if av := float32(math.Abs(float64(v))); av < minAbs {
						minAbs = av
					}
				}
				msgCV[mm][j] = -sign * minAbs
			}
		}
	}

	return bestPlain, minErrors
}

// ldpcCheck verifies every parity constraint, returning the number that fail.
func ldpcCheck(codeword []uint8) int {
	errors := 0
	for m := 0; m < FTX_LDPC_M; m++ {
		x := uint8(0)
		for _, n := range ldpcCheckToVars[m] {
			x ^= codeword[n]
		}
		if x != 0 {
			errors++
		}
	}
	return errors
}
