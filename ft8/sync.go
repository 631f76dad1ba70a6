package ft8

import (
	"sort"
)

/*
 * Costas sync detection: scores every (time, frequency) position in the
 * waterfall by how well its expected Costas tones stand out from their
 * immediate neighbors, and keeps the top-scoring candidates.
 */

// Candidate represents a potential FT8/FT4 signal
type Candidate struct {
	Score      int16 // Sync score (higher = better)
	TimeOffset int16 // Index of time block
	FreqOffset int16 // Index of frequency bin
	TimeSub    uint8 // Time subdivision index
	FreqSub    uint8 // Frequency subdivision index
}

// FindCandidates locates up to maxCandidates positions in the waterfall
// scoring at least minScore, sorted highest score first.
func FindCandidates(wf *Waterfall, maxCandidates int, minScore int) []Candidate {
	candidates := make([]Candidate, 0, maxCandidates)
	numTones := wf.Protocol.NumTones()

	for timeSub := 0; timeSub < wf.TimeOSR; timeSub++ {
		minOffset, maxOffset := syncSearchExtent(wf)
		for freqSub := 0; freqSub < wf.FreqOSR; freqSub++ {
			// Search extent scales with the slot's block count rather than a
			// fixed constant, so it covers the same fraction of the slot for
			// FT4's shorter symbols as for FT8's.
			for timeOffset := minOffset; timeOffset < maxOffset; timeOffset++ {
				// Frequency offset must fit all tones within the waterfall
				for freqOffset := 0; freqOffset+numTones-1 < wf.NumBins; freqOffset++ {
					score := syncScore(wf, wf.Protocol, timeOffset, freqOffset, timeSub, freqSub)
					if score < minScore {
						continue
					}

					cand := Candidate{
						Score:      int16(score),
						TimeOffset: int16(timeOffset),
						FreqOffset: int16(freqOffset),
						TimeSub:    uint8(timeSub),
						FreqSub:    uint8(freqSub),
					}
					candidates = insertCandidate(candidates, cand, maxCandidates)
				}
			}
		}
	}

	return candidates
}

// syncSearchExtent bounds the Costas sync search's time offset to roughly
// the same fraction of the slot's block count that ft8_lib's -10..20 window
// covers of FT8's 94-block slot, generalized to any protocol's block count.
func syncSearchExtent(wf *Waterfall) (min, max int) {
	const earlyFrac = -10.0 / 94.0
	const lateFrac = 20.0 / 94.0
	min = int(earlyFrac * float64(wf.MaxBlocks))
	max = int(lateFrac*float64(wf.MaxBlocks)) + 1
	return min, max
}

// syncScore averages, over every sync symbol of protocol's Costas pattern,
// how far the expected tone's magnitude stands above its immediate
// frequency and time neighbors. One routine serves both protocols: they
// differ only in their sync geometry (Protocol.SyncGeometry) and which
// Costas pattern each sync group uses (Protocol.CostasPattern), both now
// read from the protocol rather than hand-duplicated per protocol.
func syncScore(wf *Waterfall, protocol Protocol, timeOffset, freqOffset, timeSub, freqSub int) int {
	groups, length, offset, start := protocol.SyncGeometry()
	numTones := protocol.NumTones()

	score := 0
	numAverage := 0

	for m := 0; m < groups; m++ {
		pattern := protocol.CostasPattern(m)
		for k := 0; k < length; k++ {
			blockAbs := timeOffset + start + offset*m + k
			if blockAbs < 0 {
				continue
			}
			if blockAbs >= wf.NumBlocks {
				break
			}

			sm := int(pattern[k])
			expectedMag := int(magAt(wf, blockAbs, freqOffset+sm, timeSub, freqSub))

			if sm > 0 {
				lowerMag := int(magAt(wf, blockAbs, freqOffset+sm-1, timeSub, freqSub))
				score += expectedMag - lowerMag
				numAverage++
			}
			if sm < numTones-1 {
				higherMag := int(magAt(wf, blockAbs, freqOffset+sm+1, timeSub, freqSub))
				score += expectedMag - higherMag
				numAverage++
			}
			if k > 0 && blockAbs > 0 {
				prevMag := int(magAt(wf, blockAbs-1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - prevMag
				numAverage++
			}
			if k+1 < length && blockAbs+1 < wf.NumBlocks {
				nextMag := int(magAt(wf, blockAbs+1, freqOffset+sm, timeSub, freqSub))
				score += expectedMag - nextMag
				numAverage++
			}
		}
	}

	if numAverage > 0 {
		return score / numAverage
	}
	return score
}

// magAt is an out-of-range-safe magnitude lookup built directly on
// Waterfall.At, so sync scoring and waterfall storage share one
// index-arithmetic implementation instead of keeping two in sync by hand.
func magAt(wf *Waterfall, block, bin, timeSub, freqSub int) uint8 {
	mag, ok := wf.At(block, timeSub, bin, freqSub)
	if !ok {
		return 0
	}
	return mag
}

// insertCandidate inserts newCand into the descending-by-score candidate
// list, keeping only the top maxCandidates entries. The list stays sorted
// after every insert, so the insertion point is found with a binary search
// rather than a full re-sort.
func insertCandidate(candidates []Candidate, newCand Candidate, maxCandidates int) []Candidate {
	full := len(candidates) >= maxCandidates
	if full && newCand.Score <= candidates[len(candidates)-1].Score {
		return candidates
	}

	pos := sort.Search(len(candidates), func(i int) bool {
		return candidates[i].Score <= newCand.Score
	})

	if full {
		copy(candidates[pos+1:], candidates[pos:len(candidates)-1])
		candidates[pos] = newCand
		return candidates
	}

	candidates = append(candidates, Candidate{})
	copy(candidates[pos+1:], candidates[pos:len(candidates)-1])
	candidates[pos] = newCand
	return candidates
}

// DeleteCandidates removes the candidates at the given indices, preserving
// the relative order of the rest. Used by the orchestrator to drop
// candidates that already produced a successful decode in an earlier
// (early-decode) pass, so a later full pass does not repeat the work.
func DeleteCandidates(candidates []Candidate, indices []int) []Candidate {
	if len(indices) == 0 {
		return candidates
	}

	remove := make(map[int]bool, len(indices))
	for _, i := range indices {
		remove[i] = true
	}

	kept := candidates[:0]
	for i, c := range candidates {
		if !remove[i] {
			kept = append(kept, c)
		}
	}
	return kept
}

// GetCandidateFrequency returns a candidate's audio frequency in Hz.
func GetCandidateFrequency(wf *Waterfall, cand *Candidate, symbolPeriod float64) float64 {
	return (float64(wf.MinBin) + float64(cand.FreqOffset) + float64(cand.FreqSub)/float64(wf.FreqOSR)) / symbolPeriod
}

// GetCandidateTime returns a candidate's time offset in seconds from the
// start of the slot.
func GetCandidateTime(wf *Waterfall, cand *Candidate, symbolPeriod float64) float64 {
	return (float64(cand.TimeOffset) + float64(cand.TimeSub)/float64(wf.TimeOSR)) * symbolPeriod
}
