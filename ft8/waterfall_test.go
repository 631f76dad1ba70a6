package ft8

import (
	"math"
	"testing"
)

func TestNewMonitorBlockSizing(t *testing.T) {
	m := NewMonitor(12000, 200.0, 3000.0, 2, 2, ProtocolFT8)

	if m.Waterfall.NumBlocks != 0 {
		t.Fatalf("new monitor should start with NumBlocks=0, got %d", m.Waterfall.NumBlocks)
	}
	if m.Waterfall.MaxBlocks <= 0 {
		t.Fatalf("MaxBlocks must be positive, got %d", m.Waterfall.MaxBlocks)
	}
	if m.Waterfall.MinBin <= 0 {
		t.Fatalf("MinBin should reflect a nonzero fMin, got %d", m.Waterfall.MinBin)
	}
	if m.BlockSize <= 0 || m.NFFT&(m.NFFT-1) != 0 {
		t.Fatalf("NFFT must be a positive power of 2, got %d", m.NFFT)
	}
}

func TestMonitorProcessAdvancesBlocksAndAt(t *testing.T) {
	m := NewMonitor(12000, 200.0, 3000.0, 1, 1, ProtocolFT8)

	frame := make([]float32, m.BlockSize)
	m.Process(frame)

	if m.Waterfall.NumBlocks != 1 {
		t.Fatalf("NumBlocks after one Process() = %d, want 1", m.Waterfall.NumBlocks)
	}

	if _, ok := m.Waterfall.At(0, 0, 0, 0); !ok {
		t.Fatalf("At(0,0,0,0) should be in range after one processed block")
	}
	if _, ok := m.Waterfall.At(1, 0, 0, 0); ok {
		t.Fatalf("At(1,...) should be out of range with only one block stored")
	}
}

func TestMonitorResetClearsState(t *testing.T) {
	m := NewMonitor(12000, 200.0, 3000.0, 1, 1, ProtocolFT8)
	m.Process(make([]float32, m.BlockSize))
	m.Reset()

	if m.Waterfall.NumBlocks != 0 {
		t.Fatalf("NumBlocks after Reset() = %d, want 0", m.Waterfall.NumBlocks)
	}
	if m.MaxMag != -120.0 {
		t.Fatalf("MaxMag after Reset() = %f, want -120.0", m.MaxMag)
	}
}

// A pure tone placed well inside the analysis band should produce a
// magnitude peak at its corresponding bin, clearly above the noise floor.
func TestMonitorProcessFindsToneBin(t *testing.T) {
	const sampleRate = 12000
	m := NewMonitor(sampleRate, 200.0, 3000.0, 1, 1, ProtocolFT8)

	toneHz := 1000.0
	frame := make([]float32, m.BlockSize)
	for i := range frame {
		frame[i] = float32(math.Sin(2 * math.Pi * toneHz * float64(i) / float64(sampleRate)))
	}
	m.Process(frame)

	binWidth := float64(sampleRate) / float64(m.NFFT)
	expectedBin := int(toneHz/binWidth) - m.MinBin

	peakBin := -1
	var peakMag uint8
	for bin := 0; bin < m.Waterfall.NumBins; bin++ {
		mag, ok := m.Waterfall.At(0, 0, bin, 0)
		if !ok {
			t.Fatalf("At(0,0,%d,0) unexpectedly out of range", bin)
		}
		if mag > peakMag {
			peakMag = mag
			peakBin = bin
		}
	}

	if peakBin < expectedBin-1 || peakBin > expectedBin+1 {
		t.Fatalf("tone peak at bin %d, expected near bin %d", peakBin, expectedBin)
	}
}
