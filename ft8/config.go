package ft8

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

/*
 * FT8 Configuration
 * Protocol definitions and decoder configuration
 */

// Protocol represents FT8 or FT4
type Protocol int

const (
	ProtocolFT8 Protocol = iota
	ProtocolFT4
)

// MarshalYAML implements yaml.Marshaler for Protocol
func (p Protocol) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Protocol
func (p *Protocol) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "FT8", "ft8", "":
		*p = ProtocolFT8
	case "FT4", "ft4":
		*p = ProtocolFT4
	default:
		return fmt.Errorf("ft8: unknown protocol %q", s)
	}
	return nil
}

// FT8Config contains decoder configuration
type FT8Config struct {
	Protocol       Protocol `yaml:"protocol"`        // FT8 or FT4
	MinScore       int      `yaml:"min_score"`       // Minimum sync score threshold for candidates (lower scores are skipped; 0 drops only negative scores)
	MaxCandidates  int      `yaml:"max_candidates"`  // Maximum number of candidates to decode per slot
	LDPCIterations int      `yaml:"ldpc_iterations"` // Number of LDPC decoder iterations (final pass)

	// Early-decode scheme: optional performance optimization, correctness-
	// equivalent to a single final pass at LDPCIterations.
	EarlyDecodeEnabled     bool    `yaml:"early_decode_enabled"`
	EarlyLDPCIterations    int     `yaml:"early_ldpc_iterations"`
	DecodeBlockStride      int     `yaml:"decode_block_stride"`
	FindCandidatesAtFrac   float64 `yaml:"find_candidates_at_frac"`

	MaxDecodedMessages int `yaml:"max_decoded_messages"` // Bounded decoded-in-slot dedup table size
	HashTableCapacity  int `yaml:"hash_table_capacity"`  // Bounded callsign hash table capacity
	HashTableMaxAge    int `yaml:"hash_table_max_age"`   // Slots before a hash entry expires
}

// DefaultFT8Config returns default configuration
func DefaultFT8Config() FT8Config {
	return FT8Config{
		Protocol:             ProtocolFT8,
		MinScore:             0,   // Minimum sync score (0 keeps every non-negative score, reference uses 0)
		MaxCandidates:        200, // bounded resource ceiling per slot
		LDPCIterations:       25,  // kLDPC_iterations
		EarlyDecodeEnabled:   true,
		EarlyLDPCIterations:  1,
		DecodeBlockStride:    5,
		FindCandidatesAtFrac: 0.9,
		MaxDecodedMessages:   50,
		HashTableCapacity:    256,
		HashTableMaxAge:      10,
	}
}

// LoadConfig reads a YAML decoder configuration file, keeping the default
// for any field the file does not set. A field the file sets explicitly to
// zero stays zero.
func LoadConfig(path string) (FT8Config, error) {
	cfg := DefaultFT8Config()

	data, err := os.ReadFile(path)
	if err != nil {
		return FT8Config{}, fmt.Errorf("ft8: read config %s: %w", path, err)
	}

	// Start from defaults so a partial file only overrides what it sets.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FT8Config{}, fmt.Errorf("ft8: parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Protocol constants
const (
	// FT8 timing
	FT8SlotTime    = 15.0  // seconds
	FT8SymbolTime  = 0.160 // seconds per symbol
	FT8SymbolCount = 79    // symbols per transmission

	// FT4 timing
	FT4SlotTime    = 7.5   // seconds
	FT4SymbolTime  = 0.048 // seconds per symbol
	FT4SymbolCount = 105   // symbols per transmission

	// Common parameters
	CostasLength = 7    // Costas array length
	FreqMin      = 100  // Hz - minimum frequency
	FreqMax      = 3100 // Hz - maximum frequency

	// Oversampling
	FreqOSR = 2 // Frequency oversampling rate
	TimeOSR = 2 // Time oversampling rate
)

// GetSlotTime returns the slot time for the protocol
func (p Protocol) GetSlotTime() float64 {
	if p == ProtocolFT4 {
		return FT4SlotTime
	}
	return FT8SlotTime
}

// GetSymbolTime returns the symbol time for the protocol
func (p Protocol) GetSymbolTime() float64 {
	if p == ProtocolFT4 {
		return FT4SymbolTime
	}
	return FT8SymbolTime
}

// GetSymbolCount returns the number of symbols for the protocol
func (p Protocol) GetSymbolCount() int {
	if p == ProtocolFT4 {
		return FT4SymbolCount
	}
	return FT8SymbolCount
}

// String returns the protocol name
func (p Protocol) String() string {
	if p == ProtocolFT4 {
		return "FT4"
	}
	return "FT8"
}
