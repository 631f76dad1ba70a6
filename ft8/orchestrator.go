package ft8

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/cwsl/ft8dec/internal/clock"
)

/*
 * Slot orchestrator.
 *
 * Grounded on ka9q_ubersdr's decoder.go FT8Decoder: the same three-state
 * lifecycle (StateWaitingForSlot -> StateAccumulating -> StateDecoding) and
 * syncToSlot phase-alignment arithmetic, but driven by the AudioSource/
 * WallClock interfaces below instead of a channel fed by an RTP receiver,
 * and emitting plain DecodeResult records instead of posting JSON to a
 * websocket client.
 */

// AudioSource is the live-capture input the streaming orchestrator reads
// from, reduced to the open/read/close shape a decoder core actually
// needs.
type AudioSource interface {
	Open(device string) error
	Read(dst []float32) (n int, err error)
	Close() error
}

// DecodeErrorKind classifies the fatal/informational error conditions a
// decode run can hit.
type DecodeErrorKind int

const (
	ErrLDPCUnconverged DecodeErrorKind = iota
	ErrCRCMismatch
	ErrUnpack
	ErrDuplicate
	ErrAudio
	ErrConfig
)

// ConfigError wraps a fatal configuration problem (bad YAML, missing file).
type ConfigError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("ft8: config error: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// AudioError wraps a fatal audio source problem (device open/read failure).
type AudioError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *AudioError) Error() string { return fmt.Sprintf("ft8: audio error: %v", e.Err) }
func (e *AudioError) Unwrap() error { return e.Err }

// DecodeResult is one decoded message, in the orchestrator's output record
// format: "HHMMSS SNR TIME_OFFSET_S FREQ_HZ ~ TEXT".
type DecodeResult struct {
	RunID      uuid.UUID
	Hour       int
	Minute     int
	Second     int
	SNR        float32
	TimeOffset float64 // seconds, fractional
	FreqHz     float64
	Text       string
	Protocol   Protocol
	Hash       uint32 // FNV-1a over the 10 payload bytes, for cross-slot identity
}

// GMTime splits a time.Time into UTC hour/minute/second, matching the
// WSJT-X decode log's timestamp fields.
func GMTime(t time.Time) (h, m, s int) {
	u := t.UTC()
	return u.Hour(), u.Minute(), u.Second()
}

// orchestratorState is the slot lifecycle's current phase.
type orchestratorState int

const (
	StateWaitingForSlot orchestratorState = iota
	StateAccumulating
	StateDecoding
)

// Orchestrator drives one decoder instance (one protocol) across
// consecutive time slots, sharing a single decodeSlot core between the
// file-replay (DecodeWAV) and live (Run) entry points.
type Orchestrator struct {
	cfg       FT8Config
	runID     uuid.UUID
	hashTable *CallsignHashTable
	dedup     *DedupSet
	metrics   *Metrics
	state     orchestratorState
}

// NewOrchestrator builds an orchestrator with its own callsign hash table
// and per-slot dedup set, sized from cfg.
func NewOrchestrator(cfg FT8Config, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		runID:     uuid.New(),
		hashTable: NewCallsignHashTable(cfg.HashTableCapacity, cfg.HashTableMaxAge),
		dedup:     NewDedupSet(cfg.MaxDecodedMessages),
		metrics:   metrics,
		state:     StateWaitingForSlot,
	}
}

// State reports the orchestrator's current lifecycle phase.
func (o *Orchestrator) State() orchestratorState { return o.state }

// DecodeWAV decodes a single time slot's worth of audio read from a WAV
// file: no wall-clock wait, accumulate blocks into one waterfall until it
// holds MaxBlocks (one slot) or the samples run out, decode, return. Samples
// beyond the first slot are not decoded. This is the non-streaming CLI
// entry point.
func (o *Orchestrator) DecodeWAV(samples []float32, sampleRate int) ([]DecodeResult, error) {
	mon := NewMonitor(sampleRate, FreqMin, FreqMax, TimeOSR, FreqOSR, o.cfg.Protocol)

	start := time.Now()
	o.state = StateAccumulating
	o.feedSamples(mon, samples)
	o.state = StateDecoding
	results := o.decodeSlot(mon, time.Now())
	o.state = StateWaitingForSlot
	o.metrics.RecordSlotDuration(o.cfg.Protocol, time.Since(start).Seconds())

	return results, nil
}

// feedSamples pushes raw PCM through the monitor one analysis block at a
// time until the waterfall fills or the samples run out.
func (o *Orchestrator) feedSamples(mon *Monitor, samples []float32) {
	blockSize := mon.BlockSize
	for off := 0; off+blockSize <= len(samples) && mon.Waterfall.NumBlocks < mon.Waterfall.MaxBlocks; off += blockSize {
		mon.Process(samples[off : off+blockSize])
	}
}

// Run drives the orchestrator against a live AudioSource, waiting for each
// protocol slot boundary via clk and emitting each slot's decode results
// through emit as they are produced. It returns when ctx is cancelled or
// src.Read returns any error (io.EOF included), wrapped in an AudioError.
func (o *Orchestrator) Run(ctx context.Context, src AudioSource, clk clock.WallClock, emit func(DecodeResult)) error {
	mon := NewMonitor(48000, FreqMin, FreqMax, TimeOSR, FreqOSR, o.cfg.Protocol)
	slotPeriod := o.cfg.Protocol.GetSlotTime()

	o.state = StateWaitingForSlot
	if err := o.syncToSlot(ctx, clk, slotPeriod); err != nil {
		return err
	}

	buf := make([]float32, mon.BlockSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		o.state = StateAccumulating
		mon.Reset()
		slotStart := clk.Now()

		for mon.Waterfall.NumBlocks < mon.Waterfall.MaxBlocks {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			n, err := src.Read(buf)
			if err != nil {
				return &AudioError{Kind: ErrAudio, Err: err}
			}
			if n < len(buf) {
				continue // short read mid-slot: keep accumulating
			}
			mon.Process(buf)
		}

		o.state = StateDecoding
		for _, r := range o.decodeSlot(mon, slotStart) {
			emit(r)
		}
		o.metrics.RecordSlotDuration(o.cfg.Protocol, clk.Now().Sub(slotStart).Seconds())
	}
}

// syncToSlot sleeps until the next protocol slot boundary: align wall-clock
// seconds mod slotPeriod rather than waiting a fixed duration, so a
// late-starting process still lands on the same slot grid as other
// receivers.
func (o *Orchestrator) syncToSlot(ctx context.Context, clk clock.WallClock, slotPeriod float64) error {
	now := clk.Now()
	secOfDay := float64(now.Unix()%86400) + float64(now.Nanosecond())/1e9
	phase := secOfDay - slotPeriod*float64(int(secOfDay/slotPeriod))
	wait := slotPeriod - phase
	if wait <= 0 || wait >= slotPeriod {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	clk.Sleep(time.Duration(wait * float64(time.Second)))
	return nil
}

// decodeSlot runs the full candidate-find/decode/dedup/emit pipeline over
// one filled waterfall, then ages the callsign hash table by one slot,
// clears the dedup set and resets the monitor for the next slot. Shared by DecodeWAV and Run so both modes have identical
// dedup/cleanup/reset behavior.
func (o *Orchestrator) decodeSlot(mon *Monitor, slotStart time.Time) []DecodeResult {
	wf := mon.Waterfall
	protocol := o.cfg.Protocol

	candidates := FindCandidates(wf, o.cfg.MaxCandidates, o.cfg.MinScore)
	o.metrics.RecordCandidatesFound(protocol, len(candidates))

	var results []DecodeResult

	if o.cfg.EarlyDecodeEnabled {
		o.earlyDecodePass(wf, &candidates, protocol, &results, slotStart)
	}

	for i := range candidates {
		o.tryDecode(wf, &candidates[i], protocol, o.cfg.LDPCIterations, &results, slotStart)
	}

	evicted := o.hashTable.Age()
	_ = evicted
	o.dedup.Reset()
	o.metrics.SetHashTableSize(protocol, o.hashTable.Size())
	mon.Reset()

	return results
}

// earlyDecodePass attempts a cheap low-iteration decode
// (EarlyLDPCIterations) of every candidate, provided the waterfall holds at
// least FindCandidatesAtFrac of MaxBlocks, pruning any that succeed so the
// final pass does only the remaining work. decodeSlot calls it once, on the
// filled waterfall, just before the final pass. A performance optimization, correctness-equivalent to
// running only the final pass.
func (o *Orchestrator) earlyDecodePass(wf *Waterfall, candidates *[]Candidate, protocol Protocol, results *[]DecodeResult, slotStart time.Time) {
	fracBlocks := int(float64(wf.MaxBlocks) * o.cfg.FindCandidatesAtFrac)
	if wf.NumBlocks < fracBlocks {
		return
	}

	var decodedIdx []int
	for i := range *candidates {
		if o.tryDecode(wf, &(*candidates)[i], protocol, o.cfg.EarlyLDPCIterations, results, slotStart) {
			decodedIdx = append(decodedIdx, i)
		}
	}
	if len(decodedIdx) > 0 {
		*candidates = DeleteCandidates(*candidates, decodedIdx)
	}
}

// tryDecode runs LLR extraction, min-sum LDPC decode, CRC check, dedup and
// message unpacking for one candidate. It returns true and appends a
// DecodeResult on success.
func (o *Orchestrator) tryDecode(wf *Waterfall, cand *Candidate, protocol Protocol, maxIters int, results *[]DecodeResult, slotStart time.Time) bool {
	o.metrics.RecordDecodeAttempt(protocol)

	log174 := ExtractLikelihood(wf, cand, protocol)

	plain, errCount := LDPCDecode(log174, maxIters)
	if errCount > 0 {
		o.metrics.RecordLDPCFailure(protocol)
		return false
	}

	a91 := PackBits(plain[:FTX_LDPC_K], FTX_LDPC_K)
	if !crc14Check(a91) {
		o.metrics.RecordCRCFailure(protocol)
		return false
	}
	o.metrics.RecordDecodeSuccess(protocol)

	var payload [10]uint8
	copy(payload[:], a91[:10])
	if protocol == ProtocolFT4 {
		payload = descrambleFT4Payload(payload)
	}

	text := UnpackMessageWithHash(payload, o.hashTable)
	if GetMessageType(payload) == MessageTypeUnknown {
		text = fmt.Sprintf("Error [%d] while unpacking!", int((payload[9]>>3)&0x07))
	}

	freqHz := GetCandidateFrequency(wf, cand, protocolSymbolPeriod(protocol))
	timeOffset := GetCandidateTime(wf, cand, protocolSymbolPeriod(protocol))

	seen, ok := o.dedup.SeenOrAdd(text, int(cand.FreqOffset))
	if ok && seen {
		o.metrics.RecordDuplicateDropped(protocol)
		return false
	}

	snr := CalculateSNRFromBits(wf, cand, plain, protocol)

	h, m, s := GMTime(slotStart)
	*results = append(*results, DecodeResult{
		RunID:      o.runID,
		Hour:       h,
		Minute:     m,
		Second:     s,
		SNR:        snr,
		TimeOffset: timeOffset,
		FreqHz:     freqHz,
		Text:       text,
		Protocol:   protocol,
		Hash:       contentHash(payload),
	})
	o.metrics.RecordMessageEmitted(protocol)
	return true
}

func protocolSymbolPeriod(p Protocol) float64 { return p.GetSymbolTime() }

// contentHash computes an FNV-1a content hash over the 10 payload bytes,
// used as a cross-slot identity key independent of the CRC value.
func contentHash(payload [10]uint8) uint32 {
	h := fnv.New32a()
	h.Write(payload[:])
	return h.Sum32()
}
