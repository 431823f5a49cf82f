// Package apu provides the sound controller: two square channels
// with envelope (the first with a frequency sweep), a wavetable
// channel and a noise channel, mixed into interleaved stereo PCM.
package apu

import (
	"github.com/mellified/dotmatrix/internal/scheduler"
	"github.com/mellified/dotmatrix/internal/types"
)

const (
	// SampleRate is the output rate of the mixer.
	SampleRate = 44100

	clockSpeed           = 4194304
	samplePeriod         = clockSpeed / SampleRate
	frameSequencerPeriod = 8192 // 512 Hz
)

// Sink consumes interleaved stereo PCM frames as the controller
// produces them.
type Sink interface {
	PushSamples(samples []uint8)
}

// APU owns the four channels, the output terminal mux and the
// sample mixer.
type APU struct {
	enabled bool

	chan1 *squareChannel
	chan2 *squareChannel
	chan3 *waveChannel
	chan4 *noiseChannel

	// NR50/NR51
	volumeLeft, volumeRight uint8
	vinLeft, vinRight       bool
	leftEnable, rightEnable [4]uint8

	frameStep uint8
	lastStep  uint64 // cycle of the previous sample event

	buffer []uint8

	s    *scheduler.Scheduler
	sink Sink
}

// NewAPU returns a sound controller bound to the scheduler. Sample
// generation starts immediately; with no sink attached samples are
// dropped.
func NewAPU(s *scheduler.Scheduler) *APU {
	a := &APU{
		chan1:  newSquareChannel(true),
		chan2:  newSquareChannel(false),
		chan3:  newWaveChannel(),
		chan4:  newNoiseChannel(),
		buffer: make([]uint8, 0, 1024),
		s:      s,
	}

	s.RegisterEvent(scheduler.APUFrameSequencer, a.frameSequence)
	s.RegisterEvent(scheduler.APUSample, a.sample)
	s.ScheduleEvent(scheduler.APUFrameSequencer, frameSequencerPeriod)
	s.ScheduleEvent(scheduler.APUSample, samplePeriod)

	return a
}

// AttachSink routes mixed samples to the given consumer.
func (a *APU) AttachSink(sink Sink) {
	a.sink = sink
}

// frameSequence clocks lengths, envelopes and the sweep, and hands
// the accumulated PCM frame to the sink.
func (a *APU) frameSequence() {
	switch a.frameStep {
	case 0, 4:
		a.stepLengths()
	case 2, 6:
		a.stepLengths()
		a.chan1.sweepStep()
	case 7:
		a.chan1.envelope.step()
		a.chan2.envelope.step()
		a.chan4.envelope.step()
	}
	a.frameStep = (a.frameStep + 1) % 8

	if len(a.buffer) > 0 {
		if a.sink != nil {
			a.sink.PushSamples(a.buffer)
		}
		a.buffer = a.buffer[:0]
	}

	a.s.ScheduleEvent(scheduler.APUFrameSequencer, frameSequencerPeriod)
}

func (a *APU) stepLengths() {
	a.chan1.lengthStep()
	a.chan2.lengthStep()
	a.chan3.lengthStep()
	a.chan4.lengthStep()
}

// sample advances the waveform generators by the elapsed cycles and
// mixes one stereo sample.
func (a *APU) sample() {
	now := a.s.Cycle()
	elapsed := int(now - a.lastStep)
	a.lastStep = now

	if a.enabled {
		a.chan1.step(elapsed)
		a.chan2.step(elapsed)
		a.chan3.step(elapsed)
		a.chan4.step(elapsed)
	}

	left, right := a.mix()
	a.buffer = append(a.buffer, left, right)

	a.s.ScheduleEvent(scheduler.APUSample, samplePeriod)
}

// mix sums the routed channels and clips into an 8-bit sample per
// terminal.
func (a *APU) mix() (left, right uint8) {
	if !a.enabled {
		return 0, 0
	}
	outputs := [4]uint8{
		a.chan1.output(),
		a.chan2.output(),
		a.chan3.output(),
		a.chan4.output(),
	}

	var l, r int
	for i, o := range outputs {
		l += int(o * a.leftEnable[i])
		r += int(o * a.rightEnable[i])
	}
	// channel sum 0-60 scaled by master volume 1-8
	l = l * int(a.volumeLeft+1) / 2
	r = r * int(a.volumeRight+1) / 2
	if l > 0xFF {
		l = 0xFF
	}
	if r > 0xFF {
		r = 0xFF
	}
	return uint8(l), uint8(r)
}

// powerOff clears every register and silences the channels.
func (a *APU) powerOff() {
	a.chan1 = newSquareChannel(true)
	a.chan2 = newSquareChannel(false)
	*a.chan3 = waveChannel{channel: channel{maxLength: 256}, ram: a.chan3.ram}
	a.chan4 = newNoiseChannel()
	a.volumeLeft, a.volumeRight = 0, 0
	a.vinLeft, a.vinRight = false, false
	a.leftEnable = [4]uint8{}
	a.rightEnable = [4]uint8{}
	a.frameStep = 0
}

// Read returns the value of the given sound register. Unused bits
// read as 1.
func (a *APU) Read(address uint16) uint8 {
	switch address {
	case types.NR10:
		v := a.chan1.sweepPeriod<<4 | a.chan1.sweepShift
		if a.chan1.sweepNegate {
			v |= types.Bit3
		}
		return v | 0x80
	case types.NR11:
		return a.chan1.duty<<6 | 0x3F
	case types.NR12:
		return a.chan1.envelope.get()
	case types.NR13:
		return 0xFF
	case types.NR14:
		return a.readNRx4(a.chan1.lengthEnabled)
	case types.NR21:
		return a.chan2.duty<<6 | 0x3F
	case types.NR22:
		return a.chan2.envelope.get()
	case types.NR23:
		return 0xFF
	case types.NR24:
		return a.readNRx4(a.chan2.lengthEnabled)
	case types.NR30:
		if a.chan3.dacEnabled {
			return 0xFF
		}
		return 0x7F
	case types.NR31:
		return 0xFF
	case types.NR32:
		return a.chan3.volumeCode<<5 | 0x9F
	case types.NR33:
		return 0xFF
	case types.NR34:
		return a.readNRx4(a.chan3.lengthEnabled)
	case types.NR41:
		return 0xFF
	case types.NR42:
		return a.chan4.envelope.get()
	case types.NR43:
		v := a.chan4.clockShift<<4 | a.chan4.divisorCode
		if a.chan4.widthMode {
			v |= types.Bit3
		}
		return v
	case types.NR44:
		return a.readNRx4(a.chan4.lengthEnabled)
	case types.NR50:
		v := a.volumeLeft<<4 | a.volumeRight
		if a.vinLeft {
			v |= types.Bit7
		}
		if a.vinRight {
			v |= types.Bit3
		}
		return v
	case types.NR51:
		var v uint8
		for i := 0; i < 4; i++ {
			v |= a.rightEnable[i] << i
			v |= a.leftEnable[i] << (i + 4)
		}
		return v
	case types.NR52:
		v := uint8(0x70)
		if a.enabled {
			v |= types.Bit7
		}
		if a.chan1.active() {
			v |= types.Bit0
		}
		if a.chan2.active() {
			v |= types.Bit1
		}
		if a.chan3.active() {
			v |= types.Bit2
		}
		if a.chan4.active() {
			v |= types.Bit3
		}
		return v
	}
	if address >= types.WaveRAMStart && address <= types.WaveRAMEnd {
		return a.chan3.ram[address-types.WaveRAMStart]
	}
	return 0xFF
}

func (a *APU) readNRx4(lengthEnabled bool) uint8 {
	if lengthEnabled {
		return 0xFF
	}
	return 0xBF
}

// Write sets the given sound register. With the controller powered
// down only NR52 and wave RAM are writable.
func (a *APU) Write(address uint16, value uint8) {
	if address >= types.WaveRAMStart && address <= types.WaveRAMEnd {
		a.chan3.ram[address-types.WaveRAMStart] = value
		return
	}
	if !a.enabled && address != types.NR52 {
		return
	}

	switch address {
	case types.NR10:
		a.chan1.sweepPeriod = value >> 4 & 0x07
		a.chan1.sweepNegate = value&types.Bit3 != 0
		a.chan1.sweepShift = value & 0x07
	case types.NR11:
		a.chan1.duty = value >> 6
		a.chan1.lengthCounter = 64 - int(value&0x3F)
	case types.NR12:
		a.chan1.envelope.set(value)
		a.chan1.dacEnabled = a.chan1.envelope.dac()
		if !a.chan1.dacEnabled {
			a.chan1.enabled = false
		}
	case types.NR13:
		a.chan1.frequency = a.chan1.frequency&0x700 | uint16(value)
	case types.NR14:
		a.chan1.frequency = a.chan1.frequency&0xFF | uint16(value&0x07)<<8
		a.chan1.lengthEnabled = value&types.Bit6 != 0
		if value&types.Bit7 != 0 {
			a.chan1.trigger()
		}
	case types.NR21:
		a.chan2.duty = value >> 6
		a.chan2.lengthCounter = 64 - int(value&0x3F)
	case types.NR22:
		a.chan2.envelope.set(value)
		a.chan2.dacEnabled = a.chan2.envelope.dac()
		if !a.chan2.dacEnabled {
			a.chan2.enabled = false
		}
	case types.NR23:
		a.chan2.frequency = a.chan2.frequency&0x700 | uint16(value)
	case types.NR24:
		a.chan2.frequency = a.chan2.frequency&0xFF | uint16(value&0x07)<<8
		a.chan2.lengthEnabled = value&types.Bit6 != 0
		if value&types.Bit7 != 0 {
			a.chan2.trigger()
		}
	case types.NR30:
		a.chan3.dacEnabled = value&types.Bit7 != 0
		if !a.chan3.dacEnabled {
			a.chan3.enabled = false
		}
	case types.NR31:
		a.chan3.lengthCounter = 256 - int(value)
	case types.NR32:
		a.chan3.volumeCode = value >> 5 & 0x03
	case types.NR33:
		a.chan3.frequency = a.chan3.frequency&0x700 | uint16(value)
	case types.NR34:
		a.chan3.frequency = a.chan3.frequency&0xFF | uint16(value&0x07)<<8
		a.chan3.lengthEnabled = value&types.Bit6 != 0
		if value&types.Bit7 != 0 {
			a.chan3.trigger()
		}
	case types.NR41:
		a.chan4.lengthCounter = 64 - int(value&0x3F)
	case types.NR42:
		a.chan4.envelope.set(value)
		a.chan4.dacEnabled = a.chan4.envelope.dac()
		if !a.chan4.dacEnabled {
			a.chan4.enabled = false
		}
	case types.NR43:
		a.chan4.clockShift = value >> 4
		a.chan4.widthMode = value&types.Bit3 != 0
		a.chan4.divisorCode = value & 0x07
	case types.NR44:
		a.chan4.lengthEnabled = value&types.Bit6 != 0
		if value&types.Bit7 != 0 {
			a.chan4.trigger()
		}
	case types.NR50:
		a.volumeLeft = value >> 4 & 0x07
		a.volumeRight = value & 0x07
		a.vinLeft = value&types.Bit7 != 0
		a.vinRight = value&types.Bit3 != 0
	case types.NR51:
		for i := 0; i < 4; i++ {
			a.rightEnable[i] = value >> i & 1
			a.leftEnable[i] = value >> (i + 4) & 1
		}
	case types.NR52:
		wasEnabled := a.enabled
		a.enabled = value&types.Bit7 != 0
		if wasEnabled && !a.enabled {
			a.powerOff()
		}
	}
}

var _ types.Stater = (*APU)(nil)

// Save serializes the register-visible state. Waveform phase is
// reconstructed on the next sample after a load.
func (a *APU) Save(s *types.State) {
	s.WriteBool(a.enabled)
	s.Write8(a.frameStep)
	s.Write64(a.lastStep)

	for _, addr := range soundRegisters {
		s.Write8(a.Read(addr))
	}
	s.WriteData(a.chan3.ram[:])

	s.Write16(a.chan1.frequency)
	s.Write16(a.chan2.frequency)
	s.Write16(a.chan3.frequency)
	s.WriteBool(a.chan1.enabled)
	s.WriteBool(a.chan2.enabled)
	s.WriteBool(a.chan3.enabled)
	s.WriteBool(a.chan4.enabled)
}

func (a *APU) Load(s *types.State) {
	enabled := s.ReadBool()
	frameStep := s.Read8()
	lastStep := s.Read64()

	a.enabled = true // allow register writes during decode
	for _, addr := range soundRegisters {
		a.Write(addr, s.Read8())
	}
	s.ReadData(a.chan3.ram[:])

	a.chan1.frequency = s.Read16()
	a.chan2.frequency = s.Read16()
	a.chan3.frequency = s.Read16()
	a.chan1.enabled = s.ReadBool()
	a.chan2.enabled = s.ReadBool()
	a.chan3.enabled = s.ReadBool()
	a.chan4.enabled = s.ReadBool()

	a.enabled = enabled
	a.frameStep = frameStep
	a.lastStep = lastStep
}

// soundRegisters lists the writable register file in serialization
// order.
var soundRegisters = []uint16{
	types.NR10, types.NR11, types.NR12, types.NR14,
	types.NR21, types.NR22, types.NR24,
	types.NR30, types.NR32, types.NR34,
	types.NR42, types.NR43, types.NR44,
	types.NR50, types.NR51,
}
