package apu

// dutyTable holds the four square waveforms, one bit per phase step.
var dutyTable = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1}, // 12.5%
	{1, 0, 0, 0, 0, 0, 0, 1}, // 25%
	{1, 0, 0, 0, 0, 1, 1, 1}, // 50%
	{0, 1, 1, 1, 1, 1, 1, 0}, // 75%
}

// squareChannel is a square wave generator with a volume envelope.
// The first channel additionally carries the frequency sweep unit.
type squareChannel struct {
	channel
	envelope envelope

	duty    uint8
	dutyPos uint8

	frequency uint16 // 11-bit
	timer     int

	// sweep unit (channel 1 only)
	hasSweep    bool
	sweepPeriod uint8
	sweepNegate bool
	sweepShift  uint8
	sweepTimer  uint8
	shadowFreq  uint16
	sweepOn     bool
}

func newSquareChannel(hasSweep bool) *squareChannel {
	return &squareChannel{
		channel:  channel{maxLength: 64},
		hasSweep: hasSweep,
	}
}

func (c *squareChannel) period() int {
	return int(2048-c.frequency) * 4
}

// step advances the waveform by the given number of cycles.
func (c *squareChannel) step(cycles int) {
	if c.timer <= 0 {
		c.timer = c.period()
	}
	c.timer -= cycles
	for c.timer <= 0 {
		c.timer += c.period()
		c.dutyPos = (c.dutyPos + 1) % 8
	}
}

// output is the current DAC input, 0-15.
func (c *squareChannel) output() uint8 {
	if !c.active() {
		return 0
	}
	return dutyTable[c.duty][c.dutyPos] * c.envelope.volume
}

func (c *squareChannel) trigger() {
	c.enabled = true
	c.triggerLength()
	c.timer = c.period()
	c.envelope.trigger()
	if c.hasSweep {
		c.shadowFreq = c.frequency
		c.sweepTimer = c.sweepPeriod
		if c.sweepTimer == 0 {
			c.sweepTimer = 8
		}
		c.sweepOn = c.sweepPeriod != 0 || c.sweepShift != 0
		if c.sweepShift != 0 && c.nextSweepFreq() > 2047 {
			c.enabled = false
		}
	}
	if !c.dacEnabled {
		c.enabled = false
	}
}

func (c *squareChannel) nextSweepFreq() uint16 {
	delta := c.shadowFreq >> c.sweepShift
	if c.sweepNegate {
		return c.shadowFreq - delta
	}
	return c.shadowFreq + delta
}

// sweepStep retunes the channel; an overflow past 2047 silences it.
func (c *squareChannel) sweepStep() {
	if !c.hasSweep || !c.sweepOn {
		return
	}
	if c.sweepTimer > 0 {
		c.sweepTimer--
	}
	if c.sweepTimer != 0 {
		return
	}
	c.sweepTimer = c.sweepPeriod
	if c.sweepTimer == 0 {
		c.sweepTimer = 8
	}
	if c.sweepPeriod == 0 {
		return
	}
	next := c.nextSweepFreq()
	if next > 2047 {
		c.enabled = false
		return
	}
	if c.sweepShift != 0 {
		c.shadowFreq = next
		c.frequency = next
		if c.nextSweepFreq() > 2047 {
			c.enabled = false
		}
	}
}
