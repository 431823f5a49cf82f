package gameboy

import "errors"

// Load-time error kinds. In-loop faults never surface as errors;
// they park the CPU with a sticky crash message instead.
var (
	// ErrIO covers host filesystem failures.
	ErrIO = errors.New("io error")
	// ErrCodec covers malformed save-state streams.
	ErrCodec = errors.New("codec error")
	// ErrReplay covers malformed replay streams.
	ErrReplay = errors.New("replay error")
	// ErrCoverage covers cartridges that cannot be inserted: a
	// malformed header or a controller type that is not implemented.
	ErrCoverage = errors.New("coverage error")
)
