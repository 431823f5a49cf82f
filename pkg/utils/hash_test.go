package utils

import "testing"

func TestRomHash(t *testing.T) {
	if RomHash(nil) != 0 {
		t.Error("expected empty data to hash to 0")
	}

	// the hash must be stable across runs
	data := make([]byte, 0x8000)
	for i := range data {
		data[i] = uint8(i)
	}
	first := RomHash(data)
	if second := RomHash(data); second != first {
		t.Errorf("hash not deterministic: %d != %d", first, second)
	}

	// and sensitive to single byte changes
	data[0x4000] ^= 0x01
	if RomHash(data) == first {
		t.Error("expected hash to change when data changes")
	}
}

func TestRomHashRemainders(t *testing.T) {
	// lengths that exercise each of the tail cases
	for _, n := range []int{1, 2, 3, 4, 5, 6, 7} {
		data := make([]byte, n)
		for i := range data {
			data[i] = uint8(0xA0 + i)
		}
		if RomHash(data) == 0 {
			t.Errorf("hash of %d bytes unexpectedly 0", n)
		}
	}
}
