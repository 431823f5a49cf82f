package cartridge

import (
	"io"

	"github.com/mellified/dotmatrix/pkg/log"
	"github.com/mellified/dotmatrix/pkg/storage"
)

// battery mirrors cartridge RAM writes to a .sav stream in
// persistent storage. The stream is opened lazily on the first write
// and grown to the declared RAM size; I/O errors are logged and
// otherwise ignored so emulation never stalls on the host.
type battery struct {
	store storage.Storage
	name  string
	size  int64
	file  storage.File
	log   log.Logger

	failed bool
}

func newBattery(store storage.Storage, name string, size int, logger log.Logger) *battery {
	if logger == nil {
		logger = log.NewNull()
	}
	return &battery{store: store, name: name, size: int64(size), log: logger}
}

// load returns the previously saved RAM contents, or nil when no
// save stream exists yet.
func (b *battery) load() []byte {
	if b.store == nil || b.name == "" {
		return nil
	}
	f, err := b.store.Open(storage.Read, b.name)
	if err != nil {
		return nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// write mirrors a single RAM byte at the given linear offset.
func (b *battery) write(offset int64, value uint8) {
	if b.store == nil || b.name == "" || b.failed {
		return
	}
	if b.file == nil && !b.open() {
		return
	}
	if _, err := b.file.Seek(offset, io.SeekStart); err != nil {
		b.log.Errorf("battery: seek to %d: %v", offset, err)
		return
	}
	if _, err := b.file.Write([]byte{value}); err != nil {
		b.log.Errorf("battery: write at %d: %v", offset, err)
	}
}

func (b *battery) open() bool {
	f, err := b.store.Open(storage.Write, b.name)
	if err != nil {
		b.log.Errorf("battery: open %s: %v", b.name, err)
		b.failed = true
		return false
	}
	if err := f.Truncate(b.size); err != nil {
		b.log.Errorf("battery: size %s: %v", b.name, err)
		_ = f.Close()
		b.failed = true
		return false
	}
	b.file = f
	return true
}
