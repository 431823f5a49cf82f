// Package romfile loads cartridge images from plain files or from
// common archive formats, so zipped ROM collections work directly.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// romExtensions are the file names considered cartridge images when
// searching inside an archive.
var romExtensions = map[string]bool{
	".gb":  true,
	".dmg": true,
	".bin": true,
	".rom": true,
}

// Load reads a ROM image from the given path, unpacking .zip, .7z
// and .gz containers when needed.
func Load(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return loadZip(path)
	case ".7z":
		return load7z(path)
	case ".gz":
		return loadGzip(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	return data, nil
}

func isROMName(name string) bool {
	return romExtensions[strings.ToLower(filepath.Ext(name))]
}

func loadZip(path string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !isROMName(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("romfile: no cartridge image in %s", path)
}

func load7z(path string) ([]byte, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !isROMName(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("romfile: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("romfile: no cartridge image in %s", path)
}

func loadGzip(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// SavePath derives the battery RAM path for a ROM path: the same
// name with a .sav extension.
func SavePath(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}
