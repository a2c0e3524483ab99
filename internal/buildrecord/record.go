// Package buildrecord stores the link metadata of a finished build next to
// the archives it describes.
package buildrecord

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever Record changes shape.
const SchemaVersion uint16 = 1

// FileName is the record's name inside the output directory.
const FileName = "nativecfg-build.msgpack"

// ErrSchema is returned by Read for records written by another schema.
var ErrSchema = errors.New("unsupported build record schema")

// Archive is one static library produced by the build.
type Archive struct {
	Name  string
	File  string
	Units uint32
	Cpp   bool
}

// Record is what downstream link steps need to know about a build.
type Record struct {
	Schema uint16

	Triple         string
	PointerWidth   uint8
	BigEndian      bool
	Family         string
	HasInt128      bool
	Representation string
	ExternalCurve  bool

	Archives   []Archive
	LinkSearch string
	// CppRuntime is empty when the toolchain links it implicitly.
	CppRuntime string
	Warnings   []string
	Tool       string
}

// Units narrows a unit count for the record.
func Units(n int) (uint32, error) {
	u, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("unit count %d: %w", n, err)
	}
	return u, nil
}

// Path returns where the record of outDir lives.
func Path(outDir string) string {
	return filepath.Join(outDir, FileName)
}

// Write stores rec in outDir, replacing any previous record atomically.
func Write(outDir string, rec *Record) (string, error) {
	if rec == nil {
		return "", errors.New("nil build record")
	}
	rec.Schema = SchemaVersion
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(outDir, ".record-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(rec); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	path := Path(outDir)
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// Read loads a record written by Write.
func Read(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rec Record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rec.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: schema %d: %w", path, rec.Schema, ErrSchema)
	}
	return &rec, nil
}

// HasCpp reports whether any archive was built from C++ sources.
func (r *Record) HasCpp() bool {
	for _, a := range r.Archives {
		if a.Cpp {
			return true
		}
	}
	return false
}

// Directives renders the cargo link directives for the record.
func (r *Record) Directives() []string {
	out := make([]string, 0, len(r.Archives)+2)
	if r.LinkSearch != "" {
		out = append(out, "cargo:rustc-link-search=native="+r.LinkSearch)
	}
	for _, a := range r.Archives {
		out = append(out, "cargo:rustc-link-lib=static="+a.Name)
	}
	if r.CppRuntime != "" && r.HasCpp() {
		out = append(out, "cargo:rustc-link-lib="+r.CppRuntime)
	}
	return out
}
