package buildrecord

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func sample() *Record {
	return &Record{
		Triple:         "x86_64-unknown-linux-gnu",
		PointerWidth:   64,
		Family:         "gnu",
		HasInt128:      true,
		Representation: "wide",
		Archives: []Archive{
			{Name: "secp256k1", File: "libsecp256k1.a", Units: 3},
			{Name: "dogecoinconsensus", File: "libdogecoinconsensus.a", Units: 21, Cpp: true},
		},
		LinkSearch: "/out",
		CppRuntime: "stdc++",
		Warnings:   []string{"something"},
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	rec := sample()
	path, err := Write(dir, rec)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("path = %q", path)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Schema != SchemaVersion {
		t.Fatalf("schema = %d", got.Schema)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("Read = %+v, want %+v", got, rec)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestReadRejectsOtherSchema(t *testing.T) {
	dir := t.TempDir()
	rec := sample()
	rec.Schema = SchemaVersion + 1
	data, err := msgpack.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	path := Path(dir)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrSchema) {
		t.Fatalf("Read err = %v, want ErrSchema", err)
	}
}

func TestDirectives(t *testing.T) {
	got := sample().Directives()
	want := []string{
		"cargo:rustc-link-search=native=/out",
		"cargo:rustc-link-lib=static=secp256k1",
		"cargo:rustc-link-lib=static=dogecoinconsensus",
		"cargo:rustc-link-lib=stdc++",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Directives() = %q, want %q", got, want)
	}

	rec := sample()
	rec.CppRuntime = ""
	if got := rec.Directives(); len(got) != 3 {
		t.Fatalf("no runtime: %q", got)
	}
	rec = sample()
	rec.Archives = rec.Archives[:1]
	for _, d := range rec.Directives() {
		if d == "cargo:rustc-link-lib=stdc++" {
			t.Fatalf("runtime linked without a C++ archive")
		}
	}
}

func TestUnits(t *testing.T) {
	if n, err := Units(21); err != nil || n != 21 {
		t.Fatalf("Units(21) = %d, %v", n, err)
	}
	if _, err := Units(-1); err == nil {
		t.Fatalf("Units(-1) succeeded")
	}
}
