package deflate

import (
	"bytes"
	"io"
	"testing"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestRoundTripCompressesAndDecompresses(t *testing.T) {
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 100)

	var compressed bytes.Buffer
	wc, err := New().WrapWriter(nopWriteCloser{&compressed})
	if err != nil {
		t.Fatalf("WrapWriter: %v", err)
	}
	if _, err := wc.Write(original); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if compressed.Len() >= len(original) {
		t.Errorf("compressed size %d not smaller than original %d", compressed.Len(), len(original))
	}

	rc, err := New().WrapReader(io.NopCloser(bytes.NewReader(compressed.Bytes())))
	if err != nil {
		t.Fatalf("WrapReader: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Error("decompressed output does not match original")
	}
}

func TestNewLevelRoundTrips(t *testing.T) {
	original := []byte("short payload")
	var compressed bytes.Buffer
	wc, err := NewLevel(1).WrapWriter(nopWriteCloser{&compressed})
	if err != nil {
		t.Fatalf("WrapWriter: %v", err)
	}
	if _, err := wc.Write(original); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rc, err := New().WrapReader(io.NopCloser(bytes.NewReader(compressed.Bytes())))
	if err != nil {
		t.Fatalf("WrapReader: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Error("decompressed output does not match original")
	}
}
