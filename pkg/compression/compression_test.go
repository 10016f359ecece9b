package compression

import (
	"bytes"
	"io"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 100)

	var compressed bytes.Buffer
	if _, err := NewCompressingWriter(&compressed).Write(original); err != nil {
		t.Fatalf("compression failed: %v", err)
	}

	decompressed, err := io.ReadAll(NewDecompressingReader(bytes.NewReader(compressed.Bytes())))
	if err != nil {
		t.Fatalf("decompression failed: %v", err)
	}

	if !bytes.Equal(original, decompressed) {
		t.Fatalf("round-tripped data did not match original")
	}
}

func TestCompressionActuallyShrinksRepetitiveData(t *testing.T) {
	original := bytes.Repeat([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"), 1000)

	var compressed bytes.Buffer
	if _, err := NewCompressingWriter(&compressed).Write(original); err != nil {
		t.Fatalf("compression failed: %v", err)
	}

	if compressed.Len() >= len(original) {
		t.Fatalf("expected compressed size (%d) to be smaller than original (%d)", compressed.Len(), len(original))
	}
}
