package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// EncodeAll and DecodeAll are safe for concurrent use, so one coder of each
// kind serves every connection. Zero frames keep empty text from encoding
// to a nil blob.
var (
	blobEncoder, _ = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithZeroFrames(true),
	)
	blobDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

func compressText(s string) []byte {
	return blobEncoder.EncodeAll([]byte(s), nil)
}

func decompressText(b []byte) (string, error) {
	out, err := blobDecoder.DecodeAll(b, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decompress blob: %w", err)
	}
	return string(out), nil
}
