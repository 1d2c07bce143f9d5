package drc

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxLZ4Ratio bounds how far an lz4 block can expand: one literal-length
// byte of 255 is the densest encoding.
const maxLZ4Ratio = 255

// zstdLevel maps the encoder speed onto a zstd encoder level.
func zstdLevel(speed int) zstd.EncoderLevel {
	switch {
	case speed >= 6:
		return zstd.SpeedFastest
	case speed >= 3:
		return zstd.SpeedDefault
	case speed >= 1:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// compressBody applies method to body. When compression does not shrink the
// body it is stored as is and MethodStored is returned.
func compressBody(body []byte, method Method, encodeSpeed int) ([]byte, Method, error) {
	if len(body) == 0 {
		return body, MethodStored, nil
	}

	var compressed []byte
	switch method {
	case MethodLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(body)))
		n, err := lz4.CompressBlock(body, buf, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case MethodZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel(encodeSpeed)))
		if err != nil {
			return nil, 0, fmt.Errorf("zstd writer: %w", err)
		}
		compressed = enc.EncodeAll(body, nil)
		enc.Close()
	default:
		return body, MethodStored, nil
	}

	// lz4 reports incompressible input with n == 0
	if len(compressed) == 0 || len(compressed) >= len(body) {
		return body, MethodStored, nil
	}
	return compressed, method, nil
}

// decompressBody reverses compressBody. bodyLen is the uncompressed size
// recorded in the header.
func decompressBody(payload []byte, method Method, bodyLen uint32) ([]byte, error) {
	switch method {
	case MethodStored:
		if uint32(len(payload)) != bodyLen {
			return nil, fmt.Errorf("%w: stored body is %d bytes, header says %d", ErrCorrupt, len(payload), bodyLen)
		}
		return payload, nil

	case MethodLZ4:
		out := make([]byte, bodyLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint32(n) != bodyLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	case MethodZstd:
		var fh zstd.Header
		if err := fh.Decode(payload); err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if fh.HasFCS && fh.FrameContentSize != uint64(bodyLen) {
			return nil, fmt.Errorf("%w: zstd frame holds %d bytes, header says %d", ErrCorrupt, fh.FrameContentSize, bodyLen)
		}

		// The decoder never grows its output past the size the header promises.
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(max(bodyLen, 1))),
		)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()

		out, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint32(len(out)) != bodyLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown method %d", ErrCorrupt, method)
	}
}
