package meshio

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

type Codec uint8

const (
	CodecNone Codec = iota
	CodecZstd
	CodecLZ4
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	}
	return "unknown"
}

// ParseCodec maps a flag value to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "none", "":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return 0, errors.Errorf("unknown codec %q", s)
}

// lz4 spends at least one input byte per 255 output bytes.
const lz4MaxRatio = 255

// storedBound is the largest payload any codec writes for raw bytes.
func storedBound(raw int) int {
	return raw + raw/255 + 64
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxRawSize),
	)
	return dec
}

func compress(c Codec, data []byte) ([]byte, error) {
	switch c {
	case CodecNone:
		return data, nil

	case CodecZstd:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil

	case CodecLZ4:
		out := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, out, nil)
		if err != nil {
			return nil, errors.Wrap(err, "lz4")
		}
		if n == 0 {
			// несжимаемый блок храним как есть
			return nil, nil
		}
		return out[:n], nil
	}
	return nil, errors.Errorf("unknown codec %d", c)
}

func decompress(c Codec, data []byte, size int) ([]byte, error) {
	switch c {
	case CodecNone:
		return data, nil

	case CodecZstd:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		if err := dec.Reset(bytes.NewReader(data)); err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		// на один байт больше: лишние данные Load распознает по длине
		out, err := io.ReadAll(io.LimitReader(dec, int64(size)+1))
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return out, nil

	case CodecLZ4:
		if size > lz4MaxRatio*len(data)+16 {
			return nil, errors.Wrapf(ErrOversized, "lz4 block of %d bytes cannot expand to %d", len(data), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, errors.Wrap(err, "lz4")
		}
		return out[:n], nil
	}
	return nil, errors.Errorf("unknown codec %d", c)
}
