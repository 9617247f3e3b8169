package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Kind identifies the payload carried by a frame.
type Kind uint8

const (
	KindHello Kind = iota + 1
	KindSegment
	KindTrace
)

const (
	flagZstd = 1 << 0

	frameHeaderSize = 6
	maxFrameSize    = 1 << 30

	// CompressThreshold is the payload size above which frames are zstd
	// compressed. Boundary rows of similar sequences compress well.
	CompressThreshold = 4 << 10
)

var errFrameTooLarge = errors.New("transport: frame exceeds size limit")

var (
	encoderPool = sync.Pool{
		New: func() any {
			e, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
			return e
		},
	}
	decoderPool = sync.Pool{
		New: func() any {
			d, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxFrameSize))
			return d
		},
	}
)

// WriteFrame writes one frame: kind, flags, big-endian payload length, payload.
func WriteFrame(w io.Writer, kind Kind, payload []byte, compress bool) error {
	var flags uint8
	if compress && len(payload) >= CompressThreshold {
		enc := encoderPool.Get().(*zstd.Encoder)
		payload = enc.EncodeAll(payload, make([]byte, 0, len(payload)/2))
		encoderPool.Put(enc)
		flags |= flagZstd
	}
	if len(payload) > maxFrameSize {
		return errFrameTooLarge
	}
	var hdr [frameHeaderSize]byte
	hdr[0] = byte(kind)
	hdr[1] = flags
	binary.BigEndian.PutUint32(hdr[2:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one frame and returns its kind and decompressed payload.
func ReadFrame(r io.Reader) (Kind, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	size := binary.BigEndian.Uint32(hdr[2:])
	if size > maxFrameSize {
		return 0, nil, errFrameTooLarge
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	if hdr[1]&flagZstd != 0 {
		dec := decoderPool.Get().(*zstd.Decoder)
		out, err := dec.DecodeAll(payload, nil)
		decoderPool.Put(dec)
		if err != nil {
			return 0, nil, fmt.Errorf("transport: decompress frame: %w", err)
		}
		payload = out
	}
	return Kind(hdr[0]), payload, nil
}

// EncodeSegment serialises a boundary segment.
func EncodeSegment(seg Segment) []byte {
	buf := make([]byte, 12+4*len(seg.Values))
	binary.LittleEndian.PutUint32(buf[0:], seg.Row)
	binary.LittleEndian.PutUint32(buf[4:], seg.Start)
	binary.LittleEndian.PutUint32(buf[8:], uint32(len(seg.Values)))
	for i, v := range seg.Values {
		binary.LittleEndian.PutUint32(buf[12+4*i:], v)
	}
	return buf
}

// DecodeSegment parses a payload produced by EncodeSegment.
func DecodeSegment(p []byte) (Segment, error) {
	if len(p) < 12 {
		return Segment{}, fmt.Errorf("transport: segment payload too short (%d bytes)", len(p))
	}
	seg := Segment{
		Row:   binary.LittleEndian.Uint32(p[0:]),
		Start: binary.LittleEndian.Uint32(p[4:]),
	}
	count := int(binary.LittleEndian.Uint32(p[8:]))
	if len(p) != 12+4*count {
		return Segment{}, fmt.Errorf("transport: segment declares %d values in %d bytes", count, len(p))
	}
	seg.Values = make([]uint32, count)
	for i := range seg.Values {
		seg.Values[i] = binary.LittleEndian.Uint32(p[12+4*i:])
	}
	return seg, nil
}

// EncodeTrace serialises a backtrace handoff.
func EncodeTrace(tr Trace) []byte {
	buf := make([]byte, 8+len(tr.Suffix))
	binary.LittleEndian.PutUint32(buf[0:], tr.Column)
	binary.LittleEndian.PutUint32(buf[4:], tr.Length)
	copy(buf[8:], tr.Suffix)
	return buf
}

// DecodeTrace parses a payload produced by EncodeTrace.
func DecodeTrace(p []byte) (Trace, error) {
	if len(p) < 8 {
		return Trace{}, fmt.Errorf("transport: trace payload too short (%d bytes)", len(p))
	}
	return Trace{
		Column: binary.LittleEndian.Uint32(p[0:]),
		Length: binary.LittleEndian.Uint32(p[4:]),
		Suffix: append([]byte(nil), p[8:]...),
	}, nil
}
