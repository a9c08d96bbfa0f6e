// Package frame implements the compressed episode format of spec.md §4.6
// and §6 (C6): one variable-length record per self-play episode, each
// consisting of a fixed header, the opaque serialized engine state the
// episode started from, the terminal result, and one entry per turn
// ("Update") recording the joint action taken and the search statistics
// that justified it.
//
// The byte layout is exactly spec.md §6's table; the whole stream (not
// each record individually) is wrapped in a github.com/klauspost/compress/zstd
// stream, per DESIGN.md's recorded resolution of spec.md's unspecified
// "compressed" qualifier -- that library is already in the example pack,
// surfaced by perplext-LLMrecon's bundle/compression.go.
package frame

import (
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Update is one turn's recorded search output, spec.md §6's `update`
// struct.
type Update struct {
	C1, C2     engine.ActionToken
	Iterations uint32

	EmpiricalV, NashV float32 // P1's perspective, in [0, 1].

	P1Empirical, P1Nash []float32 // length m, each in [0, 1], summing to ~1.
	P2Empirical, P2Nash []float32 // length n.
}

// Record is one completed episode.
type Record struct {
	// EngineState is the opaque, engine-serialized initial state the
	// episode started from; its length must equal the Codec's StateSize.
	EngineState []byte
	Result      engine.Result
	Updates     []Update
}

// Codec fixes the one engine-specific parameter the format needs: the
// serialized engine state's byte width (S in spec.md §6; reference.StateSize,
// 162, for internal/engine/reference). Everything else in the layout is
// self-describing.
type Codec struct {
	StateSize int
}

// NewCodec builds a Codec for engine states of the given fixed byte width.
func NewCodec(stateSize int) *Codec {
	return &Codec{StateSize: stateSize}
}

// Writer appends zstd-compressed records to an underlying io.Writer. Not
// safe for concurrent use; spec.md §4.7 assigns one Writer per worker.
type Writer struct {
	codec *Codec
	zw    *zstd.Encoder
}

// NewWriter wraps w in a zstd encoder stream ready to accept records.
func (c *Codec) NewWriter(w io.Writer) (*Writer, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errors.Wrap(err, "frame: opening zstd writer")
	}
	return &Writer{codec: c, zw: zw}, nil
}

// Close flushes and closes the underlying zstd stream. It does not close
// the wrapped io.Writer.
func (fw *Writer) Close() error {
	return fw.zw.Close()
}

// WriteRecord appends one episode record.
func (fw *Writer) WriteRecord(rec Record) error {
	body, err := fw.codec.encodeBody(rec)
	if err != nil {
		return err
	}
	offset := uint32(4 + len(body))
	if err := binary.Write(fw.zw, binary.LittleEndian, offset); err != nil {
		return errors.Wrap(err, "frame: writing record offset")
	}
	if _, err := fw.zw.Write(body); err != nil {
		return errors.Wrap(err, "frame: writing record body")
	}
	return nil
}

// Reader reads zstd-compressed records back out, in the order written.
type Reader struct {
	codec *Codec
	zr    *zstd.Decoder
}

// NewReader wraps r in a zstd decoder stream ready to yield records.
func (c *Codec) NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "frame: opening zstd reader")
	}
	return &Reader{codec: c, zr: zr}, nil
}

// Close releases the underlying zstd decoder's resources. It does not
// close the wrapped io.Reader.
func (fr *Reader) Close() {
	fr.zr.Close()
}

// ReadRecord reads the next record, or returns io.EOF once the stream is
// exhausted cleanly between records.
func (fr *Reader) ReadRecord() (Record, error) {
	var offset uint32
	if err := binary.Read(fr.zr, binary.LittleEndian, &offset); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrap(err, "frame: reading record offset")
	}
	if offset < 4 {
		return Record{}, errors.Errorf("frame: record offset %d smaller than header", offset)
	}
	body := make([]byte, offset-4)
	if _, err := io.ReadFull(fr.zr, body); err != nil {
		return Record{}, errors.Wrap(err, "frame: reading record body")
	}
	return fr.codec.decodeBody(body)
}

// SkipRecord advances past the next record without decoding it, using the
// offset header to skip rather than parse -- spec.md §4.6: "the record
// length is written at its head so a decoder can skip records without
// parsing them".
func (fr *Reader) SkipRecord() error {
	var offset uint32
	if err := binary.Read(fr.zr, binary.LittleEndian, &offset); err != nil {
		return err
	}
	if offset < 4 {
		return errors.Errorf("frame: record offset %d smaller than header", offset)
	}
	_, err := io.CopyN(io.Discard, fr.zr, int64(offset-4))
	return err
}
