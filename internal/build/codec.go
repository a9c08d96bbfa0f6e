package build

import (
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Codec is the build-trajectory on-disk format of spec.md §9/§6: "A
// separate per-episode team-construction record not detailed further here".
// Resolved (DESIGN.md) as a zstd stream of gob-encoded Trajectory values --
// gob because it is the standard self-describing Go struct codec and the
// record shape (Steps plus an optional value pointer) is internal-only,
// unlike frame.Codec's cross-language-significant §6 byte layout, so no
// bespoke binary format is warranted; zstd to match internal/frame's
// stream wrapper so both record kinds live under the same compression
// convention.
type Codec struct{}

// NewCodec builds the (stateless) build-trajectory codec.
func NewCodec() *Codec { return &Codec{} }

// Writer appends zstd-compressed, gob-encoded trajectories to an
// underlying io.Writer. Not safe for concurrent use.
type Writer struct {
	zw  *zstd.Encoder
	enc *gob.Encoder
}

// NewWriter wraps w in a zstd-compressed gob stream.
func (c *Codec) NewWriter(w io.Writer) (*Writer, error) {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return nil, errors.Wrap(err, "build: opening zstd writer")
	}
	return &Writer{zw: zw, enc: gob.NewEncoder(zw)}, nil
}

// WriteTrajectory appends one trajectory record.
func (bw *Writer) WriteTrajectory(t Trajectory) error {
	return errors.Wrap(bw.enc.Encode(t), "build: encoding trajectory")
}

// Close flushes and closes the underlying zstd stream.
func (bw *Writer) Close() error {
	return bw.zw.Close()
}

// Reader reads zstd-compressed, gob-encoded trajectories back out, in the
// order written.
type Reader struct {
	zr  *zstd.Decoder
	dec *gob.Decoder
}

// NewReader wraps r in a zstd-compressed gob stream reader.
func (c *Codec) NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "build: opening zstd reader")
	}
	return &Reader{zr: zr, dec: gob.NewDecoder(zr)}, nil
}

// ReadTrajectory reads the next trajectory, or io.EOF once the stream is
// exhausted.
func (br *Reader) ReadTrajectory() (Trajectory, error) {
	var t Trajectory
	if err := br.dec.Decode(&t); err != nil {
		if err == io.EOF {
			return Trajectory{}, io.EOF
		}
		return Trajectory{}, errors.Wrap(err, "build: decoding trajectory")
	}
	return t, nil
}

// Close releases the underlying zstd decoder's resources.
func (br *Reader) Close() {
	br.zr.Close()
}
