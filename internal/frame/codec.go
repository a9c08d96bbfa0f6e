package frame

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// quantScale is the fixed-point scale spec.md §6 uses for every probability
// and value field: "quantize x ∈ [0,1] as round(x · 65535)".
const quantScale = 65535

// quantize rounds x (assumed in [0,1]) to a u16, bumping a strictly
// positive input that would otherwise round to zero up to 1, per spec.md
// §6: "probabilities that are strictly positive must quantize to at least
// 1".
func quantize(x float32) uint16 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return quantScale
	}
	v := uint16(x*quantScale + 0.5)
	if v == 0 {
		v = 1
	}
	return v
}

func dequantize(v uint16) float32 {
	return float32(v) / quantScale
}

// encodeBody writes everything after the offset header: frame_count,
// engine_state, result, and each update.
func (c *Codec) encodeBody(rec Record) ([]byte, error) {
	if len(rec.EngineState) != c.StateSize {
		return nil, errors.Errorf("frame: engine state is %d bytes, want %d", len(rec.EngineState), c.StateSize)
	}
	if len(rec.Updates) > 0xFFFF {
		return nil, errors.Errorf("frame: %d updates exceeds the u16 frame_count limit", len(rec.Updates))
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint16(len(rec.Updates))); err != nil {
		return nil, errors.Wrap(err, "frame: writing frame_count")
	}
	buf.Write(rec.EngineState)
	if err := buf.WriteByte(byte(rec.Result)); err != nil {
		return nil, errors.Wrap(err, "frame: writing result")
	}

	for idx, u := range rec.Updates {
		if err := encodeUpdate(&buf, u); err != nil {
			return nil, errors.Wrapf(err, "frame: encoding update %d", idx)
		}
	}
	return buf.Bytes(), nil
}

func encodeUpdate(buf *bytes.Buffer, u Update) error {
	m, n := len(u.P1Empirical), len(u.P2Empirical)
	if m < 1 || m > engine.MaxActions || n < 1 || n > engine.MaxActions {
		return errors.Errorf("frame: update has (m,n)=(%d,%d), outside [1,%d]", m, n, engine.MaxActions)
	}
	if len(u.P1Nash) != m || len(u.P2Nash) != n {
		return errors.New("frame: nash policy length does not match empirical policy length")
	}

	mn := byte(m-1) | byte(n-1)<<4
	buf.WriteByte(mn)
	buf.WriteByte(byte(u.C1))
	buf.WriteByte(byte(u.C2))
	if err := binary.Write(buf, binary.LittleEndian, u.Iterations); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, quantize(u.EmpiricalV)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, quantize(u.NashV)); err != nil {
		return err
	}
	for _, probs := range [][]float32{u.P1Empirical, u.P1Nash, u.P2Empirical, u.P2Nash} {
		for _, p := range probs {
			if err := binary.Write(buf, binary.LittleEndian, quantize(p)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Codec) decodeBody(body []byte) (Record, error) {
	r := bytes.NewReader(body)

	var frameCount uint16
	if err := binary.Read(r, binary.LittleEndian, &frameCount); err != nil {
		return Record{}, errors.Wrap(err, "frame: reading frame_count")
	}

	state := make([]byte, c.StateSize)
	if _, err := io.ReadFull(r, state); err != nil {
		return Record{}, errors.Wrap(err, "frame: reading engine_state")
	}

	resultByte, err := r.ReadByte()
	if err != nil {
		return Record{}, errors.Wrap(err, "frame: reading result")
	}

	rec := Record{EngineState: state, Result: engine.Result(resultByte), Updates: make([]Update, frameCount)}
	for i := 0; i < int(frameCount); i++ {
		u, err := decodeUpdate(r)
		if err != nil {
			return Record{}, errors.Wrapf(err, "frame: decoding update %d", i)
		}
		rec.Updates[i] = u
	}
	return rec, nil
}

func decodeUpdate(r *bytes.Reader) (Update, error) {
	mn, err := r.ReadByte()
	if err != nil {
		return Update{}, err
	}
	m := int(mn&0x0F) + 1
	n := int(mn>>4) + 1

	c1, err := r.ReadByte()
	if err != nil {
		return Update{}, err
	}
	c2, err := r.ReadByte()
	if err != nil {
		return Update{}, err
	}

	var iterations uint32
	if err := binary.Read(r, binary.LittleEndian, &iterations); err != nil {
		return Update{}, err
	}
	var empiricalV, nashV uint16
	if err := binary.Read(r, binary.LittleEndian, &empiricalV); err != nil {
		return Update{}, err
	}
	if err := binary.Read(r, binary.LittleEndian, &nashV); err != nil {
		return Update{}, err
	}

	u := Update{
		C1:         engine.ActionToken(c1),
		C2:         engine.ActionToken(c2),
		Iterations: iterations,
		EmpiricalV: dequantize(empiricalV),
		NashV:      dequantize(nashV),
	}
	for _, dst := range []*[]float32{&u.P1Empirical, &u.P1Nash} {
		probs, err := readProbs(r, m)
		if err != nil {
			return Update{}, err
		}
		*dst = probs
	}
	for _, dst := range []*[]float32{&u.P2Empirical, &u.P2Nash} {
		probs, err := readProbs(r, n)
		if err != nil {
			return Update{}, err
		}
		*dst = probs
	}
	return u, nil
}

func readProbs(r *bytes.Reader, count int) ([]float32, error) {
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		out[i] = dequantize(v)
	}
	return out, nil
}
