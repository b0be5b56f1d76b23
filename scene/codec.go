package scene

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxComponentSize bounds a single component image read from a file.
const maxComponentSize = 1 << 20

// Encode writes s to w.
func Encode(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	enc := encoder{w: bw}

	enc.writeBytes([]byte(Magic))
	enc.writeH(Version)
	enc.writeCount(len(s.Entities))
	for _, record := range s.Entities {
		enc.writeCount(len(record.Components))
		for _, component := range record.Components {
			enc.writeQ(component.Hash)
			enc.writeCount(len(component.Data))
			enc.writeBytes(component.Data)
		}
	}
	if enc.err != nil {
		return fmt.Errorf("encode scene: %w", enc.err)
	}
	return bw.Flush()
}

// Decode reads a scene from r.
func Decode(r io.Reader) (*Scene, error) {
	dec := decoder{r: bufio.NewReader(r)}

	magic := dec.readBytes(len(Magic))
	version := dec.readH()
	if dec.err != nil {
		return nil, dec.failure()
	}
	if string(magic) != Magic {
		return nil, FormatError{Reason: fmt.Sprintf("bad magic %q", magic)}
	}
	if version != Version {
		return nil, FormatError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}

	count := dec.readD()
	s := &Scene{}
	for i := uint32(0); i < count && dec.err == nil; i++ {
		components := dec.readD()
		record := EntityRecord{}
		for j := uint32(0); j < components && dec.err == nil; j++ {
			hash := dec.readQ()
			size := dec.readD()
			if size > maxComponentSize {
				return nil, FormatError{Reason: fmt.Sprintf("entity %d: component of %d bytes", i, size)}
			}
			data := dec.readBytes(int(size))
			record.Components = append(record.Components, ComponentRecord{Hash: hash, Data: data})
		}
		s.Entities = append(s.Entities, record)
	}
	if dec.err != nil {
		return nil, dec.failure()
	}
	return s, nil
}

// encoder writes little-endian fields and keeps the first error.
type encoder struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (e *encoder) writeBytes(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) writeH(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.writeBytes(e.buf[:2])
}

func (e *encoder) writeD(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.writeBytes(e.buf[:4])
}

func (e *encoder) writeQ(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.writeBytes(e.buf[:8])
}

func (e *encoder) writeCount(n int) {
	if uint64(n) > math.MaxUint32 {
		if e.err == nil {
			e.err = fmt.Errorf("count %d does not fit the format", n)
		}
		return
	}
	e.writeD(uint32(n))
}

// decoder reads little-endian fields and keeps the first error.
type decoder struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (d *decoder) readBytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	out := make([]byte, n)
	_, d.err = io.ReadFull(d.r, out)
	return out
}

func (d *decoder) fill(n int) bool {
	if d.err != nil {
		return false
	}
	_, d.err = io.ReadFull(d.r, d.buf[:n])
	return d.err == nil
}

func (d *decoder) readH() uint16 {
	if !d.fill(2) {
		return 0
	}
	return binary.LittleEndian.Uint16(d.buf[:2])
}

func (d *decoder) readD() uint32 {
	if !d.fill(4) {
		return 0
	}
	return binary.LittleEndian.Uint32(d.buf[:4])
}

func (d *decoder) readQ() uint64 {
	if !d.fill(8) {
		return 0
	}
	return binary.LittleEndian.Uint64(d.buf[:8])
}

func (d *decoder) failure() error {
	if errors.Is(d.err, io.EOF) || errors.Is(d.err, io.ErrUnexpectedEOF) {
		return FormatError{Reason: "truncated file"}
	}
	return fmt.Errorf("decode scene: %w", d.err)
}
