package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// Writer последовательно собирает бинарный контейнер в формате клиента:
// целые числа little-endian, строки с байтом присутствия (0x0b + длина
// ULEB128 + UTF-8; пустая строка — одиночный 0x00).
type Writer struct {
	buf bytes.Buffer
}

// NewWriter создает новый Writer
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes возвращает накопленное содержимое.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteULEB128 записывает беззнаковое число в кодировке ULEB128.
func (w *Writer) WriteULEB128(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// WriteString записывает строку в формате клиента. Пустая строка кодируется
// одним нулевым байтом без длины.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.buf.WriteByte(0x00)
		return
	}
	w.buf.WriteByte(0x0b)
	w.WriteULEB128(uint64(len(s)))
	w.buf.WriteString(s)
}

// WriteRaw записывает сырые байты без префикса.
func (w *Writer) WriteRaw(b []byte) {
	w.buf.Write(b)
}

// Reader разбирает контейнер, собранный Writer'ом. Любое усечение данных
// оборачивается в ErrMalformed.
type Reader struct {
	buf *bytes.Reader
}

// NewReader создает новый Reader
func NewReader(b []byte) *Reader {
	return &Reader{buf: bytes.NewReader(b)}
}

// Remaining возвращает количество непрочитанных байт.
func (r *Reader) Remaining() int {
	return r.buf.Len()
}

func (r *Reader) take(n int) ([]byte, error) {
	// Длина приходит из недоверенных данных: проверяем до аллокации.
	if n < 0 || n > r.buf.Len() {
		return nil, fmt.Errorf("%w: need %d bytes, %d remain", apperrors.ErrMalformed, n, r.buf.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.buf, b); err != nil {
		return nil, fmt.Errorf("%w: truncated at %d bytes", apperrors.ErrMalformed, n)
	}
	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadInt16() (int16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// ReadULEB128 читает число в кодировке ULEB128.
func (r *Reader) ReadULEB128() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("%w: uleb128 overflow", apperrors.ErrMalformed)
		}
	}
}

// ReadString читает строку в формате клиента.
func (r *Reader) ReadString() (string, error) {
	flag, err := r.ReadUint8()
	if err != nil {
		return "", err
	}
	switch flag {
	case 0x00:
		return "", nil
	case 0x0b:
		n, err := r.ReadULEB128()
		if err != nil {
			return "", err
		}
		if n > uint64(r.Remaining()) {
			return "", fmt.Errorf("%w: string length %d exceeds remaining %d bytes", apperrors.ErrMalformed, n, r.Remaining())
		}
		b, err := r.take(int(n))
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: bad string flag 0x%02x", apperrors.ErrMalformed, flag)
	}
}

// ReadRaw читает n сырых байт.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	return r.take(n)
}
