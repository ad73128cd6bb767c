package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// ==========================================================================
// Бинарный контейнер
// ==========================================================================

func TestWriterReader_Integers(t *testing.T) {
	w := NewWriter()
	w.WriteUint8(0xab)
	w.WriteInt16(-12345)
	w.WriteInt32(-123456789)
	w.WriteInt64(-1234567890123)

	r := NewReader(w.Bytes())

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xab), u8)

	i16, err := r.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-12345), i16)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-123456789), i32)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-1234567890123), i64)

	assert.Equal(t, 0, r.Remaining())
}

func TestWriterReader_Strings(t *testing.T) {
	w := NewWriter()
	w.WriteString("")
	w.WriteString("hello")
	w.WriteString("привет") // multibyte

	raw := w.Bytes()
	// пустая строка — одиночный нулевой байт
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, byte(0x0b), raw[1])

	r := NewReader(raw)
	for _, want := range []string{"", "hello", "привет"} {
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestWriterReader_ULEB128LongString(t *testing.T) {
	long := make([]byte, 300) // длина не влезает в один байт ULEB128
	for i := range long {
		long[i] = 'a'
	}

	w := NewWriter()
	w.WriteString(string(long))

	r := NewReader(w.Bytes())
	got, err := r.ReadString()
	require.NoError(t, err)
	assert.Len(t, got, 300)
}

func TestReader_Truncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	_, err := r.ReadInt32()
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestReader_StringLengthExceedsRemaining(t *testing.T) {
	// 0x0b + ULEB128(2^31), дальше пусто: длина должна отбрасываться
	// до аллокации
	r := NewReader([]byte{0x0b, 0x80, 0x80, 0x80, 0x80, 0x08})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestReader_RawLengthExceedsRemaining(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})

	_, err := r.ReadRaw(1 << 30)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)

	_, err = r.ReadRaw(-1)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestReader_BadStringFlag(t *testing.T) {
	r := NewReader([]byte{0x07})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

// ==========================================================================
// Реплей
// ==========================================================================

func testHeader() *ReplayHeader {
	return &ReplayHeader{
		Mode:       0,
		Version:    ClientVersion,
		BeatmapMD5: "d41d8cd98f00b204e9800998ecf8427e",
		Username:   "peppy",
		ReplayMD5:  "0123456789abcdef0123456789abcdef",
		Count300:   512,
		Count100:   13,
		Count50:    2,
		CountGeki:  100,
		CountKatu:  7,
		CountMiss:  1,
		Score:      7_345_621,
		MaxCombo:   812,
		FullCombo:  0,
		Mods:       72, // DT|HD
		LifeGraph:  "",
		Ticks:      UnixToTicks(1_700_000_000),
		ScoreID:    424242,
	}
}

func TestReplay_RoundTrip(t *testing.T) {
	h := testHeader()
	raw := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

	b := EncodeReplay(h, raw)
	got, gotRaw, err := DecodeReplay(b)
	require.NoError(t, err)

	assert.Equal(t, h, got)
	assert.Equal(t, raw, gotRaw)
}

func TestReplay_EmptyBody(t *testing.T) {
	h := testHeader()

	b := EncodeReplay(h, nil)
	got, gotRaw, err := DecodeReplay(b)
	require.NoError(t, err)

	assert.Equal(t, h, got)
	assert.Empty(t, gotRaw)
}

func TestReplay_TruncatedHeader(t *testing.T) {
	b := EncodeReplay(testHeader(), []byte{1, 2, 3})
	_, _, err := DecodeReplay(b[:10])
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestUnixToTicks(t *testing.T) {
	// 1970-01-01 00:00:00 UTC
	assert.Equal(t, int64(621_355_968_000_000_000), UnixToTicks(0))
	assert.Equal(t, int64(621_355_968_010_000_000), UnixToTicks(1))
}

func TestReplayChecksum_Golden(t *testing.T) {
	// md5("525p2o100o7t1a<md5>r812efalseypeppyo7345621u072true"),
	// посчитанный независимо от Sprintf-порядка
	h := testHeader()
	assert.Equal(t, "dee9f1673cd6b3b79a718fa71b89cdeb", ReplayChecksum(h))
}

func TestReplayChecksum_Deterministic(t *testing.T) {
	h := testHeader()
	first := ReplayChecksum(h)
	assert.Len(t, first, 32)
	assert.Equal(t, first, ReplayChecksum(h))

	h.Score++
	assert.NotEqual(t, first, ReplayChecksum(h))
}
