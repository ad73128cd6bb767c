package wire

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// encryptSubmission шифрует тело так, как это делал бы клиент.
func encryptSubmission(t *testing.T, plain, osuVersion string, iv []byte) []byte {
	t.Helper()

	block, err := aes.NewCipher(submissionKey(osuVersion))
	require.NoError(t, err)

	pad := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append([]byte(plain), bytes.Repeat([]byte{byte(pad)}, pad)...)

	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv[:aes.BlockSize]).CryptBlocks(ct, padded)
	return ct
}

func validPayload() string {
	fields := []string{
		"d41d8cd98f00b204e9800998ecf8427e", // beatmap md5
		"player one ",                      // trailing space: supporter marker
		"c0ffee00c0ffee00c0ffee00c0ffee00", // checksum
		"500", "20", "3", "90", "10", "2", // hit counts
		"1234567",  // score
		"700",      // combo
		"True",     // full combo
		"S",        // grade
		"64",       // mods (DT)
		"True",     // passed
		"0",        // mode
		"21011300", // timestamp
		"20210113", // client version
	}
	return strings.Join(fields, ":")
}

func TestDecodeSubmission_RoundTrip(t *testing.T) {
	const osuver = "20210113"
	iv := bytes.Repeat([]byte{0x2a}, 32) // клиент шлёт 32-байтный IV

	ct := encryptSubmission(t, validPayload(), osuver, iv)
	scoreB64 := []byte(base64.StdEncoding.EncodeToString(ct))
	ivB64 := []byte(base64.StdEncoding.EncodeToString(iv))

	fields, err := DecodeSubmission(scoreB64, ivB64, osuver)
	require.NoError(t, err)
	require.Len(t, fields, SubmissionFieldCount)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", fields[0])
	assert.Equal(t, "player one ", fields[1])
	assert.Equal(t, "20210113", fields[17])
}

func TestDecodeSubmission_NotBase64(t *testing.T) {
	_, err := DecodeSubmission([]byte("!!not-base64!!"), []byte("aGVsbG8="), "20210113")
	assert.ErrorIs(t, err, apperrors.ErrBadCipher)
}

func TestDecodeSubmission_WrongVersionKey(t *testing.T) {
	iv := bytes.Repeat([]byte{0x11}, 32)
	ct := encryptSubmission(t, validPayload(), "20210113", iv)
	scoreB64 := []byte(base64.StdEncoding.EncodeToString(ct))
	ivB64 := []byte(base64.StdEncoding.EncodeToString(iv))

	// другой ключ даёт мусор: либо набивка не сойдётся, либо полей не 18
	_, err := DecodeSubmission(scoreB64, ivB64, "20230101")
	assert.Error(t, err)
}

func TestDecodeSubmission_BadBlockLength(t *testing.T) {
	scoreB64 := []byte(base64.StdEncoding.EncodeToString([]byte("short")))
	ivB64 := []byte(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0}, 32)))

	_, err := DecodeSubmission(scoreB64, ivB64, "20210113")
	assert.ErrorIs(t, err, apperrors.ErrBadCipher)
}

func TestDecodeSubmission_WrongFieldCount(t *testing.T) {
	const osuver = "20210113"
	iv := bytes.Repeat([]byte{0x2a}, 32)

	ct := encryptSubmission(t, "only:three:fields", osuver, iv)
	scoreB64 := []byte(base64.StdEncoding.EncodeToString(ct))
	ivB64 := []byte(base64.StdEncoding.EncodeToString(iv))

	_, err := DecodeSubmission(scoreB64, ivB64, osuver)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

// ==========================================================================
// ParseSubmission
// ==========================================================================

func TestParseSubmission(t *testing.T) {
	fields := strings.Split(validPayload(), ":")

	sub, err := ParseSubmission(fields)
	require.NoError(t, err)

	assert.Equal(t, "player one", sub.Username) // маркерный пробел срезан
	assert.Equal(t, int64(1234567), sub.Score)
	assert.Equal(t, 700, sub.MaxCombo)
	assert.True(t, sub.FullCombo)
	assert.True(t, sub.Passed)
	assert.Equal(t, int64(64), sub.Mods)
	assert.Equal(t, 0, sub.Mode)
}

func TestParseSubmission_NonNumericField(t *testing.T) {
	fields := strings.Split(validPayload(), ":")
	fields[9] = "over9000!"

	_, err := ParseSubmission(fields)
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}

func TestParseSubmission_WrongCount(t *testing.T) {
	_, err := ParseSubmission([]string{"a", "b"})
	assert.ErrorIs(t, err, apperrors.ErrMalformed)
}
