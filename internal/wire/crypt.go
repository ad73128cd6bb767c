package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// submissionKeyPrefix — префикс версионного ключа, которым клиент шифрует
// тело отправки. Ключ зависит от версии клиента.
const submissionKeyPrefix = "osu!-scoreburgr---------"

// SubmissionFieldCount — ожидаемое число полей расшифрованного тела.
const SubmissionFieldCount = 18

// submissionKey выводит 32-байтный ключ из версии клиента.
func submissionKey(osuVersion string) []byte {
	sum := sha256.Sum256([]byte(submissionKeyPrefix + osuVersion))
	return sum[:]
}

// DecodeSubmission расшифровывает тело отправки скора: base64 -> AES-256-CBC
// -> PKCS7 -> разбиение по двоеточиям. Возвращает ровно SubmissionFieldCount
// полей либо ошибку; частично расшифрованные данные наружу не отдаются.
//
// ErrBadCipher — дефект шифротекста (base64, размер блока, набивка),
// ErrMalformed — валидный шифротекст с неожиданным числом полей.
func DecodeSubmission(scoreB64, ivB64 []byte, osuVersion string) ([]string, error) {
	ct, err := base64.StdEncoding.DecodeString(string(scoreB64))
	if err != nil {
		return nil, fmt.Errorf("%w: score data is not base64", apperrors.ErrBadCipher)
	}
	iv, err := base64.StdEncoding.DecodeString(string(ivB64))
	if err != nil {
		return nil, fmt.Errorf("%w: iv is not base64", apperrors.ErrBadCipher)
	}

	plain, err := decryptCBC(ct, iv, submissionKey(osuVersion))
	if err != nil {
		return nil, err
	}

	fields := strings.Split(string(plain), ":")
	if len(fields) != SubmissionFieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d",
			apperrors.ErrMalformed, SubmissionFieldCount, len(fields))
	}
	return fields, nil
}

func decryptCBC(ct, iv, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBadCipher, err)
	}
	if len(iv) < aes.BlockSize {
		return nil, fmt.Errorf("%w: iv shorter than block size", apperrors.ErrBadCipher)
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a multiple of block size",
			apperrors.ErrBadCipher, len(ct))
	}

	plain := make([]byte, len(ct))
	// клиент шлёт 32-байтный IV (блок Rijndael-256); AES использует первые 16
	cipher.NewCBCDecrypter(block, iv[:aes.BlockSize]).CryptBlocks(plain, ct)

	return pkcs7Unpad(plain, aes.BlockSize)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", apperrors.ErrBadCipher)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding length %d", apperrors.ErrBadCipher, n)
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("%w: inconsistent padding", apperrors.ErrBadCipher)
		}
	}
	return b[:len(b)-n], nil
}
