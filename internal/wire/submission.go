package wire

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/yourusername/score-api/internal/pkg/errors"
)

// Submission — типизированное тело отправки скора. Индексы полей —
// внешний контракт клиента.
type Submission struct {
	BeatmapMD5 string
	Username   string // без маркерного пробела саппортера
	Checksum   string
	Count300   int
	Count100   int
	Count50    int
	CountGeki  int
	CountKatu  int
	CountMiss  int
	Score      int64
	MaxCombo   int
	FullCombo  bool
	Grade      string
	Mods       int64
	Passed     bool
	Mode       int
	Timestamp  int64
	ClientVer  string
}

// ParseSubmission превращает расшифрованные поля в типизированную структуру.
// Любое нечисловое значение в числовом поле — ErrMalformed.
func ParseSubmission(fields []string) (*Submission, error) {
	if len(fields) != SubmissionFieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d",
			apperrors.ErrMalformed, SubmissionFieldCount, len(fields))
	}

	ints := make([]int64, SubmissionFieldCount)
	for _, i := range []int{3, 4, 5, 6, 7, 8, 9, 10, 13, 15, 16} {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d is not numeric: %q",
				apperrors.ErrMalformed, i, fields[i])
		}
		ints[i] = v
	}

	return &Submission{
		BeatmapMD5: fields[0],
		Username:   strings.TrimRight(fields[1], " "),
		Checksum:   fields[2],
		Count300:   int(ints[3]),
		Count100:   int(ints[4]),
		Count50:    int(ints[5]),
		CountGeki:  int(ints[6]),
		CountKatu:  int(ints[7]),
		CountMiss:  int(ints[8]),
		Score:      ints[9],
		MaxCombo:   int(ints[10]),
		FullCombo:  parseBool(fields[11]),
		Grade:      fields[12],
		Mods:       ints[13],
		Passed:     parseBool(fields[14]),
		Mode:       int(ints[15]),
		Timestamp:  ints[16],
		ClientVer:  fields[17],
	}, nil
}

func parseBool(s string) bool {
	return s == "True" || s == "true" || s == "1"
}
