package wire

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ClientVersion — версия клиента, проставляемая в заголовок собранного
// реплея при скачивании.
const ClientVersion = 20211103

// ticksPerSecond и unixToTicksOffset переводят unix-время в тики .NET
// (100-наносекундные интервалы от 0001-01-01).
const (
	ticksPerSecond    = 10_000_000
	unixToTicksOffset = 621_355_968_000_000_000
)

// UnixToTicks переводит unix-секунды в тики .NET.
func UnixToTicks(unix int64) int64 {
	return unix*ticksPerSecond + unixToTicksOffset
}

// ReplayHeader — заголовок полного файла реплея. Порядок и ширина полей —
// внешний контракт формата .osr.
type ReplayHeader struct {
	Mode       uint8
	Version    int32
	BeatmapMD5 string
	Username   string
	ReplayMD5  string
	Count300   int16
	Count100   int16
	Count50    int16
	CountGeki  int16
	CountKatu  int16
	CountMiss  int16
	Score      int32
	MaxCombo   int16
	FullCombo  uint8
	Mods       int32
	LifeGraph  string
	Ticks      int64
	ScoreID    int64
}

// ReplayChecksum вычисляет md5-подпись заголовка реплея. Формат строки
// исторический и намеренно странный; менять его нельзя.
func ReplayChecksum(h *ReplayHeader) string {
	fc := "false"
	if h.FullCombo != 0 {
		fc = "true"
	}
	s := fmt.Sprintf("%dp%do%do%dt%da%sr%de%sy%so%du%d%d%s",
		int(h.Count100)+int(h.Count300), h.Count50, h.CountGeki, h.CountKatu,
		h.CountMiss, h.BeatmapMD5, h.MaxCombo, fc,
		h.Username, h.Score, 0, h.Mods, "true",
	)
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// EncodeReplay собирает полный файл реплея: заголовок + длина сырого тела +
// тело + ID скора.
func EncodeReplay(h *ReplayHeader, raw []byte) []byte {
	w := NewWriter()
	w.WriteUint8(h.Mode)
	w.WriteInt32(h.Version)
	w.WriteString(h.BeatmapMD5)
	w.WriteString(h.Username)
	w.WriteString(h.ReplayMD5)
	w.WriteInt16(h.Count300)
	w.WriteInt16(h.Count100)
	w.WriteInt16(h.Count50)
	w.WriteInt16(h.CountGeki)
	w.WriteInt16(h.CountKatu)
	w.WriteInt16(h.CountMiss)
	w.WriteInt32(h.Score)
	w.WriteInt16(h.MaxCombo)
	w.WriteUint8(h.FullCombo)
	w.WriteInt32(h.Mods)
	w.WriteString(h.LifeGraph)
	w.WriteInt64(h.Ticks)
	w.WriteInt32(int32(len(raw)))
	w.WriteRaw(raw)
	w.WriteInt64(h.ScoreID)
	return w.Bytes()
}

// DecodeReplay разбирает полный файл реплея обратно на заголовок и тело.
func DecodeReplay(b []byte) (*ReplayHeader, []byte, error) {
	r := NewReader(b)
	h := &ReplayHeader{}
	var err error

	if h.Mode, err = r.ReadUint8(); err != nil {
		return nil, nil, err
	}
	if h.Version, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if h.BeatmapMD5, err = r.ReadString(); err != nil {
		return nil, nil, err
	}
	if h.Username, err = r.ReadString(); err != nil {
		return nil, nil, err
	}
	if h.ReplayMD5, err = r.ReadString(); err != nil {
		return nil, nil, err
	}
	if h.Count300, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.Count100, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.Count50, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.CountGeki, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.CountKatu, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.CountMiss, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.Score, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if h.MaxCombo, err = r.ReadInt16(); err != nil {
		return nil, nil, err
	}
	if h.FullCombo, err = r.ReadUint8(); err != nil {
		return nil, nil, err
	}
	if h.Mods, err = r.ReadInt32(); err != nil {
		return nil, nil, err
	}
	if h.LifeGraph, err = r.ReadString(); err != nil {
		return nil, nil, err
	}
	if h.Ticks, err = r.ReadInt64(); err != nil {
		return nil, nil, err
	}
	rawLen, err := r.ReadInt32()
	if err != nil {
		return nil, nil, err
	}
	raw, err := r.ReadRaw(int(rawLen))
	if err != nil {
		return nil, nil, err
	}
	if h.ScoreID, err = r.ReadInt64(); err != nil {
		return nil, nil, err
	}
	return h, raw, nil
}
