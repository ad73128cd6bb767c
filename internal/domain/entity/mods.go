package entity

import "strings"

// Mods — битовая маска модификаторов скора. Значения битов — контракт с клиентом.
type Mods int64

const (
	ModNoMod       Mods = 0
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchscreen Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModAutoplay    Mods = 1 << 11
	ModSpunOut     Mods = 1 << 12
	ModAutopilot   Mods = 1 << 13
	ModPerfect     Mods = 1 << 14
	ModKey4        Mods = 1 << 15
	ModKey5        Mods = 1 << 16
	ModKey6        Mods = 1 << 17
	ModKey7        Mods = 1 << 18
	ModKey8        Mods = 1 << 19
	ModFadeIn      Mods = 1 << 20
	ModRandom      Mods = 1 << 21
	ModCinema      Mods = 1 << 22
	ModTarget      Mods = 1 << 23
	ModKey9        Mods = 1 << 24
	ModKeyCoop     Mods = 1 << 25
	ModKey1        Mods = 1 << 26
	ModKey3        Mods = 1 << 27
	ModKey2        Mods = 1 << 28
	ModScoreV2     Mods = 1 << 29
	ModMirror      Mods = 1 << 30

	// ModsSpeed — взаимоисключающие скоростные моды.
	ModsSpeed = ModDoubleTime | ModNightcore | ModHalfTime

	// ModsUnranked — моды, с которыми скор не попадает в рейтинг.
	ModsUnranked = ModScoreV2 | ModAutoplay | ModTarget
)

// Rankable сообщает, может ли скор с такой комбинацией модов попасть в рейтинг.
func (m Mods) Rankable() bool {
	return m&ModsUnranked == 0
}

// Conflict проверяет комбинацию на внутренне противоречивые моды.
// Легальный клиент такие комбинации собрать не может, поэтому их наличие —
// сигнал подмены сабмита.
func (m Mods) Conflict() bool {
	if m&(ModDoubleTime|ModNightcore) != 0 && m&ModHalfTime != 0 {
		return true
	}
	if m&ModRelax != 0 && m&ModAutopilot != 0 {
		return true
	}
	if m&ModEasy != 0 && m&ModHardRock != 0 {
		return true
	}
	if m&(ModSuddenDeath|ModPerfect) != 0 && m&ModNoFail != 0 {
		return true
	}
	return false
}

var modAcronyms = []struct {
	mod Mods
	str string
}{
	{ModNoFail, "NF"}, {ModEasy, "EZ"}, {ModTouchscreen, "TD"}, {ModHidden, "HD"},
	{ModHardRock, "HR"}, {ModSuddenDeath, "SD"}, {ModDoubleTime, "DT"}, {ModRelax, "RX"},
	{ModHalfTime, "HT"}, {ModNightcore, "NC"}, {ModFlashlight, "FL"}, {ModAutoplay, "AU"},
	{ModSpunOut, "SO"}, {ModAutopilot, "AP"}, {ModPerfect, "PF"}, {ModFadeIn, "FI"},
	{ModRandom, "RN"}, {ModCinema, "CN"}, {ModTarget, "TP"}, {ModScoreV2, "V2"},
	{ModMirror, "MR"},
}

// Readable возвращает строковое представление модов вида "HDDT".
func (m Mods) Readable() string {
	if m == ModNoMod {
		return "NM"
	}

	var sb strings.Builder
	for _, ma := range modAcronyms {
		if m&ma.mod != 0 {
			sb.WriteString(ma.str)
		}
	}

	res := sb.String()
	// NC подразумевает DT, PF подразумевает SD — дубль убираем.
	if m&ModNightcore != 0 {
		res = strings.Replace(res, "DT", "", 1)
	}
	if m&ModPerfect != 0 {
		res = strings.Replace(res, "SD", "", 1)
	}
	return res
}
