package entity

// Mode представляет базовый игровой режим (ruleset) клиента.
type Mode int

const (
	ModeStd Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

var modeStatsSuffix = [...]string{"std", "taiko", "ctb", "mania"}

// Valid проверяет, что значение режима пришло от клиента в допустимом диапазоне.
func (m Mode) Valid() bool {
	return m >= ModeStd && m <= ModeMania
}

// StatsSuffix возвращает суффикс режима, используемый в ключах Redis
// и названиях статистик. Формат ключей — внешний контракт со стеком ripple.
func (m Mode) StatsSuffix() string {
	if !m.Valid() {
		return "std"
	}
	return modeStatsSuffix[m]
}

func (m Mode) String() string {
	switch m {
	case ModeStd:
		return "osu!std"
	case ModeTaiko:
		return "osu!taiko"
	case ModeCatch:
		return "osu!catch"
	case ModeMania:
		return "osu!mania"
	}
	return "unknown"
}

// Variant представляет семейство ассист-модов, образующее отдельный пул
// рейтинга поверх базового режима (vanilla / relax / autopilot).
type Variant int

const (
	VariantVanilla Variant = iota
	VariantRelax
	VariantAutopilot
)

// FromMods выводит вариант из битовой маски модов скора.
func VariantFromMods(mods Mods) Variant {
	if mods&ModRelax != 0 {
		return VariantRelax
	}
	if mods&ModAutopilot != 0 {
		return VariantAutopilot
	}
	return VariantVanilla
}

// UsesPP сообщает, сортируется ли лидерборд этого варианта по performance-значению
// (relax/autopilot) или по сырым очкам (vanilla).
func (v Variant) UsesPP() bool {
	return v != VariantVanilla
}

// RedisBoard возвращает имя глобального рейтингового индекса в Redis.
// Ключи вида ripple:<board>:<suffix>[:<country>] — внешний контракт.
func (v Variant) RedisBoard() string {
	switch v {
	case VariantRelax:
		return "relaxboard"
	case VariantAutopilot:
		return "autoboard"
	default:
		return "leaderboard"
	}
}

func (v Variant) String() string {
	switch v {
	case VariantRelax:
		return "relax"
	case VariantAutopilot:
		return "autopilot"
	default:
		return "vanilla"
	}
}

// CompletionState — классификация результата плея.
// Значения совпадают с колонкой completed в таблице скоров и не могут меняться.
type CompletionState int

const (
	StateQuit      CompletionState = 0
	StateFailed    CompletionState = 1
	StateSubmitted CompletionState = 2
	StateBest      CompletionState = 3
)

// Passed сообщает, доиграл ли игрок карту до конца.
func (s CompletionState) Passed() bool {
	return s >= StateSubmitted
}

// RankedStatus — статус карты в системе ранкинга.
type RankedStatus int

const (
	StatusPending   RankedStatus = 0
	StatusUpdateAvl RankedStatus = 1
	StatusRanked    RankedStatus = 2
	StatusApproved  RankedStatus = 3
	StatusQualified RankedStatus = 4
	StatusLoved     RankedStatus = 5
)

// HasLeaderboard сообщает, ведёт ли карта лидерборд.
func (s RankedStatus) HasLeaderboard() bool {
	return s >= StatusRanked
}

// GivesPP сообщает, идут ли скоры на карте в расчёт взвешенного агрегата.
func (s RankedStatus) GivesPP() bool {
	return s == StatusRanked || s == StatusApproved
}

// Privileges — битовая маска привилегий игрока.
type Privileges int64

const (
	PrivPublic    Privileges = 1 << 0
	PrivNormal    Privileges = 1 << 1
	PrivDonor     Privileges = 1 << 2
	PrivAdmin     Privileges = 1 << 3
	PrivWhitelist Privileges = 1 << 4
)

// IsRestricted сообщает, ограничен ли игрок (скрыт со всех лидербордов).
func (p Privileges) IsRestricted() bool {
	return p&PrivPublic == 0
}

// LeaderboardType — тип запрошенного клиентом лидерборда.
// Значения приходят с клиента как есть и не могут меняться.
type LeaderboardType int

const (
	LBTypeLocal   LeaderboardType = 0
	LBTypeTop     LeaderboardType = 1
	LBTypeMods    LeaderboardType = 2
	LBTypeFriends LeaderboardType = 3
	LBTypeCountry LeaderboardType = 4
)
