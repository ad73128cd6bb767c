package service

import (
	"log"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
)

// AchievementService проверяет табличные условия ачивок после успешного
// сабмита. Условия хранятся данными, а не исполняемыми выражениями.
type AchievementService struct {
	repo repository.AchievementRepository
}

// NewAchievementService создает новый сервис ачивок
func NewAchievementService(repo repository.AchievementRepository) *AchievementService {
	return &AchievementService{repo: repo}
}

// CheckOnSubmit возвращает ачивки, открытые этим скором, помечая их открытыми.
// Повторное открытие невозможно: уже открытые пропускаются.
func (s *AchievementService) CheckOnSubmit(score *entity.Score, stats *entity.Stats) ([]entity.Achievement, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	unlockedIDs, err := s.repo.UnlockedIDs(score.UserID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[uint]struct{}, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = struct{}{}
	}

	var fresh []entity.Achievement
	for _, a := range all {
		if _, ok := unlocked[a.ID]; ok {
			continue
		}
		if !evaluate(a.Conditions, score, stats) {
			continue
		}
		if err := s.repo.Unlock(score.UserID, a.ID); err != nil {
			log.Printf("[AchievementService] Не удалось открыть ачивку %d игроку %d: %v",
				a.ID, score.UserID, err)
			continue
		}
		fresh = append(fresh, a)
	}
	return fresh, nil
}

// evaluate проверяет условия ачивки: условия одной группы объединяются по И,
// группы — по ИЛИ. Ачивка без условий не открывается никогда.
func evaluate(conditions []entity.AchievementCondition, score *entity.Score, stats *entity.Stats) bool {
	if len(conditions) == 0 {
		return false
	}

	groups := make(map[int]bool)
	for _, c := range conditions {
		pass, known := groups[c.Grp]
		if !known {
			pass = true
		}
		groups[c.Grp] = pass && holds(c, score, stats)
	}

	for _, pass := range groups {
		if pass {
			return true
		}
	}
	return false
}

func holds(c entity.AchievementCondition, score *entity.Score, stats *entity.Stats) bool {
	val, ok := fieldValue(c.Field, score, stats)
	if !ok {
		return false
	}

	switch c.Op {
	case entity.OpGte:
		return val >= c.Value
	case entity.OpLte:
		return val <= c.Value
	case entity.OpEq:
		return val == c.Value
	case entity.OpHasBit:
		return int64(val)&int64(c.Value) != 0
	default:
		return false
	}
}

func fieldValue(f entity.ConditionField, score *entity.Score, stats *entity.Stats) (float64, bool) {
	switch f {
	case entity.FieldPP:
		return score.PP, true
	case entity.FieldAccuracy:
		return score.Accuracy, true
	case entity.FieldMaxCombo:
		return float64(score.MaxCombo), true
	case entity.FieldMods:
		return float64(score.Mods), true
	case entity.FieldMode:
		return float64(score.PlayMode), true
	case entity.FieldPlaycount:
		return float64(stats.Playcount), true
	case entity.FieldFullCombo:
		if score.FullCombo {
			return 1, true
		}
		return 0, true
	case entity.FieldStatsPP:
		return stats.PP, true
	default:
		return 0, false
	}
}
