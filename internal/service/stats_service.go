package service

import (
	"context"
	"log"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
)

// StatsService пересчитывает агрегатную статистику игроков и поддерживает
// глобальный рейтинговый индекс в актуальном состоянии.
type StatsService struct {
	scoreRepo repository.ScoreRepository
	statsRepo repository.StatsRepository
	rankRepo  repository.RankIndexRepository
}

// NewStatsService создает новый сервис статистики
func NewStatsService(
	scoreRepo repository.ScoreRepository,
	statsRepo repository.StatsRepository,
	rankRepo repository.RankIndexRepository,
) *StatsService {
	return &StatsService{
		scoreRepo: scoreRepo,
		statsRepo: statsRepo,
		rankRepo:  rankRepo,
	}
}

// Fetch возвращает статистику игрока вместе с живыми местами из индекса.
func (s *StatsService) Fetch(ctx context.Context, user *entity.User, mode entity.Mode, variant entity.Variant) (*entity.Stats, error) {
	stats, err := s.statsRepo.Fetch(user.ID, mode, variant)
	if err != nil {
		return nil, err
	}

	stats.Rank, err = s.rankRepo.GlobalRank(ctx, user.ID, mode, variant)
	if err != nil {
		return nil, err
	}
	stats.CountryRank, err = s.rankRepo.CountryRank(ctx, user.ID, mode, variant, user.Country)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecalcPerformance пересчитывает взвешенные pp и точность игрока.
// newScorePP — pp только что принятого BEST-скора; replacedBest — заменил ли
// он предыдущий BEST (иначе число рейтинговых скоров выросло на один).
// Если окно взвешивания заполнено и новый скор ниже его дна, взвешенная
// сумма не меняется — пересчитывается только бонусное слагаемое.
func (s *StatsService) RecalcPerformance(stats *entity.Stats, newScorePP float64, replacedBest bool) error {
	count, err := s.scoreRepo.CountRankedBest(stats.UserID, stats.Mode, stats.Variant, bonusCountCap)
	if err != nil {
		return err
	}

	values, err := s.scoreRepo.TopBestValues(stats.UserID, stats.Mode, stats.Variant, aggregateWindow)
	if err != nil {
		return err
	}

	if CanSkipResort(values, newScorePP) && !replacedBest {
		// взвешенная часть доказуемо прежняя: скор не вошел в окно и ничего
		// из него не вытеснил; изменился только счетчик бонуса
		oldCount := count - 1
		stats.PP = stats.PP - BonusPP(oldCount) + BonusPP(count)
		log.Printf("[StatsService] Пересчет для %d (режим %d, вариант %d): только бонус, окно не задето",
			stats.UserID, stats.Mode, stats.Variant)
		return nil
	}

	weightedPP, accuracy := WeightedPerformance(values)
	stats.PP = weightedPP + BonusPP(count)
	stats.Accuracy = accuracy
	return nil
}

// Save сохраняет статистику в БД.
func (s *StatsService) Save(stats *entity.Stats) error {
	return s.statsRepo.Save(stats)
}

// UpdateRankIndex записывает агрегат игрока в глобальный индекс и индекс
// страны, затем перечитывает живые места.
func (s *StatsService) UpdateRankIndex(ctx context.Context, user *entity.User, stats *entity.Stats) error {
	if err := s.rankRepo.Set(ctx, user.ID, stats.Mode, stats.Variant, user.Country, stats.PP); err != nil {
		return err
	}

	var err error
	stats.Rank, err = s.rankRepo.GlobalRank(ctx, user.ID, stats.Mode, stats.Variant)
	if err != nil {
		return err
	}
	stats.CountryRank, err = s.rankRepo.CountryRank(ctx, user.ID, stats.Mode, stats.Variant, user.Country)
	return err
}

// RemoveFromRankIndex убирает игрока из индексов всех режимов и вариантов.
// Применяется при ограничении аккаунта.
func (s *StatsService) RemoveFromRankIndex(ctx context.Context, user *entity.User) {
	for mode := entity.ModeStd; mode <= entity.ModeMania; mode++ {
		for variant := entity.VariantVanilla; variant <= entity.VariantAutopilot; variant++ {
			if err := s.rankRepo.Remove(ctx, user.ID, mode, variant, user.Country); err != nil {
				log.Printf("[StatsService] Не удалось убрать игрока %d из индекса (%d/%d): %v",
					user.ID, mode, variant, err)
			}
		}
	}
}

// FullRecalc полностью пересчитывает pp и точность игрока в (режим, вариант)
// и синхронизирует индекс. Используется обработчиком пересчета и CLI.
func (s *StatsService) FullRecalc(ctx context.Context, user *entity.User, mode entity.Mode, variant entity.Variant) (*entity.Stats, error) {
	stats, err := s.statsRepo.Fetch(user.ID, mode, variant)
	if err != nil {
		return nil, err
	}

	count, err := s.scoreRepo.CountRankedBest(user.ID, mode, variant, bonusCountCap)
	if err != nil {
		return nil, err
	}
	values, err := s.scoreRepo.TopBestValues(user.ID, mode, variant, aggregateWindow)
	if err != nil {
		return nil, err
	}

	weightedPP, accuracy := WeightedPerformance(values)
	stats.PP = weightedPP + BonusPP(count)
	stats.Accuracy = accuracy

	if err := s.statsRepo.Save(stats); err != nil {
		return nil, err
	}
	if err := s.UpdateRankIndex(ctx, user, stats); err != nil {
		return nil, err
	}
	return stats, nil
}
