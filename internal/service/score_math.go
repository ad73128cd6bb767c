package service

import (
	"math"

	"github.com/yourusername/score-api/internal/domain/entity"
	"github.com/yourusername/score-api/internal/domain/repository"
)

// Константы взвешенного агрегата. Значения — внешний контракт с экосистемой:
// они должны совпадать у всех сервисов, считающих рейтинг.
const (
	aggregateWindow = 100     // скоров в окне взвешивания
	weightDecay     = 0.95    // геометрическое затухание веса
	bonusBase       = 416.6667
	bonusDecay      = 0.9994
	bonusCountCap   = 25397
)

// CalculateAccuracy считает точность плея по счетчикам попаданий.
// Формулы зависят от режима.
func CalculateAccuracy(mode entity.Mode, n300, n100, n50, ngeki, nkatu, nmiss int) float64 {
	switch mode {
	case entity.ModeStd:
		total := n300 + n100 + n50 + nmiss
		if total == 0 {
			return 0
		}
		return 100.0 * (float64(n300)*300.0 + float64(n100)*100.0 + float64(n50)*50.0) /
			(float64(total) * 300.0)

	case entity.ModeTaiko:
		total := n300 + n100 + nmiss
		if total == 0 {
			return 0
		}
		return 100.0 * (float64(n100)*0.5 + float64(n300)) / float64(total)

	case entity.ModeCatch:
		total := n300 + n100 + n50 + nkatu + nmiss
		if total == 0 {
			return 0
		}
		return 100.0 * float64(n300+n100+n50) / float64(total)

	case entity.ModeMania:
		total := n300 + n100 + n50 + ngeki + nkatu + nmiss
		if total == 0 {
			return 0
		}
		return 100.0 * (float64(n50)*50.0 + float64(n100)*100.0 +
			float64(nkatu)*200.0 + float64(n300+ngeki)*300.0) /
			(float64(total) * 300.0)
	}
	return 0
}

// WeightedPerformance считает взвешенные pp и точность по отсортированным по
// убыванию pp значениям BEST-скоров (окно — первые aggregateWindow записей).
func WeightedPerformance(values []repository.BestValue) (pp, accuracy float64) {
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) > aggregateWindow {
		values = values[:aggregateWindow]
	}

	var totalPP, totalAcc float64
	for i, v := range values {
		weight := math.Pow(weightDecay, float64(i))
		totalPP += v.PP * weight
		totalAcc += v.Accuracy * weight
	}

	// нормировка точности к диапазону 0-100: делим на сумму весов окна
	n := float64(len(values))
	accuracy = totalAcc * (100.0 / (20 * (1 - math.Pow(weightDecay, n)))) / 100
	return totalPP, accuracy
}

// BonusPP считает бонусное слагаемое за объем рейтинговых плеев.
func BonusPP(rankedCount int64) float64 {
	if rankedCount > bonusCountCap {
		rankedCount = bonusCountCap
	}
	return bonusBase * (1 - math.Pow(bonusDecay, float64(rankedCount)))
}

// CanSkipResort сообщает, можно ли пропустить полный пересчет взвешенной
// суммы: при заполненном окне скор ниже его дна не меняет сумму.
func CanSkipResort(values []repository.BestValue, newPP float64) bool {
	return len(values) >= aggregateWindow && newPP < values[aggregateWindow-1].PP
}
