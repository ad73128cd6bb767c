package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yourusername/score-api/internal/domain/entity"
)

// chartEntry форматирует пару Before/After для панели результатов клиента.
// nil до — пустое значение (первый скор на карте).
func chartEntry(name string, before interface{}, after interface{}) string {
	b := ""
	if before != nil {
		b = fmt.Sprint(before)
	}
	return fmt.Sprintf("%sBefore:%s|%sAfter:%v", name, b, name, after)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildCharts собирает полное тело ответа на успешный сабмит: шапка карты,
// чарт карты, общий чарт и свежие ачивки. Формат — внешний контракт клиента.
func buildCharts(
	beatmap *entity.Beatmap,
	user *entity.User,
	score *entity.Score,
	oldBest *entity.Score,
	oldBestRank int,
	rank int,
	oldStats *entity.Stats,
	stats *entity.Stats,
	fresh []entity.Achievement,
) string {
	var beatmapChart []string
	if oldBest != nil {
		beatmapChart = []string{
			chartEntry("rank", oldBestRank, rank),
			chartEntry("rankedScore", oldBest.Score, score.Score),
			chartEntry("totalScore", oldBest.Score, score.Score),
			chartEntry("maxCombo", oldBest.MaxCombo, score.MaxCombo),
			chartEntry("accuracy", round2(oldBest.Accuracy), round2(score.Accuracy)),
			chartEntry("pp", math.Round(oldBest.PP), math.Round(score.PP)),
		}
	} else {
		beatmapChart = []string{
			chartEntry("rank", nil, rank),
			chartEntry("rankedScore", nil, score.Score),
			chartEntry("totalScore", nil, score.Score),
			chartEntry("maxCombo", nil, score.MaxCombo),
			chartEntry("accuracy", nil, round2(score.Accuracy)),
			chartEntry("pp", nil, math.Round(score.PP)),
		}
	}

	overallChart := []string{
		chartEntry("rank", oldStats.Rank, stats.Rank),
		chartEntry("rankedScore", oldStats.RankedScore, stats.RankedScore),
		chartEntry("totalScore", oldStats.TotalScore, stats.TotalScore),
		chartEntry("maxCombo", oldStats.MaxCombo, stats.MaxCombo),
		chartEntry("accuracy", round2(oldStats.Accuracy), round2(stats.Accuracy)),
		chartEntry("pp", math.Round(oldStats.PP), math.Round(stats.PP)),
	}

	names := make([]string, 0, len(fresh))
	for i := range fresh {
		names = append(names, fresh[i].FullName())
	}

	sections := []string{
		fmt.Sprintf("beatmapId:%d", beatmap.BeatmapID),
		fmt.Sprintf("beatmapSetId:%d", beatmap.SetID),
		fmt.Sprintf("beatmapPlaycount:%d", beatmap.Playcount),
		fmt.Sprintf("beatmapPasscount:%d", beatmap.Passcount),
		fmt.Sprintf("approvedDate:%s",
			time.Unix(beatmap.LastUpdate, 0).UTC().Format("2006-01-02 15:04:05")),
		"\n",
		"chartId:beatmap",
		fmt.Sprintf("chartUrl:https://osu.ppy.sh/beatmapsets/%d", beatmap.SetID),
		"chartName:Beatmap Ranking",
	}
	sections = append(sections, beatmapChart...)
	sections = append(sections, fmt.Sprintf("onlineScoreId:%d", score.ID))
	sections = append(sections, "\n", "chartId:overall")
	sections = append(sections, fmt.Sprintf("chartUrl:https://osu.ppy.sh/u/%d", user.ID))
	sections = append(sections, "chartName:Overall Ranking")
	sections = append(sections, overallChart...)
	sections = append(sections, "achievements-new:"+strings.Join(names, "/"))

	return strings.Join(sections, "|")
}
