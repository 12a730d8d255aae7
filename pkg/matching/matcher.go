// pkg/matching/matcher.go
package matching

import (
	"strings"

	"github.com/xrash/smetrics"
)

// TitleScore возвращает процент совпадения (0..100) названия трека из каталога
// с распознанным названием. Уточнения в скобках ("Remastered 2011", "feat. ...")
// отбрасываются, берётся лучший из двух вариантов.
func TitleScore(query, title string) int {
	full := similarity(query, title)
	bare := similarity(stripQualifiers(query), stripQualifiers(title))
	if bare > full {
		return bare
	}
	return full
}

// Filter оставляет названия, чей TitleScore не ниже minScore, сохраняя исходный порядок.
// Возвращает индексы оставленных элементов. minScore <= 0 отключает фильтр.
func Filter(query string, titles []string, minScore int) []int {
	kept := make([]int, 0, len(titles))
	for i, title := range titles {
		if minScore <= 0 || TitleScore(query, title) >= minScore {
			kept = append(kept, i)
		}
	}
	return kept
}

func similarity(s1, s2 string) int {
	s1, s2 = normalize(s1), normalize(s2)
	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 100
	}
	distance := smetrics.WagnerFischer(s1, s2, 1, 1, 2)
	score := 100 - (distance * 100 / maxLen)
	if score < 0 {
		return 0
	}
	return score
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// stripQualifiers убирает хвост в скобках и всё после " - ".
func stripQualifiers(s string) string {
	if i := strings.IndexAny(s, "(["); i > 0 {
		s = s[:i]
	}
	if i := strings.Index(s, " - "); i > 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
