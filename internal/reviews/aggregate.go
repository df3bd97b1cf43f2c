package reviews

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/phoolcraft/phool-backend/pkg/db/models"
)

// Summary is the public rating of one product. Average is nil when there is
// no approved review.
type Summary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

// Summarize aggregates the approved reviews in list. Unapproved reviews are
// ignored even when present.
func Summarize(list []models.Review) Summary {
	sum := decimal.Zero
	count := 0
	for _, r := range list {
		if !r.Approved {
			continue
		}
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
		count++
	}
	if count == 0 {
		return Summary{}
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(count))).Round(1).Float64()
	return Summary{Average: &avg, Count: count}
}

// ClampRating bounds rating to 1..5, then rounds half away from zero.
// Bounding happens first so huge inputs never pass through an integer
// conversion.
func ClampRating(rating float64) int {
	switch {
	case math.IsNaN(rating), rating <= MinRating:
		return MinRating
	case rating >= MaxRating:
		return MaxRating
	default:
		return int(math.Round(rating))
	}
}

// TruncateComment trims text and cuts it to MaxCommentLength runes.
func TruncateComment(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > MaxCommentLength {
		runes = runes[:MaxCommentLength]
	}
	return string(runes)
}
