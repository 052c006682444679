// Package eval scores batches of raw rows through a trained ensemble and
// summarizes the resulting score distribution.
package eval

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/logging"
	"github.com/xiangpingbu/shifu/scorer"
)

// ScoreRow is one scored record of evaluation output
type ScoreRow struct {
	Tag    int32   `csv:"tag"`    // ground-truth tag carried from the raw row
	Mean   float64 `csv:"mean"`   // mean of the per-model scores
	Scores string  `csv:"scores"` // pipe-joined per-model scores
}

// Summary aggregates one evaluation run. Distribution statistics cover the
// per-record mean score.
type Summary struct {
	Scored  int64
	Skipped int64
	Mean    float64
	Median  float64
	Max     float64
}

// Evaluator binds a trained scorer to the parser decoding its raw input
type Evaluator struct {
	scorer *scorer.Scorer
	parser shifu.RowParser
}

// CreateEvaluator builds an Evaluator over a scorer and a raw-row parser
func CreateEvaluator(s *scorer.Scorer, parser shifu.RowParser) *Evaluator {
	return &Evaluator{scorer: s, parser: parser}
}

// Run parses raw rows from r, scores each, and writes one CSV row per scored
// record to w. Rows which cannot be vectorized or which no model could score
// are counted as skipped, never written as zeros.
func (e *Evaluator) Run(r io.Reader, w io.Writer) (*Summary, error) {
	var rows []*ScoreRow
	var means []float64
	var skipped int64
	err := e.parser.Parse(r, func(row []string) error {
		result, err := e.scorer.ScoreRaw(row)
		if err != nil {
			logging.Debugf("skipping unscorable row: %v", err)
			skipped++
			return nil
		}
		if result == nil {
			skipped++
			return nil
		}
		mean := meanScore(result.Scores)
		means = append(means, mean)
		rows = append(rows, &ScoreRow{
			Tag:    result.Tag,
			Mean:   mean,
			Scores: joinScores(result.Scores),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return nil, err
	}

	summary := &Summary{Scored: int64(len(rows)), Skipped: skipped}
	if len(means) > 0 {
		if summary.Mean, err = stats.Mean(means); err != nil {
			return nil, err
		}
		if summary.Median, err = stats.Median(means); err != nil {
			return nil, err
		}
		if summary.Max, err = stats.Max(means); err != nil {
			return nil, err
		}
	}
	logging.Infof("evaluated %d records (%d skipped), mean score %f", summary.Scored, summary.Skipped, summary.Mean)
	return summary, nil
}

func meanScore(scores []int32) float64 {
	sum := 0.0
	for _, score := range scores {
		sum += float64(score)
	}
	return sum / float64(len(scores))
}

func joinScores(scores []int32) string {
	parts := make([]string, len(scores))
	for i, score := range scores {
		parts[i] = strconv.FormatInt(int64(score), 10)
	}
	return strings.Join(parts, "|")
}
