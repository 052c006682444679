package sampler

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/xiangpingbu/shifu"
)

// poissonSampler implements bagging with replacement through Poisson(1)
// draws: a draw of zero drops the record, a draw of k keeps it with its
// significance multiplied by k. Partition membership comes from an
// independent uniform draw against the validation rate.
type poissonSampler struct {
	rate    float64
	rng     *rand.Rand
	poisson distuv.Poisson
}

func createPoissonSampler(rate float64, seed int64) *poissonSampler {
	src := rand.NewSource(uint64(seed))
	return &poissonSampler{
		rate:    rate,
		rng:     rand.New(src),
		poisson: distuv.Poisson{Lambda: 1, Src: src},
	}
}

func (s *poissonSampler) Place(hash uint64, rec *shifu.Record) shifu.Placement {
	random := s.rng.Float64()
	k := int(s.poisson.Rand())
	if k == 0 {
		return shifu.Placement{Emit: false, SignificanceScale: 1, FromPosition: -1}
	}
	placement := shifu.Placement{Emit: true, SignificanceScale: float64(k), FromPosition: -1}
	if random < s.rate {
		placement.Partition = shifu.ValidationPartition
	} else {
		placement.Partition = shifu.TrainingPartition
	}
	return placement
}
