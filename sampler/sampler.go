package sampler

import (
	"math/rand"

	"github.com/xiangpingbu/shifu"
)

// DefaultReplacementThreshold gates the legacy replacement mode until the
// combined partitions hold a meaningful number of records
const DefaultReplacementThreshold = 100000

// Conf selects and configures a Sampler for one job. Exactly one mode
// applies: FixInitialInput wins, then Poisson bagging (when replacement
// bagging is also on), then the legacy random-replacement mode.
type Conf struct {
	ValidationRate         float64       // fraction of sampled records routed to validation
	FixInitialInput        bool          // deterministic hash split, for reproducible runs
	BaggingWithReplacement bool          // records may be duplicated or dropped
	PoissonSampling        bool          // use Poisson(1) draws for replacement bagging
	Training               shifu.Dataset // read handle for the legacy replacement mode
	Validation             shifu.Dataset // read handle for the legacy replacement mode
	ReplacementThreshold   int64         // combined size before replacement triggers; zero uses the default
	Seed                   int64         // seeds this sampler's randomness
}

// Create builds the Sampler variant dictated by conf
func Create(conf *Conf) shifu.Sampler {
	if conf.FixInitialInput {
		return &hashSampler{rate: conf.ValidationRate}
	}
	if conf.PoissonSampling && conf.BaggingWithReplacement {
		return createPoissonSampler(conf.ValidationRate, conf.Seed)
	}
	threshold := conf.ReplacementThreshold
	if threshold <= 0 {
		threshold = DefaultReplacementThreshold
	}
	return &replacementSampler{
		rate:        conf.ValidationRate,
		replacement: conf.BaggingWithReplacement,
		threshold:   threshold,
		training:    conf.Training,
		validation:  conf.Validation,
		rng:         rand.New(rand.NewSource(conf.Seed)),
	}
}

// hashSampler splits deterministically: identical input vectors always land
// in the same partition for a given validation rate
type hashSampler struct {
	rate float64
}

func (s *hashSampler) Place(hash uint64, rec *shifu.Record) shifu.Placement {
	placement := shifu.Placement{Emit: true, SignificanceScale: 1, FromPosition: -1}
	if hash%100 < uint64(s.rate*100) {
		placement.Partition = shifu.ValidationPartition
	} else {
		placement.Partition = shifu.TrainingPartition
	}
	return placement
}

// replacementSampler is the legacy mode: a plain random split until both
// partitions are populated past the threshold, after which half of all draws
// re-read an already-ingested record instead of emitting the incoming one.
// The re-read approximates resampling the original raw rows without a second
// data pass, with knowingly different statistical behaviour; it is kept
// selectable so historical models stay reproducible.
type replacementSampler struct {
	rate        float64
	replacement bool
	threshold   int64
	training    shifu.Dataset
	validation  shifu.Dataset
	rng         *rand.Rand
}

func (s *replacementSampler) Place(hash uint64, rec *shifu.Record) shifu.Placement {
	random := s.rng.Float64()
	placement := shifu.Placement{Emit: true, SignificanceScale: 1, FromPosition: -1}
	if random < s.rate {
		placement.Partition = shifu.ValidationPartition
	} else {
		placement.Partition = shifu.TrainingPartition
	}
	if s.trigged(random) {
		placement.FromPosition = s.rng.Int63n(s.training.Count() + s.validation.Count())
	}
	return placement
}

func (s *replacementSampler) trigged(random float64) bool {
	if !s.replacement {
		return false
	}
	trainingSize := s.training.Count()
	validationSize := s.validation.Count()
	return validationSize > 0 && trainingSize > 0 &&
		trainingSize+validationSize > s.threshold && random < 0.5
}
