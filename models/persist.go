package models

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/xiangpingbu/shifu"
	"github.com/xiangpingbu/shifu/errors"
)

// ModelSpec is the persisted envelope for one trained model: the algorithm
// name selects the payload's concrete variant on load
type ModelSpec struct {
	Algorithm string `msgpack:"algorithm"`
	Payload   []byte `msgpack:"payload"`
}

// AlgorithmOf returns the algorithm name a model persists under
func AlgorithmOf(model shifu.Model) (shifu.Algorithm, error) {
	switch m := model.(type) {
	case *NeuralNet:
		return shifu.AlgNeuralNet, nil
	case *Linear:
		return m.Kind, nil
	case *TreeEnsemble:
		if m.Kind == shifu.GradientBoosted {
			return shifu.AlgGBDT, nil
		}
		return shifu.AlgRandomForest, nil
	}
	return "", errors.UnsupportedAlgorithmError{Alg: fmt.Sprintf("%T", model)}
}

// Save serializes a model to w as an lz4-compressed ModelSpec envelope
func Save(w io.Writer, model shifu.Model) error {
	alg, err := AlgorithmOf(model)
	if err != nil {
		return err
	}
	payload, err := msgpack.Marshal(model)
	if err != nil {
		return err
	}
	return saveSpec(w, &ModelSpec{Algorithm: string(alg), Payload: payload})
}

func saveSpec(w io.Writer, spec *ModelSpec) error {
	envelope, err := msgpack.Marshal(spec)
	if err != nil {
		return err
	}
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(envelope); err != nil {
		return err
	}
	return zw.Close()
}

// Load deserializes a model from an lz4-compressed ModelSpec envelope. An
// unrecognized algorithm name is a typed error.
func Load(r io.Reader) (shifu.Model, error) {
	envelope, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return nil, err
	}
	var spec ModelSpec
	if err := msgpack.Unmarshal(envelope, &spec); err != nil {
		return nil, err
	}
	switch shifu.Algorithm(spec.Algorithm) {
	case shifu.AlgNeuralNet:
		var m NeuralNet
		if err := msgpack.Unmarshal(spec.Payload, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case shifu.AlgSVM, shifu.AlgLogisticRegression:
		var m Linear
		if err := msgpack.Unmarshal(spec.Payload, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case shifu.AlgGBDT, shifu.AlgRandomForest:
		var m TreeEnsemble
		if err := msgpack.Unmarshal(spec.Payload, &m); err != nil {
			return nil, err
		}
		return &m, nil
	}
	return nil, errors.UnsupportedAlgorithmError{Alg: spec.Algorithm}
}

// SaveFile serializes a model to a new file at path
func SaveFile(path string, model shifu.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, model); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile deserializes a model from the file at path
func LoadFile(path string) (shifu.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
