package hp

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/kernreg/pkg/errors"
)

// fileConfig mirrors Hp for YAML decoding. Keys missing from the file stay nil.
type fileConfig struct {
	K                 *int     `yaml:"k"`
	Bandwidth         *float64 `yaml:"bandwidth"`
	Sigma             *float64 `yaml:"sigma"`
	Initial1DCutoff   *float64 `yaml:"initial_1d_cutoff"`
	NumberTestSamples *int     `yaml:"number_test_samples"`
}

// Load reads hyperparameters from a YAML file.
//
//	k: 8
//	bandwidth: 0.25
//	number_test_samples: 200
func Load(path string) (Hp, error) {
	file, err := os.Open(path)
	if err != nil {
		return Hp{}, errors.Wrapf(err, "failed to open hyperparameter file %s", path)
	}
	defer file.Close()

	return Decode(file)
}

// Decode reads hyperparameters from YAML. Unknown keys are rejected.
func Decode(r io.Reader) (Hp, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var cfg fileConfig
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Hp{}, errors.Wrap(err, "invalid hyperparameter YAML")
	}

	h := Hp{
		k:                 cfg.K,
		bandwidth:         cfg.Bandwidth,
		sigma:             cfg.Sigma,
		initial1DCutoff:   cfg.Initial1DCutoff,
		numberTestSamples: cfg.NumberTestSamples,
	}
	return h, nil
}
