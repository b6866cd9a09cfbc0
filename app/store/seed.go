package store

import (
	_ "embed" // for the default seed
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/umputun/social-feed/app/models"
)

//go:embed seed.yml
var defaultSeed []byte

// LoadSeed reads seed set from yml file, embedded default used for empty fname
func LoadSeed(fname string) (models.Seed, error) {
	data := defaultSeed
	if fname != "" {
		var err error
		if data, err = ioutil.ReadFile(fname); err != nil { // nolint
			return models.Seed{}, errors.Wrapf(err, "can't read seed %s", fname)
		}
	}

	res := models.Seed{}
	if err := yaml.Unmarshal(data, &res); err != nil {
		return models.Seed{}, errors.Wrap(err, "can't parse seed")
	}
	return res, nil
}
