package server

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thresholdInit only accepts a positive multisig threshold.
type thresholdInit struct{}

func (thresholdInit) FromGenesis(opts quorum.Options, db quorum.KVStore) error {
	var conf struct {
		Threshold int `json:"threshold"`
	}
	if err := opts.ReadOptions("multisig", &conf); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if conf.Threshold < 1 {
		return errors.Wrap(errors.ErrInput, "threshold")
	}
	return db.Set([]byte("registry"), []byte{byte(conf.Threshold)})
}

func TestValidateGenesis(t *testing.T) {
	home, cleanup := setupHome(t, tmGenesis)
	defer cleanup()

	write := func(name, content string) string {
		path := filepath.Join(home, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
		return path
	}

	valid := write("valid.json", `{"app_state": {"multisig": {"threshold": 1}}}`)
	invalid := write("invalid.json", `{"app_state": {"multisig": {"threshold": 0}}}`)
	broken := write("broken.json", `{"app_state": `)

	assert.NoError(t, ValidateGenesis(thresholdInit{}, []string{valid}))
	assert.True(t, errors.ErrInput.Is(ValidateGenesis(thresholdInit{}, []string{valid, invalid})))
	assert.True(t, errors.ErrInput.Is(ValidateGenesis(thresholdInit{}, []string{broken})))

	err := ValidateGenesis(thresholdInit{}, []string{filepath.Join(home, "missing.json")})
	assert.Error(t, err)
}
