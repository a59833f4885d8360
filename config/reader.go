package config

import (
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Read reads a config from the given file. ${VAR} references are replaced from the environment
// before the file is parsed.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", filePath)
	}
	return FromBytes(filePath, buf)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file
// the reader originated from. No environment substitution happens.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	return FromBytes(originalPath, buf)
}

// FromBytes decodes, defaults and validates a config. The document is JSON5, so comments and
// trailing commas are allowed. Values are decoded weakly so that "5" is accepted where a number
// is expected; unknown keys are rejected.
func FromBytes(originalPath string, buf []byte) (*Config, error) {
	var raw map[string]interface{}
	if err := json5.Unmarshal(buf, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config")
	}

	cfg.ConfigFilePath = originalPath
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
