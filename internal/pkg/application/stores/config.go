package stores

import (
	"io"

	yaml "gopkg.in/yaml.v2"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`
	DBName  string `yaml:"dbname"`
}

type Tenant struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Storage StorageConfig `yaml:"storage"`
}

type Config struct {
	Tenants []Tenant `yaml:"tenants"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}
