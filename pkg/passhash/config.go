package passhash

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config carries the process-wide salt mixed into every password digest.
// The default exists so the library works out of the box; deployments
// should override it via the environment.
type Config struct {
	Salt string `env:"PASSHASH_SALT" envDefault:"enterprise-auth-salt"`
}

// LoadConfig parses the salt configuration from the environment once per
// process and returns the cached value on subsequent calls.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		err = env.Parse(&cfg)
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
