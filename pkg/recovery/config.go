package recovery

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config carries the lifetime of issued recovery tokens.
type Config struct {
	TokenTTL time.Duration `env:"RECOVERY_TOKEN_TTL" envDefault:"15m"`
}

// LoadConfig parses the recovery configuration from the environment once per
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
