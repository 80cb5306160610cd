package credstore

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config carries the store's fixed constants as overridable configuration:
// the single key the encrypted blob lives under, and the one email address
// that receives the admin role at signup.
type Config struct {
	StorageKey string `env:"CREDSTORE_STORAGE_KEY" envDefault:"identity_store_v1"`
	AdminEmail string `env:"CREDSTORE_ADMIN_EMAIL" envDefault:"admin@example.com"`
}

// LoadConfig parses the store configuration from the environment once per
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
