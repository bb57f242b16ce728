// Package configloader layers configuration from a yaml file, a .env file,
// and process environment variables, in increasing order of priority.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Validator is implemented by config structs that can check themselves after
// unmarshalling.
type Validator interface {
	Validate() error
}

const configFile = "config.yaml"

// Load reads config.yaml from the working directory, overlays a .env file and
// environment variables prefixed with <SERVICE_NAME>_, and unmarshals the
// result into T. Env keys map to config paths by replacing underscores with
// dots: STOREFRONT_DATABASE_URL becomes database.url.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	k := koanf.New(".")
	envPrefix := strings.ToUpper(serviceName) + "_"

	toPath := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}

	// Lowest priority: the optional yaml file.
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
	}

	// Next: the optional .env file, mapped through the same key transform.
	if dotEnv, err := godotenv.Read(".env"); err == nil {
		envMap := make(map[string]any, len(dotEnv))
		for key, value := range dotEnv {
			envMap[toPath(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// Highest priority: prefixed process environment variables.
	if err := k.Load(env.Provider(envPrefix, ".", toPath), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
