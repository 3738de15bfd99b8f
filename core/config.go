package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config carries everything the client layer needs to run. It is loaded once
// at startup and passed down; nothing reads the environment after that.
type Config struct {
	Debug   bool
	Env     string // DEV (local; default), TEST, QA, PROD
	AppName string
	Build   string

	// APIBaseURL is the root of the Schoolweb REST surface.
	APIBaseURL string

	// CredentialsFile is where the bearer token + principal pair is persisted
	// between page sessions. Cleared on logout or on any 401.
	CredentialsFile string

	// FallbackOnLoadError controls whether a failed collection load degrades
	// to a locally generated dataset or to an empty list with only the error
	// surfaced.
	FallbackOnLoadError bool

	RollbarToken string
	ServerHost   string
}

// NewConfig loads configuration from defaults, an optional .env file and the
// environment (prefixed with the current ENV name).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Schoolweb")
	conf.SetDefault("build", "dev")
	conf.SetDefault("apiBaseUrl", "http://localhost:5000/api")
	conf.SetDefault("credentialsFile", defaultCredentialsFile())
	conf.SetDefault("fallbackOnLoadError", true)
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("serverHost", "localhost")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:               conf.GetBool("debug"),
		Env:                 env,
		AppName:             conf.GetString("appName"),
		Build:               conf.GetString("build"),
		APIBaseURL:          strings.TrimRight(conf.GetString("apiBaseUrl"), "/"),
		CredentialsFile:     conf.GetString("credentialsFile"),
		FallbackOnLoadError: conf.GetBool("fallbackOnLoadError"),
		RollbarToken:        conf.GetString("rollbarToken"),
		ServerHost:          conf.GetString("serverHost"),
	}
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "schoolweb", "credentials.json")
}
