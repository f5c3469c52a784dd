package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	WebConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		SecureCookies   bool
	}

	SessionConfig struct {
		TokenFile string
	}

	CourseConfig struct {
		Levels []string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		LogLevel     string
		RollbarToken string

		API     APIConfig
		Web     WebConfig
		Session SessionConfig
		Course  CourseConfig
	}
)

// NewConfig loads the configuration for the environment named by $ENV.
// Values come from defaults, then `config/.env.<env>` (if it exists), then the environment
// prefixed with the environment name (eg. DEV_API_BASEURL).
// Lists such as DEV_COURSE_LEVELS are separated by commas or spaces.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("logLevel", "info")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("api.baseURL", "http://localhost:5000/api")
	conf.SetDefault("api.timeout", 10*time.Second)
	conf.SetDefault("web.address", ":8080")
	conf.SetDefault("web.debugAddress", ":4000")
	conf.SetDefault("web.shutdownTimeout", 5*time.Second)
	conf.SetDefault("web.secureCookies", false)
	conf.SetDefault("session.tokenFile", defaultTokenFile())
	conf.SetDefault("course.levels", []string{"ND1", "ND2", "HND1", "HND2"})

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		LogLevel:     conf.GetString("logLevel"),
		RollbarToken: conf.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(conf.GetString("api.baseURL"), "/"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Web: WebConfig{
			Address:         conf.GetString("web.address"),
			DebugAddress:    conf.GetString("web.debugAddress"),
			ShutdownTimeout: conf.GetDuration("web.shutdownTimeout"),
			SecureCookies:   conf.GetBool("web.secureCookies"),
		},
		Session: SessionConfig{
			TokenFile: conf.GetString("session.tokenFile"),
		},
		Course: CourseConfig{
			Levels: splitList(conf.GetStringSlice("course.levels")),
		},
	}
}

// splitList splits every value on commas, dropping blanks.
func splitList(values []string) []string {
	var list []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}
	return list
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "masomo", "token")
}
