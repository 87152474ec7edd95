package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		AppName          string
		Build            string
		SecretKey        string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Latency  LatencyConfig
		Identity IdentityConfig
	}

	ServerConfig struct {
		Address            string
		Host               string
		DisableReqLogs     bool
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	// LatencyConfig holds the artificial delays applied by the student service.
	LatencyConfig struct {
		List   time.Duration
		Get    time.Duration
		Create time.Duration
		Update time.Duration
	}

	IdentityConfig struct {
		AllowSignUp       bool
		HideUserExistence bool
		MaxFailedLogins   int
		FailedLoginWindow time.Duration

		// optional account created at startup (see `admin hashpassword`)
		BootstrapEmail        string
		BootstrapPasswordHash string
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Masomo")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("disableReqLogs", false)
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("latencyList", 1000*time.Millisecond)
	conf.SetDefault("latencyGet", 800*time.Millisecond)
	conf.SetDefault("latencyCreate", 1200*time.Millisecond)
	conf.SetDefault("latencyUpdate", 1000*time.Millisecond)

	conf.SetDefault("allowSignUp", true)
	conf.SetDefault("hideUserExistence", false)
	conf.SetDefault("maxFailedLogins", 5)
	conf.SetDefault("failedLoginWindow", 15*time.Minute)
	conf.SetDefault("bootstrapEmail", "")
	conf.SetDefault("bootstrapPasswordHash", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	fromEmail, err := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		SecretKey:        conf.GetString("secretKey"),
		DefaultFromEmail: *fromEmail,
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:            conf.GetString("serverAddress"),
			Host:               conf.GetString("serverHost"),
			DisableReqLogs:     conf.GetBool("disableReqLogs"),
			ShutdownTimeout:    conf.GetDuration("shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Latency: LatencyConfig{
			List:   conf.GetDuration("latencyList"),
			Get:    conf.GetDuration("latencyGet"),
			Create: conf.GetDuration("latencyCreate"),
			Update: conf.GetDuration("latencyUpdate"),
		},
		Identity: IdentityConfig{
			AllowSignUp:           conf.GetBool("allowSignUp"),
			HideUserExistence:     conf.GetBool("hideUserExistence"),
			MaxFailedLogins:       conf.GetInt("maxFailedLogins"),
			FailedLoginWindow:     conf.GetDuration("failedLoginWindow"),
			BootstrapEmail:        conf.GetString("bootstrapEmail"),
			BootstrapPasswordHash: conf.GetString("bootstrapPasswordHash"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no latency, no .env lookup.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Masomo",
		Build:            "test",
		SecretKey:        "secret",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: ServerConfig{
			Address:            ":0",
			Host:               "localhost",
			DisableReqLogs:     true,
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 10 * time.Minute,
		},
		Identity: IdentityConfig{
			AllowSignUp:       true,
			MaxFailedLogins:   5,
			FailedLoginWindow: 15 * time.Minute,
		},
	}
}
