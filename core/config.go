package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugAddress              string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
		DisableRequestLogs        bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	EmailConfig struct {
		DefaultFromEmail string
		SendgridAPIKey   string
	}

	NATSConfig struct {
		URL           string // publishing is disabled when empty
		Stream        string
		SubjectPrefix string
	}

	ClientConfig struct {
		APIURL      string
		Timeout     time.Duration
		Credentials string // credentials file; defaults to ~/.uniguide/credentials.json
	}

	Config struct {
		Env             string
		Build           string
		AppName         string
		Debug           bool
		TestMode        bool
		SecretKey       string
		FrontendBaseURL string
		RollbarToken    string
		Server          ServerConfig
		Database        DatabaseConfig
		Email           EmailConfig
		NATS            NATSConfig
		Client          ClientConfig

		PasswordResetTimeoutDelta time.Duration
	}
)

// NewConfig reads the configuration of the current ENV (DEV by default) from the environment
// and from config/.env.<env> when that file exists.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "uniguide")
	v.SetDefault("secretKey", "s3cr3t-k3y_f0r-l0cal-d3v3l0pm3nt-0nly")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverAddress", ":4000")
	v.SetDefault("serverDebugAddress", ":4010")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("serverDisableRequestLogs", false)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "uniguide")
	v.SetDefault("dbUser", "uniguide")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("defaultFromEmail", "uniguide <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("natsUrl", "")
	v.SetDefault("natsStream", "UNIGUIDE")
	v.SetDefault("natsSubjectPrefix", "uniguide")

	v.SetDefault("apiUrl", "http://localhost:4000/api")
	v.SetDefault("clientTimeout", time.Duration(0)) // no timeout
	v.SetDefault("credentials", "")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// eg. DEV_DBNAME, PROD_SECRETKEY
	v.SetEnvPrefix(env)
	v.AutomaticEnv()

	// the client side tools only know about a single API, whatever the env
	apiURL := v.GetString("apiUrl")
	if u := os.Getenv("UNIGUIDE_API_URL"); u != "" {
		apiURL = u
	}

	return &Config{
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		RollbarToken:    v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:                   v.GetString("serverAddress"),
			DebugAddress:              v.GetString("serverDebugAddress"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			DisableRequestLogs:        v.GetBool("serverDisableRequestLogs"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Email: EmailConfig{
			DefaultFromEmail: v.GetString("defaultFromEmail"),
			SendgridAPIKey:   v.GetString("sendgridApiKey"),
		},
		NATS: NATSConfig{
			URL:           v.GetString("natsUrl"),
			Stream:        v.GetString("natsStream"),
			SubjectPrefix: v.GetString("natsSubjectPrefix"),
		},
		Client: ClientConfig{
			APIURL:      apiURL,
			Timeout:     v.GetDuration("clientTimeout"),
			Credentials: v.GetString("credentials"),
		},

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
	}
}

// Address returns the database host:port.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.Email.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (%s) env=%s debug=%t", c.AppName, c.Build, c.Env, c.Debug)
}
