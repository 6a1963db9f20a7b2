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
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string

		SecretKey        []byte
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string

		Server   ServerConfig
		Firebase FirebaseConfig
		Reminder ReminderConfig
	}

	ServerConfig struct {
		Host               string
		Addr               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	FirebaseConfig struct {
		// WebAPIKey authenticates Identity Toolkit REST calls.
		WebAPIKey string
		ProjectID string
		// CredentialsFile is the service account key used by the Firestore client.
		// Empty falls back to Application Default Credentials.
		CredentialsFile string
	}

	ReminderConfig struct {
		// SweepInterval is how often pending reminders are reconciled
		// against the deferred-work runner.
		SweepInterval time.Duration
		// DailySweepTime is the HH:MM hour of the once-a-day sweep that
		// pre-arms the whole coming day's reminders.
		DailySweepTime string
		ChannelID      string
		ChannelName    string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "EstuGuia")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "wq81_tyx)ghale$+02=vz&umig5(h!q)#*s7(#dk3h^$numo4aby")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugHost", "localhost:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("reminderSweepInterval", 15*time.Minute)
	v.SetDefault("reminderDailySweepTime", "06:00")
	v.SetDefault("reminderChannelId", "task_reminder_channel")
	v.SetDefault("reminderChannelName", "Recordatorios de Tareas")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        []byte(v.GetString("secretKey")),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Addr:               v.GetString("serverAddr"),
			DebugHost:          v.GetString("serverDebugHost"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Firebase: FirebaseConfig{
			WebAPIKey:       v.GetString("firebaseWebApiKey"),
			ProjectID:       v.GetString("firebaseProjectId"),
			CredentialsFile: v.GetString("firebaseCredentialsFile"),
		},
		Reminder: ReminderConfig{
			SweepInterval:  v.GetDuration("reminderSweepInterval"),
			DailySweepTime: v.GetString("reminderDailySweepTime"),
			ChannelID:      v.GetString("reminderChannelId"),
			ChannelName:    v.GetString("reminderChannelName"),
		},
	}
}
