package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	SemesterScopeEvent    = "event"
	SemesterScopeSchedule = "schedule"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		WorkDir      string
		RollbarToken string
		Database     DatabaseConfig
		Fallback     FallbackConfig
		Report       ReportConfig
		Server       ServerConfig
	}

	DatabaseConfig struct {
		Engine     string
		Path       string // sqlite only
		Host       string
		Port       int
		User       string
		Password   string
		Name       string
		DisableTLS bool
	}

	FallbackConfig struct {
		SeedFile string
	}

	ReportConfig struct {
		Title         string
		SemesterScope string
		StrictDates   bool
	}

	ServerConfig struct {
		Address string
		Host    string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) IsSQLite() bool {
	return c.Engine == EngineSQLite
}

// NewConfig reads the configuration from defaults, the optional config/.env.<env> file and the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CCS Attendance System")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("database.engine", EngineSQLite)
	v.SetDefault("database.path", "cas_attendance.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "cas_user")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "cas_attendance")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("fallback.seedFile", "")
	v.SetDefault("report.title", "Attendance Report")
	v.SetDefault("report.semesterScope", SemesterScopeEvent)
	v.SetDefault("report.strictDates", false)
	v.SetDefault("server.address", "127.0.0.1:8000")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	host, _, _ := net.SplitHostPort(v.GetString("server.address"))
	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		Database: DatabaseConfig{
			Engine:     CleanString(v.GetString("database.engine"), true /* lower */),
			Path:       v.GetString("database.path"),
			Host:       v.GetString("database.host"),
			Port:       v.GetInt("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		Fallback: FallbackConfig{
			SeedFile: v.GetString("fallback.seedFile"),
		},
		Report: ReportConfig{
			Title:         v.GetString("report.title"),
			SemesterScope: CleanString(v.GetString("report.semesterScope"), true /* lower */),
			StrictDates:   v.GetBool("report.strictDates"),
		},
		Server: ServerConfig{
			Address: v.GetString("server.address"),
			Host:    host,
		},
	}
}

// Validate checks the settings the application cannot run with.
func (c *Config) Validate() error {
	return ValidateStruct(struct {
		Engine        string `json:"database.engine" validate:"oneof=sqlite postgres"`
		SemesterScope string `json:"report.semesterScope" validate:"semester_scope"`
	}{
		Engine:        c.Database.Engine,
		SemesterScope: c.Report.SemesterScope,
	})
}
