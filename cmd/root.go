package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/talent-scout/scout/internal/ai"
	"github.com/talent-scout/scout/internal/ai/gemini"
	"github.com/talent-scout/scout/internal/interview"
	"github.com/talent-scout/scout/internal/logger"
	"github.com/talent-scout/scout/internal/secrets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "scout"
)

type Config struct {
	Interview *InterviewConfig `mapstructure:"interview"`
	AI        *AIConfig        `mapstructure:"ai"`
	Storage   *StorageConfig   `mapstructure:"storage"`
	Recruiter *RecruiterConfig `mapstructure:"recruiter"`
}

type InterviewConfig struct {
	QuestionCap   int `mapstructure:"question-cap"`
	FollowUpLimit int `mapstructure:"follow-up-limit"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

type RecruiterConfig struct {
	PasswordFile string `mapstructure:"password-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scout is a cli for running AI-assisted technical screening interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("interview.question-cap", 8)
	viper.SetDefault("interview.follow-up-limit", 1)
	viper.SetDefault("storage.dir", "data/interviews")
	viper.SetDefault("recruiter.password-file", "data/recruiter.hash")
}

func initConfig() {
	// A .env file in the working directory may carry GEMINI_API_KEY_FILE
	// for local development; its absence is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional: every key has a default or an
	// environment binding. An explicitly named file must parse though.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func engineConfig(config *Config) interview.Config {
	if config == nil || config.Interview == nil {
		return interview.Config{}
	}
	return interview.Config{
		QuestionCap:   config.Interview.QuestionCap,
		FollowUpLimit: config.Interview.FollowUpLimit,
	}
}

// newGenerator builds the configured AI generator. Gemini is the only
// provider today; the provider key exists so configs stay forward compatible.
func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (ai.Generator, error) {
	var cfg *AIConfig
	if config != nil {
		cfg = config.AI
	}

	provider := ""
	geminiCfg := &GeminiConfig{}
	if cfg != nil {
		provider = strings.TrimSpace(strings.ToLower(cfg.Provider))
		if cfg.Gemini != nil {
			geminiCfg = cfg.Gemini
		}
	}

	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKeyFile := strings.TrimSpace(geminiCfg.APIKeyFile)
	if apiKeyFile == "" {
		apiKeyFile = strings.TrimSpace(viper.GetString("ai.gemini.api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", geminiCfg.Model),
	)

	return gemini.NewGenerator(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        geminiCfg.Model,
		MaxRetries:   geminiCfg.MaxRetries,
		MaxLogLength: geminiCfg.MaxLogLength,
	}, genLogger)
}
