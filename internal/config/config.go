// Package config provides configuration management for the document
// translation service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/ibatulanandjp/procrai/internal/logger"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "procrai-config.json"
	// EnvOpenAIAPIKey is the environment variable name for the API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for the API base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// DefaultBaseURL is the default OpenAI-compatible API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default chat model
	DefaultModel = "gpt-4o-mini"
	// DefaultSourceLang is the default source language tag
	DefaultSourceLang = "en"
	// DefaultTargetLang is the default target language tag
	DefaultTargetLang = "ja"
	// DefaultOCRLanguage is the default Tesseract language code
	DefaultOCRLanguage = "eng"
	// DefaultConcurrency is the default translation concurrency
	DefaultConcurrency = 3
	// DefaultRequestTimeout bounds one translation request
	DefaultRequestTimeout = 60 * time.Second
	// DefaultMaxUploadSize is the default upload size limit in bytes
	DefaultMaxUploadSize = 50 * 1024 * 1024
)

// DefaultAllowedExtensions lists the input formats accepted by upload
var DefaultAllowedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}

// Config holds all service settings
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"`
	OpenAIModel   string `json:"openai_model"`

	SourceLang  string `json:"source_lang"`
	TargetLang  string `json:"target_lang"`
	OCRLanguage string `json:"ocr_language"`

	UploadDir string `json:"upload_dir"`
	OutputDir string `json:"output_dir"`
	FontDir   string `json:"font_dir"`
	CachePath string `json:"cache_path"`

	RequestTimeoutSeconds int      `json:"request_timeout_seconds"`
	Concurrency           int      `json:"concurrency"`
	MaxUploadSize         int64    `json:"max_upload_size"`
	AllowedExtensions     []string `json:"allowed_extensions"`

	LayoutModelPath    string `json:"layout_model_path"`
	LayoutModelEnabled bool   `json:"layout_model_enabled"`
}

// RequestTimeout returns the translation request timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Manager loads, validates and persists the service configuration
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a Manager with the specified config path. An empty
// path selects the default location under the user config directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, ".config", "procrai", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

func defaultConfig() *Config {
	return &Config{
		OpenAIBaseURL:         DefaultBaseURL,
		OpenAIModel:           DefaultModel,
		SourceLang:            DefaultSourceLang,
		TargetLang:            DefaultTargetLang,
		OCRLanguage:           DefaultOCRLanguage,
		UploadDir:             "uploads",
		OutputDir:             "outputs",
		FontDir:               "fonts",
		Concurrency:           DefaultConcurrency,
		RequestTimeoutSeconds: int(DefaultRequestTimeout / time.Second),
		MaxUploadSize:         DefaultMaxUploadSize,
		AllowedExtensions:     DefaultAllowedExtensions,
	}
}

// Load reads the config file. A missing file leaves the defaults in place;
// environment variables fill the API key and base URL when the file left
// them empty.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults",
				logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		config := &Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			m.config = config
		}
	}

	m.applyDefaults()
	m.applyEnv()

	if err := m.validateLanguages(); err != nil {
		return err
	}

	logger.Info("configuration loaded",
		logger.String("path", m.configPath),
		logger.String("model", m.config.OpenAIModel),
		logger.String("source", m.config.SourceLang),
		logger.String("target", m.config.TargetLang),
	)
	return nil
}

func (m *Manager) applyDefaults() {
	c := m.config
	if c.OpenAIBaseURL == "" {
		c.OpenAIBaseURL = DefaultBaseURL
	}
	if c.OpenAIModel == "" {
		c.OpenAIModel = DefaultModel
	}
	if c.SourceLang == "" {
		c.SourceLang = DefaultSourceLang
	}
	if c.TargetLang == "" {
		c.TargetLang = DefaultTargetLang
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = DefaultOCRLanguage
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.OutputDir == "" {
		c.OutputDir = "outputs"
	}
	if c.FontDir == "" {
		c.FontDir = "fonts"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = int(DefaultRequestTimeout / time.Second)
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = DefaultAllowedExtensions
	}
}

func (m *Manager) applyEnv() {
	if m.config.OpenAIAPIKey == "" {
		if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
			logger.Info("using API key from environment variable")
			m.config.OpenAIAPIKey = key
		}
	}
	if url := os.Getenv(EnvOpenAIBaseURL); url != "" {
		m.config.OpenAIBaseURL = url
	}
}

// validateLanguages rejects source/target tags that are not valid BCP 47
func (m *Manager) validateLanguages() error {
	for _, tag := range []string{m.config.SourceLang, m.config.TargetLang} {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("invalid language tag %q: %w", tag, err)
		}
	}
	return nil
}

// Save writes the current configuration to the config file
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	return m.config
}

// Set replaces the current configuration after validating it
func (m *Manager) Set(config *Config) error {
	m.config = config
	m.applyDefaults()
	return m.validateLanguages()
}
