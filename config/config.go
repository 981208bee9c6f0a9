package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendDrive = "drive"
	BackendS3    = "s3"

	defaultConfigFile = "config.yaml"
	defaultMaxDepth   = 256
)

type Config struct {
	Backend string `yaml:"backend"`

	SourceFolderID      string `yaml:"source_folder_id"`
	TempParentFolderID  string `yaml:"temp_parent_folder_id"`
	SharedDriveFolderID string `yaml:"shared_drive_folder_id"`

	ServiceAccountFile string `yaml:"service_account_file"`
	DelegatedUserEmail string `yaml:"delegated_user_email"`

	ApiURL     string `yaml:"api_url"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	BucketName string `yaml:"bucket_name"`
	Region     string `yaml:"region"`

	ReportDir      string `yaml:"report_dir"`
	MaxDepth       int    `yaml:"max_depth"`
	RelocatePolicy string `yaml:"relocate_policy"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (config.yaml by
// default, optional), then lets environment variables override both.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	config := &Config{
		Backend:        BackendDrive,
		MaxDepth:       defaultMaxDepth,
		RelocatePolicy: "log",
	}

	path := os.Getenv("CONFIG_FILE")
	if err := config.loadFile(path); err != nil {
		return nil, err
	}

	config.Backend = getEnv("BACKEND", config.Backend)
	config.SourceFolderID = getEnv("SOURCE_FOLDER_ID", config.SourceFolderID)
	config.TempParentFolderID = getEnv("TEMP_PARENT_FOLDER_ID", config.TempParentFolderID)
	config.SharedDriveFolderID = getEnv("SHARED_DRIVE_FOLDER_ID", config.SharedDriveFolderID)
	config.ServiceAccountFile = getEnv("SERVICE_ACCOUNT_FILE", config.ServiceAccountFile)
	config.DelegatedUserEmail = getEnv("DELEGATED_USER_EMAIL", config.DelegatedUserEmail)
	config.ApiURL = getEnv("API_URL", config.ApiURL)
	config.AccessKey = getEnv("ACCESS_KEY", config.AccessKey)
	config.SecretKey = getEnv("SECRET_KEY", config.SecretKey)
	config.BucketName = getEnv("BUCKET_NAME", config.BucketName)
	config.Region = getEnv("REGION", config.Region)
	config.ReportDir = getEnv("REPORT_DIR", config.ReportDir)
	config.RelocatePolicy = getEnv("RELOCATE_POLICY", config.RelocatePolicy)

	if raw := os.Getenv("MAX_DEPTH"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_DEPTH %q: %w", raw, err)
		}
		config.MaxDepth = depth
	}

	return config, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			slog.Debug("config file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendDrive:
		if c.ServiceAccountFile == "" {
			errs = append(errs, errors.New("service_account_file is required for the drive backend"))
		}
	case BackendS3:
		if c.BucketName == "" {
			errs = append(errs, errors.New("bucket_name is required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	if c.SourceFolderID == "" {
		errs = append(errs, errors.New("source_folder_id is required"))
	}
	if c.TempParentFolderID == "" {
		errs = append(errs, errors.New("temp_parent_folder_id is required"))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, errors.New("max_depth must not be negative"))
	}

	return errors.Join(errs...)
}

// RequireDestination is checked only by commands that relocate.
func (c *Config) RequireDestination() error {
	if c.SharedDriveFolderID == "" {
		return errors.New("shared_drive_folder_id is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
