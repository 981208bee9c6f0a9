package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var envKeys = []string{
	"CONFIG_FILE", "BACKEND", "SOURCE_FOLDER_ID", "TEMP_PARENT_FOLDER_ID", "SHARED_DRIVE_FOLDER_ID",
	"SERVICE_ACCOUNT_FILE", "DELEGATED_USER_EMAIL", "API_URL", "ACCESS_KEY", "SECRET_KEY",
	"BUCKET_NAME", "REGION", "REPORT_DIR", "RELOCATE_POLICY", "MAX_DEPTH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test_value")
	defer os.Unsetenv("TEST_VAR")

	result := getEnv("TEST_VAR", "default_value")
	if result != "test_value" {
		t.Errorf("getEnv() = %s, want %s", result, "test_value")
	}

	result = getEnv("NON_EXISTENT_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}

	os.Setenv("EMPTY_VAR", "")
	defer os.Unsetenv("EMPTY_VAR")

	result = getEnv("EMPTY_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	testVars := map[string]string{
		"BACKEND":                "s3",
		"SOURCE_FOLDER_ID":       "source-id",
		"TEMP_PARENT_FOLDER_ID":  "temp-id",
		"SHARED_DRIVE_FOLDER_ID": "shared-id",
		"SERVICE_ACCOUNT_FILE":   "/secrets/sa.json",
		"DELEGATED_USER_EMAIL":   "owner@example.com",
		"BUCKET_NAME":            "test-bucket",
		"REGION":                 "test-region",
		"RELOCATE_POLICY":        "record",
		"MAX_DEPTH":              "12",
	}
	for key, value := range testVars {
		t.Setenv(key, value)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Backend != BackendS3 {
		t.Errorf("config.Backend = %s, want %s", config.Backend, BackendS3)
	}
	if config.SourceFolderID != "source-id" {
		t.Errorf("config.SourceFolderID = %s, want %s", config.SourceFolderID, "source-id")
	}
	if config.TempParentFolderID != "temp-id" {
		t.Errorf("config.TempParentFolderID = %s, want %s", config.TempParentFolderID, "temp-id")
	}
	if config.SharedDriveFolderID != "shared-id" {
		t.Errorf("config.SharedDriveFolderID = %s, want %s", config.SharedDriveFolderID, "shared-id")
	}
	if config.DelegatedUserEmail != "owner@example.com" {
		t.Errorf("config.DelegatedUserEmail = %s, want %s", config.DelegatedUserEmail, "owner@example.com")
	}
	if config.BucketName != "test-bucket" {
		t.Errorf("config.BucketName = %s, want %s", config.BucketName, "test-bucket")
	}
	if config.RelocatePolicy != "record" {
		t.Errorf("config.RelocatePolicy = %s, want %s", config.RelocatePolicy, "record")
	}
	if config.MaxDepth != 12 {
		t.Errorf("config.MaxDepth = %d, want %d", config.MaxDepth, 12)
	}

	clearEnv(t)

	config, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Backend != BackendDrive {
		t.Errorf("config.Backend = %s, want %s", config.Backend, BackendDrive)
	}
	if config.SourceFolderID != "" {
		t.Errorf("config.SourceFolderID = %s, want empty", config.SourceFolderID)
	}
	if config.MaxDepth != defaultMaxDepth {
		t.Errorf("config.MaxDepth = %d, want %d", config.MaxDepth, defaultMaxDepth)
	}
	if config.RelocatePolicy != "log" {
		t.Errorf("config.RelocatePolicy = %s, want %s", config.RelocatePolicy, "log")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `service_account_file: sa.json
source_folder_id: yaml-source
temp_parent_folder_id: yaml-temp
shared_drive_folder_id: yaml-shared
delegated_user_email: user@example.com
max_depth: 40
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SOURCE_FOLDER_ID", "env-source")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.SourceFolderID != "env-source" {
		t.Errorf("config.SourceFolderID = %s, want env override %s", config.SourceFolderID, "env-source")
	}
	if config.TempParentFolderID != "yaml-temp" {
		t.Errorf("config.TempParentFolderID = %s, want %s", config.TempParentFolderID, "yaml-temp")
	}
	if config.ServiceAccountFile != "sa.json" {
		t.Errorf("config.ServiceAccountFile = %s, want %s", config.ServiceAccountFile, "sa.json")
	}
	if config.MaxDepth != 40 {
		t.Errorf("config.MaxDepth = %d, want %d", config.MaxDepth, 40)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() with a missing explicit config file returned no error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_depth: [1, 2"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CONFIG_FILE", bad)
	if _, err := Load(); err == nil {
		t.Error("Load() with malformed YAML returned no error")
	}

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("MAX_DEPTH", "deep")
	if _, err := Load(); err == nil {
		t.Error("Load() with non-numeric MAX_DEPTH returned no error")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Backend:             BackendDrive,
		ServiceAccountFile:  "sa.json",
		SourceFolderID:      "a",
		TempParentFolderID:  "b",
		SharedDriveFolderID: "c",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := valid.RequireDestination(); err != nil {
		t.Errorf("RequireDestination() error = %v", err)
	}

	noDestination := valid
	noDestination.SharedDriveFolderID = ""
	if err := noDestination.Validate(); err != nil {
		t.Errorf("Validate() without destination error = %v", err)
	}
	if err := noDestination.RequireDestination(); err == nil {
		t.Error("RequireDestination() without destination returned no error")
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "ftp" }, "unknown backend"},
		{"drive without credentials", func(c *Config) { c.ServiceAccountFile = "" }, "service_account_file"},
		{"s3 without bucket", func(c *Config) { c.Backend = BackendS3 }, "bucket_name"},
		{"missing source", func(c *Config) { c.SourceFolderID = "" }, "source_folder_id"},
		{"missing staging", func(c *Config) { c.TempParentFolderID = "" }, "temp_parent_folder_id"},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max_depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
