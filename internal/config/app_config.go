// Package config loads treeforge defaults from global and local configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tyemirov/treeforge/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Preview PreviewConfiguration `mapstructure:"preview"`
	Create  CreateConfiguration  `mapstructure:"create"`
	Scan    ScanConfiguration    `mapstructure:"scan"`
	Serve   ServeConfiguration   `mapstructure:"serve"`
}

// PreviewConfiguration defines defaults for the preview command.
type PreviewConfiguration struct {
	Format  string `mapstructure:"format"`
	Summary *bool  `mapstructure:"summary"`
	Copy    *bool  `mapstructure:"copy"`
}

// CreateConfiguration defines defaults for the create command.
type CreateConfiguration struct {
	Destination string `mapstructure:"destination"`
	Format      string `mapstructure:"format"`
	Headers     *bool  `mapstructure:"headers"`
	Workers     *int   `mapstructure:"workers"`
	DryRun      *bool  `mapstructure:"dry_run"`
	Preview     *bool  `mapstructure:"preview"`
}

// ScanConfiguration defines defaults for the scan command.
type ScanConfiguration struct {
	Format    string   `mapstructure:"format"`
	Summary   *bool    `mapstructure:"summary"`
	Gitignore *bool    `mapstructure:"gitignore"`
	Exclude   []string `mapstructure:"exclude"`
}

// ServeConfiguration defines defaults for the serve command.
type ServeConfiguration struct {
	Address string `mapstructure:"address"`
	// Root confines every create request to destinations below this directory.
	Root  string   `mapstructure:"root"`
	Rate  *float64 `mapstructure:"rate"`
	Burst *int     `mapstructure:"burst"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Local values override global ones key by key.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		expandedPath, expandErr := utils.ExpandHomeDirectory(explicitPath)
		if expandErr != nil {
			return "", expandErr
		}
		if filepath.IsAbs(expandedPath) {
			return expandedPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(expandedPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, expandedPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Preview = result.Preview.merge(override.Preview)
	result.Create = result.Create.merge(override.Create)
	result.Scan = result.Scan.merge(override.Scan)
	if override.Serve.Address != "" {
		result.Serve.Address = override.Serve.Address
	}
	if override.Serve.Root != "" {
		result.Serve.Root = override.Serve.Root
	}
	if override.Serve.Rate != nil {
		result.Serve.Rate = override.Serve.Rate
	}
	if override.Serve.Burst != nil {
		result.Serve.Burst = override.Serve.Burst
	}
	return result
}

func (config PreviewConfiguration) merge(override PreviewConfiguration) PreviewConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

func (config CreateConfiguration) merge(override CreateConfiguration) CreateConfiguration {
	result := config
	if override.Destination != "" {
		result.Destination = override.Destination
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Headers != nil {
		result.Headers = cloneBool(override.Headers)
	}
	if override.Workers != nil {
		result.Workers = cloneInt(override.Workers)
	}
	if override.DryRun != nil {
		result.DryRun = cloneBool(override.DryRun)
	}
	if override.Preview != nil {
		result.Preview = cloneBool(override.Preview)
	}
	return result
}

func (config ScanConfiguration) merge(override ScanConfiguration) ScanConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Gitignore != nil {
		result.Gitignore = cloneBool(override.Gitignore)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string(nil), override.Exclude...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
