package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// datasetCandidates are file names checked, in order, for a local dataset.
var datasetCandidates = []string{
	"guidelines.yaml",
	"guidelines.yml",
	"guidelines.json",
	"data/guidelines.json",
	"src/data/guidelines.json",
}

// detectDataset checks the current directory for a dataset file.
func detectDataset() string {
	for _, name := range datasetCandidates {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to emsguide! Let's configure the viewer.")
	fmt.Println()

	cfg := DefaultConfig()

	detected := detectDataset()
	if detected != "" {
		fmt.Printf("Detected dataset: %s\n\n", detected)
	}

	// 1. Dataset.
	datasetPrompt := promptui.Prompt{
		Label:   "Dataset file (blank for the bundled guidelines)",
		Default: detected,
	}
	dataset, err := datasetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	cfg.Dataset = dataset

	// 2. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)
	cfg.Cache.Origin = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 3. Origin.
	originPrompt := promptui.Prompt{
		Label:   "Application origin for precached assets",
		Default: cfg.Cache.Origin,
	}
	origin, err := originPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	cfg.Cache.Origin = origin

	// 4. Cache generation.
	genPrompt := promptui.Prompt{
		Label:   "Cache generation (change it to evict older caches)",
		Default: cfg.Cache.Generation,
	}
	gen, err := genPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	cfg.Cache.Generation = gen

	// 5. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{string(LogJSON), string(LogText)},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = LogFormat(format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
