package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// detectContentDir looks for a directory holding config-<lang>.json files.
func detectContentDir() string {
	for _, dir := range []string{"site", "content", "."} {
		matches, _ := filepath.Glob(filepath.Join(dir, "config-*.json"))
		if len(matches) > 0 {
			return dir
		}
	}
	return "site"
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to folio! Let's configure your portfolio.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Content directory.
	contentPrompt := promptui.Prompt{
		Label:   "Directory with config-<lang>.json files",
		Default: detectContentDir(),
	}
	contentDir, err := contentPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	cfg.ContentDir = contentDir

	// 2. Default language.
	langPrompt := promptui.Select{
		Label: "Default language",
		Items: []string{"en", "de"},
	}
	_, lang, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}
	cfg.DefaultLanguage = lang

	// 3. Offline storage backend.
	backendPrompt := promptui.Select{
		Label: "Offline cache storage",
		Items: []string{
			"memory — lost on restart",
			"sqlite — single file in the data directory",
			"bolt   — bbolt file in the data directory",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	cfg.Offline.Backend = []Backend{BackendMemory, BackendSQLite, BackendBolt}[backendIdx]

	// 4. Output directory.
	outputPrompt := promptui.Prompt{
		Label:   "Output directory for the generated site",
		Default: cfg.OutputDir,
	}
	outputDir, err := outputPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	cfg.OutputDir = outputDir

	// 5. Extra critical assets.
	criticalPrompt := promptui.Prompt{
		Label:   "Extra critical offline assets (comma-separated, leave blank for defaults)",
		Default: "",
	}
	criticalStr, err := criticalPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("critical assets: %w", err)
	}
	cfg.Offline.Critical = append(cfg.Offline.Critical, splitAndTrim(criticalStr)...)

	if _, err := os.Stat(cfg.ContentDir); os.IsNotExist(err) {
		fmt.Printf("\nNote: %s does not exist yet. Add config-en.json and config-de.json before running folio serve.\n", cfg.ContentDir)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
