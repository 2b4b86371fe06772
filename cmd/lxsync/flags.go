package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateApplyOptions(opts applyOptions) error {
	if strings.TrimSpace(opts.SpecPath) == "" {
		return fmt.Errorf("spec file is required")
	}

	abs, err := filepath.Abs(opts.SpecPath)
	if err != nil {
		return fmt.Errorf("resolve spec path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("spec file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("spec path %s is a directory", abs)
	}

	return nil
}
