package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	filestorage "warden-hq/warden/pkg/storage/file"
)

var validateFlags struct {
	file   string
	dir    string
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate policy files",
	Long: `Validate policy YAML files without evaluating anything.

The validate command parses each file and checks every policy in it:
  - YAML syntax and rule envelope decoding
  - Non-empty policy UIDs
  - Recognized effects (allow, deny)
  - No mixing of string patterns and rules within one policy

Examples:
  # Validate a single file
  warden validate --file policies.yaml

  # Validate a directory
  warden validate --dir policies/

  # JSON output for CI
  warden validate --file policies.yaml --format json`,
	RunE: validatePolicies,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.file, "file", "f", "", "policy file to validate")
	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of policy files")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// fileResult is the validation outcome for a single policy file.
type fileResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Policies int      `json:"policies"`
	Errors   []string `json:"errors,omitempty"`
}

func validatePolicies(cmd *cobra.Command, args []string) error {
	if validateFlags.file == "" && validateFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if validateFlags.file != "" {
		files = append(files, validateFlags.file)
	}
	if validateFlags.dir != "" {
		for _, glob := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(validateFlags.dir, glob))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]fileResult, 0, len(files))
	failed := false
	for _, file := range files {
		result := validatePolicyFile(cmd.Context(), file)
		if !result.Valid {
			failed = true
		}
		results = append(results, result)
	}

	if validateFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			if result.Valid {
				fmt.Printf("✓ %s (%d policies)\n", result.File, result.Policies)
				continue
			}
			fmt.Printf("✗ %s\n", result.File)
			for _, msg := range result.Errors {
				fmt.Printf("  %s\n", msg)
			}
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func validatePolicyFile(ctx context.Context, path string) fileResult {
	result := fileResult{File: path, Valid: true}

	if _, err := os.Stat(path); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	st, err := filestorage.New(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	const batch = 500
	for offset := 0; ; offset += batch {
		page, err := st.GetAll(ctx, batch, offset)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			result.Policies++
			if err := p.Validate(); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("policy %q: %v", p.UID, err))
			}
		}
	}
	return result
}
