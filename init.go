package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/rsinspect/internal/config"
)

const (
	sentinelStart = "# rsinspect:start"
	sentinelEnd   = "# rsinspect:end"
)

// newInitCmd implements `rsinspect init`, which writes (or updates) a
// default configuration block in .rsinspect.yaml.
func newInitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default .rsinspect.yaml configuration block",
		Long: `Write the default rsinspect configuration to .rsinspect.yaml in path
(default: current directory). The block is wrapped in sentinel comments so it
can be updated in place on subsequent runs without touching surrounding
content. Creates the file if it does not exist.

Keys set outside the block must not repeat keys inside it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := generateSection()
			if err != nil {
				return err
			}

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), section)
				return nil
			}

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := config.Path(dir)

			existing, _ := os.ReadFile(path)
			updated := applySection(string(existing), section)

			if dryRun {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), updated)
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
			}
			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote rsinspect config to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns the sentinel-wrapped default configuration.
func generateSection() (string, error) {
	body, err := config.Default().YAML()
	if err != nil {
		return "", err
	}

	header := `# Managed by "rsinspect init". Edits inside this block are overwritten.
#
# levels maps a lint (non_camel_case_types, non_snake_case,
# non_upper_case_globals) or a lint group (nonstandard_style, warnings) to
# allow, warn, deny or forbid:
#
#   levels:
#     nonstandard_style: deny
#
# disabled lists inspection ids from "rsinspect rules"; exclude holds
# doublestar globs of repo-relative paths to skip.`

	return sentinelStart + "\n" + header + "\n" + strings.TrimRight(body, "\n") + "\n" + sentinelEnd, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) == 0 {
		return section + "\n"
	}
	return content + "\n" + section + "\n"
}
