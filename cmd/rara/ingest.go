package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Farid841/rara/internal/extract"
	"github.com/Farid841/rara/internal/model"
)

// newIngestCmd builds the operator command that creates a model from
// documents on disk, without going through the HTTP surface. Arguments are
// doublestar globs, e.g. "docs/**/*.pdf".
func newIngestCmd() *cobra.Command {
	var (
		name         string
		instructions string
	)
	cmd := &cobra.Command{
		Use:   "ingest [globs...]",
		Short: "create a model from local documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			svcs, err := buildServices(cfg)
			if err != nil {
				return err
			}

			files, err := collectFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no supported documents matched %v", args)
			}

			assistant, err := svcs.registry.Create(cmd.Context(), name, instructions)
			if err != nil {
				return err
			}
			fmt.Printf("model %q created (%s), ingesting %d documents\n", assistant.Name, assistant.ID, len(files))

			bar := progressbar.Default(int64(len(files)), "ingesting")
			reports := svcs.ingest.Ingest(cmd.Context(), assistant.ID, files, func(report model.FileReport) {
				if report.Stage.Terminal() {
					_ = bar.Add(1)
				}
			})
			_ = bar.Finish()

			failed := 0
			for _, report := range reports {
				if report.Stage.Failed() {
					failed++
					fmt.Printf("  FAIL %-40s %s: %s\n", report.Name, report.Stage, report.Error)
					continue
				}
				fmt.Printf("  ok   %s\n", report.Name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(reports))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "model name")
	cmd.Flags().StringVar(&instructions, "instructions", "", "system instructions for the assistant")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("instructions")
	return cmd
}

// collectFiles expands the glob patterns and loads every matching file with
// a supported extension, sorted for a stable ingestion order.
func collectFiles(patterns []string) ([]model.UploadFile, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			if !extract.Supported(match) {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			paths = append(paths, match)
		}
	}
	sort.Strings(paths)

	files := make([]model.UploadFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, model.UploadFile{Name: filepath.Base(path), Bytes: data})
	}
	return files, nil
}
