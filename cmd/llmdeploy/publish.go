package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"llmdeploy/internal/config"
	"llmdeploy/internal/models"
)

const maxPublishFileBytes = 10 << 20

func newPublishCmd(cfg *config.Config) *cobra.Command {
	var name string
	var noWait bool

	cmd := &cobra.Command{
		Use:   "publish <dir>",
		Short: "Publish a local directory as a new Pages repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidatePublish(); err != nil {
				return err
			}
			files, err := readFileSet(args[0])
			if err != nil {
				return err
			}
			repoName, err := publishName(name, args[0])
			if err != nil {
				return err
			}

			logger := slog.Default()
			publisher, err := newPublisher(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			id, err := publisher.EnsureRepository(ctx, repoName)
			if err != nil {
				return err
			}
			result, err := publisher.Publish(ctx, id, files)
			if err != nil {
				return err
			}
			publisher.ActivateStaticHosting(ctx, id)
			if !noWait && !publisher.AwaitLiveDeployment(ctx, id, result.CommitHash, cfg.GitHub.MaxChecks) {
				logger.Warn("pages site not confirmed live", "repo", id.FullName(), "commit", result.CommitHash)
			}
			return writeOutput(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "task name (defaults to the directory name)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "do not poll for the Pages build")
	return cmd
}

func publishName(name, dir string) (string, error) {
	if strings.TrimSpace(name) == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		name = filepath.Base(abs)
	}
	repoName := models.CanonicalName(name)
	if repoName == "" {
		return "", fmt.Errorf("task name %q has no usable characters", name)
	}
	return repoName, nil
}

// readFileSet loads every regular file under dir, skipping .git.
func readFileSet(dir string) (models.FileSet, error) {
	files := models.FileSet{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxPublishFileBytes {
			return fmt.Errorf("%s exceeds %d bytes", path, maxPublishFileBytes)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to publish in %s", dir)
	}
	return files, nil
}
