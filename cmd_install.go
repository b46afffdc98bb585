package main

import (
	"fmt"
	"os"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/monotrail-dev/wheelinstall/pkg/cliutil"
	"github.com/monotrail-dev/wheelinstall/pkg/install"
	"github.com/monotrail-dev/wheelinstall/pkg/python"
)

// loadEnvFile reads the target-environment description that every install
// command needs.
func loadEnvFile(filename string) (*python.Environment, error) {
	yamlBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var env python.Environment
	if err := yaml.Unmarshal(yamlBytes, &env, yaml.DisallowUnknownFields); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := env.Init(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &env, nil
}

func init() {
	var (
		envFile     string
		jobs        int
		workers     int
		lockTimeout time.Duration
		batchOpts   install.BatchOptions
	)
	cmd := &cobra.Command{
		Use:   "install [flags] WHEELFILE.whl...",
		Short: "Install wheel files in to a Python environment",
		Long: "Install one or more wheel files in to the Python environment described " +
			"by the --env-file.  The environment file is YAML:" +
			"\n\n" +
			"    interpreter: /venv/bin/python3.9\n" +
			"    implementation: cpython\n" +
			"    version: {major: 3, minor: 9}\n" +
			"    scheme:\n" +
			"      purelib: /venv/lib/python3.9/site-packages\n" +
			"      platlib: /venv/lib/python3.9/site-packages\n" +
			"      headers: /venv/include/python3.9\n" +
			"      scripts: /venv/bin\n" +
			"      data: /venv\n" +
			"    site_packages: /venv/lib/python3.9/site-packages\n" +
			"    launcher: posix\n" +
			"\n" +
			"Several wheels install with a bounded worker pool; installs in to one " +
			"shared environment serialize on the environment's advisory lock, so " +
			"concurrent invocations of this command are safe.",
		Args: cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			env, err := loadEnvFile(envFile)
			if err != nil {
				return err
			}
			batchOpts.Jobs = jobs
			batchOpts.Workers = workers
			batchOpts.LockTimeout = lockTimeout

			results, err := install.InstallAll(ctx, env, args, batchOpts)
			if err != nil {
				return err
			}
			for _, installed := range results {
				if installed != nil {
					dlog.Infof(ctx, "installed %s %s (%d files)",
						installed.Name, installed.Version, len(installed.Record))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "",
		"Read `IN_YAML_FILE` to determine details about the target environment")
	cmd.Flags().BoolVar(&batchOpts.CompileBytecode, "compile-bytecode", false,
		"Pre-compile installed .py files with the target interpreter")
	cmd.Flags().BoolVar(&batchOpts.SkipHashes, "skip-hashes", false,
		"Do not verify RECORD hashes and sizes (the zip CRC still applies)")
	cmd.Flags().BoolVar(&batchOpts.NoDirectURL, "no-direct-url", false,
		"Do not write direct_url.json")
	cmd.Flags().BoolVar(&batchOpts.FailFast, "fail-fast", false,
		"Abort the whole batch on the first failed wheel")
	cmd.Flags().IntVar(&jobs, "jobs", 0,
		"Extraction workers per wheel (0 = number of CPUs)")
	cmd.Flags().IntVar(&workers, "workers", 0,
		"Concurrent wheel installs (0 = number of CPUs)")
	cmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 0,
		"Give up on the environment lock after this long (0 = wait forever)")
	if err := cmd.MarkFlagRequired("env-file"); err != nil {
		panic(err)
	}
	argparser.AddCommand(cmd)
}
