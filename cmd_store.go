package main

import (
	"path/filepath"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/monotrail-dev/wheelinstall/pkg/cliutil"
	"github.com/monotrail-dev/wheelinstall/pkg/install"
)

var argparserStore = &cobra.Command{
	Use:   "store {[flags]|SUBCOMMAND...}",
	Short: "Work with the shared package store",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,
}

func init() {
	argparser.AddCommand(argparserStore)
}

func init() {
	var (
		envFile     string
		storeRoot   string
		jobs        int
		workers     int
		lockTimeout time.Duration
		batchOpts   install.BatchOptions
	)
	cmd := &cobra.Command{
		Use:   "install [flags] WHEELFILE.whl...",
		Short: "Install wheel files in to the shared store",
		Long: "Install one or more wheel files in to the shared store, one " +
			"self-contained directory per (name, version, tag).  A wheel whose store " +
			"slot is already complete is skipped, so repeat installs are cheap.  " +
			"Distinct wheels install in parallel, each under its own slot lock.",
		Args: cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			ctx := flags.Context()

			env, err := loadEnvFile(envFile)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(storeRoot)
			if err != nil {
				return err
			}
			store := &install.Store{Root: root}
			batchOpts.Jobs = jobs
			batchOpts.Workers = workers
			batchOpts.LockTimeout = lockTimeout

			results, err := store.InstallAll(ctx, env, args, batchOpts)
			if err != nil {
				return err
			}
			for _, installed := range results {
				if installed == nil {
					continue
				}
				if installed.Record == nil {
					dlog.Infof(ctx, "%s %s: already in store", installed.Name, installed.Version)
				} else {
					dlog.Infof(ctx, "stored %s %s (%d files)",
						installed.Name, installed.Version, len(installed.Record))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "",
		"Read `IN_YAML_FILE` to determine details about the target environment")
	cmd.Flags().StringVar(&storeRoot, "store-root", "",
		"Root `DIR` of the shared store")
	cmd.Flags().BoolVar(&batchOpts.CompileBytecode, "compile-bytecode", false,
		"Pre-compile installed .py files with the target interpreter")
	cmd.Flags().BoolVar(&batchOpts.SkipHashes, "skip-hashes", false,
		"Do not verify RECORD hashes and sizes (the zip CRC still applies)")
	cmd.Flags().BoolVar(&batchOpts.FailFast, "fail-fast", false,
		"Abort the whole batch on the first failed wheel")
	cmd.Flags().IntVar(&jobs, "jobs", 0,
		"Extraction workers per wheel (0 = number of CPUs)")
	cmd.Flags().IntVar(&workers, "workers", 0,
		"Concurrent wheel installs (0 = number of CPUs)")
	cmd.Flags().DurationVar(&lockTimeout, "lock-timeout", 0,
		"Give up on a slot lock after this long (0 = wait forever)")
	for _, flag := range []string{"env-file", "store-root"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	argparserStore.AddCommand(cmd)
}
