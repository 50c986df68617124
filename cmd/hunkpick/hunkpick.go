package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/renatogalera/hunkpick/cmd"
	"github.com/renatogalera/hunkpick/pkg/config"
	"github.com/renatogalera/hunkpick/pkg/git"
	"github.com/renatogalera/hunkpick/pkg/patch"
)

type rootFlags struct {
	configPath   string
	logLevel     string
	contextLines int
	encoding     string
	gitPath      string
	dir          string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				log.Error().Int("status", exitErr.Status).Err(exitErr.Err).Msg("git apply failed")
			}
			return exitErr.Status
		}
		log.Error().Err(err).Msg("hunkpick failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "hunkpick",
		Short: "Stage, unstage or revert any part of a file's diff",
		Long: `hunkpick applies a selection of one file's diff to the index or the
working tree: the hunk under a cursor, every hunk a range touches, or only
the lines inside a range. Patches are synthesized in memory, checked and
handed to git apply.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default ~/.config/hunkpick/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntVarP(&flags.contextLines, "context", "U", 0, "context lines for git diff")
	rootCmd.PersistentFlags().StringVar(&flags.encoding, "encoding", "", "file encoding of the diffed text")
	rootCmd.PersistentFlags().StringVar(&flags.gitPath, "git", "", "git executable")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "run as if started in this directory")

	var (
		once sync.Once
		env  *cmd.Env
		err  error
	)
	setup := func() (*cmd.Env, error) {
		once.Do(func() {
			env, err = setupEnvironment(flags)
		})
		return env, err
	}

	for _, action := range []git.Action{git.ActionStage, git.ActionUnstage, git.ActionRevert} {
		rootCmd.AddCommand(cmd.NewActionCmd(action, setup))
	}
	rootCmd.AddCommand(cmd.NewShowCmd(setup))
	rootCmd.AddCommand(cmd.NewPickCmd(setup))
	return rootCmd
}

// setupEnvironment loads the config file, overlays the flags and wires the
// git client into a patch engine.
func setupEnvironment(flags rootFlags) (*cmd.Env, error) {
	cfg, err := config.LoadOrCreateConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	cm := config.NewConfigManager(cfg)
	cm.RegisterFlag("contextLines", flags.contextLines)
	cm.RegisterFlag("encoding", flags.encoding)
	cm.RegisterFlag("gitPath", flags.gitPath)
	cm.RegisterFlag("logLevel", flags.logLevel)
	cfg = cm.MergeConfiguration()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		zerolog.SetGlobalLevel(level)
	}

	if !git.CheckGitRepository(flags.dir) {
		return nil, fmt.Errorf("%s is not inside a git repository", flags.dir)
	}

	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}
	client := git.NewClient(flags.dir)
	client.GitPath = cfg.GitPath
	client.Timeout = cfg.TimeoutDuration()
	client.Codec = codec

	tempDir := cfg.TempDir
	if tempDir != "" {
		if tempDir, err = filepath.Abs(tempDir); err != nil {
			return nil, fmt.Errorf("invalid temp dir: %w", err)
		}
	}

	engine := patch.NewEngine(client)
	engine.Temp = patch.DirTempFiles{Dir: tempDir}
	engine.Encode = codec.Encode
	engine.Verify = cfg.VerifyPatches

	log.Debug().
		Str("dir", flags.dir).
		Str("encoding", codec.Name()).
		Int("contextLines", cfg.ContextLines).
		Msg("environment ready")

	return &cmd.Env{Config: cfg, Client: client, Engine: engine, Dir: flags.dir}, nil
}
