package root

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"

	"github.com/meshguard/panelctl/internal/build"
	"github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/cmd/common"
	"github.com/meshguard/panelctl/internal/cmd/root/verbs/get"
	"github.com/meshguard/panelctl/internal/cmd/root/verbs/reorder"
	"github.com/meshguard/panelctl/internal/cmd/root/version"
	"github.com/meshguard/panelctl/internal/config"
	cerr "github.com/meshguard/panelctl/internal/err"
	"github.com/meshguard/panelctl/internal/iostreams"
	"github.com/meshguard/panelctl/internal/log"
	"github.com/meshguard/panelctl/internal/meta"
	"github.com/meshguard/panelctl/internal/profile"
	"github.com/meshguard/panelctl/internal/theme"
	"github.com/meshguard/panelctl/internal/util"
	"github.com/meshguard/panelctl/internal/util/i18n"
	"github.com/meshguard/panelctl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  panelctl is a terminal admin console for a proxy management panel.

  It lists and manipulates users, admins, nodes, groups and subscription
  hosts, interactively when run in a terminal.`))

	rootShort = i18n.T("root.rootShort", fmt.Sprintf("%s administers a %s", meta.CLIName, meta.ProductName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the configuration file path.
	configFilePath = config.ExpandDefaultConfigFilePath()
	currProfile    = profile.DefaultProfile

	currConfig   config.Hook
	streams      *iostreams.IOStreams
	pMgr         profile.Manager
	logger       *slog.Logger
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)
	colorTheme   = theme.NewFlag(common.DefaultColorTheme)

	buildInfo *build.Info
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			ctx := context.WithValue(cmd.Context(), config.ConfigKey, currConfig)
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, profile.ProfileManagerKey, pMgr)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = theme.ContextWithPalette(ctx, theme.Current())
			cmd.SetContext(ctx)
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		config.ExpandDefaultConfigFilePath(),
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().StringVarP(&currProfile, common.ProfileFlagName, common.ProfileFlagShort,
		profile.DefaultProfile,
		"Specify the profile to use for this command.")

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	rootCmd.PersistentFlags().Var(colorTheme, common.ColorThemeFlagName,
		fmt.Sprintf(`Configures the color theme for interactive tables.
- Config path: [ %s ]`,
			common.ColorThemeConfigPath))

	util.CheckError(rootCmd.RegisterFlagCompletionFunc(common.ColorThemeFlagName,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return theme.Available(), cobra.ShellCompDirectiveNoFileComp
		}))

	util.CheckError(rootCmd.RegisterFlagCompletionFunc(common.LogLevelFlagName,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return logLevel.Allowed, cobra.ShellCompDirectiveNoFileComp
		}))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() error {
	rootCmd.AddCommand(version.NewVersionCmd())

	c, e := get.NewGetCmd()
	if e != nil {
		return e
	}
	rootCmd.AddCommand(c)

	c, e = reorder.NewReorderCmd()
	if e != nil {
		return e
	}
	rootCmd.AddCommand(c)

	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	err := addCommands()
	util.CheckError(err)

	// The profile selects the configuration subtree, so it cannot itself be
	// read through viper. Look for a well known environment variable before
	// flags are parsed; the flag still wins when given.
	profileEnvVar, found := os.LookupEnv(fmt.Sprintf("%s_PROFILE", strings.ToUpper(meta.CLIName)))
	if found {
		currProfile = profileEnvVar
	}
}

func initConfig() {
	cfg, e1 := config.GetConfig(configFilePath, currProfile)
	util.CheckError(e1)
	currConfig = cfg

	pMgr = profile.NewManager(cfg.Viper)

	f := rootCmd.Flags().Lookup(common.OutputFlagName)
	util.CheckError(cfg.BindFlag(common.OutputConfigPath, f))

	f = rootCmd.Flags().Lookup(common.LogLevelFlagName)
	util.CheckError(cfg.BindFlag(common.LogLevelConfigPath, f))

	f = rootCmd.Flags().Lookup(common.ColorThemeFlagName)
	util.CheckError(cfg.BindFlag(common.ColorThemeConfigPath, f))

	util.CheckError(theme.SetCurrent(cfg.GetString(common.ColorThemeConfigPath)))

	l, e2 := buildLogger(cfg)
	util.CheckError(e2)
	logger = l

	logger.LogAttrs(context.Background(), slog.LevelDebug, "configuration loaded",
		slog.String("path", cfg.GetPath()),
		slog.String("profile", cfg.GetProfile()),
		slog.String("theme", theme.CurrentName()))
}

// buildLogger writes structured JSON records to the configured log file and
// mirrors error-level records to stderr so failures surface without tailing
// the file. The mirror is suspended while a TUI owns the terminal.
func buildLogger(cfg config.Hook) (*slog.Logger, error) {
	levelStr := cfg.GetString(common.LogLevelConfigPath)
	if _, err := common.LogLevelStringToIota(levelStr); err != nil {
		return nil, &cerr.ConfigurationError{Err: err}
	}
	level := log.ConfigLevelStringToSlogLevel(levelStr)

	logFilePath := os.ExpandEnv(cfg.GetString(common.LogFileConfigPath))
	if logFilePath == "" {
		logFilePath = filepath.Join(filepath.Dir(cfg.GetPath()), "logs", meta.CLIName+".log")
	}
	if err := util.InitDir(filepath.Dir(logFilePath), 0o750); err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}

	primary := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})
	secondary := slog.NewTextHandler(streams.ErrOut, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(log.NewDualHandler(primary, secondary)), nil
}

func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var executionError *cerr.ExecutionError
		if errors.As(err, &executionError) {
			printer, perr := cli.Format(outputFormat.String(), s.ErrOut)
			if perr == nil {
				printer.Print(err)
				printer.Flush()
			}
			os.Exit(1)
		}
	}
}
