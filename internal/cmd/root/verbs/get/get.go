package get

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/cmd/common"
	"github.com/meshguard/panelctl/internal/cmd/output/jq"
	"github.com/meshguard/panelctl/internal/cmd/root/verbs"
	"github.com/meshguard/panelctl/internal/log"
	"github.com/meshguard/panelctl/internal/meta"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
	"github.com/meshguard/panelctl/internal/util/normalizers"
)

const (
	Verb = verbs.Get

	SearchFlagName = "search"
	OffsetFlagName = "offset"
	LimitFlagName  = "limit"
)

var (
	getUse = Verb.String()

	getShort = i18n.T("root.verbs.get.getShort", "Retrieve panel objects")

	getLong = normalizers.LongDesc(i18n.T("root.verbs.get.getLong",
		`Use get to retrieve a list of panel objects.

When stdout is a terminal the result is shown as an interactive table with
row expansion and actions. Otherwise the list is printed in the configured
output format.`))

	getExamples = normalizers.Examples(i18n.T("root.verbs.get.getExamples",
		fmt.Sprintf(`
		# List proxy users
		%[1]s get users
		# Search users, JSON output
		%[1]s get users --search alice -o json
		# List backend nodes
		%[1]s get nodes
		# List subscription hosts in priority order
		%[1]s get hosts
		`, meta.CLIName)))
)

func NewGetCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     getUse,
		Short:   getShort,
		Long:    getLong,
		Example: getExamples,
		Aliases: []string{"g"},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
	}

	cmd.PersistentFlags().String(SearchFlagName, "", "Filter results server-side by a search term.")
	cmd.PersistentFlags().Int(OffsetFlagName, 0, "Number of results to skip.")
	cmd.PersistentFlags().Int(LimitFlagName, 0, "Maximum number of results to return (0 for the server default).")
	jq.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newAdminsCmd())
	cmd.AddCommand(newNodesCmd())
	cmd.AddCommand(newGroupsCmd())
	cmd.AddCommand(newHostsCmd())

	return cmd, nil
}

func listOptions(flags *pflag.FlagSet) panel.ListOptions {
	search, _ := flags.GetString(SearchFlagName)
	offset, _ := flags.GetInt(OffsetFlagName)
	limit, _ := flags.GetInt(LimitFlagName)
	return panel.ListOptions{Search: search, Offset: offset, Limit: limit}
}

// buildClient resolves config, logger and panel client for a subcommand run.
func buildClient(helper cmdpkg.Helper) (*panel.Client, error) {
	cfg, err := helper.GetConfig()
	if err != nil {
		return nil, err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return nil, err
	}
	return helper.GetPanelClient(cfg, logger)
}

// useInteractive reports whether the subcommand should run the interactive
// table: a terminal on stdout and text output requested.
func useInteractive(helper cmdpkg.Helper) (bool, error) {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return false, err
	}
	return helper.IsInteractive() && outType == common.TEXT, nil
}

// runTable drives an interactive table model until the user quits. Error
// mirroring to stderr is silenced while the program owns the terminal.
func runTable(helper cmdpkg.Helper, model tea.Model) error {
	streams := helper.GetStreams()

	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	program := tea.NewProgram(model,
		tea.WithContext(helper.GetContext()),
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := program.Run(); err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}
	return nil
}

// printPage renders a result list non-interactively, honoring the output
// format and any jq filter.
func printPage[E any](helper cmdpkg.Helper, items []E) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	streams := helper.GetStreams()

	settings, err := jq.ResolveSettings(helper.GetCmd(), cfg)
	if err != nil {
		return err
	}
	payload, handled, err := jq.ApplyToRaw(items, outType, settings, streams.Out)
	if err != nil {
		return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
	}
	if handled {
		return nil
	}

	if outType == common.YAML {
		buf, err := yaml.Marshal(payload)
		if err != nil {
			return err
		}
		_, err = streams.Out.Write(buf)
		return err
	}

	printer, err := cli.Format(outType.String(), streams.Out)
	if err != nil {
		return err
	}
	defer printer.Flush()
	printer.Print(payload)
	return nil
}
