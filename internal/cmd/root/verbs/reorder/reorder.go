// Package reorder implements the reorder verb. It is interactive only: the
// whole point is dragging rows around, which needs a terminal.
package reorder

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/cmd/root/verbs"
	"github.com/meshguard/panelctl/internal/cmd/root/verbs/get"
	"github.com/meshguard/panelctl/internal/datatable"
	"github.com/meshguard/panelctl/internal/log"
	"github.com/meshguard/panelctl/internal/meta"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
	"github.com/meshguard/panelctl/internal/util/normalizers"
)

const Verb = verbs.Reorder

var (
	reorderUse = Verb.String()

	reorderShort = i18n.T("root.verbs.reorder.reorderShort", "Reorder panel objects interactively")

	reorderLong = normalizers.LongDesc(i18n.T("root.verbs.reorder.reorderLong",
		`Use reorder to change the order of panel objects whose position matters.

Grab a row with g (or drag it with the mouse), move it, and drop it. The new
order is applied immediately and committed to the panel; if the panel rejects
it the previous order is restored.`))

	reorderExamples = normalizers.Examples(i18n.T("root.verbs.reorder.reorderExamples",
		fmt.Sprintf(`
		# Reorder subscription hosts
		%[1]s reorder hosts
		`, meta.CLIName)))
)

func NewReorderCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     reorderUse,
		Short:   reorderShort,
		Long:    reorderLong,
		Example: reorderExamples,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(context.WithValue(cmd.Context(), verbs.Verb, Verb))
		},
	}

	cmd.AddCommand(newHostsCmd())

	return cmd, nil
}

func newHostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hosts",
		Short:   i18n.T("root.verbs.reorder.hostsShort", "Reorder subscription hosts by priority"),
		Aliases: []string{"host"},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			if !helper.IsInteractive() {
				return cmdpkg.PrepareExecutionErrorMsg(helper,
					"reorder requires an interactive terminal")
			}

			cfg, err := helper.GetConfig()
			if err != nil {
				return err
			}
			logger, err := helper.GetLogger()
			if err != nil {
				return err
			}
			client, err := helper.GetPanelClient(cfg, logger)
			if err != nil {
				return err
			}
			ctx := helper.GetContext()

			model, err := datatable.New(get.HostColumns(),
				datatable.WithTitle[panel.Host]("Hosts (reorder)"),
				datatable.WithEntityLabel[panel.Host]("host"),
				datatable.WithEmptyLabel[panel.Host]("No hosts found"),
				datatable.WithContext[panel.Host](ctx),
				datatable.WithLoader[panel.Host](func(ctx context.Context) ([]panel.Host, int, error) {
					page, err := client.ListHosts(ctx, panel.ListOptions{})
					return page.Items, page.Total, err
				}, "Loading hosts"),
				datatable.WithCallbacks(datatable.Callbacks[panel.Host]{
					OnToggleStatus: func(h panel.Host) error {
						_, err := client.SetHostEnabled(ctx, h.ID, h.IsDisabled)
						return err
					},
					OnDeleteConfirm: func(h panel.Host) error {
						return client.DeleteHost(ctx, h.ID)
					},
				}),
			)
			if err != nil {
				return err
			}

			sortable := datatable.NewSortable(model,
				func(ids []string) error {
					order, err := hostIDs(ids)
					if err != nil {
						return err
					}
					return client.ReorderHosts(ctx, order)
				},
				datatable.WithDuplicate[panel.Host](func(h panel.Host) error {
					_, err := client.DuplicateHost(ctx, h.ID)
					return err
				}),
			)

			streams := helper.GetStreams()

			log.DisableErrorMirroring()
			defer log.EnableErrorMirroring()

			program := tea.NewProgram(sortable,
				tea.WithContext(ctx),
				tea.WithInput(streams.In),
				tea.WithOutput(streams.Out),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err := program.Run(); err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return nil
		},
	}
}

// hostIDs converts row IDs back to the numeric host IDs the API expects.
func hostIDs(ids []string) ([]int, error) {
	out := make([]int, len(ids))
	for i, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("unexpected host id %q: %w", id, err)
		}
		out[i] = n
	}
	return out, nil
}
