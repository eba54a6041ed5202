package get

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/datatable"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
)

// HostColumns is shared with the reorder command, which presents the same
// list with drag reordering on top.
func HostColumns() datatable.Columns[panel.Host] {
	return datatable.Columns[panel.Host]{
		{Key: "priority", Title: "#", Cell: func(h panel.Host) string {
			return strconv.Itoa(h.Priority)
		}},
		{Key: "remark", Title: "Remark", Cell: func(h panel.Host) string {
			return h.Remark
		}},
		{Key: "address", Title: "Address", Cell: func(h panel.Host) string {
			if h.Port > 0 {
				return fmt.Sprintf("%s:%d", h.Address, h.Port)
			}
			return h.Address
		}},
		{Key: "inbound", Title: "Inbound", Visibility: datatable.WideOnly, Cell: func(h panel.Host) string {
			return h.InboundTag
		}},
		{Key: "sni", Title: "SNI", Visibility: datatable.WideOnly, Cell: func(h panel.Host) string {
			return h.SNI
		}},
		{Key: "security", Title: "Security", Visibility: datatable.WideOnly, Cell: func(h panel.Host) string {
			return h.Security
		}},
		{Key: "state", Title: "State", Visibility: datatable.WideOnly, Cell: func(h panel.Host) string {
			if h.IsDisabled {
				return "disabled"
			}
			return "enabled"
		}},
	}
}

func newHostsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hosts",
		Short:   i18n.T("root.verbs.get.hostsShort", "List subscription hosts in priority order"),
		Aliases: []string{"host"},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmdpkg.BuildHelper(c, args)
			client, err := buildClient(helper)
			if err != nil {
				return err
			}
			opts := listOptions(c.Flags())
			ctx := helper.GetContext()

			interactive, err := useInteractive(helper)
			if err != nil {
				return err
			}
			if interactive {
				model, err := datatable.New(HostColumns(),
					datatable.WithTitle[panel.Host]("Hosts"),
					datatable.WithEntityLabel[panel.Host]("host"),
					datatable.WithEmptyLabel[panel.Host]("No hosts found"),
					datatable.WithContext[panel.Host](ctx),
					datatable.WithLoader[panel.Host](func(ctx context.Context) ([]panel.Host, int, error) {
						page, err := client.ListHosts(ctx, opts)
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
				return runTable(helper, model)
			}

			page, err := client.ListHosts(ctx, opts)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return printPage(helper, page.Items)
		},
	}
}
