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

func nodeColumns() datatable.Columns[panel.Node] {
	return datatable.Columns[panel.Node]{
		{Key: "name", Title: "Name", Cell: func(n panel.Node) string {
			return n.Name
		}},
		{Key: "address", Title: "Address", Cell: func(n panel.Node) string {
			return fmt.Sprintf("%s:%d", n.Address, n.Port)
		}},
		{Key: "status", Title: "Status", Cell: func(n panel.Node) string {
			return string(n.Status)
		}},
		{Key: "api-port", Title: "API Port", Visibility: datatable.WideOnly, Cell: func(n panel.Node) string {
			return strconv.Itoa(n.APIPort)
		}},
		{Key: "coefficient", Title: "Coefficient", Visibility: datatable.WideOnly, Cell: func(n panel.Node) string {
			return strconv.FormatFloat(n.UsageCoefficient, 'g', -1, 64)
		}},
		{Key: "xray", Title: "Xray", Visibility: datatable.WideOnly, Cell: func(n panel.Node) string {
			return n.XrayVersion
		}},
		{Key: "message", Title: "Message", Visibility: datatable.WideOnly, Cell: func(n panel.Node) string {
			return n.Message
		}},
	}
}

func newNodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "nodes",
		Short:   i18n.T("root.verbs.get.nodesShort", "List backend nodes"),
		Aliases: []string{"node"},
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
				model, err := datatable.New(nodeColumns(),
					datatable.WithTitle[panel.Node]("Nodes"),
					datatable.WithEntityLabel[panel.Node]("node"),
					datatable.WithEmptyLabel[panel.Node]("No nodes found"),
					datatable.WithContext[panel.Node](ctx),
					datatable.WithLoader[panel.Node](func(ctx context.Context) ([]panel.Node, int, error) {
						page, err := client.ListNodes(ctx, opts)
						return page.Items, page.Total, err
					}, "Loading nodes"),
				)
				if err != nil {
					return err
				}
				return runTable(helper, model)
			}

			page, err := client.ListNodes(ctx, opts)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return printPage(helper, page.Items)
		},
	}
}
