package get

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/datatable"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
)

func groupColumns() datatable.Columns[panel.Group] {
	return datatable.Columns[panel.Group]{
		{Key: "name", Title: "Name", Cell: func(g panel.Group) string {
			return g.Name
		}},
		{Key: "state", Title: "State", Cell: func(g panel.Group) string {
			if g.IsDisabled {
				return "disabled"
			}
			return "enabled"
		}},
		{Key: "inbounds", Title: "Inbound Tags", Visibility: datatable.WideOnly, Cell: func(g panel.Group) string {
			return strings.Join(g.InboundTags, ", ")
		}},
		{Key: "users", Title: "Users", Visibility: datatable.WideOnly, Cell: func(g panel.Group) string {
			return strconv.Itoa(g.TotalUsers)
		}},
	}
}

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "groups",
		Short:   i18n.T("root.verbs.get.groupsShort", "List inbound groups"),
		Aliases: []string{"group"},
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
				model, err := datatable.New(groupColumns(),
					datatable.WithTitle[panel.Group]("Groups"),
					datatable.WithEntityLabel[panel.Group]("group"),
					datatable.WithEmptyLabel[panel.Group]("No groups found"),
					datatable.WithContext[panel.Group](ctx),
					datatable.WithLoader[panel.Group](func(ctx context.Context) ([]panel.Group, int, error) {
						page, err := client.ListGroups(ctx, opts)
						return page.Items, page.Total, err
					}, "Loading groups"),
				)
				if err != nil {
					return err
				}
				return runTable(helper, model)
			}

			page, err := client.ListGroups(ctx, opts)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return printPage(helper, page.Items)
		},
	}
}
