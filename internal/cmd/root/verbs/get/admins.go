package get

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/datatable"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
)

func adminColumns() datatable.Columns[panel.Admin] {
	return datatable.Columns[panel.Admin]{
		{Key: "username", Title: "Username", Cell: func(a panel.Admin) string {
			return a.Username
		}},
		{Key: "role", Title: "Role", Cell: func(a panel.Admin) string {
			if a.IsSudo {
				return "sudo"
			}
			return "admin"
		}},
		{Key: "state", Title: "State", Cell: func(a panel.Admin) string {
			if a.IsDisabled {
				return "disabled"
			}
			return "enabled"
		}},
		{Key: "users", Title: "Users", Visibility: datatable.WideOnly, Cell: func(a panel.Admin) string {
			return strconv.Itoa(a.TotalUsers)
		}},
		{Key: "traffic", Title: "Traffic", Visibility: datatable.WideOnly, Cell: func(a panel.Admin) string {
			return panel.FormatTraffic(a.UsedTraffic)
		}},
	}
}

func newAdminsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "admins",
		Short:   i18n.T("root.verbs.get.adminsShort", "List panel administrators"),
		Aliases: []string{"admin"},
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
				model, err := datatable.New(adminColumns(),
					datatable.WithTitle[panel.Admin]("Administrators"),
					datatable.WithEntityLabel[panel.Admin]("admin"),
					datatable.WithEmptyLabel[panel.Admin]("No administrators found"),
					datatable.WithContext[panel.Admin](ctx),
					datatable.WithLoader[panel.Admin](func(ctx context.Context) ([]panel.Admin, int, error) {
						page, err := client.ListAdmins(ctx, opts)
						return page.Items, page.Total, err
					}, "Loading administrators"),
				)
				if err != nil {
					return err
				}
				return runTable(helper, model)
			}

			page, err := client.ListAdmins(ctx, opts)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return printPage(helper, page.Items)
		},
	}
}
