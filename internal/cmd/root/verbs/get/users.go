package get

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	cmdpkg "github.com/meshguard/panelctl/internal/cmd"
	"github.com/meshguard/panelctl/internal/datatable"
	"github.com/meshguard/panelctl/internal/panel"
	"github.com/meshguard/panelctl/internal/util/i18n"
)

func dataLimitLabel(u panel.User) string {
	if u.DataLimit <= 0 {
		return "unlimited"
	}
	return panel.FormatTraffic(u.DataLimit)
}

func userColumns() datatable.Columns[panel.User] {
	return datatable.Columns[panel.User]{
		{Key: "username", Title: "Username", Cell: func(u panel.User) string {
			return u.Username
		}},
		{Key: "status", Title: "Status", Cell: func(u panel.User) string {
			return string(u.Status)
		}},
		{Key: "used", Title: "Used", Cell: func(u panel.User) string {
			return panel.FormatTraffic(u.UsedTraffic)
		}},
		{Key: "limit", Title: "Limit", Visibility: datatable.WideOnly, Cell: dataLimitLabel},
		{Key: "expire", Title: "Expires", Visibility: datatable.WideOnly, Cell: func(u panel.User) string {
			if u.Expire == nil {
				return "never"
			}
			return u.Expire.Format(time.DateOnly)
		}},
		{Key: "note", Title: "Note", Visibility: datatable.WideOnly, Cell: func(u panel.User) string {
			return u.Note
		}},
	}
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "users",
		Short:   i18n.T("root.verbs.get.usersShort", "List proxy user accounts"),
		Aliases: []string{"user"},
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
				model, err := datatable.New(userColumns(),
					datatable.WithTitle[panel.User]("Users"),
					datatable.WithEntityLabel[panel.User]("user"),
					datatable.WithEmptyLabel[panel.User]("No users found"),
					datatable.WithContext[panel.User](ctx),
					datatable.WithLoader[panel.User](func(ctx context.Context) ([]panel.User, int, error) {
						page, err := client.ListUsers(ctx, opts)
						return page.Items, page.Total, err
					}, "Loading users"),
					datatable.WithCallbacks(datatable.Callbacks[panel.User]{
						OnRowActivate: func(u panel.User) tea.Cmd {
							return datatable.Notice(fmt.Sprintf("%s: %s, used %s of %s",
								u.Username, u.Status, panel.FormatTraffic(u.UsedTraffic), dataLimitLabel(u)))
						},
						OnRowMenu: func(panel.User) tea.Cmd {
							return datatable.Notice("actions: t toggle status, x delete, c copy id")
						},
						OnToggleStatus: func(u panel.User) error {
							target := panel.UserDisabled
							if u.Status == panel.UserDisabled {
								target = panel.UserActive
							}
							_, err := client.SetUserStatus(ctx, u.Username, target)
							return err
						},
						OnDeleteConfirm: func(u panel.User) error {
							return client.DeleteUser(ctx, u.Username)
						},
					}),
				)
				if err != nil {
					return err
				}
				return runTable(helper, model)
			}

			page, err := client.ListUsers(ctx, opts)
			if err != nil {
				return cmdpkg.PrepareExecutionErrorFromErr(helper, err)
			}
			return printPage(helper, page.Items)
		},
	}
}
