package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/quill/internal/resolve"
	"github.com/danielolaszy/quill/pkg/models"
)

const activeCycleArg = "active-cycle"

func newDirectoryCmd(global *globalOptions) *cobra.Command {
	var teamID string

	cmd := &cobra.Command{
		Use:   "directory <teams|projects|cycles|users|active-cycle>",
		Short: "List the tracker names quill resolves against",
		Long: `List a tracker directory collection with ids and names.

Use it to see why a name in a draft did not resolve. Projects, cycles and
users are scoped to a team on trackers that need one (jira, github, trello);
pass the team id with --team. On linear, --team narrows cycles to that team.

Examples:
  quill directory teams
  quill directory users --team ENG
  quill directory active-cycle --team 1c2f...`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"teams", "projects", "cycles", "users", activeCycleArg},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			collection := args[0]
			var kind models.EntityKind
			if collection != activeCycleArg {
				k, err := models.ParseEntityKind(collection)
				if err != nil {
					return err
				}
				kind = k
			} else if teamID == "" {
				return fmt.Errorf("--team is required for %s", activeCycleArg)
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			dir, err := directoryFactory(ctx, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if collection == activeCycleArg {
				return printActiveCycle(cmd, dir, teamID, out)
			}

			if kind == models.KindUser {
				users, err := dir.ListUsers(ctx, teamID)
				if err != nil {
					return err
				}
				printUsers(out, users)
				return nil
			}

			entities, err := dir.ListEntities(ctx, kind, teamID)
			if err != nil {
				return err
			}
			printEntities(out, entities)
			return nil
		},
	}

	cmd.Flags().StringVar(&teamID, "team", "", "Team id scoping projects, cycles and users")
	return cmd
}

func printActiveCycle(cmd *cobra.Command, dir resolve.Directory, teamID string, out io.Writer) error {
	cycle, err := dir.ActiveCycle(cmd.Context(), teamID)
	if err != nil {
		return err
	}
	if cycle == nil {
		fmt.Fprintf(out, "No active cycle for team '%s'\n", teamID)
		return nil
	}
	printEntities(out, []models.Entity{*cycle})
	return nil
}

func printEntities(out io.Writer, entities []models.Entity) {
	if len(entities) == 0 {
		fmt.Fprintln(out, "No entries found")
		return
	}
	for _, e := range entities {
		fmt.Fprintf(out, "%-40s %s\n", e.ID, e.Name)
	}
}

func printUsers(out io.Writer, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(out, "No entries found")
		return
	}
	for _, u := range users {
		fmt.Fprintf(out, "%-40s %-24s %-24s %s\n",
			u.ID, orDash(u.Name), orDash(u.DisplayName), orDash(u.Email))
	}
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}
