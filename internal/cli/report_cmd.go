package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHeatmapCmd(app *App) *cobra.Command {
	var username string
	var weeks int

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Render the activity heatmap in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.findUser(username)
			if err != nil {
				return err
			}
			if weeks < 1 || weeks > 53 {
				return fmt.Errorf("--weeks must be between 1 and 53, got %d", weeks)
			}

			result, err := app.Analytics.Heatmap(user.ID, weeks, app.now())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderHeatmap(result.Grid, app.color()))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Account to report on")
	cmd.Flags().IntVar(&weeks, "weeks", 26, "Number of weeks to show, including the current one")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newStreaksCmd(app *App) *cobra.Command {
	var username string
	var days int

	cmd := &cobra.Command{
		Use:   "streaks",
		Short: "List habits with their current and longest streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.findUser(username)
			if err != nil {
				return err
			}
			if days < 1 || days > 366 {
				return fmt.Errorf("--days must be between 1 and 366, got %d", days)
			}

			habits, err := app.Habits.List(user.ID, false)
			if err != nil {
				return err
			}
			if len(habits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No habits yet.")
				return nil
			}

			now := app.now()
			rows := make([][]string, 0, len(habits))
			for _, habit := range habits {
				stats, err := app.Completions.Stats(user.ID, habit.ID, days, now)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					habit.Name,
					dayCount(stats.CurrentStreak),
					dayCount(stats.LongestStreak),
					fmt.Sprintf("%.0f%%", stats.CompletionRate*100),
				})
			}

			headers := []string{"HABIT", "CURRENT", "LONGEST", fmt.Sprintf("LAST %dD", days)}
			fmt.Fprint(cmd.OutOrStdout(), RenderTable(headers, rows, app.color()))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Account to report on")
	cmd.Flags().IntVar(&days, "days", 30, "Window for the completion rate")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
