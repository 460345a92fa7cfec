package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/habit-king/habitking/internal/daemon"
)

func init() {
	for _, c := range []*cobra.Command{summaryCmd, leaderboardCmd, championCmd} {
		c.Flags().StringVar(&reportMonth, "month", "", "Month as YYYY-MM (default: current month)")
	}
	for _, c := range []*cobra.Command{summaryCmd, leaderboardCmd, streakCmd, championCmd, hallCmd} {
		c.Flags().BoolVar(&reportJSON, "json", false, "Print JSON instead of a table")
	}
	hallCmd.Flags().StringVar(&hallUser, "user", "", "Include legacy stats for this user")

	rootCmd.AddCommand(summaryCmd, leaderboardCmd, streakCmd, championCmd, hallCmd)
}

var (
	reportMonth string
	reportJSON  bool
	hallUser    string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <user-id>",
	Short: "Show a user's monthly score breakdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	m, err := parseMonthFlag(reportMonth)
	if err != nil {
		return err
	}
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sum, err := d.Services.Summaries.GetMonthlySummary(context.Background(), args[0], m)
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(os.Stdout, sum)
	}

	w := newTable()
	fmt.Fprintf(w, "User\t%s\n", sum.UserID)
	fmt.Fprintf(w, "Month\t%s\n", sum.Month)
	fmt.Fprintf(w, "Habit points\t%d\n", sum.HabitPoints)
	fmt.Fprintf(w, "Study\t%sh (%s pts)\n", formatPoints(sum.StudyHours), formatPoints(sum.StudyPoints))
	fmt.Fprintf(w, "To-dos\t%d/%d (%.1f%%, +%d)\n", sum.TodosCompleted, sum.TodosTotal, sum.TodoProductivity, sum.TodoBonus)
	fmt.Fprintf(w, "Streak bonus\t%d\n", sum.StreakBonus)
	fmt.Fprintf(w, "Goal bonus\t%d\n", sum.GoalBonus)
	fmt.Fprintf(w, "Missed days\t%d\n", sum.MissedDays)
	fmt.Fprintf(w, "Activities\t%d\n", sum.TotalActivities)
	fmt.Fprintf(w, "Total\t%s\n", formatPoints(sum.TotalPoints))
	return w.Flush()
}

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard <group-id>",
	Aliases: []string{"lb"},
	Short:   "Rank a group's members for a month",
	Args:    cobra.ExactArgs(1),
	RunE:    runLeaderboard,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	m, err := parseMonthFlag(reportMonth)
	if err != nil {
		return err
	}
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	board, err := d.Services.Summaries.GetLeaderboard(context.Background(), args[0], m)
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(os.Stdout, board)
	}
	if len(board) == 0 {
		fmt.Println("No members in this group.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "#\tUSER\tPOINTS\tPRODUCTIVITY\tMISSED\tACTIVITIES")
	for i, s := range board {
		name := s.DisplayName
		if name == "" {
			name = s.UserID
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f%%\t%d\t%d\n",
			i+1, name, formatPoints(s.TotalPoints), s.TodoProductivity, s.MissedDays, s.TotalActivities)
	}
	return w.Flush()
}

var streakCmd = &cobra.Command{
	Use:   "streak <user-id>",
	Short: "Show a user's current and longest streak",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	st, err := d.Services.Streaks.GetStreak(ctx, args[0])
	if err != nil {
		return err
	}
	awards, err := d.Services.Streaks.Milestones(ctx, args[0])
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(os.Stdout, map[string]any{"streak": st, "milestones": awards})
	}

	w := newTable()
	fmt.Fprintf(w, "Current\t%d\n", st.LiveStreak())
	fmt.Fprintf(w, "Longest\t%d\n", st.LongestStreak)
	fmt.Fprintf(w, "Today qualified\t%t\n", st.TodayQualified)
	fmt.Fprintf(w, "This month\t%d/%d days\n", st.MonthCompletedDays, st.MonthElapsedDays)
	for _, a := range awards {
		fmt.Fprintf(w, "Milestone %d\t+%d on %s\n", a.Threshold, a.Bonus, a.ReachedOn)
	}
	return w.Flush()
}

var championCmd = &cobra.Command{
	Use:   "champion <group-id>",
	Short: "Show a group's champion for a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runChampion,
}

func runChampion(cmd *cobra.Command, args []string) error {
	m, err := parseMonthFlag(reportMonth)
	if err != nil {
		return err
	}
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	rec, err := d.Services.Champions.GetChampion(context.Background(), args[0], m)
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(os.Stdout, rec)
	}
	if rec == nil {
		fmt.Println("No member qualifies yet.")
		return nil
	}
	status := "leading"
	if !rec.CrownedAt.IsZero() {
		status = "crowned " + rec.CrownedAt.Format("2006-01-02 15:04")
	}
	fmt.Printf("%s %s via %s path: %s pts, %.1f%% productivity (%s)\n",
		rec.Month, rec.UserID, rec.WinPath, formatPoints(rec.TotalPoints), rec.TodoProductivity, status)
	return nil
}

var hallCmd = &cobra.Command{
	Use:   "hall-of-fame <group-id>",
	Short: "List a group's past champions and all-time records",
	Args:  cobra.ExactArgs(1),
	RunE:  runHall,
}

func runHall(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	hof, err := d.Services.Champions.GetHallOfFame(context.Background(), args[0], hallUser)
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(os.Stdout, hof)
	}
	if len(hof.Champions) == 0 {
		fmt.Println("No champions yet.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "MONTH\tCHAMPION\tPATH\tPOINTS\tPRODUCTIVITY")
	for _, c := range hof.Champions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n",
			c.Month, c.UserID, c.WinPath, formatPoints(c.TotalPoints), c.TodoProductivity)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	r := hof.Records
	fmt.Printf("\nMost championships: %s (%s)\n", r.MostChampionships.UserID, formatPoints(r.MostChampionships.Value))
	fmt.Printf("Highest points:     %s (%s in %s)\n", r.HighestPoints.UserID, formatPoints(r.HighestPoints.Value), r.HighestPoints.Month)
	if hallUser != "" {
		fmt.Printf("\n%s: %d championships\n", hallUser, hof.UserStats.TotalChampionships)
	}
	return nil
}
