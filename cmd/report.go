package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/report"
	"github.com/abhisek/quizforge/internal/session"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a performance report from prior scores",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	addScoreFlags(reportCmd)
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func runReport(cmd *cobra.Command, _ []string) error {
	v, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	ctx := cmd.Context()

	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	scores, _, err := resolveScores(ctx, v, session.NewManager(st.SessionRepo()))
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, st, log)
	if err != nil {
		return err
	}
	rep, err := report.NewService(provider, report.DefaultConfig(), log).Generate(ctx, scores)
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		return writeJSON("-", rep)
	}
	fmt.Println(rep.Text)
	return nil
}
