package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/store"
)

var poolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "Inspect stored question pools",
}

var poolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pools, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		st, err := openStore(v)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.PoolRepo().List(cmd.Context(), store.QueryOpts{Limit: v.GetInt("limit")})
		if err != nil {
			return fmt.Errorf("query pools: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No pools stored.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-10s  %-8s  %-7s  %5s  %8s  %s\n",
			"ID", "Timestamp", "Source", "Batch", "Format", "Count", "Attempts", "Complete")
		fmt.Println(strings.Repeat("─", 90))
		for _, r := range recs {
			done := "✓"
			if !r.Complete {
				done = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-10s  %-8s  %-7s  %5d  %8d  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(r.Source, 10),
				truncate(r.BatchID, 8),
				r.Format,
				r.Count,
				r.Attempts,
				done,
			)
		}
		return nil
	},
}

var poolsShowCmd = &cobra.Command{
	Use:   "show [source]",
	Short: "Print stored pools as JSON (latest batch, or the newest pool of one source)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		st, err := openStore(v)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		var recs []store.PoolRecord
		if len(args) == 1 {
			rec, err := st.PoolRepo().Latest(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no pool stored for %s", args[0])
			}
			recs = []store.PoolRecord{*rec}
		} else {
			recs, err = st.PoolRepo().LatestBatch(ctx)
			if err != nil {
				return err
			}
		}

		var pools mcq.Pools
		for _, rec := range recs {
			var p mcq.Pool
			if err := json.Unmarshal(rec.Questions, &p); err != nil {
				return fmt.Errorf("decode pool %s: %w", rec.Source, err)
			}
			pools = append(pools, mcq.SourcePool{Source: rec.Source, Pool: p})
		}
		return writeJSON(v.GetString("output"), pools)
	},
}

func init() {
	poolsListCmd.Flags().IntP("limit", "n", 20, "Number of pools to show")
	poolsShowCmd.Flags().StringP("output", "o", "-", "Output file (- for stdout)")

	poolsCmd.AddCommand(poolsListCmd)
	poolsCmd.AddCommand(poolsShowCmd)
}
