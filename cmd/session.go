package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the subjects and scores of the current session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, false, func(s *session.Session) error {
			if s.CreatedAt.IsZero() {
				fmt.Println("No session yet.")
				return nil
			}
			fmt.Printf("Session %s (updated %s)\n", s.ID, s.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			for i, sub := range s.Subjects {
				score := "-"
				if sub.Score != nil {
					score = strconv.FormatFloat(*sub.Score, 'f', -1, 64)
				}
				fmt.Printf("%3d. %-20s %s\n", i+1, sub.Name, score)
			}
			return nil
		})
	},
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [subject]...",
	Short: "Start a new session",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		st, err := openStore(v)
		if err != nil {
			return err
		}
		defer st.Close()

		s := session.New()
		if err := s.Add(args...); err != nil {
			return err
		}
		if err := session.NewManager(st.SessionRepo()).Save(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	},
}

var sessionAddCmd = &cobra.Command{
	Use:   "add <subject>...",
	Short: "Add subjects to the current session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, true, func(s *session.Session) error {
			return s.Add(args...)
		})
	},
}

var sessionRemoveCmd = &cobra.Command{
	Use:   "remove <subject>",
	Short: "Remove a subject from the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, true, func(s *session.Session) error {
			return s.Remove(args[0])
		})
	},
}

var sessionScoreCmd = &cobra.Command{
	Use:   "score <subject> <score>",
	Short: "Record a subject's prior exam score (0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", args[1], err)
		}
		return withSession(cmd, true, func(s *session.Session) error {
			return s.SetScore(args[0], score)
		})
	},
}

// withSession loads the session named by --session (or the latest), runs
// fn, and saves the session afterwards when save is set.
func withSession(cmd *cobra.Command, save bool, fn func(*session.Session) error) error {
	v := viperForCmd(cmd)
	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	m := session.NewManager(st.SessionRepo())
	s, err := m.Current(ctx, v.GetString("session"))
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return m.Save(ctx, s)
}

func init() {
	sessionCmd.PersistentFlags().String("session", "", "Session ID (default: latest session)")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	sessionCmd.AddCommand(sessionAddCmd)
	sessionCmd.AddCommand(sessionRemoveCmd)
	sessionCmd.AddCommand(sessionScoreCmd)
}
