package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/session"
)

func addScoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("score", nil, "Named score, e.g. --score Lec1=40 (repeatable)")
	f.StringSlice("scores", nil, "Scores in source order, named Lec1..LecN, e.g. --scores 40,75,90")
	f.String("session", "", "Session ID to read scores from (default: latest session)")
}

// parseScores reads named "source=score" pairs and positional scores. The
// two forms cannot be mixed.
func parseScores(named, positional []string) ([]mcq.Score, error) {
	if len(named) > 0 && len(positional) > 0 {
		return nil, errors.New("use --score or --scores, not both")
	}
	if len(positional) > 0 {
		values := make([]float64, len(positional))
		for i, s := range positional {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid score %q: %w", s, err)
			}
			values[i] = f
		}
		return mcq.PositionalScores(values...), nil
	}

	out := make([]mcq.Score, 0, len(named))
	for _, pair := range named {
		source, value, ok := strings.Cut(pair, "=")
		source = strings.TrimSpace(source)
		if !ok || source == "" {
			return nil, fmt.Errorf("invalid score %q, want source=score", pair)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score for %s: %w", source, err)
		}
		out = append(out, mcq.Score{Source: source, Value: f})
	}
	return out, nil
}

// resolveScores takes scores from flags, falling back to the session.
func resolveScores(ctx context.Context, v *viper.Viper, sessions *session.Manager) ([]mcq.Score, *session.Session, error) {
	scores, err := parseScores(v.GetStringSlice("score"), v.GetStringSlice("scores"))
	if err != nil {
		return nil, nil, err
	}
	sess, err := sessions.Current(ctx, v.GetString("session"))
	if err != nil {
		return nil, nil, err
	}
	if len(scores) > 0 {
		return scores, sess, nil
	}
	if len(sess.Subjects) == 0 {
		return nil, nil, errors.New("no scores given; pass --score/--scores or record them with 'quizforge session score'")
	}
	scores, err = sess.Scores()
	if err != nil {
		return nil, nil, err
	}
	return scores, sess, nil
}
