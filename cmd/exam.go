package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/store"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Assemble an exam weighted by prior scores",
	Long: `Assemble an exam from the latest generated pools.

Each scored source gets between 2 and 9 questions, more for sources whose
score sits further from 19, summing to --total. The final-review source adds
a fixed --final-count on top.`,
	Args: cobra.NoArgs,
	RunE: runExam,
}

func init() {
	f := examCmd.Flags()
	addScoreFlags(examCmd)
	f.String("pools", "", "Pools JSON file written by 'generate' (default: latest stored batch)")
	f.Int("total", mcq.DefaultTotal, "Questions drawn across the scored sources")
	f.String("final-source", mcq.DefaultFinalSource, "Source of the fixed final-review section")
	f.Int("final-count", mcq.DefaultFinalCount, "Questions drawn from the final-review source (0 to omit)")
	f.String("sample-range", string(mcq.RangeInclusive), "Pool indices to draw from (inclusive, exclude-last)")
	f.Uint64("seed", 0, "Random seed (0 for a random exam)")
	f.Bool("mix", false, "Also output the questions as one shuffled list")
	f.StringP("output", "o", "-", "Output file for the exam JSON (- for stdout)")
}

type examOutput struct {
	ID         string                `json:"id"`
	Allocation mcq.Allocation        `json:"allocation"`
	Exam       mcq.Exam              `json:"exam"`
	Mixed      []mcq.SourcedQuestion `json:"mixed,omitempty"`
}

func runExam(cmd *cobra.Command, _ []string) error {
	v, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	ctx := cmd.Context()

	mode, err := mcq.ParseRangeMode(v.GetString("sample-range"))
	if err != nil {
		return err
	}

	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	scores, sess, err := resolveScores(ctx, v, session.NewManager(st.SessionRepo()))
	if err != nil {
		return err
	}

	final := mcq.Share{Source: v.GetString("final-source"), Count: v.GetInt("final-count")}
	alloc, err := mcq.FinalDistribution(scores, v.GetInt("total"), final)
	if err != nil {
		return err
	}
	log.Debug("allocation", "shares", alloc.Map())

	pools, err := loadPools(ctx, v, st.PoolRepo())
	if err != nil {
		return err
	}

	sampler := mcq.NewSampler(v.GetUint64("seed"), mode)
	exam, collectErr := sampler.Collection(alloc, pools)

	out := examOutput{ID: exam.ID, Allocation: alloc, Exam: exam}
	if v.GetBool("mix") {
		out.Mixed = sampler.Shuffle(exam)
	}

	if err := saveExam(ctx, st.ExamRepo(), sess, alloc, exam); err != nil {
		log.Warn("exam not saved", "error", err)
	}
	if err := writeJSON(v.GetString("output"), out); err != nil {
		return err
	}

	if collectErr != nil {
		fmt.Fprintf(os.Stderr, "exam is incomplete (%d of %d questions):\n%v\n", exam.Len(), alloc.Sum(), collectErr)
		return errors.New("exam is incomplete")
	}
	return nil
}

// loadPools reads pools from --pools, or from the most recent generate run.
func loadPools(ctx context.Context, v *viper.Viper, repo store.PoolRepo) (map[string]mcq.Pool, error) {
	if path := v.GetString("pools"); path != "" {
		var pools mcq.Pools
		if err := readJSON(path, &pools); err != nil {
			return nil, fmt.Errorf("read pools: %w", err)
		}
		return renumbered(pools.Map()), nil
	}

	recs, err := repo.LatestBatch(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("no stored pools; run 'quizforge generate' first or pass --pools")
	}
	out := make(map[string]mcq.Pool, len(recs))
	for _, rec := range recs {
		var p mcq.Pool
		if err := json.Unmarshal(rec.Questions, &p); err != nil {
			return nil, fmt.Errorf("decode stored pool %s: %w", rec.Source, err)
		}
		out[rec.Source] = p
	}
	return renumbered(out), nil
}

// renumbered closes key gaps left by hand-edited or older pool files, since
// the sampler draws from keys 1..len(pool).
func renumbered(pools map[string]mcq.Pool) map[string]mcq.Pool {
	for source, p := range pools {
		pools[source] = mcq.Renumber(p)
	}
	return pools
}

func saveExam(ctx context.Context, repo store.ExamRepo, sess *session.Session, alloc mcq.Allocation, exam mcq.Exam) error {
	allocJSON, err := json.Marshal(alloc)
	if err != nil {
		return err
	}
	examJSON, err := json.Marshal(exam)
	if err != nil {
		return err
	}
	rec := &store.ExamRecord{
		ExamID:     exam.ID,
		Total:      exam.Len(),
		Allocation: allocJSON,
		Questions:  examJSON,
	}
	if sess != nil && !sess.CreatedAt.IsZero() {
		rec.SessionID = sess.ID
	}
	return repo.Save(ctx, rec)
}
