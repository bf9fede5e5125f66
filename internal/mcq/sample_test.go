package mcq

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionTexts(qs []Question) map[string]bool {
	out := make(map[string]bool, len(qs))
	for _, q := range qs {
		out[q.Question] = true
	}
	return out
}

func TestSample_Distinct(t *testing.T) {
	s := NewSampler(7, RangeInclusive)
	qs, err := s.Sample(samplePool(10), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 6 {
		t.Fatalf("got %d questions, want 6", len(qs))
	}
	if len(questionTexts(qs)) != 6 {
		t.Errorf("sample has duplicates: %v", qs)
	}
}

func TestSample_InsufficientPool(t *testing.T) {
	s := NewSampler(1, RangeInclusive)
	_, err := s.Sample(samplePool(4), 5)

	var ipe *InsufficientPoolError
	if !errors.As(err, &ipe) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}
	if ipe.Requested != 5 || ipe.Available != 4 {
		t.Errorf("error = %+v", ipe)
	}

	if _, err := s.Sample(samplePool(4), -1); err == nil {
		t.Error("expected error for negative count")
	}
	if qs, err := s.Sample(Pool{}, 0); err != nil || len(qs) != 0 {
		t.Errorf("empty sample = %v, %v", qs, err)
	}
}

func TestSample_ExcludeLastNeverDrawsLast(t *testing.T) {
	pool := samplePool(5)
	last := pool[5].Question

	s := NewSampler(3, RangeExcludeLast)
	for i := 0; i < 200; i++ {
		qs, err := s.Sample(pool, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if questionTexts(qs)[last] {
			t.Fatalf("exclude-last drew the last question")
		}
	}

	var ipe *InsufficientPoolError
	if _, err := s.Sample(pool, 5); !errors.As(err, &ipe) || ipe.Available != 4 {
		t.Errorf("expected 4 available under exclude-last, got %v", err)
	}
}

func TestSample_InclusiveCanDrawLast(t *testing.T) {
	pool := samplePool(5)
	s := NewSampler(3, RangeInclusive)
	qs, err := s.Sample(pool, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !questionTexts(qs)[pool[5].Question] {
		t.Error("inclusive range should include the last question")
	}
}

func TestSample_IgnoresKeysOutsideRange(t *testing.T) {
	pool := Pool{0: sampleQuestion(0), 1: sampleQuestion(1), 2: sampleQuestion(2)}
	s := NewSampler(5, RangeInclusive)
	qs, err := s.Sample(pool, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if questionTexts(qs)[pool[0].Question] {
		t.Error("index 0 must never be drawn")
	}
}

func TestSample_SeedIsDeterministic(t *testing.T) {
	pool := samplePool(20)
	a, err := NewSampler(42, RangeInclusive).Sample(pool, 8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSampler(42, RangeInclusive).Sample(pool, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Question != b[i].Question {
			t.Fatalf("position %d: %q != %q", i, a[i].Question, b[i].Question)
		}
	}
}

func TestParseRangeMode(t *testing.T) {
	for in, want := range map[string]RangeMode{
		"":             RangeInclusive,
		"inclusive":    RangeInclusive,
		"Exclude-Last": RangeExcludeLast,
	} {
		got, err := ParseRangeMode(in)
		if err != nil || got != want {
			t.Errorf("ParseRangeMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRangeMode("half"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestCollection(t *testing.T) {
	alloc := Allocation{{"Lec1", 3}, {"Lec2", 5}, {"Final", 2}}
	pools := map[string]Pool{
		"Lec1":  samplePool(10),
		"Lec2":  samplePool(4),
		"Final": samplePool(9),
	}

	exam, err := NewSampler(11, RangeInclusive).Collection(alloc, pools)

	var ipe *InsufficientPoolError
	if !errors.As(err, &ipe) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}
	if ipe.Source != "Lec2" || ipe.Requested != 5 || ipe.Available != 4 {
		t.Errorf("error = %+v", ipe)
	}

	if exam.ID == "" {
		t.Error("exam has no ID")
	}
	if len(exam.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(exam.Sections))
	}
	if exam.Sections[0].Source != "Lec1" || exam.Sections[1].Source != "Final" {
		t.Errorf("sections out of order: %s, %s", exam.Sections[0].Source, exam.Sections[1].Source)
	}
	if exam.Len() != 5 {
		t.Errorf("exam length = %d, want 5", exam.Len())
	}
}

func TestCollection_MissingPool(t *testing.T) {
	alloc := Allocation{{"Lec1", 2}, {"Lec9", 2}}
	exam, err := NewSampler(1, RangeInclusive).Collection(alloc, map[string]Pool{"Lec1": samplePool(3)})

	var ipe *InsufficientPoolError
	if !errors.As(err, &ipe) || ipe.Source != "Lec9" || ipe.Available != 0 {
		t.Errorf("expected missing Lec9 pool error, got %v", err)
	}
	if exam.Len() != 2 {
		t.Errorf("exam length = %d, want 2", exam.Len())
	}
}

func TestCollection_AllFilled(t *testing.T) {
	alloc := Allocation{{"Lec1", 2}, {"Lec2", 3}}
	pools := map[string]Pool{"Lec1": samplePool(5), "Lec2": samplePool(5)}
	exam, err := NewSampler(2, RangeInclusive).Collection(alloc, pools)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exam.Len() != alloc.Sum() {
		t.Errorf("exam length = %d, want %d", exam.Len(), alloc.Sum())
	}
}

func TestExamJSON(t *testing.T) {
	exam := Exam{
		ID: "exam-1",
		Sections: []Section{
			{Source: "Lec2", Questions: []Question{sampleQuestion(1), sampleQuestion(2)}},
			{Source: "Final", Questions: []Question{sampleQuestion(3)}},
		},
	}
	data, err := json.Marshal(exam)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]map[string]Question
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode as map: %v", err)
	}
	if raw["Lec2"]["2"].Question != sampleQuestion(2).Question {
		t.Errorf("Lec2/2 = %+v", raw["Lec2"]["2"])
	}

	var back Exam
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Sections) != 2 || back.Sections[0].Source != "Lec2" || back.Sections[1].Source != "Final" {
		t.Fatalf("sections = %+v", back.Sections)
	}
	if back.Sections[0].Questions[1].Question != sampleQuestion(2).Question {
		t.Errorf("question order lost: %+v", back.Sections[0].Questions)
	}
}

func TestShuffle(t *testing.T) {
	exam := Exam{Sections: []Section{
		{Source: "Lec1", Questions: []Question{sampleQuestion(1), sampleQuestion(2)}},
		{Source: "Lec2", Questions: []Question{sampleQuestion(3)}},
	}}
	mixed := NewSampler(9, RangeInclusive).Shuffle(exam)
	if len(mixed) != 3 {
		t.Fatalf("got %d questions, want 3", len(mixed))
	}
	sources := map[string]string{}
	for _, sq := range mixed {
		sources[sq.Question.Question] = sq.Source
	}
	if sources[sampleQuestion(3).Question] != "Lec2" || sources[sampleQuestion(1).Question] != "Lec1" {
		t.Errorf("sources = %v", sources)
	}
}
