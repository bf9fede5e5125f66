package mcq

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPoolJSON_NumericKeyOrder(t *testing.T) {
	data, err := json.Marshal(samplePool(10))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	i2, i10 := strings.Index(s, `"2":`), strings.Index(s, `"10":`)
	if !strings.HasPrefix(s, `{"1":`) || i2 < 0 || i10 < i2 {
		t.Errorf("keys not in numeric order: %.80s", s)
	}

	var back Pool
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 10 || back[10].Question != sampleQuestion(10).Question {
		t.Errorf("round trip lost questions: %d", len(back))
	}
}

func TestPoolJSON_RejectsBadIndex(t *testing.T) {
	var p Pool
	for _, in := range []string{`{"x":{}}`, `{"0":{}}`, `[]`} {
		if err := json.Unmarshal([]byte(in), &p); err == nil {
			t.Errorf("expected error for %s", in)
		}
	}
}

func TestPoolsJSON(t *testing.T) {
	pools := Pools{
		{Source: "Lec3", Pool: samplePool(2)},
		{Source: "Lec1", Pool: samplePool(1)},
	}
	data, err := json.Marshal(pools)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"Lec3":{"1":`) {
		t.Errorf("json = %.40s", data)
	}

	var back Pools
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0].Source != "Lec3" || back[1].Source != "Lec1" {
		t.Fatalf("order lost: %+v", back)
	}
	if p, ok := back.Get("Lec3"); !ok || len(p) != 2 {
		t.Errorf("Get(Lec3) = %v, %v", p, ok)
	}
	if _, ok := back.Get("Lec9"); ok {
		t.Error("Get(Lec9) should miss")
	}
	if m := back.Map(); len(m) != 2 || len(m["Lec1"]) != 1 {
		t.Errorf("Map = %v", m)
	}
}

func TestPoolsJSON_RejectsNonObject(t *testing.T) {
	var ps Pools
	if err := json.Unmarshal([]byte(`["Lec1"]`), &ps); err == nil {
		t.Error("expected error for array input")
	}
}
