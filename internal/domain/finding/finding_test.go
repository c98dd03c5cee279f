package finding

import "testing"

func TestSet_Add(t *testing.T) {
	var s Set
	if !s.Empty() {
		t.Fatal("new set must be empty")
	}

	s.Add(Compatibility{
		Versions: map[string]string{"cuda": "12.4"},
		Notes:    []Note{{Severity: SeverityWarning, Message: "w"}, {Severity: SeverityInfo, Message: "i"}},
	})
	s.Add(&TroubleshootFlow{Issue: "CUDA Out of Memory"})
	s.Add(CodeExamples{Examples: []CodeExample{{Name: "vectorAdd.cu"}}})

	if s.Empty() {
		t.Fatal("set should not be empty")
	}
	if s.Compatibility == nil || s.Compatibility.Versions["cuda"] != "12.4" {
		t.Errorf("unexpected compatibility %+v", s.Compatibility)
	}
	if s.Troubleshooting == nil || s.Troubleshooting.Issue != "CUDA Out of Memory" {
		t.Errorf("unexpected troubleshooting %+v", s.Troubleshooting)
	}
	if len(s.CodeExamples) != 1 || s.CodeExamples[0].Name != "vectorAdd.cu" {
		t.Errorf("unexpected code examples %+v", s.CodeExamples)
	}
}

func TestCompatibility_Warnings(t *testing.T) {
	c := Compatibility{Notes: []Note{
		{Severity: SeverityInfo, Message: "a"},
		{Severity: SeverityWarning, Message: "b"},
		{Severity: SeverityWarning, Message: "c"},
	}}
	w := c.Warnings()
	if len(w) != 2 || w[0] != "b" || w[1] != "c" {
		t.Errorf("expected [b c], got %v", w)
	}
}

func TestKinds(t *testing.T) {
	var fs = []Finding{Compatibility{}, TroubleshootFlow{}, CodeExamples{}}
	want := []Kind{KindCompatibility, KindTroubleshooting, KindCodeExamples}
	for i, f := range fs {
		if f.Kind() != want[i] {
			t.Errorf("expected %q, got %q", want[i], f.Kind())
		}
	}
}
