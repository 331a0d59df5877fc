package document

import (
	"strings"
	"testing"
)

func TestSampleDocumentRoundTrip(t *testing.T) {
	doc := NewSampleDocument("proj_test")
	if len(doc.Shapes) != 6 {
		t.Fatalf("sample has %d shapes, want 6", len(doc.Shapes))
	}
	for _, r := range doc.Shapes[:5] {
		if r.Profile == nil || !r.Profile.IsParametric() {
			t.Errorf("shape %d has no parametric profile", r.ID)
		}
	}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Project.ID != "proj_test" || len(got.Shapes) != 6 {
		t.Errorf("parsed = %+v", got.Project)
	}
	if got.Shapes[5].Commands[1].Type != "bezierTo" {
		t.Errorf("bezier command lost: %+v", got.Shapes[5].Commands)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
	_, err := Parse([]byte(`{"project":{"version":99}}`))
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("err = %v, want version error", err)
	}
	doc, err := Parse([]byte(`{"project":{"id":"proj_x","version":1}}`))
	if err != nil || doc.Shapes == nil {
		t.Errorf("Parse empty shapes = %v, %v", doc, err)
	}
}
