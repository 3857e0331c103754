package progress

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dfarias/aulatrack/internal/curriculum"
)

func stubModules() []curriculum.Module {
	return []curriculum.Module{
		{
			ID:    "m1",
			Title: "Fundamentos",
			Activities: []curriculum.Activity{
				{ID: "a1", Title: "Boas-vindas", Kind: curriculum.KindVideo, Content: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", DurationValue: 5, DurationUnit: "min"},
				{ID: "a2", Title: "Material de apoio", Kind: curriculum.KindDocument, Content: "https://example.com/apostila.pdf", DurationValue: 10, DurationUnit: "min"},
			},
		},
	}
}

func startStub(t *testing.T) (*StubBackend, *RestBackend) {
	t.Helper()
	stub := NewStubBackend(stubModules())
	server := httptest.NewServer(stub.Router())
	t.Cleanup(server.Close)
	return stub, NewRestBackend(server.URL, "")
}

func TestRestPositionRoundTrip(t *testing.T) {
	_, backend := startStub(t)
	ctx := context.Background()

	pos, err := backend.Position(ctx, "c1", "a1", "")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos.Exists {
		t.Errorf("expected no stored position, got %+v", pos)
	}

	if err := backend.SavePosition(ctx, "c1", "m1", "a1", 42, "enr-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	pos, err = backend.Position(ctx, "c1", "a1", "enr-1")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if !pos.Exists || pos.Seconds != 42 {
		t.Errorf("expected stored 42, got %+v", pos)
	}

	// stored positions never regress
	if err := backend.SavePosition(ctx, "c1", "m1", "a1", 10, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	pos, _ = backend.Position(ctx, "c1", "a1", "")
	if pos.Seconds != 42 {
		t.Errorf("expected 42 after lower save, got %+v", pos)
	}
}

func TestRestToggleCompletion(t *testing.T) {
	stub, backend := startStub(t)
	ctx := context.Background()

	if err := backend.ToggleCompletion(ctx, "c1", "m1", "a1", true, 300, ""); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := backend.ToggleCompletion(ctx, "c1", "m1", "a1", true, 300, ""); err != nil {
		t.Fatalf("repeat toggle: %v", err)
	}

	completed, seconds, ok := stub.CompletionState("c1", "a1")
	if !ok || !completed || seconds != 300 {
		t.Errorf("expected completed record at 300s, got completed=%v seconds=%d ok=%v", completed, seconds, ok)
	}

	if err := backend.ToggleCompletion(ctx, "c1", "m1", "a1", false, 0, ""); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	completed, _, ok = stub.CompletionState("c1", "a1")
	if !ok || completed {
		t.Errorf("expected incomplete record, got completed=%v ok=%v", completed, ok)
	}
}

func TestRestCurriculumCarriesProgress(t *testing.T) {
	_, backend := startStub(t)
	ctx := context.Background()

	if err := backend.SavePosition(ctx, "c1", "m1", "a1", 42, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := backend.ToggleCompletion(ctx, "c1", "m1", "a2", true, 600, ""); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	modules, progress, err := backend.Curriculum(ctx, "enr-1")
	if err != nil {
		t.Fatalf("curriculum: %v", err)
	}

	if len(modules) != 1 || len(modules[0].Activities) != 2 {
		t.Fatalf("unexpected curriculum shape: %+v", modules)
	}
	if modules[0].Activities[0].Kind != curriculum.KindVideo {
		t.Errorf("expected video kind, got %q", modules[0].Activities[0].Kind)
	}
	if modules[0].Activities[1].Kind != curriculum.KindDocument {
		t.Errorf("expected document kind, got %q", modules[0].Activities[1].Kind)
	}

	if p := progress["a1"]; p.Seconds != 42 || p.Completed {
		t.Errorf("expected a1 at 42s incomplete, got %+v", p)
	}
	if p := progress["a2"]; !p.Completed {
		t.Errorf("expected a2 completed, got %+v", p)
	}
}

func TestParseKindLegacyLabels(t *testing.T) {
	cases := map[string]curriculum.ContentKind{
		"video":     curriculum.KindVideo,
		"document":  curriculum.KindDocument,
		"documento": curriculum.KindDocument,
		"texto":     curriculum.KindText,
		"link":      curriculum.KindLink,
		"":          curriculum.KindVideo,
		"webinar":   curriculum.KindVideo,
	}
	for label, want := range cases {
		if got := parseKind(label); got != want {
			t.Errorf("parseKind(%q) = %q, want %q", label, got, want)
		}
	}
}
