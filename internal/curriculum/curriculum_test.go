package curriculum

import "testing"

func sampleModules() []Module {
	return []Module{
		{
			ID:    "m1",
			Title: "Introdução",
			Activities: []Activity{
				{ID: "a1", Title: "Boas-vindas", Kind: KindVideo, DurationValue: 5, DurationUnit: "min"},
				{Title: "Material de apoio", Kind: KindDocument, DurationValue: 10, DurationUnit: "min"},
			},
		},
		{
			Title:         "Fundamentos",
			DurationValue: 2,
			DurationUnit:  "h",
			Activities: []Activity{
				{ID: "a3", Title: "Conceitos", Kind: KindVideo},
				{Title: "Leitura complementar", Kind: KindText},
			},
		},
	}
}

func TestFlattenIdentifiers(t *testing.T) {
	items := Flatten(sampleModules())
	if len(items) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(items))
	}

	expected := []string{"a1", "0-1", "a3", "1-1"}
	for i, id := range expected {
		if items[i].ID != id {
			t.Errorf("item %d: expected id %s, got %s", i, id, items[i].ID)
		}
	}

	if items[1].ModuleID != "m1" {
		t.Errorf("expected inherited module id m1, got %s", items[1].ModuleID)
	}
	if items[2].ModuleID != "1" {
		t.Errorf("expected synthesized module id 1, got %s", items[2].ModuleID)
	}
	if items[3].ModuleTitle != "Fundamentos" {
		t.Errorf("expected module title Fundamentos, got %s", items[3].ModuleTitle)
	}

	// flattening twice must yield the same identifiers
	again := Flatten(sampleModules())
	for i := range items {
		if items[i].ID != again[i].ID {
			t.Errorf("unstable id at %d: %s != %s", i, items[i].ID, again[i].ID)
		}
	}
}

func TestModuleTotalSeconds(t *testing.T) {
	modules := sampleModules()

	if got := modules[0].TotalSeconds(); got != 900 {
		t.Errorf("expected 900 seconds from activity durations, got %d", got)
	}

	// no activity declares a duration: fall back to the module declaration
	if got := modules[1].TotalSeconds(); got != 7200 {
		t.Errorf("expected module-level fallback of 7200 seconds, got %d", got)
	}
}

func TestIndexOf(t *testing.T) {
	items := Flatten(sampleModules())
	if got := IndexOf(items, "a3"); got != 2 {
		t.Errorf("expected index 2, got %d", got)
	}
	if got := IndexOf(items, "missing"); got != -1 {
		t.Errorf("expected -1 for unknown id, got %d", got)
	}
}

func TestInitialSelection(t *testing.T) {
	items := Flatten(sampleModules())

	// resume candidate wins
	sel := InitialSelection(items, map[string]Progress{
		"a1":  {Completed: true, Seconds: 300},
		"a3":  {Seconds: 42},
		"0-1": {Completed: true},
	})
	if sel.Index != 2 || sel.Intent != IntentAuto {
		t.Errorf("expected auto selection of index 2, got %+v", sel)
	}

	// no resume candidate: first not-completed
	sel = InitialSelection(items, map[string]Progress{
		"a1": {Completed: true, Seconds: 300},
	})
	if sel.Index != 1 {
		t.Errorf("expected first not-completed index 1, got %+v", sel)
	}

	// everything completed: first activity
	all := map[string]Progress{}
	for _, a := range items {
		all[a.ID] = Progress{Completed: true}
	}
	if sel = InitialSelection(items, all); sel.Index != 0 {
		t.Errorf("expected fallback to index 0, got %+v", sel)
	}
}

func TestAutoSkip(t *testing.T) {
	items := Flatten(sampleModules())
	progress := map[string]Progress{"a1": {Completed: true}}

	// automatic selection of a completed activity hops exactly one step
	sel := AutoSkip(items, progress, Selection{Index: 0, Intent: IntentAuto})
	if sel.Index != 1 {
		t.Errorf("expected single hop to index 1, got %+v", sel)
	}

	// user intent suspends the hop
	sel = AutoSkip(items, progress, Selection{Index: 0, Intent: IntentUser})
	if sel.Index != 0 {
		t.Errorf("expected user selection to stay put, got %+v", sel)
	}

	// not completed: no hop
	sel = AutoSkip(items, progress, Selection{Index: 1, Intent: IntentAuto})
	if sel.Index != 1 {
		t.Errorf("expected no hop for incomplete activity, got %+v", sel)
	}

	// last activity completed: nowhere to hop
	progress[items[3].ID] = Progress{Completed: true}
	sel = AutoSkip(items, progress, Selection{Index: 3, Intent: IntentAuto})
	if sel.Index != 3 {
		t.Errorf("expected clamp at last index, got %+v", sel)
	}
}

func TestNextIncomplete(t *testing.T) {
	items := Flatten(sampleModules())
	progress := map[string]Progress{
		"0-1": {Completed: true},
		"a3":  {Completed: true},
	}

	sel, ok := NextIncomplete(items, progress, 0)
	if !ok || sel.Index != 3 {
		t.Errorf("expected skip to index 3, got %+v (%v)", sel, ok)
	}
	if sel.Intent != IntentUser {
		t.Error("advance selections must carry user intent")
	}

	// everything ahead completed: fall back to next sequential index
	progress["1-1"] = Progress{Completed: true}
	sel, ok = NextIncomplete(items, progress, 0)
	if !ok || sel.Index != 1 {
		t.Errorf("expected sequential fallback to index 1, got %+v (%v)", sel, ok)
	}

	// already at the end
	if _, ok = NextIncomplete(items, progress, 3); ok {
		t.Error("expected no advance past the last activity")
	}
}

func TestFilter(t *testing.T) {
	items := Flatten(sampleModules())

	got := Filter(items, "leitura")
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("expected [3], got %v", got)
	}

	// module title matches select every activity of the module
	got = Filter(items, "FUNDAMENTOS")
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("expected [2 3], got %v", got)
	}

	if got = Filter(items, ""); len(got) != len(items) {
		t.Errorf("empty query should match everything, got %v", got)
	}

	if got = Filter(items, "zzz"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}
