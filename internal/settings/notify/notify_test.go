package notify

import "testing"

func TestNotifier_SubscribeAndNotify(t *testing.T) {
	n := New()

	var got []Change
	sub := n.Subscribe(func(c Change) { got = append(got, c) })
	defer sub.Unsubscribe()

	n.Notify(Change{Kind: KindUpdate, Category: "editor", Dirty: true})

	if len(got) != 1 {
		t.Fatalf("observer saw %d changes, want 1", len(got))
	}
	if got[0].Kind != KindUpdate || got[0].Category != "editor" || !got[0].Dirty {
		t.Errorf("change = %+v", got[0])
	}
}

func TestNotifier_UnsubscribeIsIndependent(t *testing.T) {
	n := New()

	var a, b int
	subA := n.Subscribe(func(Change) { a++ })
	subB := n.Subscribe(func(Change) { b++ })

	n.Notify(Change{Kind: KindUpdate})
	subA.Unsubscribe()
	n.Notify(Change{Kind: KindUpdate})

	if a != 1 {
		t.Errorf("a = %d, want 1", a)
	}
	if b != 2 {
		t.Errorf("b = %d, want 2", b)
	}
	subB.Unsubscribe()

	if n.Len() != 0 {
		t.Errorf("Len() = %d after all unsubscribes, want 0", n.Len())
	}
}

func TestNotifier_UnsubscribeTwice(t *testing.T) {
	n := New()
	sub := n.Subscribe(func(Change) {})
	sub.Unsubscribe()
	sub.Unsubscribe() // must not panic
}

func TestNotifier_CategoryScope(t *testing.T) {
	n := New()

	var editorChanges, allChanges int
	subCat := n.SubscribeCategory("editor", func(Change) { editorChanges++ })
	defer subCat.Unsubscribe()
	subAll := n.Subscribe(func(Change) { allChanges++ })
	defer subAll.Unsubscribe()

	n.Notify(Change{Kind: KindUpdate, Category: "editor"})
	n.Notify(Change{Kind: KindUpdate, Category: "general"})

	if editorChanges != 1 {
		t.Errorf("editor observer saw %d changes, want 1", editorChanges)
	}
	if allChanges != 2 {
		t.Errorf("global observer saw %d changes, want 2", allChanges)
	}
}

func TestNotifier_WholeDocumentReachesCategoryObservers(t *testing.T) {
	n := New()

	var got int
	sub := n.SubscribeCategory("editor", func(Change) { got++ })
	defer sub.Unsubscribe()

	n.Notify(Change{Kind: KindReplace})

	if got != 1 {
		t.Errorf("category observer saw %d whole-document changes, want 1", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUpdate, "update"},
		{KindReplace, "replace"},
		{KindReset, "reset"},
		{KindDiscard, "discard"},
		{KindSaved, "saved"},
		{KindLoaded, "loaded"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
