package livediff

import (
	"context"
	"testing"
)

func paragraphTemplate(text string) Node {
	static := []string{"<p>", "</p>"}
	return TemplateNode(static, []Node{LeafNode(text)}, FingerprintOf(static))
}

func TestDiffTemplateFullRenderOnNilPrior(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n := paragraphTemplate("hi")

	cm, tree, err := d.diffTemplate(n, nil)
	if err != nil {
		t.Fatalf("diffTemplate() error = %v", err)
	}
	if _, ok := cm[KeyStatic]; !ok {
		t.Error("first render missing static key, want full render")
	}
	if cm["0"] != "hi" {
		t.Errorf("cm[\"0\"] = %v, want %q", cm["0"], "hi")
	}
	if tree == nil || tree.RootFP != n.Fingerprint {
		t.Errorf("returned fingerprint tree = %+v, want RootFP=%d", tree, n.Fingerprint)
	}
	if d.stats.FullRenders != 1 {
		t.Errorf("stats.FullRenders = %d, want 1", d.stats.FullRenders)
	}
}

func TestDiffTemplateIncrementalOmitsStatic(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n1 := paragraphTemplate("hi")

	_, tree, err := d.diffTemplate(n1, nil)
	if err != nil {
		t.Fatalf("first diffTemplate() error = %v", err)
	}

	n2 := paragraphTemplate("bye")
	cm, _, err := d.diffTemplate(n2, tree)
	if err != nil {
		t.Fatalf("second diffTemplate() error = %v", err)
	}
	if _, ok := cm[KeyStatic]; ok {
		t.Error("incremental render included static key, want omitted")
	}
	if cm["0"] != "bye" {
		t.Errorf("cm[\"0\"] = %v, want %q", cm["0"], "bye")
	}
	if d.stats.IncrementalRenders != 1 {
		t.Errorf("stats.IncrementalRenders = %d, want 1", d.stats.IncrementalRenders)
	}
}

func TestDiffTemplateFingerprintMismatchForcesFullRender(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n1 := paragraphTemplate("hi")
	_, tree, err := d.diffTemplate(n1, nil)
	if err != nil {
		t.Fatalf("first diffTemplate() error = %v", err)
	}

	different := []string{"<div>", "</div>"}
	n2 := TemplateNode(different, []Node{LeafNode("hi")}, FingerprintOf(different))
	cm, _, err := d.diffTemplate(n2, tree)
	if err != nil {
		t.Fatalf("second diffTemplate() error = %v", err)
	}
	if _, ok := cm[KeyStatic]; !ok {
		t.Error("fingerprint mismatch should force a full render with static included")
	}
}

func TestDiffTemplateLeafSlotsAlwaysReemit(t *testing.T) {
	// Leaf values carry no memoization of their own - only nested
	// templates and comprehensions get fingerprint-tree children - so an
	// incremental render still emits every leaf slot's current value.
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	static := []string{"<p>", " - ", "</p>"}
	n1 := TemplateNode(static, []Node{LeafNode("a"), LeafNode("b")}, FingerprintOf(static))
	_, tree, err := d.diffTemplate(n1, nil)
	if err != nil {
		t.Fatalf("first diffTemplate() error = %v", err)
	}

	n2 := TemplateNode(static, []Node{LeafNode("a"), LeafNode("c")}, FingerprintOf(static))
	cm, _, err := d.diffTemplate(n2, tree)
	if err != nil {
		t.Fatalf("second diffTemplate() error = %v", err)
	}
	if cm["0"] != "a" {
		t.Errorf("cm[\"0\"] = %v, want %q", cm["0"], "a")
	}
	if cm["1"] != "c" {
		t.Errorf("cm[\"1\"] = %v, want %q", cm["1"], "c")
	}
}

func TestDiffTemplateLengthMismatchIsStructural(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n := Node{Kind: KindTemplate, Static: []string{"a", "b", "c"}, Dynamic: []Node{LeafNode("x")}, Fingerprint: 1}

	_, _, err := d.diffTemplate(n, nil)
	if err == nil {
		t.Fatal("diffTemplate() error = nil, want structural violation")
	}
	if !IsStructuralViolation(err) {
		t.Errorf("IsStructuralViolation(err) = false, want true (err=%v)", err)
	}
}

func TestDiffComprehensionStaticElidedOnceKnown(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n := ComprehensionNode([]string{"<li>", "</li>"}, []Row{
		{LeafNode("a")},
		{LeafNode("b")},
	})

	first, err := d.diffComprehension(n, false)
	if err != nil {
		t.Fatalf("diffComprehension() error = %v", err)
	}
	if _, ok := first[KeyStatic]; !ok {
		t.Error("first comprehension render missing static key")
	}

	second, err := d.diffComprehension(n, true)
	if err != nil {
		t.Fatalf("diffComprehension() error = %v", err)
	}
	if _, ok := second[KeyStatic]; ok {
		t.Error("comprehension render with known static still emitted static")
	}
	rows, ok := second[KeyDynamics].([][]any)
	if !ok {
		t.Fatalf("second[%q] type = %T, want [][]any", KeyDynamics, second[KeyDynamics])
	}
	if len(rows) != 2 {
		t.Errorf("len(rows) = %d, want 2", len(rows))
	}
}

func TestDiffComprehensionRowLengthMismatch(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n := ComprehensionNode([]string{"<li>", "</li>"}, []Row{
		{LeafNode("a")},
		{LeafNode("b"), LeafNode("c")},
	})

	_, err := d.diffComprehension(n, false)
	if err == nil {
		t.Fatal("diffComprehension() error = nil, want structural violation")
	}
	if !IsStructuralViolation(err) {
		t.Errorf("IsStructuralViolation(err) = false, want true (err=%v)", err)
	}
}

func TestDiffComprehensionEmptyRowsStillEmitsDynamics(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	n := ComprehensionNode([]string{"<li>", "</li>"}, nil)

	cm, err := d.diffComprehension(n, false)
	if err != nil {
		t.Fatalf("diffComprehension() error = %v", err)
	}
	rows, ok := cm[KeyDynamics].([][]any)
	if !ok {
		t.Fatalf("cm[%q] type = %T, want [][]any", KeyDynamics, cm[KeyDynamics])
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestDiffSlotAbsentOmitsValue(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	v, child, err := d.diffSlot(Absent(), FPChild{})
	if err != nil {
		t.Fatalf("diffSlot() error = %v", err)
	}
	if v != nil {
		t.Errorf("diffSlot(Absent()) value = %v, want nil", v)
	}
	if child.Kind != FPChildNone {
		t.Errorf("diffSlot(Absent()) child.Kind = %v, want FPChildNone", child.Kind)
	}
}

func TestDiffSlotNestedTemplatePropagatesFingerprintChild(t *testing.T) {
	d := &diffCtx{ctx: context.Background(), stats: &Stats{}}
	nested := paragraphTemplate("x")

	_, child, err := d.diffSlot(nested, FPChild{})
	if err != nil {
		t.Fatalf("diffSlot() error = %v", err)
	}
	if child.Kind != FPChildTemplate {
		t.Errorf("diffSlot() child.Kind = %v, want FPChildTemplate", child.Kind)
	}
	if child.Tree == nil || child.Tree.RootFP != nested.Fingerprint {
		t.Errorf("diffSlot() child.Tree = %+v, want RootFP=%d", child.Tree, nested.Fingerprint)
	}
}
