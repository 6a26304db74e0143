package normalize

import "testing"

func TestTextStripsFillers(t *testing.T) {
	got := Text("There was uh a blast um near the market")
	if got != "There was a blast near the market" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextStripsMultiWordFiller(t *testing.T) {
	got := Text("It was you know really loud")
	if got != "It was really loud" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextCollapsesWhitespace(t *testing.T) {
	got := Text("blast   near\t the  market")
	if got != "blast near the market" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextCollapsesTerminatorRuns(t *testing.T) {
	got := Text("धमाका हुआ।।।")
	if got != "धमाका हुआ।" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextCollapsesExclamationRuns(t *testing.T) {
	got := Text("Loud blast!!!")
	if got != "Loud blast!" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextRepairsInvalidUTF8(t *testing.T) {
	got := Text("blast \xff here")
	if got != "blast here" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTextTrims(t *testing.T) {
	if got := Text("  blast  "); got != "blast" {
		t.Fatalf("unexpected text: %q", got)
	}
}
