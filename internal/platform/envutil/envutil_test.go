package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("SC_INT", "12")
	t.Setenv("SC_BAD_INT", "x")
	t.Setenv("SC_BOOL", "on")
	t.Setenv("SC_FLOAT", "2.5")
	t.Setenv("SC_SECS", "30")
	t.Setenv("SC_CSV", " a@x.io, ,b@x.io ")

	if got := Int("SC_INT", 1); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("SC_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if !Bool("SC_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	if got := Float("SC_FLOAT", 0); got != 2.5 {
		t.Fatalf("Float: got %v", got)
	}
	if got := Seconds("SC_SECS", time.Minute); got != 30*time.Second {
		t.Fatalf("Seconds: got %v", got)
	}
	if got := Seconds("SC_MISSING", time.Minute); got != time.Minute {
		t.Fatalf("Seconds default: got %v", got)
	}
	csv := CSV("SC_CSV")
	if len(csv) != 2 || csv[0] != "a@x.io" || csv[1] != "b@x.io" {
		t.Fatalf("CSV: got %v", csv)
	}
	if String("SC_MISSING", "dflt") != "dflt" {
		t.Fatalf("String default not applied")
	}
}
