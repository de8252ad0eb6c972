package fs

import "testing"

func TestFinderInfoCodesAndLabel(t *testing.T) {
	raw := make([]byte, 32)
	copy(raw[0:4], "TEXT")
	copy(raw[4:8], "ttxt")
	raw[8] = 0x40 // invisible
	raw[9] = 0x0C // label 6

	fi, err := ParseFinderInfo(raw)
	if err != nil {
		t.Fatalf("ParseFinderInfo: %v", err)
	}
	if fi.FileType() != "TEXT" || fi.Creator() != "ttxt" {
		t.Fatalf("codes=%q/%q", fi.FileType(), fi.Creator())
	}
	if fi.Flags()&FinderFlagIsInvisible == 0 {
		t.Fatalf("expected invisible flag, flags=%#x", fi.Flags())
	}
	if fi.Label() != 6 {
		t.Fatalf("Label=%d want 6", fi.Label())
	}

	relabeled := fi.WithLabel(2)
	if relabeled.Label() != 2 {
		t.Fatalf("WithLabel(2) gave %d", relabeled.Label())
	}
	if relabeled.Flags()&FinderFlagIsInvisible == 0 {
		t.Fatalf("WithLabel must preserve other flags")
	}
	if fi.Label() != 6 {
		t.Fatalf("WithLabel must not mutate receiver")
	}
}

func TestFinderInfoEmptyCodes(t *testing.T) {
	fi, err := ParseFinderInfo(make([]byte, 32))
	if err != nil {
		t.Fatalf("ParseFinderInfo: %v", err)
	}
	if fi.FileType() != "" || fi.Creator() != "" {
		t.Fatalf("zeroed codes should be empty")
	}
	if _, err := ParseFinderInfo([]byte{1, 2}); err == nil {
		t.Fatalf("expected error for short record")
	}
}
