package models

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestScanFailCutsOnCharacterBoundary(t *testing.T) {
	var s Scan
	// 254 ASCII bytes then a 3-byte rune straddling the column limit.
	s.Fail(errors.New(strings.Repeat("x", 254) + "発生"))
	if !s.Failed {
		t.Fatalf("scan should be marked failed")
	}
	if !utf8.ValidString(s.FailedReason) {
		t.Fatalf("reason is not valid UTF-8: %q", s.FailedReason[250:])
	}
	if len(s.FailedReason) != 254 {
		t.Fatalf("expected 254 bytes got %d", len(s.FailedReason))
	}
}

func TestScanFailShortReason(t *testing.T) {
	var s Scan
	s.Fail(errors.New("recognize: context deadline exceeded"))
	if s.FailedReason != "recognize: context deadline exceeded" {
		t.Fatalf("got %q", s.FailedReason)
	}
}
