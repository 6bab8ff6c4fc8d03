package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/greenledger/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if result := htmlsanitize.PlainText(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	if result := htmlsanitize.PlainText("Ada Lovelace"); result != "Ada Lovelace" {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	if result := htmlsanitize.PlainText("<b>Ada</b> Lovelace"); result != "Ada Lovelace" {
		t.Errorf("expected tags removed, got %q", result)
	}
}

func TestPlainText_RemovesScript(t *testing.T) {
	result := htmlsanitize.PlainText("Ada<script>alert('xss')</script>")
	if result != "Ada" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	if result := htmlsanitize.PlainText("Tom & Jerry"); result != "Tom & Jerry" {
		t.Errorf("expected ampersand preserved, got %q", result)
	}
}
