package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	got := ToHTML("**1. Google Pixel 8a** - ₹37,999\n**Why recommended?** Great camera.")
	if !strings.Contains(got, "<strong>1. Google Pixel 8a</strong>") {
		t.Errorf("bold not rendered: %q", got)
	}
	if !strings.Contains(got, "<br") {
		t.Errorf("hard line break not rendered: %q", got)
	}
}

func TestToHTMLTable(t *testing.T) {
	got := ToHTML("| Feature | Phone 1 |\n|---|---|\n| **Price** | ₹28,999 |\n")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>₹28,999</td>") {
		t.Errorf("table not rendered: %q", got)
	}
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	got := ToHTML("Compare <script>alert(1)</script> vs Pixel 8a")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html kept: %q", got)
	}
}

func TestToHTMLEmpty(t *testing.T) {
	if got := ToHTML("  \n"); got != "" {
		t.Errorf("ToHTML(blank) = %q", got)
	}
}
