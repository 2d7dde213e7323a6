package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "overlay.png"), dir))
	assert.NoError(t, ValidatePathWithinDirectory(filepath.Join(dir, "sub", "overlay.png"), dir))

	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(dir, "..", "escape.png"), dir))
	assert.Error(t, ValidatePathWithinDirectory("/etc/passwd", dir))
}

func TestValidatePathWithinDirectorySymlinkEscape(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(outside, link))

	// The path looks inside dir but resolves outside it.
	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(link, "new.png"), dir))
}

func TestValidateExportPath(t *testing.T) {
	assert.NoError(t, ValidateExportPath("overlay.png"))
	assert.NoError(t, ValidateExportPath(filepath.Join(os.TempDir(), "overlay.png")))
	assert.Error(t, ValidateExportPath("/etc/overlay.png"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"overlay.png", "overlay.png"},
		{"../escape/over lay", "escape_over_lay"},
		{"curb ramp #3", "curb_ramp_3"},
		{"..", "unknown"},
		{"", "unknown"},
		{"a///b", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), 128)
	assert.NotEmpty(t, got)
}
