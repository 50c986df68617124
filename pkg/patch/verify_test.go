package patch_test

import (
	"testing"

	"github.com/renatogalera/hunkpick/pkg/patch"
	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		patch   string
		wantErr bool
	}{
		{
			name:  "whole diff",
			patch: header + "\n" + body,
		},
		{
			name:  "recounted subset",
			patch: header + "\n@@ -1,2 +1 @@\n-first\n second\n",
		},
		{
			name:    "counts that do not match the body",
			patch:   header + "\n@@ -1,3 +1,3 @@\n alpha\n-beta\n gamma\n",
			wantErr: true,
		},
		{
			name:    "deleted file that still has content",
			patch:   "diff --git a/new.txt b/new.txt\ndeleted file mode 100644\nindex 2222222..0000000\n--- b/new.txt\n+++ /dev/null\n@@ -1,3 +0,2 @@\n a\n-b\n c\n",
			wantErr: true,
		},
		{
			name:  "partial deletion as a modification",
			patch: "diff --git a/new.txt b/new.txt\nindex 2222222..0000000 100644\n--- b/new.txt\n+++ b/new.txt\n@@ -1,3 +1,2 @@\n a\n-b\n c\n",
		},
		{
			name:    "bare hunk without a file header",
			patch:   "@@ -1 +1 @@\n-a\n+b\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := patch.Verify(tt.patch)
			if tt.wantErr {
				assert.ErrorIs(t, err, patch.ErrInvalidPatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}
