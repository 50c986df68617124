package textenc_test

import (
	"testing"

	"github.com/renatogalera/hunkpick/pkg/textenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("utf-8 passes text through", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"", "UTF-8", "utf8"} {
			c, err := textenc.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, "utf-8", c.Name())

			out, err := c.Encode("+café\n")
			require.NoError(t, err)
			assert.Equal(t, "+café\n", out)
		}
	})

	t.Run("latin1 round trip", func(t *testing.T) {
		t.Parallel()

		c, err := textenc.Lookup("latin1")
		require.NoError(t, err)

		encoded, err := c.Encode("+café")
		require.NoError(t, err)
		assert.Equal(t, "+caf\xe9", encoded)

		decoded, err := c.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, "+café", decoded)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		t.Parallel()

		_, err := textenc.Lookup("klingon")
		assert.Error(t, err)
	})
}
