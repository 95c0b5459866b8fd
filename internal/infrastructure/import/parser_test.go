package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	t.Run("parses header and rows", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("name,email\nAlice,alice@example.com\nBob,\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		assert.Equal(t, []string{"name", "email"}, p.Headers())
		assert.True(t, p.HasHeader("name"))
		assert.False(t, p.HasHeader("phone"))

		rows, err := p.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Alice", rows[0].Get("name"))
		assert.Equal(t, "alice@example.com", rows[0].Get("email"))
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, "", rows[1].Get("email"))
	})

	t.Run("headers are case-insensitive", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("Name,Tax_Status\nAlice,unverified\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		assert.True(t, p.HasHeader("name"))
		assert.Empty(t, p.MissingHeaders([]string{"name", "tax_status"}))
	})

	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("\xEF\xBB\xBFname\nAlice\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"name"}, p.Headers())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects invalid encoding", func(t *testing.T) {
		_, err := NewParser(strings.NewReader("name\n\xFF\xFE invalid\n"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("pads short rows", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("name,email,phone\nAlice\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		rows, err := p.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Get("phone"))
	})

	t.Run("skips blank rows", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("name\nAlice\n,\n  ,  \nBob\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		rows, err := p.ReadAllRows()
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("supports alternate delimiter", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("name;email\nAlice;alice@example.com\n"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		rows, err := p.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "alice@example.com", rows[0].Get("email"))
	})
}
