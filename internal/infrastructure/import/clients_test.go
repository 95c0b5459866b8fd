package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/backend/internal/domain/finance"
)

func TestParseClientRows(t *testing.T) {
	t.Run("accepts a clean file", func(t *testing.T) {
		data := []byte("name,company_name,email,tax_status,ref_code\n" +
			"Northwind Traders,Northwind Traders Ltd,sales@northwind.test,verified_net,\n" +
			"Acme,,,unverified,ACM\n")

		result, err := ParseClientRows(data)
		require.NoError(t, err)
		assert.True(t, result.IsClean())
		assert.Equal(t, 2, result.TotalRows)
		require.Len(t, result.Rows, 2)

		assert.Equal(t, "Northwind Traders", result.Rows[0].Name)
		assert.Equal(t, finance.TaxStatusVerifiedNet, result.Rows[0].TaxStatus)
		assert.Equal(t, "", result.Rows[0].RefCode)
		assert.Equal(t, "ACM", result.Rows[1].RefCode)
	})

	t.Run("optional columns may be absent entirely", func(t *testing.T) {
		result, err := ParseClientRows([]byte("name,tax_status\nAcme,unverified\n"))
		require.NoError(t, err)
		assert.True(t, result.IsClean())
	})

	t.Run("rejects file missing required column", func(t *testing.T) {
		_, err := ParseClientRows([]byte("name,email\nAcme,a@b.test\n"))
		var rowErr RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Contains(t, rowErr.Field, "tax_status")
	})

	t.Run("rejects empty data section", func(t *testing.T) {
		_, err := ParseClientRows([]byte("name,tax_status\n"))
		assert.ErrorIs(t, err, ErrNoDataRows)
	})

	t.Run("rejects oversized payload", func(t *testing.T) {
		_, err := ParseClientRows(make([]byte, MaxFileSize+1))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("collects row errors without stopping", func(t *testing.T) {
		data := []byte("name,tax_status,email,ref_code\n" +
			",unverified,,\n" +
			"Acme,maybe,,\n" +
			"Beta,unverified,not-an-email,\n" +
			"Gamma,unverified,,TOOLONG\n" +
			"Delta,verified_gross,,\n")

		result, err := ParseClientRows(data)
		require.NoError(t, err)
		assert.False(t, result.IsClean())
		assert.Equal(t, 5, result.TotalRows)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "Delta", result.Rows[0].Name)
		assert.Len(t, result.Errors, 4)

		fields := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"name", "tax_status", "email", "ref_code"}, fields)
	})

	t.Run("flags duplicate names within the file", func(t *testing.T) {
		data := []byte("name,tax_status\nAcme,unverified\nacme,verified_net\n")

		result, err := ParseClientRows(data)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 3, result.Errors[0].Line)
		assert.Contains(t, result.Errors[0].Message, "line 2")
	})

	t.Run("row errors carry spreadsheet line numbers", func(t *testing.T) {
		data := []byte("name,tax_status\nAcme,unverified\n,unverified\n")

		result, err := ParseClientRows(data)
		require.NoError(t, err)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, 3, result.Errors[0].Line)
	})

	t.Run("upcases supplied ref codes", func(t *testing.T) {
		result, err := ParseClientRows([]byte("name,tax_status,ref_code\nAcme,unverified,acm\n"))
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.Equal(t, "ACM", result.Rows[0].RefCode)
	})
}
