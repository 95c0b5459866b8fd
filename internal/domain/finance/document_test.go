package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument(t *testing.T) {
	entityID := uuid.New()

	t.Run("creates with zeroed derived fields", func(t *testing.T) {
		doc, err := NewDocument(entityID, uuid.New(), DocumentKindInvoice, TaxStatusVerifiedGross, dec("20"), false, NoDiscount())
		require.NoError(t, err)

		assert.Equal(t, entityID, doc.EntityID)
		assert.Equal(t, DocumentKindInvoice, doc.Kind)
		assert.Empty(t, doc.Code)
		assert.True(t, doc.Subtotal.IsZero())
		assert.True(t, doc.TotalAmt.IsZero())
	})

	t.Run("rejects nil entity", func(t *testing.T) {
		_, err := NewDocument(uuid.Nil, uuid.New(), DocumentKindInvoice, TaxStatusVerifiedGross, dec("20"), false, NoDiscount())
		assert.Error(t, err)
	})

	t.Run("rejects nil client", func(t *testing.T) {
		_, err := NewDocument(entityID, uuid.Nil, DocumentKindInvoice, TaxStatusVerifiedGross, dec("20"), false, NoDiscount())
		assert.Error(t, err)
	})

	t.Run("rejects unknown tax status", func(t *testing.T) {
		_, err := NewDocument(entityID, uuid.New(), DocumentKindInvoice, TaxStatus("mystery"), dec("20"), false, NoDiscount())
		assert.Error(t, err)
	})

	t.Run("rejects negative tax rate", func(t *testing.T) {
		_, err := NewDocument(entityID, uuid.New(), DocumentKindInvoice, TaxStatusVerifiedGross, dec("-1"), false, NoDiscount())
		assert.Error(t, err)
	})

	t.Run("rejects malformed discount", func(t *testing.T) {
		_, err := NewDocument(entityID, uuid.New(), DocumentKindInvoice, TaxStatusVerifiedGross, dec("20"), false, PercentDiscount(dec("150")))
		assert.Error(t, err)
	})
}

func TestDocumentAssignCode(t *testing.T) {
	newDoc := func(t *testing.T) *Document {
		doc, err := NewDocument(uuid.New(), uuid.New(), DocumentKindInvoice, TaxStatusVerifiedGross, dec("20"), false, NoDiscount())
		require.NoError(t, err)
		return doc
	}

	t.Run("assigns once", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, doc.AssignCode("INV-00001"))
		assert.Equal(t, "INV-00001", doc.Code)
	})

	t.Run("refuses reassignment", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, doc.AssignCode("INV-00001"))
		err := doc.AssignCode("INV-00002")
		assert.Error(t, err)
		assert.Equal(t, "INV-00001", doc.Code)
	})

	t.Run("code survives later edits", func(t *testing.T) {
		doc := newDoc(t)
		require.NoError(t, doc.AssignCode("INV-00001"))
		require.NoError(t, doc.AddLine("labour", dec("500")))
		require.NoError(t, doc.SetTaxStatus(TaxStatusVerifiedNet))
		assert.Equal(t, "INV-00001", doc.Code)
	})

	t.Run("refuses empty code", func(t *testing.T) {
		doc := newDoc(t)
		assert.Error(t, doc.AssignCode(""))
	})
}

func TestDocumentRecompute(t *testing.T) {
	newDoc := func(t *testing.T, status TaxStatus) *Document {
		doc, err := NewDocument(uuid.New(), uuid.New(), DocumentKindInvoice, status, dec("20"), false, NoDiscount())
		require.NoError(t, err)
		return doc
	}

	t.Run("adding a line updates the stored breakdown", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		require.NoError(t, doc.AddLine("materials", dec("1000")))

		assert.True(t, doc.Subtotal.Equal(dec("1000")))
		assert.True(t, doc.TaxAmt.Equal(dec("200")))
		assert.True(t, doc.TotalAmt.Equal(dec("1200")))
	})

	t.Run("removing a line updates the stored breakdown", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		require.NoError(t, doc.AddLine("materials", dec("1000")))
		require.NoError(t, doc.AddLine("labour", dec("500")))

		require.NoError(t, doc.RemoveLine(doc.Lines[0].ID))

		assert.True(t, doc.Subtotal.Equal(dec("500")))
		assert.True(t, doc.TotalAmt.Equal(dec("600")))
	})

	t.Run("removing an unknown line is an error", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		assert.Error(t, doc.RemoveLine(uuid.New()))
	})

	t.Run("rejects negative line amounts", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		assert.Error(t, doc.AddLine("refund", dec("-10")))
	})

	t.Run("changing the tax status changes withholding", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		require.NoError(t, doc.AddLine("labour", dec("1000")))
		assert.True(t, doc.WithholdingAmt.IsZero())

		require.NoError(t, doc.SetTaxStatus(TaxStatusUnverified))
		assert.True(t, doc.WithholdingAmt.Equal(dec("300")))
		assert.True(t, doc.TotalAmt.Equal(dec("900")), "total %s", doc.TotalAmt)
	})

	t.Run("setting a discount reduces the taxable base", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		require.NoError(t, doc.AddLine("labour", dec("1000")))
		require.NoError(t, doc.SetDiscount(PercentDiscount(dec("10"))))

		assert.True(t, doc.DiscountAmt.Equal(dec("100")))
		assert.True(t, doc.TaxAmt.Equal(dec("180")))
		assert.True(t, doc.TotalAmt.Equal(dec("1080")))
	})

	t.Run("reverse charge toggles tax off and back", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		require.NoError(t, doc.AddLine("labour", dec("1000")))

		require.NoError(t, doc.SetReverseCharge(true))
		assert.True(t, doc.TaxAmt.IsZero())
		assert.True(t, doc.TotalAmt.Equal(dec("1000")))

		require.NoError(t, doc.SetReverseCharge(false))
		assert.True(t, doc.TaxAmt.Equal(dec("200")))
	})

	t.Run("edits bump the aggregate version", func(t *testing.T) {
		doc := newDoc(t, TaxStatusVerifiedGross)
		before := doc.Version
		require.NoError(t, doc.AddLine("labour", dec("100")))
		assert.Greater(t, doc.Version, before)
	})
}

func TestDocumentVerify(t *testing.T) {
	doc, err := NewDocument(uuid.New(), uuid.New(), DocumentKindInvoice, TaxStatusVerifiedNet, dec("20"), false, FixedDiscount(dec("50")))
	require.NoError(t, err)
	require.NoError(t, doc.AddLine("labour", dec("1000")))

	t.Run("stored fields match a fresh derivation", func(t *testing.T) {
		ok, err := doc.Verify()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered totals are detected", func(t *testing.T) {
		doc.TotalAmt = doc.TotalAmt.Add(decimal.NewFromInt(1))
		ok, err := doc.Verify()
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, doc.Recompute())
		ok, err = doc.Verify()
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestDocumentLineAmounts(t *testing.T) {
	doc, err := NewDocument(uuid.New(), uuid.New(), DocumentKindJob, TaxStatusVerifiedGross, decimal.Zero, false, NoDiscount())
	require.NoError(t, err)
	require.NoError(t, doc.AddLine("a", dec("1")))
	require.NoError(t, doc.AddLine("b", dec("2")))

	amounts := doc.LineAmounts()
	require.Len(t, amounts, 2)
	assert.True(t, amounts[0].Equal(dec("1")))
	assert.True(t, amounts[1].Equal(dec("2")))
}
