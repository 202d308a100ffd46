package terms

import (
	"context"
	"testing"

	"erp-backend/internal/domain"
	"erp-backend/internal/infrastructure/database"
	"erp-backend/internal/infrastructure/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTermsTest(t *testing.T) (*Service, *gorm.DB, domain.QuotationID) {
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	q := &domain.Quotation{CompanyID: 3, ClientID: 4, ProjectName: "Clinic", Version: 1, Status: domain.StatusDraft, CreatedBy: 1, Revision: 1}
	require.NoError(t, db.Create(q).Error)
	return &Service{DB: db, Locker: keylock.NewMemory()}, db, q.ID
}

func TestCreate_AppendsInOrder(t *testing.T) {
	s, db, qid := setupTermsTest(t)
	ctx := context.Background()

	first, err := s.Create(ctx, qid, CreateTermInput{Title: "Payment", Content: "50% advance"})
	require.NoError(t, err)
	second, err := s.Create(ctx, qid, CreateTermInput{Title: "Validity", Content: "30 days"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)

	zero := 0
	_, err = s.Update(ctx, qid, second.ID, UpdateTermInput{SortOrder: &zero})
	require.NoError(t, err)
	list, err := s.List(ctx, qid)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "ties fall back to id order")

	var q domain.Quotation
	require.NoError(t, db.First(&q, qid).Error)
	assert.Equal(t, 4, q.Revision)
	assert.Equal(t, 0.0, q.GrandTotal)
}

func TestUpdateAndDelete(t *testing.T) {
	s, _, qid := setupTermsTest(t)
	ctx := context.Background()
	term, err := s.Create(ctx, qid, CreateTermInput{Content: "GST extra"})
	require.NoError(t, err)

	content := "GST 18% extra"
	updated, err := s.Update(ctx, qid, term.ID, UpdateTermInput{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)

	require.NoError(t, s.Delete(ctx, qid, term.ID))
	assert.ErrorIs(t, s.Delete(ctx, qid, term.ID), domain.ErrTermNotFound)
	_, err = s.Update(ctx, qid, term.ID, UpdateTermInput{Content: &content})
	assert.ErrorIs(t, err, domain.ErrTermNotFound)
}

func TestTerms_RequireDraft(t *testing.T) {
	s, db, qid := setupTermsTest(t)
	ctx := context.Background()
	term, err := s.Create(ctx, qid, CreateTermInput{Content: "Warranty 12 months"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Quotation{}).Where("id = ?", qid).Update("status", domain.StatusApproved).Error)

	_, err = s.Create(ctx, qid, CreateTermInput{Content: "late"})
	assert.ErrorIs(t, err, domain.ErrQuotationNotEditable)
	assert.ErrorIs(t, s.Delete(ctx, qid, term.ID), domain.ErrQuotationNotEditable)

	list, err := s.List(ctx, qid)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTerms_Validation(t *testing.T) {
	s, _, qid := setupTermsTest(t)
	_, err := s.Create(context.Background(), qid, CreateTermInput{Title: "Empty"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	neg := -1
	_, err = s.Create(context.Background(), qid, CreateTermInput{Content: "x", SortOrder: &neg})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.List(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrQuotationNotFound)
}
