package database

import (
	"testing"

	"erp-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	require.Error(t, err)
}

func TestAutoMigrate_AssignsCodesOnCreate(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	q1 := &domain.Quotation{CompanyID: 1, ClientID: 2, ProjectName: "Tower A", CreatedBy: 3}
	q2 := &domain.Quotation{CompanyID: 1, ClientID: 2, ProjectName: "Tower B", CreatedBy: 3}
	require.NoError(t, db.Create(q1).Error)
	require.NoError(t, db.Create(q2).Error)

	require.NotNil(t, q1.QuotationCode)
	assert.Equal(t, "QT-001", *q1.QuotationCode)
	assert.Equal(t, "QT-002", *q2.QuotationCode)

	var stored domain.Quotation
	require.NoError(t, db.First(&stored, q2.ID).Error)
	assert.Equal(t, "QT-002", *stored.QuotationCode)
	assert.Equal(t, domain.StatusDraft, stored.Status)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, 1, stored.Revision)

	assert.NoError(t, (&Pinger{DB: db}).Ping())
}

func TestProjectQuotationIDIsUnique(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	qid := domain.QuotationID(9)
	require.NoError(t, db.Create(&domain.Project{Name: "P1", QuotationID: &qid}).Error)
	assert.Error(t, db.Create(&domain.Project{Name: "P2", QuotationID: &qid}).Error)

	// projects without a quotation are unconstrained
	require.NoError(t, db.Create(&domain.Project{Name: "P3"}).Error)
	require.NoError(t, db.Create(&domain.Project{Name: "P4"}).Error)
}
