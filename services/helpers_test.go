package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"supplier-compliance-backend/database"
	"supplier-compliance-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fakeNotifier struct {
	flows []models.ApprovalFlow
}

func (n *fakeNotifier) NotifyApprover(_ context.Context, _ *gorm.DB, flow *models.ApprovalFlow) {
	n.flows = append(n.flows, *flow)
}

func lookupID(t *testing.T, db *gorm.DB, kind models.LookupKind, name string) *uint {
	t.Helper()
	var l models.Lookup
	require.NoError(t, db.Where("kind = ? AND name = ?", kind, name).First(&l).Error)
	return &l.ID
}

func attachmentTypeID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	var at models.AttachmentType
	require.NoError(t, db.Where("name = ?", name).First(&at).Error)
	return at.ID
}

// createSupplier stores a supplier with only its identifying columns.
func createSupplier(t *testing.T, db *gorm.DB, svc *Services, legalName, taxID string) *models.Supplier {
	t.Helper()
	s := &models.Supplier{LegalName: legalName, TaxID: taxID}
	require.NoError(t, svc.Suppliers.Create(context.Background(), db, s))
	return s
}

// registerFully fills in every scalar and sub-record of s so only documents and the matrix remain.
func registerFully(t *testing.T, db *gorm.DB, svc *Services, s *models.Supplier) {
	t.Helper()
	ctx := context.Background()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	_, err := svc.Suppliers.Update(ctx, db, s.ID, map[string]any{
		"trade_name":                      "Acme",
		"state_business_registration":     "123",
		"municipal_business_registration": "456",
		"classification_id":               lookupID(t, db, models.KindClassification, "Services"),
		"category_id":                     lookupID(t, db, models.KindCategory, "Routine"),
		"risk_level_id":                   lookupID(t, db, models.KindRiskLevel, "Low"),
		"type_id":                         lookupID(t, db, models.KindSupplierType, "Legal entity"),
	})
	require.NoError(t, err)

	parts := []models.Part{
		&models.Address{Street: "Main", Number: 10, City: "Recife", State: "PE", PostalCode: "50000000"},
		&models.Contact{Email: "ops@acme.test", Phone: "81999999999"},
		&models.PaymentDetails{
			PaymentFrequency:     "monthly",
			PaymentDate:          &start,
			ContractTotalValue:   decimal.NewFromInt(1200),
			ContractMonthlyValue: decimal.NewFromInt(100),
			CheckingAccount:      "0001",
			Bank:                 "001",
			Agency:               "1234",
			PixKey:               "ops@acme.test",
			PaymentMethodID:      lookupID(t, db, models.KindPaymentMethod, "Pix"),
			PixKeyTypeID:         lookupID(t, db, models.KindPixType, "Email"),
		},
		&models.OrganizationalDetails{
			CostCenter:               "CC1",
			BusinessUnit:             "BU",
			ResponsibleExecutive:     "Jo",
			PayerTypeID:              lookupID(t, db, models.KindPayerType, "Private"),
			BusinessSectorID:         lookupID(t, db, models.KindBusinessSector, "Services"),
			TaxpayerClassificationID: lookupID(t, db, models.KindTaxpayerClassification, "Regular"),
			PublicEntityID:           lookupID(t, db, models.KindPublicEntity, "No"),
		},
		&models.FiscalDetails{
			IssWithholdingID:       lookupID(t, db, models.KindIssWithholding, "Withheld"),
			IssRegimeID:            lookupID(t, db, models.KindIssRegime, "Fixed"),
			WithholdingTaxNatureID: lookupID(t, db, models.KindWithholdingTax, "Services"),
		},
		&models.CompanyInformation{
			NIT:              "99",
			CompanySizeID:    lookupID(t, db, models.KindCompanySize, "Small"),
			IcmsTaxpayerID:   lookupID(t, db, models.KindIcmsTaxpayer, "Exempt"),
			TaxationRegimeID: lookupID(t, db, models.KindTaxationRegime, "Real profit"),
			IncomeTypeID:     lookupID(t, db, models.KindIncomeType, "Operational"),
			TaxationMethodID: lookupID(t, db, models.KindTaxationMethod, "Cumulative"),
			CustomerTypeID:   lookupID(t, db, models.KindCustomerType, "Private"),
		},
		&models.Contract{
			ObjectContract:        "Cleaning",
			ExecutedActivities:    "Cleaning",
			ContractStartDate:     &start,
			ContractEndDate:       &end,
			ContractType:          "service",
			ContractPeriod:        "12",
			WarningContractPeriod: "30",
		},
	}
	for _, p := range parts {
		require.NoError(t, svc.Suppliers.SavePart(ctx, db, s.ID, p))
	}
}

func attach(t *testing.T, db *gorm.DB, svc *Services, supplierID uint, typeName string) {
	t.Helper()
	_, err := svc.Attachments.Replace(context.Background(), db, &models.SupplierAttachment{
		SupplierID:       supplierID,
		AttachmentTypeID: attachmentTypeID(t, db, typeName),
		FileName:         "doc.pdf",
		StoragePath:      "/tmp/doc.pdf",
	})
	require.NoError(t, err)
}

func currentStatus(t *testing.T, db *gorm.DB, svc *Services, supplierID uint) (models.SituationName, models.PendencyReason) {
	t.Helper()
	cur, err := svc.Situations.Current(db, supplierID)
	require.NoError(t, err)
	require.NotNil(t, cur)
	require.NotNil(t, cur.Status)
	return cur.Status.Name, cur.Status.Reason
}
