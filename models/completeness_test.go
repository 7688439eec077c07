package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func filledSupplier() *Supplier {
	lookup := func(name string) *Lookup { return &Lookup{ID: 1, Name: name} }
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return &Supplier{
		LegalName:                     "Acme Ltda",
		TaxID:                         "12345678000199",
		TradeName:                     "Acme",
		StateBusinessRegistration:     "123",
		MunicipalBusinessRegistration: "456",
		Address:                       &Address{Street: "Main", Number: 10, City: "Recife", State: "PE", PostalCode: "50000000"},
		Contact:                       &Contact{Email: "ops@acme.test", Phone: "81999999999"},
		PaymentDetails: &PaymentDetails{
			PaymentFrequency:     "monthly",
			PaymentDate:          &start,
			ContractTotalValue:   decimal.NewFromInt(1200),
			ContractMonthlyValue: decimal.NewFromInt(100),
			CheckingAccount:      "0001",
			Bank:                 "001",
			Agency:               "1234",
			PixKey:               "ops@acme.test",
			PaymentMethod:        lookup("Pix"),
			PixKeyType:           lookup("Email"),
		},
		OrganizationalDetails: &OrganizationalDetails{
			CostCenter: "CC1", BusinessUnit: "BU", ResponsibleExecutive: "Jo",
			PayerType: lookup("Private"), BusinessSector: lookup("Services"),
			TaxpayerClassification: lookup("Regular"), PublicEntity: lookup("No"),
		},
		FiscalDetails: &FiscalDetails{
			IssWithholding: lookup("Withheld"), IssRegime: lookup("Fixed"), WithholdingTaxNature: lookup("Services"),
		},
		CompanyInformation: &CompanyInformation{
			NIT: "99", CompanySize: lookup("Small"), IcmsTaxpayer: lookup("Exempt"),
			TaxationRegime: lookup("Real profit"), IncomeType: lookup("Operational"),
			TaxationMethod: lookup("Cumulative"), CustomerType: lookup("Private"),
		},
		Contract: &Contract{
			ObjectContract: "Cleaning", ExecutedActivities: "Cleaning",
			ContractStartDate: &start, ContractEndDate: &end,
			ContractType: "service", ContractPeriod: "12", WarningContractPeriod: "30",
		},
		Classification: lookup("Services"),
		Category:       lookup("Routine"),
		RiskLevel:      lookup("Low"),
		Type:           lookup("Legal entity"),
	}
}

func TestMissingField_FilledSupplierIsComplete(t *testing.T) {
	path, ok := MissingField(filledSupplier())
	assert.True(t, ok)
	assert.Empty(t, path)
	assert.True(t, IsComplete(filledSupplier()))
}

func TestMissingField_EmptyTradeNameWithoutAddress(t *testing.T) {
	s := filledSupplier()
	s.TradeName = ""
	s.Address = nil

	path, ok := MissingField(s)
	assert.False(t, ok)
	assert.Equal(t, "trade_name", path)
}

func TestMissingField_Cases(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Supplier)
		want   string
	}{
		{"whitespace text", func(s *Supplier) { s.LegalName = "   " }, "legal_name"},
		{"unset relation", func(s *Supplier) { s.Address = nil }, "address"},
		{"nested scalar", func(s *Supplier) { s.Address.Number = 0 }, "address.number"},
		{"nested date", func(s *Supplier) { s.Contract.ContractEndDate = nil }, "contract.contract_end_date"},
		{"zero date", func(s *Supplier) { s.Contract.ContractStartDate = &time.Time{} }, "contract.contract_start_date"},
		{"zero money", func(s *Supplier) { s.PaymentDetails.ContractTotalValue = decimal.Zero }, "payment_details.contract_total_value"},
		{"nested lookup", func(s *Supplier) { s.FiscalDetails.IssRegime = nil }, "fiscal_details.iss_regime"},
		{"lookup with empty name", func(s *Supplier) { s.RiskLevel = &Lookup{ID: 3} }, "risk_level.name"},
		{"booleans are answers", func(s *Supplier) { s.FiscalDetails.IssTaxpayer = false }, ""},
		{"optional complement", func(s *Supplier) { s.Address.Complement = "" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filledSupplier()
			tt.mutate(s)
			path, ok := MissingField(s)
			assert.Equal(t, tt.want, path)
			assert.Equal(t, tt.want == "", ok)
		})
	}
}

func TestRef_NilPointerStaysNil(t *testing.T) {
	var a *Address
	r := Ref("address", a)
	assert.Nil(t, r.Target)
}
