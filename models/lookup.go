package models

// LookupKind names one of the small reference catalogs a supplier points at.
type LookupKind string

const (
	KindClassification         LookupKind = "classification"
	KindCategory               LookupKind = "category"
	KindRiskLevel              LookupKind = "risk_level"
	KindSupplierType           LookupKind = "supplier_type"
	KindPaymentMethod          LookupKind = "payment_method"
	KindPixType                LookupKind = "pix_type"
	KindPayerType              LookupKind = "payer_type"
	KindBusinessSector         LookupKind = "business_sector"
	KindTaxpayerClassification LookupKind = "taxpayer_classification"
	KindPublicEntity           LookupKind = "public_entity"
	KindIssWithholding         LookupKind = "iss_withholding"
	KindIssRegime              LookupKind = "iss_regime"
	KindWithholdingTax         LookupKind = "withholding_tax"
	KindCompanySize            LookupKind = "company_size"
	KindIcmsTaxpayer           LookupKind = "icms_taxpayer"
	KindTaxationRegime         LookupKind = "taxation_regime"
	KindIncomeType             LookupKind = "income_type"
	KindTaxationMethod         LookupKind = "taxation_method"
	KindCustomerType           LookupKind = "customer_type"
)

var LookupKinds = []LookupKind{
	KindClassification, KindCategory, KindRiskLevel, KindSupplierType,
	KindPaymentMethod, KindPixType, KindPayerType, KindBusinessSector,
	KindTaxpayerClassification, KindPublicEntity, KindIssWithholding, KindIssRegime,
	KindWithholdingTax, KindCompanySize, KindIcmsTaxpayer, KindTaxationRegime,
	KindIncomeType, KindTaxationMethod, KindCustomerType,
}

func (k LookupKind) Valid() bool {
	for _, known := range LookupKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Lookup is a reference value. Rows are protected from deletion while anything points at them.
type Lookup struct {
	ID   uint       `json:"id" gorm:"primaryKey"`
	Kind LookupKind `json:"kind" gorm:"size:40;not null;uniqueIndex:idx_lookups_kind_name,priority:1"`
	Name string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_lookups_kind_name,priority:2"`
}

func (l *Lookup) Completeness() Descriptor {
	return Descriptor{Fields: []Field{Text("name", l.Name)}}
}

// LookupRef is a foreign key from a record into the lookups table.
type LookupRef struct {
	Field string
	Kind  LookupKind
	ID    *uint
}

// LookupReferrer is implemented by records holding lookup foreign keys.
type LookupReferrer interface {
	LookupRefs() []LookupRef
}

// LookupColumn is a (table, column) pair that references lookups.id.
type LookupColumn struct {
	Table  string
	Column string
}

// LookupColumns lists every column pointing at lookups; used to refuse deleting referenced values.
var LookupColumns = []LookupColumn{
	{"suppliers", "classification_id"},
	{"suppliers", "category_id"},
	{"suppliers", "risk_level_id"},
	{"suppliers", "type_id"},
	{"payment_details", "payment_method_id"},
	{"payment_details", "pix_key_type_id"},
	{"organizational_details", "payer_type_id"},
	{"organizational_details", "business_sector_id"},
	{"organizational_details", "taxpayer_classification_id"},
	{"organizational_details", "public_entity_id"},
	{"fiscal_details", "iss_withholding_id"},
	{"fiscal_details", "iss_regime_id"},
	{"fiscal_details", "withholding_tax_nature_id"},
	{"company_information", "company_size_id"},
	{"company_information", "icms_taxpayer_id"},
	{"company_information", "taxation_regime_id"},
	{"company_information", "income_type_id"},
	{"company_information", "taxation_method_id"},
	{"company_information", "customer_type_id"},
	{"attachment_types", "risk_level_id"},
}
