package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a one-to-one sub-record owned by a Supplier through a foreign key column on suppliers.
type Part interface {
	Completable
	SupplierColumn() string
	PartID() uint
	SetPartID(id uint)
}

type Address struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Street        string    `json:"street" gorm:"size:255"`
	Number        int       `json:"number"`
	Complement    string    `json:"complement" gorm:"size:255"`
	Neighbourhood string    `json:"neighbourhood" gorm:"size:150"`
	City          string    `json:"city" gorm:"size:150"`
	State         string    `json:"state" gorm:"size:100"`
	PostalCode    string    `json:"postal_code" gorm:"size:8"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Address) TableName() string { return "addresses" }

func (a *Address) Completeness() Descriptor {
	return Descriptor{Fields: []Field{
		Text("street", a.Street),
		Number("number", a.Number),
		Text("city", a.City),
		Text("state", a.State),
		Text("postal_code", a.PostalCode),
	}}
}

func (a *Address) SupplierColumn() string { return "address_id" }
func (a *Address) PartID() uint           { return a.ID }
func (a *Address) SetPartID(id uint)      { a.ID = id }

type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:254"`
	Phone     string    `json:"phone" gorm:"size:11"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

func (c *Contact) Completeness() Descriptor {
	return Descriptor{Fields: []Field{Text("email", c.Email), Text("phone", c.Phone)}}
}

func (c *Contact) SupplierColumn() string { return "contact_id" }
func (c *Contact) PartID() uint           { return c.ID }
func (c *Contact) SetPartID(id uint)      { c.ID = id }

// PaymentDetails holds how and when the supplier gets paid under its contract.
type PaymentDetails struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	PaymentFrequency     string          `json:"payment_frequency" gorm:"size:50"`
	PaymentDate          *time.Time      `json:"payment_date"`
	ContractTotalValue   decimal.Decimal `json:"contract_total_value" gorm:"type:numeric(15,2)"`
	ContractMonthlyValue decimal.Decimal `json:"contract_monthly_value" gorm:"type:numeric(15,2)"`
	CheckingAccount      string          `json:"checking_account" gorm:"size:20"`
	Bank                 string          `json:"bank" gorm:"size:50"`
	Agency               string          `json:"agency" gorm:"size:20"`
	PaymentMethodID      *uint           `json:"payment_method_id"`
	PaymentMethod        *Lookup         `json:"payment_method,omitempty" gorm:"foreignKey:PaymentMethodID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	PixKeyTypeID         *uint           `json:"pix_key_type_id"`
	PixKeyType           *Lookup         `json:"pix_key_type,omitempty" gorm:"foreignKey:PixKeyTypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	PixKey               string          `json:"pix_key" gorm:"size:255"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (PaymentDetails) TableName() string { return "payment_details" }

func (p *PaymentDetails) Completeness() Descriptor {
	return Descriptor{
		Fields: []Field{
			Text("payment_frequency", p.PaymentFrequency),
			Date("payment_date", p.PaymentDate),
			Money("contract_total_value", p.ContractTotalValue),
			Money("contract_monthly_value", p.ContractMonthlyValue),
			Text("checking_account", p.CheckingAccount),
			Text("bank", p.Bank),
			Text("agency", p.Agency),
			Text("pix_key", p.PixKey),
		},
		Relations: []Relation{
			Ref("payment_method", p.PaymentMethod),
			Ref("pix_key_type", p.PixKeyType),
		},
	}
}

func (p *PaymentDetails) LookupRefs() []LookupRef {
	return []LookupRef{
		{"payment_method_id", KindPaymentMethod, p.PaymentMethodID},
		{"pix_key_type_id", KindPixType, p.PixKeyTypeID},
	}
}

func (p *PaymentDetails) SupplierColumn() string { return "payment_details_id" }
func (p *PaymentDetails) PartID() uint           { return p.ID }
func (p *PaymentDetails) SetPartID(id uint)      { p.ID = id }

type OrganizationalDetails struct {
	ID                       uint      `json:"id" gorm:"primaryKey"`
	CostCenter               string    `json:"cost_center" gorm:"size:50"`
	BusinessUnit             string    `json:"business_unit" gorm:"size:100"`
	ResponsibleExecutive     string    `json:"responsible_executive" gorm:"size:255"`
	PayerTypeID              *uint     `json:"payer_type_id"`
	PayerType                *Lookup   `json:"payer_type,omitempty" gorm:"foreignKey:PayerTypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	BusinessSectorID         *uint     `json:"business_sector_id"`
	BusinessSector           *Lookup   `json:"business_sector,omitempty" gorm:"foreignKey:BusinessSectorID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	TaxpayerClassificationID *uint     `json:"taxpayer_classification_id"`
	TaxpayerClassification   *Lookup   `json:"taxpayer_classification,omitempty" gorm:"foreignKey:TaxpayerClassificationID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	PublicEntityID           *uint     `json:"public_entity_id"`
	PublicEntity             *Lookup   `json:"public_entity,omitempty" gorm:"foreignKey:PublicEntityID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func (OrganizationalDetails) TableName() string { return "organizational_details" }

func (o *OrganizationalDetails) Completeness() Descriptor {
	return Descriptor{
		Fields: []Field{
			Text("cost_center", o.CostCenter),
			Text("business_unit", o.BusinessUnit),
			Text("responsible_executive", o.ResponsibleExecutive),
		},
		Relations: []Relation{
			Ref("payer_type", o.PayerType),
			Ref("business_sector", o.BusinessSector),
			Ref("taxpayer_classification", o.TaxpayerClassification),
			Ref("public_entity", o.PublicEntity),
		},
	}
}

func (o *OrganizationalDetails) LookupRefs() []LookupRef {
	return []LookupRef{
		{"payer_type_id", KindPayerType, o.PayerTypeID},
		{"business_sector_id", KindBusinessSector, o.BusinessSectorID},
		{"taxpayer_classification_id", KindTaxpayerClassification, o.TaxpayerClassificationID},
		{"public_entity_id", KindPublicEntity, o.PublicEntityID},
	}
}

func (o *OrganizationalDetails) SupplierColumn() string { return "organizational_details_id" }
func (o *OrganizationalDetails) PartID() uint           { return o.ID }
func (o *OrganizationalDetails) SetPartID(id uint)      { o.ID = id }

type FiscalDetails struct {
	ID                         uint      `json:"id" gorm:"primaryKey"`
	IssWithholdingID           *uint     `json:"iss_withholding_id"`
	IssWithholding             *Lookup   `json:"iss_withholding,omitempty" gorm:"foreignKey:IssWithholdingID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	IssRegimeID                *uint     `json:"iss_regime_id"`
	IssRegime                  *Lookup   `json:"iss_regime,omitempty" gorm:"foreignKey:IssRegimeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	IssTaxpayer                bool      `json:"iss_taxpayer"`
	SimplesNacionalParticipant bool      `json:"simples_nacional_participant"`
	CooperativeMember          bool      `json:"cooperative_member"`
	WithholdingTaxNatureID     *uint     `json:"withholding_tax_nature_id"`
	WithholdingTaxNature       *Lookup   `json:"withholding_tax_nature,omitempty" gorm:"foreignKey:WithholdingTaxNatureID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

func (FiscalDetails) TableName() string { return "fiscal_details" }

func (f *FiscalDetails) Completeness() Descriptor {
	return Descriptor{Relations: []Relation{
		Ref("iss_withholding", f.IssWithholding),
		Ref("iss_regime", f.IssRegime),
		Ref("withholding_tax_nature", f.WithholdingTaxNature),
	}}
}

func (f *FiscalDetails) LookupRefs() []LookupRef {
	return []LookupRef{
		{"iss_withholding_id", KindIssWithholding, f.IssWithholdingID},
		{"iss_regime_id", KindIssRegime, f.IssRegimeID},
		{"withholding_tax_nature_id", KindWithholdingTax, f.WithholdingTaxNatureID},
	}
}

func (f *FiscalDetails) SupplierColumn() string { return "fiscal_details_id" }
func (f *FiscalDetails) PartID() uint           { return f.ID }
func (f *FiscalDetails) SetPartID(id uint)      { f.ID = id }

type CompanyInformation struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	CompanySizeID    *uint     `json:"company_size_id"`
	CompanySize      *Lookup   `json:"company_size,omitempty" gorm:"foreignKey:CompanySizeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	IcmsTaxpayerID   *uint     `json:"icms_taxpayer_id"`
	IcmsTaxpayer     *Lookup   `json:"icms_taxpayer,omitempty" gorm:"foreignKey:IcmsTaxpayerID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	TaxationRegimeID *uint     `json:"taxation_regime_id"`
	TaxationRegime   *Lookup   `json:"taxation_regime,omitempty" gorm:"foreignKey:TaxationRegimeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	IncomeTypeID     *uint     `json:"income_type_id"`
	IncomeType       *Lookup   `json:"income_type,omitempty" gorm:"foreignKey:IncomeTypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	TaxationMethodID *uint     `json:"taxation_method_id"`
	TaxationMethod   *Lookup   `json:"taxation_method,omitempty" gorm:"foreignKey:TaxationMethodID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CustomerTypeID   *uint     `json:"customer_type_id"`
	CustomerType     *Lookup   `json:"customer_type,omitempty" gorm:"foreignKey:CustomerTypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	NIT              string    `json:"nit" gorm:"size:20"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (CompanyInformation) TableName() string { return "company_information" }

func (ci *CompanyInformation) Completeness() Descriptor {
	return Descriptor{
		Fields: []Field{Text("nit", ci.NIT)},
		Relations: []Relation{
			Ref("company_size", ci.CompanySize),
			Ref("icms_taxpayer", ci.IcmsTaxpayer),
			Ref("taxation_regime", ci.TaxationRegime),
			Ref("income_type", ci.IncomeType),
			Ref("taxation_method", ci.TaxationMethod),
			Ref("customer_type", ci.CustomerType),
		},
	}
}

func (ci *CompanyInformation) LookupRefs() []LookupRef {
	return []LookupRef{
		{"company_size_id", KindCompanySize, ci.CompanySizeID},
		{"icms_taxpayer_id", KindIcmsTaxpayer, ci.IcmsTaxpayerID},
		{"taxation_regime_id", KindTaxationRegime, ci.TaxationRegimeID},
		{"income_type_id", KindIncomeType, ci.IncomeTypeID},
		{"taxation_method_id", KindTaxationMethod, ci.TaxationMethodID},
		{"customer_type_id", KindCustomerType, ci.CustomerTypeID},
	}
}

func (ci *CompanyInformation) SupplierColumn() string { return "company_information_id" }
func (ci *CompanyInformation) PartID() uint           { return ci.ID }
func (ci *CompanyInformation) SetPartID(id uint)      { ci.ID = id }

type Contract struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	ObjectContract         string     `json:"object_contract" gorm:"size:255"`
	ExecutedActivities     string     `json:"executed_activities"`
	ContractStartDate      *time.Time `json:"contract_start_date"`
	ContractEndDate        *time.Time `json:"contract_end_date"`
	ContractType           string     `json:"contract_type" gorm:"size:50"`
	ContractPeriod         string     `json:"contract_period" gorm:"size:3"`
	HasContractRenewal     bool       `json:"has_contract_renewal"`
	WarningContractRenewal bool       `json:"warning_contract_renewal"`
	WarningContractPeriod  string     `json:"warning_contract_period" gorm:"size:3"`
	WarningOnTermination   bool       `json:"warning_on_termination"`
	WarningOnRenewal       bool       `json:"warning_on_renewal"`
	WarningOnPeriod        bool       `json:"warning_on_period"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

func (ct *Contract) Completeness() Descriptor {
	return Descriptor{Fields: []Field{
		Text("object_contract", ct.ObjectContract),
		Text("executed_activities", ct.ExecutedActivities),
		Date("contract_start_date", ct.ContractStartDate),
		Date("contract_end_date", ct.ContractEndDate),
		Text("contract_type", ct.ContractType),
		Text("contract_period", ct.ContractPeriod),
		Text("warning_contract_period", ct.WarningContractPeriod),
	}}
}

func (ct *Contract) SupplierColumn() string { return "contract_id" }
func (ct *Contract) PartID() uint           { return ct.ID }
func (ct *Contract) SetPartID(id uint)      { ct.ID = id }
