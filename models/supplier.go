package models

import (
	"time"

	"gorm.io/gorm"
)

// Supplier is one onboarding record. Its sub-records are linked one-to-one and may be filled in
// incrementally; workflow and situation state live in their own tables.
type Supplier struct {
	ID                            uint   `json:"id" gorm:"primaryKey"`
	LegalName                     string `json:"legal_name" gorm:"size:255;not null;uniqueIndex"`
	TaxID                         string `json:"tax_id" gorm:"size:16;not null;uniqueIndex"`
	TradeName                     string `json:"trade_name" gorm:"size:255"`
	StateBusinessRegistration     string `json:"state_business_registration" gorm:"size:20"`
	MunicipalBusinessRegistration string `json:"municipal_business_registration" gorm:"size:20"`

	AddressID               *uint                  `json:"-"`
	Address                 *Address               `json:"address,omitempty" gorm:"foreignKey:AddressID"`
	ContactID               *uint                  `json:"-"`
	Contact                 *Contact               `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	PaymentDetailsID        *uint                  `json:"-"`
	PaymentDetails          *PaymentDetails        `json:"payment_details,omitempty" gorm:"foreignKey:PaymentDetailsID"`
	OrganizationalDetailsID *uint                  `json:"-"`
	OrganizationalDetails   *OrganizationalDetails `json:"organizational_details,omitempty" gorm:"foreignKey:OrganizationalDetailsID"`
	FiscalDetailsID         *uint                  `json:"-"`
	FiscalDetails           *FiscalDetails         `json:"fiscal_details,omitempty" gorm:"foreignKey:FiscalDetailsID"`
	CompanyInformationID    *uint                  `json:"-"`
	CompanyInformation      *CompanyInformation    `json:"company_information,omitempty" gorm:"foreignKey:CompanyInformationID"`
	ContractID              *uint                  `json:"-"`
	Contract                *Contract              `json:"contract,omitempty" gorm:"foreignKey:ContractID"`

	ClassificationID *uint   `json:"classification_id"`
	Classification   *Lookup `json:"classification,omitempty" gorm:"foreignKey:ClassificationID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	CategoryID       *uint   `json:"category_id"`
	Category         *Lookup `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	RiskLevelID      *uint   `json:"risk_level_id"`
	RiskLevel        *Lookup `json:"risk_level,omitempty" gorm:"foreignKey:RiskLevelID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	TypeID           *uint   `json:"type_id"`
	Type             *Lookup `json:"type,omitempty" gorm:"foreignKey:TypeID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) Completeness() Descriptor {
	return Descriptor{
		Fields: []Field{
			Text("legal_name", s.LegalName),
			Text("tax_id", s.TaxID),
			Text("trade_name", s.TradeName),
			Text("state_business_registration", s.StateBusinessRegistration),
			Text("municipal_business_registration", s.MunicipalBusinessRegistration),
		},
		Relations: []Relation{
			Ref("address", s.Address),
			Ref("contact", s.Contact),
			Ref("payment_details", s.PaymentDetails),
			Ref("organizational_details", s.OrganizationalDetails),
			Ref("fiscal_details", s.FiscalDetails),
			Ref("company_information", s.CompanyInformation),
			Ref("contract", s.Contract),
			Ref("classification", s.Classification),
			Ref("category", s.Category),
			Ref("risk_level", s.RiskLevel),
			Ref("type", s.Type),
		},
	}
}

func (s *Supplier) LookupRefs() []LookupRef {
	return []LookupRef{
		{"classification_id", KindClassification, s.ClassificationID},
		{"category_id", KindCategory, s.CategoryID},
		{"risk_level_id", KindRiskLevel, s.RiskLevelID},
		{"type_id", KindSupplierType, s.TypeID},
	}
}

// PartIDs returns the owned sub-record ids keyed by their table, skipping unset links.
func (s *Supplier) PartIDs() map[string]uint {
	out := map[string]uint{}
	add := func(table string, id *uint) {
		if id != nil {
			out[table] = *id
		}
	}
	add(Address{}.TableName(), s.AddressID)
	add(Contact{}.TableName(), s.ContactID)
	add(PaymentDetails{}.TableName(), s.PaymentDetailsID)
	add(OrganizationalDetails{}.TableName(), s.OrganizationalDetailsID)
	add(FiscalDetails{}.TableName(), s.FiscalDetailsID)
	add(CompanyInformation{}.TableName(), s.CompanyInformationID)
	add(Contract{}.TableName(), s.ContractID)
	return out
}

// PreloadSupplierGraph loads every record the completeness check walks through.
func PreloadSupplierGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Address").
		Preload("Contact").
		Preload("PaymentDetails.PaymentMethod").
		Preload("PaymentDetails.PixKeyType").
		Preload("OrganizationalDetails.PayerType").
		Preload("OrganizationalDetails.BusinessSector").
		Preload("OrganizationalDetails.TaxpayerClassification").
		Preload("OrganizationalDetails.PublicEntity").
		Preload("FiscalDetails.IssWithholding").
		Preload("FiscalDetails.IssRegime").
		Preload("FiscalDetails.WithholdingTaxNature").
		Preload("CompanyInformation.CompanySize").
		Preload("CompanyInformation.IcmsTaxpayer").
		Preload("CompanyInformation.TaxationRegime").
		Preload("CompanyInformation.IncomeType").
		Preload("CompanyInformation.TaxationMethod").
		Preload("CompanyInformation.CustomerType").
		Preload("Contract").
		Preload("Classification").
		Preload("Category").
		Preload("RiskLevel").
		Preload("Type")
}
