package model

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

// init ensures gofakeit is seeded.
func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// FakeUSPhone returns a random 10-digit US number in E.164 form.
func FakeUSPhone() string {
	return fmt.Sprintf("+1%d%s", gofakeit.Number(2, 9), gofakeit.Numerify("#########"))
}

// NewUser creates a new User instance with default fake data.
func NewUser(overrideDefaults ...*User) *User {
	base := &User{
		Username:  gofakeit.Username() + gofakeit.LetterN(4),
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		IsActive:  true,
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.Username != "" {
			base.Username = ovr.Username
		}
		if ovr.Email != "" {
			base.Email = ovr.Email
		}
		if ovr.PasswordHash != "" {
			base.PasswordHash = ovr.PasswordHash
		}
		base.IsStaff = ovr.IsStaff
	}
	return base
}

// NewAgency creates a new Agency instance with default fake data.
func NewAgency(overrideDefaults ...*Agency) *Agency {
	base := &Agency{
		Name:        gofakeit.Company() + " Insurance",
		Description: gofakeit.Sentence(8),
		Address:     gofakeit.Street() + ", " + gofakeit.City(),
		PhoneNumber: FakeUSPhone(),
		Email:       gofakeit.Email(),
		Website:     "https://" + gofakeit.DomainName(),
		IsActive:    true,
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.Name != "" {
			base.Name = ovr.Name
		}
		if ovr.PhoneNumber != "" {
			base.PhoneNumber = ovr.PhoneNumber
		}
	}
	return base
}

// NewCustomer creates a new Customer instance with default fake data.
func NewCustomer(overrideDefaults ...*Customer) *Customer {
	base := &Customer{
		FirstName:   gofakeit.FirstName(),
		LastName:    gofakeit.LastName(),
		Email:       gofakeit.Email(),
		PhoneNumber: FakeUSPhone(),
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.AgencyID = ovr.AgencyID
		base.CreatedByID = ovr.CreatedByID
		if ovr.FirstName != "" {
			base.FirstName = ovr.FirstName
		}
		if ovr.LastName != "" {
			base.LastName = ovr.LastName
		}
		if ovr.PhoneNumber != "" {
			base.PhoneNumber = ovr.PhoneNumber
		}
	}
	return base
}

// NewBusiness creates a new Business instance with default fake data.
func NewBusiness(overrideDefaults ...*Business) *Business {
	base := &Business{
		Name:        gofakeit.Company(),
		Description: gofakeit.BS() + " " + gofakeit.BuzzWord(),
		Address:     gofakeit.Street() + ", " + gofakeit.City() + ", " + gofakeit.StateAbr() + " " + gofakeit.Zip(),
		PhoneNumber: FakeUSPhone(),
		Email:       gofakeit.Email(),
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.CustomerID = ovr.CustomerID
		if ovr.Name != "" {
			base.Name = ovr.Name
		}
	}
	return base
}

// NewDocument creates a new Document instance with default fake data.
func NewDocument(overrideDefaults ...*Document) *Document {
	base := &Document{
		Name:        "Form " + gofakeit.LetterN(6),
		Description: gofakeit.Sentence(6),
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.AgencyOwnerID = ovr.AgencyOwnerID
		base.IsPublic = ovr.IsPublic
		if ovr.Name != "" {
			base.Name = ovr.Name
		}
	}
	return base
}

// NewField creates a new Field instance with default fake data.
func NewField(overrideDefaults ...*Field) *Field {
	base := &Field{
		FieldID:     NormalizeFieldID(gofakeit.Noun() + " " + gofakeit.LetterN(6)),
		Name:        gofakeit.JobDescriptor(),
		Description: gofakeit.Sentence(5),
		FieldType:   FieldTypeText,
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.DocumentID = ovr.DocumentID
		base.IsRequired = ovr.IsRequired
		if ovr.FieldID != "" {
			base.FieldID = ovr.FieldID
		}
		if ovr.Name != "" {
			base.Name = ovr.Name
		}
		if ovr.FieldType != "" {
			base.FieldType = ovr.FieldType
		}
	}
	return base
}

// NewPolicy creates a new Policy instance with default fake data. The policy is active today.
func NewPolicy(overrideDefaults ...*Policy) *Policy {
	effective := utils.Today().AddDate(0, -gofakeit.Number(1, 6), 0)
	expiration := effective.AddDate(1, 0, 0)
	base := &Policy{
		PolicyNumber:   gofakeit.Numerify("POL-####-####"),
		Carrier:        gofakeit.Company() + " Mutual",
		AnnualPremium:  decimal.NewNullDecimal(decimal.NewFromFloat(gofakeit.Price(500, 20000)).Round(2)),
		EffectiveDate:  &effective,
		ExpirationDate: &expiration,
		PolicyType:     PolicyTypes()[gofakeit.Number(0, len(PolicyTypes())-1)],
	}
	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.BusinessID = ovr.BusinessID
		if ovr.PolicyType != "" {
			base.PolicyType = ovr.PolicyType
		}
	}
	return base
}

// NewCallReportPayload creates an end-of-call report for phone with ACORD-style
// structured data. An empty phone gets a random one.
func NewCallReportPayload(phone string) *CallReportPayload {
	if phone == "" {
		phone = FakeUSPhone()
	}
	p := &CallReportPayload{}
	p.Message.Type = EndOfCallReport
	p.Message.Call.ID = gofakeit.UUID()
	p.Message.Call.Customer.Number = phone
	p.Message.Analysis.StructuredData = map[string]interface{}{
		"applicant_name":       gofakeit.Company(),
		"business_description": gofakeit.BS() + " " + gofakeit.BuzzWord(),
		"years_in_business":    gofakeit.Number(1, 40),
		"number_of_employees":  gofakeit.Number(1, 500),
		"annual_revenue":       gofakeit.Number(50000, 5000000),
		"crime":                gofakeit.Bool(),
		"contact_email":        gofakeit.Email(),
	}
	return p
}

// NewDocumentExtractedPayload creates extracted values for an uploaded document of a business.
func NewDocumentExtractedPayload(businessID, uploadedDocumentID int64) *DocumentExtractedPayload {
	return &DocumentExtractedPayload{
		BusinessID:         businessID,
		UploadedDocumentID: uploadedDocumentID,
		Values: map[string]interface{}{
			"applicant_name":          gofakeit.Company(),
			"proposed_effective_date": gofakeit.FutureDate().Format("01/02/2006"),
			"premises_address":        gofakeit.Street() + ", " + gofakeit.City(),
			"business_income":         gofakeit.Bool(),
		},
	}
}
