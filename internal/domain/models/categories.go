// internal/domain/models/categories.go
package models

import "regexp"

// Category represents a professional category option for the UI.
type Category struct {
	Value string // The value stored in the database
	Label string // The display label in the UI
}

// Category values. These are the only values accepted at registration and
// in directory filters.
const (
	CategoryArchitect        = "architect"
	CategoryContractor       = "contractor"
	CategoryBuilder          = "builder"
	CategoryAgency           = "agency"
	CategoryMaterialSupplier = "material_supplier"
	CategoryEducational      = "educational_institute"
	CategoryStudent          = "student"
	CategoryTradePro         = "trade_professional"
	CategoryInteriorDesigner = "interior_designer"
	CategoryEngineer         = "engineer"
)

// AllCategories contains all supported categories with their display labels.
// This is used for validation and as a reference for all possible values.
var AllCategories = []Category{
	{Value: CategoryArchitect, Label: "Architect"},
	{Value: CategoryContractor, Label: "Contractor"},
	{Value: CategoryBuilder, Label: "Builder"},
	{Value: CategoryAgency, Label: "Agency"},
	{Value: CategoryMaterialSupplier, Label: "Material Supplier"},
	{Value: CategoryEducational, Label: "Educational Institute"},
	{Value: CategoryStudent, Label: "Student"},
	{Value: CategoryTradePro, Label: "Trade Professional"},
	{Value: CategoryInteriorDesigner, Label: "Interior Designer"},
	{Value: CategoryEngineer, Label: "Engineer"},
}

// IsValidCategory checks if a value is a valid category.
func IsValidCategory(value string) bool {
	for _, c := range AllCategories {
		if c.Value == value {
			return true
		}
	}
	return false
}

// CategoryLabel returns the display label for a category value, or the value
// itself if it is not a known category.
func CategoryLabel(value string) string {
	for _, c := range AllCategories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// COAPattern is the Council of Architecture registration number format:
// "CA/" + 4-digit year + "/" + 5-digit serial, e.g. CA/2020/12345.
// The same pattern gates registration, the verification step, and profile
// completion for the architect category.
var COAPattern = regexp.MustCompile(`^CA\/\d{4}\/\d{5}$`)

// IsValidCOANumber reports whether s matches the COA registration format.
func IsValidCOANumber(s string) bool {
	return COAPattern.MatchString(s)
}

// CertificatesStatus values for the student category.
const (
	CertificatesPursuing  = "Pursuing"
	CertificatesCompleted = "Completed"
)

// IsValidCertificatesStatus checks a student certificates_status value.
func IsValidCertificatesStatus(value string) bool {
	return value == CertificatesPursuing || value == CertificatesCompleted
}

// Auth provider values stored on the user record.
const (
	AuthProviderEmail  = "email"
	AuthProviderGoogle = "google"
)
