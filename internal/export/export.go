// Package export renders care plans as plain-text documents for download.
package export

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/careplan-api/internal/domain"
)

const (
	rule        = "========================================"
	placeholder = "-"
	timeLayout  = "2006-01-02 15:04"
)

// FileName is the attachment name of a downloaded care plan.
func FileName(id uuid.UUID) string {
	return fmt.Sprintf("careplan_%s.txt", id)
}

// Text renders d as a flat text document. Plans admitted without an order
// show "-" for the order and provider fields. A failed plan shows its failure
// reason as content.
func Text(d *domain.CarePlanDetail) string {
	mrn, icd10, provider, npi := placeholder, placeholder, placeholder, placeholder
	if d.Patient.MRN != "" {
		mrn = d.Patient.MRN
	}
	if d.Order != nil {
		icd10 = d.Order.ICD10Code
	}
	if d.Provider != nil {
		provider = d.Provider.Name
		npi = d.Provider.NPI
	}

	content := d.Content
	if !d.Status.IsTerminal() {
		content = ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Care Plan #%s\n", d.ID)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Patient: %s %s (MRN: %s)\n", d.Patient.FirstName, d.Patient.LastName, mrn)
	fmt.Fprintf(&b, "Medication: %s\n", d.MedicationLabel())
	fmt.Fprintf(&b, "ICD-10: %s\n", icd10)
	fmt.Fprintf(&b, "Provider: %s (NPI: %s)\n", provider, npi)
	fmt.Fprintf(&b, "Status: %s\n", d.Status)
	fmt.Fprintf(&b, "Created: %s\n", d.CreatedAt.UTC().Format(timeLayout))
	b.WriteString(rule + "\n\n")
	b.WriteString(content)
	b.WriteString("\n")
	return b.String()
}
