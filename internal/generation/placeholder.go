package generation

import (
	"context"
	"fmt"
	"strings"
)

// PlaceholderProvider names the placeholder in provider errors and logs.
const PlaceholderProvider = "placeholder"

// PlaceholderGenerator writes a deterministic care plan without any network
// call. It is used when no language model API key is configured.
type PlaceholderGenerator struct{}

var _ Generator = PlaceholderGenerator{}

// Generate implements Generator.
func (PlaceholderGenerator) Generate(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewProviderError(PlaceholderProvider, err)
	}
	if err := in.Validate(); err != nil {
		return "", NewProviderError(PlaceholderProvider, err)
	}

	diagnosis := orDash(in.ICD10Code)
	prescriber := "the prescribing provider"
	if in.ProviderName != "" {
		prescriber = in.ProviderName
	}

	var b strings.Builder
	b.WriteString("## Problem List\n")
	fmt.Fprintf(&b, "- Patient %s requires %s therapy management\n", in.PatientName, in.Medication)
	fmt.Fprintf(&b, "- Diagnosis: %s\n", diagnosis)
	if in.HealthConditions != "" {
		fmt.Fprintf(&b, "- Health conditions: %s\n", in.HealthConditions)
	}
	if in.Allergies != "" {
		fmt.Fprintf(&b, "- Allergies: %s\n", in.Allergies)
	}
	b.WriteString("\n## Goals\n")
	fmt.Fprintf(&b, "1. Optimize %s therapy for maximum efficacy\n", in.Medication)
	b.WriteString("2. Minimize adverse drug reactions\n")
	b.WriteString("3. Improve patient medication adherence\n")
	b.WriteString("\n## Pharmacist Interventions\n")
	fmt.Fprintf(&b, "1. Review current %s dosing and adjust as needed\n", in.Medication)
	fmt.Fprintf(&b, "2. Provide patient education on %s usage and side effects\n", in.Medication)
	fmt.Fprintf(&b, "3. Coordinate with %s on therapy modifications\n", prescriber)
	b.WriteString("4. Screen for drug-drug interactions\n")
	b.WriteString("\n## Monitoring Plan\n")
	b.WriteString("1. Follow-up assessment in 2 weeks\n")
	fmt.Fprintf(&b, "2. Monitor relevant lab values for %s\n", diagnosis)
	b.WriteString("3. Assess medication adherence at each visit\n")
	b.WriteString("4. Document and report any adverse effects\n")
	return b.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
