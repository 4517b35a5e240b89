package domain

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestNewPatient(t *testing.T) {
	t.Parallel()
	dob := mustDate(t, "1980-05-12")

	p, err := NewPatient("Alice", "Johnson", "100001", dob)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.FullName() != "Alice Johnson" {
		t.Errorf("Expected full name, got %q", p.FullName())
	}
	if !p.MatchesIdentity("Alice", "Johnson", dob) {
		t.Error("Expected identity to match")
	}
	if p.MatchesIdentity("alice", "Johnson", dob) {
		t.Error("Expected identity match to be case-sensitive")
	}

	if _, err := NewPatient("Alice", "Johnson", "12345", dob); !errors.Is(err, ErrInvalidMRN) {
		t.Errorf("Expected ErrInvalidMRN, got %v", err)
	}
	if _, err := NewPatient("", "Johnson", "100001", dob); !errors.Is(err, ErrEmptyPatientFirstName) {
		t.Errorf("Expected ErrEmptyPatientFirstName, got %v", err)
	}
	future := time.Now().UTC().AddDate(1, 0, 0)
	if _, err := NewPatient("Alice", "Johnson", "100001", future); !errors.Is(err, ErrInvalidDateOfBirth) {
		t.Errorf("Expected ErrInvalidDateOfBirth, got %v", err)
	}
}

func TestNewClinicalPatient(t *testing.T) {
	t.Parallel()
	dob := mustDate(t, "1990-01-15")

	p, err := NewClinicalPatient("John", "Doe", dob, ClinicalFields{Medications: " Metformin 500mg "})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.MRN != "" {
		t.Errorf("Expected empty MRN, got %q", p.MRN)
	}
	if p.Medications != "Metformin 500mg" {
		t.Errorf("Expected trimmed medications, got %q", p.Medications)
	}

	p.UpdateClinicalFields(ClinicalFields{Medications: "Lisinopril 10mg"})
	if p.Medications != "Lisinopril 10mg" || p.Allergies != "" {
		t.Errorf("Expected overwrite of all clinical fields, got %+v", p.ClinicalFields)
	}

	if _, err := NewClinicalPatient("John", "Doe", dob, ClinicalFields{}); !errors.Is(err, ErrEmptyMedications) {
		t.Errorf("Expected ErrEmptyMedications, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("1990-01-15")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if FormatDate(d) != "1990-01-15" {
		t.Errorf("Expected round trip, got %s", FormatDate(d))
	}
	if _, err := ParseDate("01/15/1990"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Expected ErrInvalidDate, got %v", err)
	}
}
