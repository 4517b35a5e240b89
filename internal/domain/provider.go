package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var npiPattern = regexp.MustCompile(`^\d{10}$`)

// Provider validation errors
var (
	ErrEmptyProviderID   = fmt.Errorf("%w: provider ID cannot be empty", ErrValidation)
	ErrEmptyProviderName = fmt.Errorf("%w: provider name cannot be empty", ErrValidation)
	ErrInvalidNPI        = fmt.Errorf("%w: NPI must be exactly 10 digits", ErrValidation)
)

// Provider is a prescriber identified by a national license number (NPI).
// The NPI is globally unique; a provider is never renamed by the service.
type Provider struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	NPI       string    `json:"npi"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProvider creates a validated Provider with a fresh ID.
func NewProvider(name, npi string) (*Provider, error) {
	p := &Provider{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		NPI:       strings.TrimSpace(npi),
		CreatedAt: time.Now().UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the Provider has valid data.
func (p *Provider) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyProviderID
	}
	if p.Name == "" {
		return ErrEmptyProviderName
	}
	return ValidateNPI(p.NPI)
}

// ValidateNPI reports whether npi is a well-formed license number.
func ValidateNPI(npi string) error {
	if !npiPattern.MatchString(npi) {
		return ErrInvalidNPI
	}
	return nil
}
