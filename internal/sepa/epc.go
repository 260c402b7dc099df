// Package sepa builds EPC069-12 payloads ("Girocode") for SEPA credit
// transfer QR codes. The payload is returned as text; rendering the actual
// QR image is left to the caller or the frontend.
package sepa

import (
	"fmt"
	"strings"
)

const (
	serviceTag = "BCD"
	version    = "002"
	charset    = "1" // UTF-8
	identifier = "SCT"

	maxNameLength       = 70
	maxRemittanceLength = 140
)

// Payment describes a single SEPA credit transfer.
type Payment struct {
	Name       string  // beneficiary, required
	IBAN       string  // required
	BIC        string  // optional since EPC version 002
	Amount     float64 // EUR, must be positive
	Remittance string  // unstructured remittance info, e.g. the invoice number
}

// EncodePayload returns the EPC QR payload for the payment. Line breaks
// separate the fields; trailing empty fields are kept so scanners see the
// fixed field count.
func EncodePayload(p Payment) (string, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "", fmt.Errorf("sepa: beneficiary name is required")
	}
	if len([]rune(name)) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	iban := strings.ToUpper(strings.ReplaceAll(p.IBAN, " ", ""))
	if err := validateIBAN(iban); err != nil {
		return "", err
	}
	if p.Amount <= 0 {
		return "", fmt.Errorf("sepa: amount must be positive, got %.2f", p.Amount)
	}
	if p.Amount >= 1_000_000_000 {
		return "", fmt.Errorf("sepa: amount exceeds EPC maximum")
	}

	remittance := strings.TrimSpace(p.Remittance)
	if len([]rune(remittance)) > maxRemittanceLength {
		remittance = string([]rune(remittance)[:maxRemittanceLength])
	}

	fields := []string{
		serviceTag,
		version,
		charset,
		identifier,
		strings.ToUpper(strings.TrimSpace(p.BIC)),
		name,
		iban,
		fmt.Sprintf("EUR%.2f", p.Amount),
		"", // purpose code
		"", // structured reference
		remittance,
	}
	return strings.Join(fields, "\n"), nil
}

// validateIBAN performs the ISO 13616 mod-97 check.
func validateIBAN(iban string) error {
	if len(iban) < 15 || len(iban) > 34 {
		return fmt.Errorf("sepa: invalid IBAN length %d", len(iban))
	}
	rearranged := iban[4:] + iban[:4]
	var remainder int
	for _, r := range rearranged {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r >= 'A' && r <= 'Z':
			v = int(r-'A') + 10
		default:
			return fmt.Errorf("sepa: invalid IBAN character %q", r)
		}
		if v >= 10 {
			remainder = (remainder*100 + v) % 97
		} else {
			remainder = (remainder*10 + v) % 97
		}
	}
	if remainder != 1 {
		return fmt.Errorf("sepa: IBAN checksum failed")
	}
	return nil
}
