package sepa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePayload(t *testing.T) {
	payload, err := EncodePayload(Payment{
		Name:       "Musterfirma GmbH",
		IBAN:       "DE02 1203 0000 0000 2020 51",
		BIC:        "byladem1001",
		Amount:     1666.00,
		Remittance: "INV-000001",
	})
	require.NoError(t, err)

	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 11)
	require.Equal(t, "BCD", lines[0])
	require.Equal(t, "002", lines[1])
	require.Equal(t, "1", lines[2])
	require.Equal(t, "SCT", lines[3])
	require.Equal(t, "BYLADEM1001", lines[4])
	require.Equal(t, "Musterfirma GmbH", lines[5])
	require.Equal(t, "DE02120300000000202051", lines[6])
	require.Equal(t, "EUR1666.00", lines[7])
	require.Equal(t, "INV-000001", lines[10])
}

func TestEncodePayloadWithoutBIC(t *testing.T) {
	payload, err := EncodePayload(Payment{
		Name:   "Musterfirma GmbH",
		IBAN:   "DE02120300000000202051",
		Amount: 100,
	})
	require.NoError(t, err)
	require.Equal(t, "", strings.Split(payload, "\n")[4])
}

func TestEncodePayloadValidation(t *testing.T) {
	_, err := EncodePayload(Payment{IBAN: "DE02120300000000202051", Amount: 1})
	require.Error(t, err)

	_, err = EncodePayload(Payment{Name: "X", IBAN: "DE02120300000000202051", Amount: 0})
	require.Error(t, err)

	_, err = EncodePayload(Payment{Name: "X", IBAN: "DE00120300000000202051", Amount: 1})
	require.ErrorContains(t, err, "checksum")

	_, err = EncodePayload(Payment{Name: "X", IBAN: "DE0212", Amount: 1})
	require.ErrorContains(t, err, "length")
}

func TestEncodePayloadTruncatesLongFields(t *testing.T) {
	payload, err := EncodePayload(Payment{
		Name:       strings.Repeat("A", 100),
		IBAN:       "DE02120300000000202051",
		Amount:     1,
		Remittance: strings.Repeat("R", 200),
	})
	require.NoError(t, err)
	lines := strings.Split(payload, "\n")
	require.Len(t, lines[5], 70)
	require.Len(t, lines[10], 140)
}
