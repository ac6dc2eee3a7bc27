package stnmodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusKnownValues(t *testing.T) {
	cases := map[string]Status{
		"ok":             StatusOK,
		"ble":            StatusBLE,
		"wifi":           StatusWiFi,
		"offline":        StatusOffline,
		"no_data":        StatusNoData,
		"erreur_capteur": StatusSensorFault,
		"unknown":        StatusUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseStatus(raw), "raw=%q", raw)
	}
}

func TestParseStatusUnrecognized(t *testing.T) {
	assert.Equal(t, StatusUnknown, ParseStatus(""))
	assert.Equal(t, StatusUnknown, ParseStatus("rebooting"))
	assert.Equal(t, StatusUnknown, ParseStatus("OK"))
}

func TestStatusDisplayCoversAllStatuses(t *testing.T) {
	for _, s := range []Status{StatusOK, StatusBLE, StatusWiFi, StatusOffline, StatusNoData, StatusSensorFault, StatusUnknown} {
		d := s.Display()
		require.NotEmpty(t, d.Label, "status %s has no label", s)
		require.NotEmpty(t, d.Tone, "status %s has no tone", s)
	}

	// Values from before the current status set fall back to unknown.
	assert.Equal(t, StatusUnknown.Display(), Status("legacy").Display())
}

func TestValidatePhoneNumber(t *testing.T) {
	require.NoError(t, ValidatePhoneNumber("+33612345678"))

	err := ValidatePhoneNumber("0612345678")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
}
