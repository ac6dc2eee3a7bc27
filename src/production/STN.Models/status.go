package stnmodels

// Status is the connection/health state reported by the sensor node with a
// reading, or derived server-side for stale data.
type Status string

const (
	StatusOK          Status = "ok"
	StatusBLE         Status = "ble"
	StatusWiFi        Status = "wifi"
	StatusOffline     Status = "offline"
	StatusNoData      Status = "no_data"
	StatusSensorFault Status = "erreur_capteur"
	StatusUnknown     Status = "unknown"
)

// StatusDisplay carries the dashboard metadata for a status.
type StatusDisplay struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// statusDisplay maps every known status to its dashboard text. Keep in sync
// with the front end.
var statusDisplay = map[Status]StatusDisplay{
	StatusOK:          {Label: "Température à jour", Tone: "success"},
	StatusBLE:         {Label: "En attente de configuration Wi-Fi via BLE", Tone: "warning"},
	StatusWiFi:        {Label: "Connecté au Wi-Fi, attente du capteur", Tone: "warning"},
	StatusOffline:     {Label: "Capteur déconnecté du réseau", Tone: "danger"},
	StatusNoData:      {Label: "Aucune donnée reçue encore", Tone: "warning"},
	StatusSensorFault: {Label: "Capteur non détecté (SPI)", Tone: "danger"},
	StatusUnknown:     {Label: "État inconnu", Tone: "secondary"},
}

// ParseStatus maps a raw string onto the closed status set. Anything
// unrecognized (including empty) becomes StatusUnknown rather than leaking
// arbitrary strings into stored documents.
func ParseStatus(raw string) Status {
	s := Status(raw)
	if _, ok := statusDisplay[s]; ok {
		return s
	}
	return StatusUnknown
}

// Display returns the dashboard metadata for s, falling back to the unknown
// entry for values that predate the current status set.
func (s Status) Display() StatusDisplay {
	if d, ok := statusDisplay[s]; ok {
		return d
	}
	return statusDisplay[StatusUnknown]
}

func (s Status) String() string {
	return string(s)
}
