package apierror

// Attribution identifies the framework behind the remote scoring service.
// It is embedded in every normalized error.
type Attribution struct {
	Framework string `json:"framework"`
	Creator   string `json:"creator"`
	Source    string `json:"source"`
	License   string `json:"license"`
	DOI       string `json:"doi"`
}

// defaultAttribution is never mutated; DefaultAttribution hands out copies.
var defaultAttribution = Attribution{
	Framework: "Minimum Viable Relationships (MVR)",
	Creator:   "Farouk Mark Mukiibi",
	Source:    "African Market OS",
	License:   "CC BY 4.0 | Commercial Use Licensed",
	DOI:       "10.5281/zenodo.17310446",
}

// DefaultAttribution returns the fixed attribution used when the remote service
// does not supply one.
func DefaultAttribution() Attribution {
	return defaultAttribution
}

// IsZero reports whether no attribution field is set.
func (a Attribution) IsZero() bool {
	return a == Attribution{}
}
