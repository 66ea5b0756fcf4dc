package models

// RainObservation records whether precipitation was observed on a calendar
// date at the configured reference location. One observation per date.
type RainObservation struct {
	Date string `json:"date"` // YYYY-MM-DD
	Rain bool   `json:"rain"`
}

// DarkskyResponse is the subset of the Darksky forecast response the
// pipeline cares about: the single-word daily weather icon.
type DarkskyResponse struct {
	Daily struct {
		Data []struct {
			Icon string `json:"icon"`
		} `json:"data"`
	} `json:"daily"`
}
