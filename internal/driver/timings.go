package driver

import (
	"encoding/json"
	"fmt"

	"rill/internal/diag"
	"rill/internal/observ"
	"rill/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records a timing report as an info diagnostic whose
// single note carries the report as JSON. The report is added even when the
// bag is full.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "file"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	at := source.Span{File: source.NoFile}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, at, msg).WithNote(at, string(data))
	if bag.Len() < int(bag.Cap()) {
		bag.Add(entry)
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
