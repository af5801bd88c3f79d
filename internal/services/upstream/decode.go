package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/j-veylop/erwait-dashboard-tui/internal/models"
)

// rawRecord mirrors one upstream case. Field names are the upstream's.
type rawRecord struct {
	Permanencia *minutes `json:"permanencia"`
	Gravidade   string   `json:"gravidade"`
}

// minutes accepts a JSON number or a numeric string. Anything else is
// flagged invalid and read as zero.
type minutes struct {
	value float64
	valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		m.set(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64); err == nil {
			m.set(f)
			return nil
		}
	}

	*m = minutes{}
	return nil
}

func (m *minutes) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		*m = minutes{}
		return
	}
	*m = minutes{value: f, valid: true}
}

// Minutes returns the decoded value and whether it was usable.
func (r rawRecord) Minutes() (float64, bool) {
	if r.Permanencia == nil || !r.Permanencia.valid {
		return 0, false
	}
	return r.Permanencia.value, true
}

// decodeRecords parses a JSON array of upstream records.
func decodeRecords(body []byte) ([]rawRecord, error) {
	var raw []rawRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return raw, nil
}

// toWaitRecords projects the wait duration. It returns how many values were degraded to zero.
func toWaitRecords(raw []rawRecord) ([]models.WaitRecord, int) {
	degraded := 0
	out := make([]models.WaitRecord, len(raw))
	for i, r := range raw {
		v, ok := r.Minutes()
		if !ok {
			degraded++
		}
		out[i] = models.WaitRecord{DurationMinutes: v}
	}
	return out, degraded
}

// toSeverityRecords projects (category, duration). It returns how many values were degraded to zero.
func toSeverityRecords(raw []rawRecord) ([]models.SeverityRecord, int) {
	degraded := 0
	out := make([]models.SeverityRecord, len(raw))
	for i, r := range raw {
		v, ok := r.Minutes()
		if !ok {
			degraded++
		}
		out[i] = models.SeverityRecord{
			Category:        norm.NFC.String(strings.TrimSpace(r.Gravidade)),
			DurationMinutes: v,
		}
	}
	return out, degraded
}
