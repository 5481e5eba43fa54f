package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/solariq/internal/classifier"
)

func sample() classifier.Result {
	return classifier.Result{
		ID:            "abc",
		ImagePath:     "panels/roof-3.jpg",
		Condition:     classifier.PhysicalDamage,
		ClassIndex:    4,
		Confidence:    0.9,
		ConfidencePct: "90.00%",
		AlertRequired: true,
		IsCritical:    true,
		Description:   "Cracked glass",
		Action:        "Inspect",
		Timestamp:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Probabilities: map[string]float64{
			classifier.Normal:           0.02,
			classifier.Dust:             0.03,
			classifier.Shading:          0.01,
			classifier.BirdDroppings:    0.01,
			classifier.PhysicalDamage:   0.9,
			classifier.ElectricalDamage: 0.03,
		},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sample(), classifier.DefaultConditions()))

	out := buf.String()
	require.Contains(t, out, "Condition:    physical_damage")
	require.Contains(t, out, "Confidence:   90.00%")
	require.Contains(t, out, "CRITICAL ALERT")
	require.Contains(t, out, "All probabilities:")

	lines := strings.Split(strings.TrimSpace(out[strings.Index(out, "All probabilities:"):]), "\n")
	require.Len(t, lines, 7)
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[1]), classifier.Normal))
	require.Contains(t, lines[5], strings.Repeat("█", 27))
	require.Contains(t, lines[5], "90.00%")
}

func TestText_NoProbabilitiesAndFailure(t *testing.T) {
	r := sample()
	r.Probabilities = nil
	r.AlertRequired, r.IsCritical = false, false

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, r, classifier.DefaultConditions()))
	require.NotContains(t, buf.String(), "All probabilities")
	require.Contains(t, buf.String(), "No alert")

	buf.Reset()
	failed := classifier.Result{ImagePath: "x.jpg", Error: "error processing image: bad"}
	require.NoError(t, Text(&buf, failed, classifier.DefaultConditions()))
	require.Equal(t, "Image:        x.jpg\nERROR:        error processing image: bad\n", buf.String())
}

func TestJSONAndYAML(t *testing.T) {
	results := []classifier.Result{sample()}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, results))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "physical_damage", decoded[0]["condition"])
	require.Equal(t, true, decoded[0]["alert_required"])
	require.NotContains(t, decoded[0], "error")

	buf.Reset()
	require.NoError(t, YAML(&buf, results))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Equal(t, "physical_damage", fromYAML[0]["condition"])
	require.Equal(t, "Inspect", fromYAML[0]["recommended_action"])
}

func TestSummary(t *testing.T) {
	require.Equal(t, "panels/roof-3.jpg: physical_damage (90.00%) alert=true critical=true", Summary(sample()))
	require.Equal(t, "x.jpg: error: boom", Summary(classifier.Result{ImagePath: "x.jpg", Error: "boom"}))
}
