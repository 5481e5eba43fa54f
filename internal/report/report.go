// Package report renders classification results for people and for other
// programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/solariq/internal/classifier"
)

const barWidth = 30

// Text writes a human-readable report of one result. The probability chart
// is drawn only when the result carries probabilities, in the order given
// by conditions.
func Text(w io.Writer, r classifier.Result, conditions []classifier.Condition) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Image:        %s\n", r.ImagePath)
	if r.Failed() {
		fmt.Fprintf(&b, "ERROR:        %s\n", r.Error)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Condition:    %s\n", r.Condition)
	fmt.Fprintf(&b, "Confidence:   %s\n", r.ConfidencePct)
	fmt.Fprintf(&b, "Description:  %s\n", r.Description)
	fmt.Fprintf(&b, "Action:       %s\n", r.Action)
	fmt.Fprintf(&b, "Timestamp:    %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))

	switch {
	case r.AlertRequired && r.IsCritical:
		b.WriteString("🚨 CRITICAL ALERT: immediate attention required\n")
	case r.AlertRequired:
		b.WriteString("⚠️  ALERT: maintenance required\n")
	case r.IsCritical:
		b.WriteString("⚠️  Possible damage detected with low confidence, verify manually\n")
	default:
		b.WriteString("✅ No alert\n")
	}

	if len(r.Probabilities) > 0 {
		b.WriteString("\nAll probabilities:\n")
		nameWidth := 0
		for _, c := range conditions {
			nameWidth = max(nameWidth, len(c.Name))
		}
		for _, c := range conditions {
			p, ok := r.Probabilities[c.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %-*s %s %6.2f%%\n", nameWidth, c.Name, bar(p), p*100)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func bar(p float64) string {
	filled := int(p*barWidth + 0.5)
	filled = min(max(filled, 0), barWidth)
	return "|" + strings.Repeat("█", filled) + strings.Repeat(" ", barWidth-filled) + "|"
}

func JSON(w io.Writer, results []classifier.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func YAML(w io.Writer, results []classifier.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		return err
	}
	return enc.Close()
}

// Summary is a one-line digest used in logs and notifications.
func Summary(r classifier.Result) string {
	if r.Failed() {
		return fmt.Sprintf("%s: error: %s", r.ImagePath, r.Error)
	}
	return fmt.Sprintf("%s: %s (%s) alert=%t critical=%t", r.ImagePath, r.Condition, r.ConfidencePct, r.AlertRequired, r.IsCritical)
}
