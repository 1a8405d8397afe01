package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"grape-bot/internal/domain/entity"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrorInfo ошибка сценария в машиночитаемом виде
type ErrorInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Result итог проверки одного файла
type Result struct {
	File       string             `json:"file" yaml:"file"`
	SizeMB     float64            `json:"size_mb" yaml:"size_mb"`
	Validated  bool               `json:"validated" yaml:"validated"`
	Prediction *entity.Prediction `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	Error      *ErrorInfo         `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromState собирает Result из состояния сессии после анализа.
func FromState(file string, st entity.State) Result {
	res := Result{
		File:       file,
		Validated:  st.Validated,
		Prediction: st.Prediction,
	}
	if st.Selection != nil {
		res.SizeMB = st.Selection.SizeMB()
	}
	if st.Err != nil {
		res.Error = &ErrorInfo{Kind: string(st.Err.Kind), Message: st.Err.Message}
	}
	return res
}

// ValidFormat проверяет имя формата вывода
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// DisplayResults formats and displays the scan results
func DisplayResults(w io.Writer, results []Result, format string) error {
	switch format {
	case FormatJSON:
		return displayJSON(w, results)
	case FormatYAML:
		return displayYAML(w, results)
	case FormatHuman:
		fallthrough
	default:
		displayHuman(w, results)
	}
	return nil
}

func displayJSON(w io.Writer, results []Result) error {
	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, results []Result) error {
	output, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func displayHuman(w io.Writer, results []Result) {
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	for _, res := range results {
		fmt.Fprintln(w)
		cyan.Fprintf(w, "📄 %s (%.2f MB)\n", res.File, res.SizeMB)

		if res.Error != nil {
			red.Fprintln(w, "❌ ANALYSIS FAILED:")
			fmt.Fprintf(w, "   %s\n", res.Error.Message)
			continue
		}

		p := res.Prediction
		if p == nil {
			fmt.Fprintf(w, "   %s\n", color.HiBlackString("no result"))
			continue
		}

		if p.IsHealthy() {
			green.Fprintln(w, "✅ HEALTHY LEAF")
		} else {
			red.Fprintf(w, "🦠 %s\n", strings.ToUpper(string(p.Disease)))
		}
		fmt.Fprintf(w, "   Confidence: %.1f%%\n", p.Confidence)
		fmt.Fprintf(w, "   Severity: %s\n", p.Severity)
		urgencyColor(p.TreatmentUrgency).Fprintf(w, "   Treatment urgency: %s (%s)\n", p.TreatmentUrgency, p.TreatmentUrgency.Advice())

		if len(p.Recommendations) > 0 {
			fmt.Fprintln(w, "   Recommendations:")
			for i, rec := range p.Recommendations {
				fmt.Fprintf(w, "     %d. %s\n", i+1, rec)
			}
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func urgencyColor(u entity.Urgency) *color.Color {
	switch u {
	case entity.UrgencyHigh:
		return color.New(color.FgRed)
	case entity.UrgencyMedium:
		return color.New(color.FgYellow)
	case entity.UrgencyLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}
