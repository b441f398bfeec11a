package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"bridge-generator/internal/convert"
	"bridge-generator/internal/diagnostic"
	"bridge-generator/internal/ir"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen)
	headerColor  = color.New(color.Bold)
)

func confidenceColor(c ir.Confidence) *color.Color {
	switch c {
	case ir.ConfidenceExact:
		return okColor
	case ir.ConfidenceApproximate:
		return warningColor
	default:
		return errorColor
	}
}

func printDiagnostics(w io.Writer, diags diagnostic.Diagnostics) {
	for _, d := range diags.Items {
		c := infoColor

		switch d.Severity {
		case diagnostic.DiagnosticError:
			c = errorColor
		case diagnostic.DiagnosticWarning:
			c = warningColor
		}

		c.Fprintf(w, "%-7s ", d.Severity)
		fmt.Fprintln(w, d.String())
	}
}

func printSummary(w io.Writer, cm *convert.ConvertedModel) {
	headerColor.Fprintf(w, "Project %s", cm.Model.Name)
	fmt.Fprintf(w, " (fingerprint %s)\n", cm.Model.Fingerprint)

	fmt.Fprintf(w, "\nHandlers (%d)\n", len(cm.Model.Handlers))

	for _, h := range cm.Handlers() {
		fmt.Fprintf(w, "  %-7s %-32s ", h.Method, h.Route)
		confidenceColor(h.Confidence).Fprintln(w, h.Confidence)
	}

	fmt.Fprintf(w, "\nTables (%d)\n", len(cm.Model.Tables))

	for _, t := range cm.Tables() {
		fmt.Fprintf(w, "  %-40s ", fmt.Sprintf("%s -> %s", t.Name, t.ClassName))
		confidenceColor(t.Confidence).Fprintln(w, t.Confidence)
	}

	if calls := cm.Calls(); len(calls) > 0 {
		fmt.Fprintf(w, "\nExternal calls (%d)\n", len(calls))

		for _, c := range calls {
			fmt.Fprintf(w, "  %-60s ", c.String())
			confidenceColor(c.Confidence).Fprintln(w, c.Confidence)
		}
	}

	fmt.Fprint(w, "\nOverall: ")
	confidenceColor(cm.Confidence()).Fprintln(w, cm.Confidence())
}

type jsonEntity struct {
	Name       string `json:"name"`
	Target     string `json:"target"`
	Source     string `json:"source,omitempty"`
	Confidence string `json:"confidence"`
}

type jsonDiagnostic struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Subject     string   `json:"subject,omitempty"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type jsonReport struct {
	Project     string           `json:"project"`
	Fingerprint string           `json:"fingerprint"`
	Confidence  string           `json:"confidence"`
	Tally       convert.Tally    `json:"tally"`
	Handlers    []jsonEntity     `json:"handlers"`
	Tables      []jsonEntity     `json:"tables"`
	Calls       []jsonEntity     `json:"calls"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

func buildJSONReport(cm *convert.ConvertedModel) jsonReport {
	r := jsonReport{
		Project:     cm.Model.Name,
		Fingerprint: cm.Model.Fingerprint,
		Confidence:  cm.Confidence().String(),
		Tally:       cm.Tally,
		Handlers:    []jsonEntity{},
		Tables:      []jsonEntity{},
		Calls:       []jsonEntity{},
		Diagnostics: []jsonDiagnostic{},
	}

	for _, h := range cm.Handlers() {
		r.Handlers = append(r.Handlers, jsonEntity{
			Name: h.Name, Target: h.Method.String() + " " + h.Route, Source: h.SourcePath, Confidence: h.Confidence.String(),
		})
	}

	for _, t := range cm.Tables() {
		r.Tables = append(r.Tables, jsonEntity{
			Name: t.Name, Target: t.ClassName, Source: t.Source, Confidence: t.Confidence.String(),
		})
	}

	for _, c := range cm.Calls() {
		r.Calls = append(r.Calls, jsonEntity{
			Name: string(c.ID), Target: c.String(), Source: c.Family, Confidence: c.Confidence.String(),
		})
	}

	var all diagnostic.Diagnostics
	all.Merge(cm.Model.Diagnostics)
	all.Merge(cm.Diagnostics)

	for _, d := range all.Items {
		r.Diagnostics = append(r.Diagnostics, jsonDiagnostic{
			Severity: d.Severity.String(), Code: d.Code, Subject: d.Subject, Message: d.Message, Suggestions: d.Suggestions,
		})
	}

	return r
}
