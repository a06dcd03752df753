package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sdejongh/extsort/pkg/models"
)

// WriteReport writes the relocation report of a pass to path ("" = stdout).
// Format can be "human" or "json".
func WriteReport(report *models.SortReport, path string, format string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		w = file
	}

	switch format {
	case "json":
		return writeReportJSON(report, w)
	default:
		return writeReportHuman(report, w)
	}
}

// writeReportHuman renders relocations and failures as tables, ordered by
// destination bucket
func writeReportHuman(report *models.SortReport, w io.Writer) error {
	fmt.Fprintf(w, "Relocation Report\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Watch root: %s\n", report.WatchRoot)
	fmt.Fprintf(w, "Dry Run: %v\n\n", report.DryRun)

	relocated := make([]models.Notification, 0, len(report.Relocations))
	for _, n := range report.Relocations {
		if n.Action == models.ActionMoved || n.Action == models.ActionInPlace {
			relocated = append(relocated, n)
		}
	}
	sort.SliceStable(relocated, func(i, j int) bool {
		return relocated[i].Destination < relocated[j].Destination
	})

	if len(relocated) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"File", "Destination", "Action"})
		for _, n := range relocated {
			tw.AppendRow(table.Row{n.MovedFile, destinationLabel(n), string(n.Action)})
		}
		fmt.Fprintf(w, "Relocations (%d)\n%s\n\n", len(relocated), tw.Render())
	}

	if len(report.Failures) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Path", "Stage", "Error"})
		for _, f := range report.Failures {
			errText := ""
			if f.Err != nil {
				errText = f.Err.Error()
			}
			tw.AppendRow(table.Row{f.Path, string(f.Stage), errText})
		}
		fmt.Fprintf(w, "Failures (%d)\n%s\n\n", len(report.Failures), tw.Render())
	}

	fmt.Fprintf(w, "Status: %s\n", report.Status)
	return nil
}

type jsonRelocation struct {
	File        string `json:"file"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
}

type jsonReport struct {
	JSONReportData
	Relocations []jsonRelocation `json:"relocations"`
}

func writeReportJSON(report *models.SortReport, w io.Writer) error {
	out := jsonReport{JSONReportData: reportData(report), Relocations: []jsonRelocation{}}
	for _, n := range report.Relocations {
		if n.Action == models.ActionSkipped {
			continue
		}
		out.Relocations = append(out.Relocations, jsonRelocation{
			File:        n.MovedFile,
			Destination: n.Destination,
			Action:      string(n.Action),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
