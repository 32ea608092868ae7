package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/codesymm/mechsynth/pkg/engine"
	"github.com/codesymm/mechsynth/pkg/task"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	goalStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func printReport(w io.Writer, tk *task.Task, results []engine.Result, traceDirs []string) {
	fmt.Fprintln(w, titleStyle.Render("Synthesis complete: "+tk.Name))
	fmt.Fprintln(w)

	for i, res := range results {
		status := goalStyle.Render("goal")
		if !res.Goal() {
			status = failStyle.Render("exhausted")
		}
		fmt.Fprintf(w, "%s %s [%s]\n", sectionStyle.Render("Seed:"), res.SeedName, status)

		if len(res.Path) > 0 {
			fmt.Fprintf(w, "  path: %s\n", strings.Join(res.Path, " -> "))
		} else {
			fmt.Fprintln(w, "  path: (none)")
		}
		fmt.Fprintf(w, "  cost: %d  iterations: %d  satisfied: %s\n",
			res.Cost, res.Iterations, strings.Join(res.SatisfiedEFs, ", "))

		dof, err := res.Graph.DegreesOfFreedom()
		if err == nil {
			fmt.Fprintf(w, "  topology: %d elements, %d joints, DOF %d\n",
				res.Graph.ElementCount(), res.Graph.JointCount(), dof)
		}
		fmt.Fprintln(w, dimStyle.Render("  trace: "+traceDirs[i]))
		fmt.Fprintln(w)
	}

	goals := 0
	for _, res := range results {
		if res.Goal() {
			goals++
		}
	}
	summary := fmt.Sprintf("%d of %d seed(s) reached the goal", goals, len(results))
	if goals > 0 {
		fmt.Fprintln(w, goalStyle.Render(summary))
	} else {
		fmt.Fprintln(w, failStyle.Render(summary))
	}
}

func printNoSeeds(w io.Writer, taskName string) {
	fmt.Fprintln(w, titleStyle.Render("Synthesis halted: "+taskName))
	fmt.Fprintln(w, failStyle.Render("No suitable seed mechanism found in the knowledge base."))
}

// resultRecord is the JSON form of one per-seed outcome.
type resultRecord struct {
	RunID        uuid.UUID `json:"run_id"`
	Seed         string    `json:"seed"`
	Status       string    `json:"status"`
	Path         []string  `json:"path"`
	Cost         int       `json:"cost"`
	Iterations   int       `json:"iterations"`
	SatisfiedEFs []string  `json:"satisfied_efs"`
	Elements     int       `json:"elements"`
	Joints       int       `json:"joints"`
	DOF          int       `json:"dof"`
	TraceDir     string    `json:"trace_dir"`
}

type resultsFile struct {
	Task       string         `json:"task"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []resultRecord `json:"results"`
}

// writeResults dumps a machine-readable summary next to the traces.
func writeResults(dir string, tk *task.Task, results []engine.Result, traceDirs []string) error {
	out := resultsFile{Task: tk.Name, FinishedAt: time.Now().UTC()}
	for i, res := range results {
		dof, err := res.Graph.DegreesOfFreedom()
		if err != nil {
			dof = 0
		}
		out.Results = append(out.Results, resultRecord{
			RunID:        res.RunID,
			Seed:         res.SeedName,
			Status:       string(res.Status),
			Path:         res.Path,
			Cost:         res.Cost,
			Iterations:   res.Iterations,
			SatisfiedEFs: res.SatisfiedEFs,
			Elements:     res.Graph.ElementCount(),
			Joints:       res.Graph.JointCount(),
			DOF:          dof,
			TraceDir:     traceDirs[i],
		})
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	name := strings.ReplaceAll(tk.Name, " ", "_") + "_results.json"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
