package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/san-kum/odelab/internal/analysis"
	"github.com/san-kum/odelab/internal/dynamo"
	"github.com/san-kum/odelab/internal/storage"
	"github.com/san-kum/odelab/internal/viz"
	"github.com/spf13/cobra"
)

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, traj, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	var data [][]string
	for _, run := range runs {
		data = append(data, []string{
			run.ID,
			run.Model,
			run.Integrator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.Points),
			fmt.Sprintf("[%g, %g]", run.T0, run.T1),
			strconv.Itoa(run.Stats.Evaluations),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "MODEL", "INTEGRATOR", "CREATED", "POINTS", "SPAN", "EVALS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n", meta.Model, meta.Integrator)
	fmt.Printf("samples: %d on [%g, %g]\n\n", traj.Len(), traj.Times[0], traj.Times[traj.Len()-1])

	if !split {
		fmt.Println(viz.PlotComponents(traj, meta.Labels, viz.GetTheme(themeName), 80, 15, "concentration vs row"))
		return nil
	}

	for i := 0; i < traj.Dim(); i++ {
		caption := fmt.Sprintf("x%d vs row", i)
		if i < len(meta.Labels) {
			caption = meta.Labels[i] + " vs row"
		}
		fmt.Println(viz.PlotColumn(traj, i, 80, 10, caption))
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	label := func(i int) string {
		if i >= 0 && i < len(meta.Labels) {
			return meta.Labels[i]
		}
		return fmt.Sprintf("x%d", i)
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", label(xAxis), label(yAxis))

	if asciiMode {
		portrait := analysis.NewPhasePortrait(traj, xAxis, yAxis)
		if portrait == nil {
			return fmt.Errorf("state dimension %d too small for axes %d,%d", traj.Dim(), xAxis, yAxis)
		}
		minX, maxX, minY, maxY := portrait.Bounds()
		fmt.Print(analysis.PhasePortraitToASCII(portrait, 60, 20))
		fmt.Printf("\n%s in [%.4g, %.4g], %s in [%.4g, %.4g]\n", label(xAxis), minX, maxX, label(yAxis), minY, maxY)
		return nil
	}

	canvas, err := viz.PhaseCanvas(traj, xAxis, yAxis, 60, 20)
	if err != nil {
		return err
	}
	fmt.Print(canvas.String())
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)

	header := []string{"time"}
	for i := 0; i < traj.Dim(); i++ {
		if i < len(meta.Labels) {
			header = append(header, meta.Labels[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < traj.Len(); i++ {
		t, y := traj.At(i)
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, val := range y {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportRun(os.Stdout, args[0])
}

func watchRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s · %s · %s", meta.ID, meta.Model, meta.Integrator)
	w := viz.NewWatch(title, traj, meta.Labels, meta.Metrics, time.Duration(tickMillis)*time.Millisecond)
	return viz.RunWatch(w)
}
