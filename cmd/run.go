package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sgalella/GeometricArt/internal/art"
	"github.com/sgalella/GeometricArt/internal/imageio"
	"github.com/sgalella/GeometricArt/internal/plotting"
	"github.com/sgalella/GeometricArt/internal/store"
)

var (
	refPath         string
	outPath         string
	shapeKind       string
	shapeCount      int
	sides           int
	maxRadius       int
	iterations      int
	seed            int64
	resizeMax       int
	reportEvery     int
	verbose         bool
	plotPath        string
	framesDir       string
	dataDir         string
	jobID           string
	checkpointEvery int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run hill-climbing optimization",
	Long: `Runs the hill-climbing optimization against a target image and writes
the final rendering. Only mutations that strictly reduce the pixel
difference are kept, so the reported similarity never decreases.`,
	RunE: runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&refPath, "ref", "", "Target image path (required)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Output image path (default output/<similarity>_<number>_<sides>_<name>.png)")
	runCmd.Flags().StringVar(&shapeKind, "shape", "polygon", "Shape kind: polygon or circle")
	runCmd.Flags().IntVarP(&shapeCount, "number", "n", 50, "Number of geometric shapes")
	runCmd.Flags().IntVarP(&sides, "sides", "s", 6, "Number of sides for polygons")
	runCmd.Flags().IntVarP(&maxRadius, "max-radius", "m", 30, "Maximum radius for circles")
	runCmd.Flags().IntVarP(&iterations, "iterations", "i", 100000, "Number of iterations")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = time-based)")
	runCmd.Flags().IntVar(&resizeMax, "resize", 0, "Downscale target so its longest side is at most N pixels (0 = off)")
	runCmd.Flags().IntVar(&reportEvery, "report-every", 10000, "Progress report cadence in iterations")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log iteration, changes and similarity at the report cadence")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write a similarity-over-iterations chart to this path")
	runCmd.Flags().StringVar(&framesDir, "frames-dir", "", "Save an intermediate frame at the report cadence into this directory")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	runCmd.Flags().StringVar(&jobID, "job-id", "", "Job ID for checkpoints (default: random)")
	runCmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0, "Save a checkpoint every N report windows (0 = disabled)")

	runCmd.MarkFlagRequired("ref")
	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	// Traces, frames and checkpoints are driven by the report cadence;
	// without one they would never fire.
	if reportEvery == 0 && (plotPath != "" || framesDir != "" || checkpointEvery > 0) {
		return fmt.Errorf("--plot, --frames-dir and --checkpoint-every require --report-every > 0")
	}

	target, err := imageio.Load(refPath)
	if err != nil {
		return err
	}
	target = imageio.Downscale(target, resizeMax)

	cfg := art.Config{
		Shapes:      shapeCount,
		Iterations:  iterations,
		Kind:        art.Kind(shapeKind),
		Sides:       sides,
		MaxRadius:   maxRadius,
		Seed:        seed,
		ReportEvery: reportEvery,
	}

	slog.Info("Starting optimization",
		"ref", refPath,
		"shape", cfg.Kind,
		"number", cfg.Shapes,
		"iterations", cfg.Iterations,
		"width", target.Bounds().Dx(),
		"height", target.Bounds().Dy(),
	)

	id := jobID
	if id == "" {
		id = uuid.New().String()
	}

	var checkpointStore *store.FSStore
	var trace *store.TraceWriter
	if checkpointEvery > 0 {
		if checkpointStore, err = store.NewFSStore(dataDir); err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		if trace, err = store.NewTraceWriter(dataDir, id, false); err != nil {
			return fmt.Errorf("failed to create trace writer: %w", err)
		}
		defer trace.Close()
	}

	if framesDir != "" {
		if err := os.MkdirAll(framesDir, 0755); err != nil {
			return fmt.Errorf("failed to create frames directory: %w", err)
		}
	}

	jobConfig := store.JobConfig{
		RefPath: refPath,
		Config:  cfg,
		MaxDim:  resizeMax,
	}

	var (
		hc           *art.Climber
		entries      []store.TraceEntry
		initialScore int64
		windows      int
	)
	stall := art.NewStallTracker(art.DefaultStallConfig())

	onProgress := func(p art.Progress) {
		if p.Accepted && (reportEvery == 0 || p.Iteration%reportEvery != 0) {
			return // trace only at the report cadence
		}

		windows++
		entry := store.TraceEntry{
			Iteration:  p.Iteration,
			Changes:    p.Changes,
			Score:      p.Score,
			Similarity: p.Similarity,
			Timestamp:  time.Now(),
		}
		entries = append(entries, entry)

		if verbose {
			slog.Info("Progress",
				"iteration", p.Iteration,
				"changes", p.Changes,
				"similarity", fmt.Sprintf("%.2f%%", p.Similarity),
			)
		}

		if stall.Update(p.Score) {
			slog.Warn("No significant improvement recently",
				"iteration", p.Iteration,
				"stale_windows", stall.StaleCount(),
			)
		}

		if trace != nil {
			if err := trace.Write(entry); err != nil {
				slog.Warn("Failed to write trace entry", "error", err)
			}
		}

		if checkpointStore != nil && windows%checkpointEvery == 0 {
			cp := store.NewCheckpoint(id, hc.Shapes(), p.Score, initialScore, p.Similarity, p.Iteration, p.Changes, jobConfig)
			if err := checkpointStore.SaveCheckpoint(id, cp); err != nil {
				slog.Warn("Failed to save checkpoint", "error", err)
			}
		}

		if framesDir != "" {
			framePath := filepath.Join(framesDir, fmt.Sprintf("frame_%08d.png", p.Iteration))
			canvas := art.NewCanvas(target.Bounds().Dx(), target.Bounds().Dy(), art.White)
			if err := imageio.SavePNG(framePath, canvas.Render(hc.Shapes())); err != nil {
				slog.Warn("Failed to save frame", "path", framePath, "error", err)
			}
		}
	}

	hc, err = art.New(target, cfg, art.WithProgress(onProgress))
	if err != nil {
		return err
	}
	initialScore = hc.Score()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, runErr := hc.Run(ctx)
	elapsed := time.Since(start)

	if runErr != nil {
		slog.Warn("Run interrupted, keeping best state so far", "iteration", result.Iterations)
	}

	out := outPath
	if out == "" {
		if err := os.MkdirAll("output", 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		base := filepath.Base(refPath)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		out = filepath.Join("output", fmt.Sprintf("%.2f_%d_%d_%s.png", result.Similarity, shapeCount, sides, base))
	}

	if err := imageio.SavePNG(out, result.Image); err != nil {
		return err
	}

	if checkpointStore != nil {
		cp := store.NewCheckpoint(id, result.Shapes, result.Score, initialScore, result.Similarity, result.Iterations, result.Changes, jobConfig)
		if err := checkpointStore.SaveCheckpoint(id, cp); err != nil {
			slog.Warn("Failed to save final checkpoint", "error", err)
		}
	}

	if plotPath != "" {
		title := fmt.Sprintf("%s (%d %ss)", filepath.Base(refPath), shapeCount, shapeKind)
		if err := plotting.SimilarityChart(entries, title, plotPath); err != nil {
			slog.Warn("Failed to write progress plot", "error", err)
		}
	}

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"iterations", result.Iterations,
		"changes", result.Changes,
		"initial_score", initialScore,
		"final_score", result.Score,
		"similarity", result.Similarity,
	)

	fmt.Printf("Wrote %s (similarity %.2f%%, %d/%d mutations accepted)\n",
		out, result.Similarity, result.Changes, result.Iterations)

	return runErr
}
