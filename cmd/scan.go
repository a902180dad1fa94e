package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fleetdocs/internal/config"
	"fleetdocs/internal/extract"
	"fleetdocs/internal/fleet"
	"fleetdocs/internal/logger"
	"fleetdocs/internal/ocr"
	"fleetdocs/internal/storage"
	"fleetdocs/internal/workflow"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file...]",
	Short: "Recognize registration documents and match them to fleet vehicles",
	Long: `Run a batch of document photographs through the recognition pipeline:
each image is OCRed (Google Cloud Vision first, local Tesseract on failure),
vehicle fields are extracted from the text, and the plate number is matched
against the fleet registry.

Matched documents can be committed in the same run with --commit: the original
image is stored, a document record is created, and non-empty extracted fields
are merged into the vehicle record.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT - Google Cloud project ID
  MONGO_URI - Fleet registry connection string`,
	Example: `  # Recognize two documents
  fleetdocs scan card1.jpg card2.jpg

  # Recognize every image in a directory and commit the matches
  fleetdocs scan --dir ./uploads --commit

  # JSON output for scripting
  fleetdocs scan card.jpg --json`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("dir", "", "Scan every image in this directory")
	scanCmd.Flags().Bool("commit", false, "Commit matched documents after recognition")
	scanCmd.Flags().Bool("json", false, "Output as JSON")
	scanCmd.Flags().Int("timeout", 300, "Overall timeout in seconds")
	scanCmd.Flags().Int("workers", 0, "Concurrent recognitions (default from SCAN_WORKERS)")
}

type scanOutput struct {
	Updates []workflow.StatusUpdate `json:"updates"`
	Commits []workflow.CommitResult `json:"commits,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	dir, _ := cmd.Flags().GetString("dir")
	commit, _ := cmd.Flags().GetBool("commit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	workers, _ := cmd.Flags().GetInt("workers")

	paths, err := collectImagePaths(args, dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no image files to scan")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.ScanWorkers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	session, cleanup, err := buildSession(ctx, cfg, workers)
	if err != nil {
		return err
	}
	defer cleanup()

	images := make([]workflow.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", path, err)
		}
		images = append(images, workflow.Image{Name: filepath.Base(path), Data: data})
	}

	ids := session.SubmitImages(images)
	log.Info().Int("documents", len(ids)).Int("workers", workers).Msg("starting batch recognition")

	out := scanOutput{Updates: session.RunRecognition(ctx, ids)}

	if commit {
		var matched []uuid.UUID
		for _, u := range out.Updates {
			if u.Status == workflow.StatusMatched {
				matched = append(matched, u.DocumentID)
			}
		}
		if len(matched) > 0 {
			out.Commits = session.CommitMatched(ctx, matched)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, u := range out.Updates {
		line := fmt.Sprintf("%s  [%s]", paths[i], u.Status)
		if u.Plate != "" {
			line += "  plate=" + u.Plate
		}
		if u.Provider != "" {
			line += "  provider=" + u.Provider
		}
		if u.Message != "" {
			line += "  " + u.Message
		}
		fmt.Println(line)
	}
	for _, c := range out.Commits {
		fmt.Printf("%s  [%s]  fields_changed=%t  %s\n", c.DocumentID, c.Status, c.FieldsChanged, c.Message)
	}
	return nil
}

// buildSession wires the full pipeline: registry index, recognition
// orchestrator, image store, document records and record merge.
func buildSession(ctx context.Context, cfg *config.Config, workers int) (*workflow.Session, func(), error) {
	client, err := fleet.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	registry := fleet.NewRegistry(db)

	vehicles, err := registry.ListVehicles(ctx)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	index := fleet.BuildIndex(vehicles)

	primary, err := ocr.NewVisionProvider(ctx, ocr.VisionConfig{
		ProjectID:   cfg.GoogleCloudProject,
		Location:    cfg.GoogleCloudLocation,
		ProcessorID: cfg.DocumentAIProcessorID,
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	session := workflow.NewSession(workflow.SessionConfig{
		Recognizer: ocr.NewOrchestrator(primary, ocr.NewTesseractProvider(cfg.TesseractLanguage)),
		Extractor:  extract.New(extract.Options{DisableBarePlateFallback: cfg.DisableBarePlateFallback}),
		Index:      index,
		Images:     storage.NewImageStore(cfg.ImageStoreDir),
		Records:    storage.NewRecords(db),
		Merger:     fleet.NewMerger(registry),
		Workers:    workers,
	})

	cleanup := func() {
		_ = primary.Close()
		_ = client.Disconnect(context.Background())
	}
	return session, cleanup, nil
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

func collectImagePaths(args []string, dir string) ([]string, error) {
	paths := append([]string(nil), args...)
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return paths, nil
}
