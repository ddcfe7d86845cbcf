package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/recipebox/internal/capture"
	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/pipeline"
	"github.com/lehigh-university-libraries/recipebox/internal/review"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
	"github.com/lehigh-university-libraries/recipebox/internal/transcribe"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var (
		text      string
		audioPath string
		imagePath string
		output    string
		save      bool
		user      string
		imageURL  string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a structured recipe from text, audio and/or a photo",
		Long: `Runs one capture through transcription and extraction and prints the draft.

At least one of --text, --audio or --image is required. With --save the draft
is accepted and stored as a recipe owned by --user.`,
		Example: `  # Extract from typed notes
  recipebox extract --text "2 eggs, a handful of spinach, fry 5 minutes"

  # Dictated memo plus a photo, saved as alice
  recipebox extract --audio memo.m4a --image card.jpg --save --user alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "json" {
				return fmt.Errorf("unsupported output %q (supported: yaml, json)", output)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			var device capture.Device
			if audioPath != "" {
				device = capture.FileDevice{Path: audioPath}
			}
			session := capture.NewSession(device)
			session.SetText(text)

			if audioPath != "" {
				if err := session.StartRecording(cmd.Context()); err != nil {
					return err
				}
				if err := session.StopRecording(); err != nil {
					return err
				}
			}

			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				if int64(len(data)) > cfg.Storage.MaxImageBytes {
					return fmt.Errorf("image too large (max %d bytes)", cfg.Storage.MaxImageBytes)
				}
				session.AttachImage(models.NewBlob(data, ""))
			}

			in, ok := session.Submit()
			if !ok {
				return fmt.Errorf("%w: pass --text, --audio or --image", extraction.ErrNoInputProvided)
			}

			p := pipeline.New(transcribe.New(cfg), extraction.New(cfg))
			draft, err := p.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			if err := printDraft(cmd, draft, output); err != nil {
				return err
			}
			if !save {
				return nil
			}

			store, err := storage.Open(cmd.Context(), cfg.Storage.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			if imageURL == "" && !in.Image.Empty() {
				imageURL = in.Image.DataURL()
			}
			recipe, err := review.New(store, storage.NewDraftStore()).Accept(cmd.Context(), user, draft, imageURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved recipe %s (%s)\n", recipe.ID, recipe.ImageURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Typed recipe text")
	cmd.Flags().StringVar(&audioPath, "audio", "", "Path to a dictated audio clip")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a photo of the recipe")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&save, "save", false, "Accept the draft and store it as a recipe")
	cmd.Flags().StringVar(&user, "user", os.Getenv("USER"), "Owner of the saved recipe")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "Image URL to store with the saved recipe")

	return cmd
}

func printDraft(cmd *cobra.Command, draft models.Draft, output string) error {
	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(draft)
	}
	data, err := yaml.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
