package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"tailorhire-api/internal/analysis"
	"tailorhire-api/internal/bootstrap"
	"tailorhire-api/internal/extract"
	"tailorhire-api/internal/llm"
	"tailorhire-api/internal/shared/config"
	"tailorhire-api/resume/model"
	"tailorhire-api/resume/render"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the text extracted from a PDF or DOCX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := extractFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "source_format=%s length=%d\n", out.SourceFormat, len(out.Text))
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
}

func newRenderCmd() *cobra.Command {
	var (
		outPath string
		html    bool
	)
	cmd := &cobra.Command{
		Use:   "render <resume.json>",
		Short: "Render optimized resume JSON to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if !json.Valid(payload) {
				return fmt.Errorf("%s is not valid JSON", args[0])
			}
			resume := model.DecodeOptimizedResume(payload)
			renderer, err := render.NewRenderer(render.NewChromeConverter(os.Getenv("CHROME_PATH")))
			if err != nil {
				return err
			}

			var data []byte
			if html {
				doc, err := renderer.RenderHTML(resume)
				if err != nil {
					return err
				}
				data = []byte(doc)
			} else {
				data, err = renderer.Render(contextOrBackground(cmd), resume)
				if err != nil {
					return err
				}
			}
			if outPath == "" {
				outPath = defaultOutPath(args[0], html)
			}
			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: wrote %s (%d bytes)\n", outPath, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "output path")
	cmd.Flags().BoolVar(&html, "html", false, "write the intermediate HTML instead of PDF")
	return cmd
}

func newPromptCmd() *cobra.Command {
	var (
		resumePath string
		jdPath     string
		run        bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the optimize prompt, or send it to the configured model with --run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(resumePath) == "" || strings.TrimSpace(jdPath) == "" {
				return errors.New("--resume and --jd are required")
			}
			ctx := contextOrBackground(cmd)
			resume, err := extractFile(ctx, resumePath)
			if err != nil {
				return err
			}
			jd, err := os.ReadFile(jdPath)
			if err != nil {
				return err
			}

			prompt := llm.BuildOptimizePrompt(resume.Text, string(jd))
			if !run {
				fmt.Fprintln(cmd.OutOrStdout(), prompt)
				return nil
			}

			cfg := config.Load()
			gen, err := bootstrap.BuildGenerator(ctx, cfg)
			if err != nil {
				return err
			}
			raw, err := llm.NewInvoker(gen, cfg.LLMTimeout).Invoke(ctx, prompt)
			if err != nil {
				return err
			}
			result, err := analysis.Validate(raw)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), raw)
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Raw)
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "resume file (pdf or docx)")
	cmd.Flags().StringVar(&jdPath, "jd", "", "job description text file")
	cmd.Flags().BoolVar(&run, "run", false, "invoke the configured model and validate its reply")
	return cmd
}

func extractFile(ctx context.Context, path string) (extract.ExtractedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return extract.ExtractedText{}, err
	}
	mediaType := mimetype.Detect(data).String()
	return extract.New().Extract(ctx, data, mediaType, filepath.Base(path))
}

func defaultOutPath(input string, html bool) string {
	ext := ".pdf"
	if html {
		ext = ".html"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
