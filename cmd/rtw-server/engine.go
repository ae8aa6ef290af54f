package main

import (
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/rtw/rtw/internal/domain/clinicalstatus"
	"github.com/rtw/rtw/internal/domain/restriction"
	"github.com/rtw/rtw/internal/domain/treatmentplan"
	"github.com/rtw/rtw/internal/platform/validate"
)

// Offline engine commands. Each reads one JSON request body, the same shape
// the /api/v1/engine endpoints accept, and writes the result to stdout.

func engineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "-", "Request JSON file, or - for stdin")
	cmd.Flags().String("now", "", "Evaluation date (ISO-8601); defaults to the current time")
}

func combineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Aggregate certificate restrictions into the effective set",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req clinicalstatus.CombineRequest
			if err := readRequest(cmd, &req); err != nil {
				return err
			}
			return writeJSON(cmd, clinicalstatus.CombineCertificates(req))
		},
	}
	cmd.Flags().StringP("input", "i", "-", "Request JSON file, or - for stdin")
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an advisory treatment plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req clinicalstatus.PlanRequest
			if err := readRequest(cmd, &req); err != nil {
				return err
			}
			now, err := nowFlag(cmd)
			if err != nil {
				return err
			}
			in, now, err := req.Input(now)
			if err != nil {
				return err
			}
			return writeJSON(cmd, treatmentplan.Generate(in, now))
		},
	}
	engineFlags(cmd)
	return cmd
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict return-to-work outcomes for a batch of cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req clinicalstatus.PredictRequest
			if err := readRequest(cmd, &req); err != nil {
				return err
			}
			now, err := nowFlag(cmd)
			if err != nil {
				return err
			}
			tuning, _ := cmd.Flags().GetString("tuning")
			predictor, err := loadPredictor(tuning)
			if err != nil {
				return err
			}
			res, err := clinicalstatus.PredictAll(predictor, req, now)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	engineFlags(cmd)
	cmd.Flags().String("tuning", os.Getenv("ENGINE_TUNING_FILE"), "Predictor tuning YAML file")
	return cmd
}

func nowFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("now")
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, ok := restriction.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("--now %q is not an ISO-8601 date", s)
	}
	return t.UTC(), nil
}

// readRequest decodes the --input document into v and validates it.
func readRequest(cmd *cobra.Command, v interface{}) error {
	path, _ := cmd.Flags().GetString("input")

	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	if err := validate.New().Validate(v); err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return fmt.Errorf("invalid input: %v", he.Message)
		}
		return err
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
