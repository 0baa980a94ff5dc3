package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"horizonte-forms/internal/cep"
	"horizonte-forms/internal/config"
	"horizonte-forms/internal/service"
	"horizonte-forms/internal/telemetry"
	"horizonte-forms/internal/validation"
)

// errInvalidValue marks a run whose input failed validation. The result has
// already been printed, so main only sets the exit code.
var errInvalidValue = errors.New("invalid value")

const (
	outputText = "text"
	outputJSON = "json"
)

type rootOptions struct {
	output     string
	verbose    bool
	cepBaseURL string
	cepTimeout time.Duration
	debounce   time.Duration

	svc *service.Service
	out *syncWriter
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "formcheck",
		Short: "Validate and format Brazilian form data",
		Long: `formcheck validates CPF, CNPJ, phone, e-mail, date and CEP values,
applies the input masks used by the donation and contact forms, scores
passwords and resolves postal codes through ViaCEP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format (text, json)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging on stderr")
	flags.StringVar(&opts.cepBaseURL, "cep-base-url", cep.DefaultBaseURL, "ViaCEP base URL")
	flags.DurationVar(&opts.cepTimeout, "cep-timeout", cep.DefaultTimeout, "CEP lookup timeout")
	flags.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before live validation runs")

	cmd.AddCommand(
		newValidateCmd(opts),
		newMaskCmd(opts),
		newPasswordCmd(opts),
		newCEPCmd(opts),
		newLiveCmd(opts),
	)
	return cmd
}

// setup applies environment configuration to flags the user did not set and
// builds the service shared by the subcommands.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.output != outputText && o.output != outputJSON {
		return fmt.Errorf("invalid --output %q: must be %s or %s", o.output, outputText, outputJSON)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("cep-base-url") {
		o.cepBaseURL = cfg.CEPBaseURL
	}
	if !flags.Changed("cep-timeout") {
		o.cepTimeout = cfg.CEPTimeout
	}
	if !flags.Changed("debounce") {
		o.debounce = cfg.ValidationDebounce
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	if _, err := telemetry.Setup(cmd.Context(), telemetry.Config{
		ServiceName: "formcheck",
		LogLevel:    level,
		Output:      cmd.ErrOrStderr(),
	}); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	client := cep.NewClient(cep.WithBaseURL(o.cepBaseURL), cep.WithTimeout(o.cepTimeout))
	o.svc = service.New(service.WithCEPLookup(client), service.WithLogger(slog.Default()))
	o.out = &syncWriter{w: cmd.OutOrStdout()}
	return nil
}

func (o *rootOptions) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printResult writes a validation result and reports errInvalidValue when it
// failed.
func (o *rootOptions) printResult(result validation.Result) error {
	if o.output == outputJSON {
		if err := o.out.encode(result); err != nil {
			return err
		}
	} else {
		mark := "✓"
		if !result.IsValid {
			mark = "✗"
		}
		o.out.printf("%s %s\n", mark, result.Message)
	}
	if !result.IsValid {
		return errInvalidValue
	}
	return nil
}

// syncWriter serializes writes from the debounced callback and the command
// goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

func (s *syncWriter) encode(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoder := json.NewEncoder(s.w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
