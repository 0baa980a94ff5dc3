package main

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"horizonte-forms/internal/debounce"
	"horizonte-forms/internal/mask"
	"horizonte-forms/internal/service"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <kind> <value>",
		Short: "Validate a single value",
		Example: `  formcheck validate cpf 529.982.247-25
  formcheck validate phone "(81) 98765-4321"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.svc.Validate(opts.context(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(opts.svc.ValidatorNames(), ", "))
			}
			return opts.printResult(result)
		},
	}
}

func newMaskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mask <kind> <value>",
		Short: "Format a value with an input mask",
		Long:  "Format a value with one of the input masks: " + strings.Join(mask.Kinds(), ", ") + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := opts.svc.ApplyMask(opts.context(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return opts.out.encode(output)
			}
			opts.out.printf("%s\n", output.Value)
			return nil
		},
	}
}

func newPasswordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "password [password]",
		Short: "Score password strength",
		Long:  "Score password strength. The password is read from stdin when not given as an argument.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if scanner.Scan() {
					password = scanner.Text()
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}

			output := opts.svc.PasswordStrength(opts.context(cmd), service.PasswordInput{Password: password})
			if opts.output == outputJSON {
				return opts.out.encode(output)
			}
			opts.out.printf("%d/5 %s\n", output.Level, output.Message)
			return nil
		},
	}
}

func newCEPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cep <cep>",
		Short: "Look up an address by CEP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := opts.svc.LookupCEP(opts.context(cmd), service.CEPLookupInput{CEP: args[0]})
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				if err := opts.out.encode(output); err != nil {
					return err
				}
			} else if output.Found {
				a := output.Address
				opts.out.printf("%s, %s - %s/%s (%s)\n", a.Street, a.Neighborhood, a.City, a.State, a.CEP)
			} else {
				opts.out.printf("✗ %s\n", output.Message)
			}
			if !output.Found {
				return errInvalidValue
			}
			return nil
		},
	}
}

// newLiveCmd validates stdin as if each line were the field content after a
// keystroke. Only the value left after a quiet period is validated.
func newLiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "live <kind>",
		Short: "Validate stdin lines as live field input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := opts.context(cmd)
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			if !slices.Contains(opts.svc.ValidatorNames(), kind) {
				return fmt.Errorf("unknown validator %q (available: %s)", kind, strings.Join(opts.svc.ValidatorNames(), ", "))
			}

			debouncer := debounce.New(opts.debounce, func(value string) {
				result, err := opts.svc.Validate(ctx, kind, value)
				if err != nil {
					opts.out.printf("error: %v\n", err)
					return
				}
				mark := "✓"
				if !result.IsValid {
					mark = "✗"
				}
				opts.out.printf("%s %s: %s\n", mark, value, result.Message)
			})
			defer debouncer.Stop()

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				value := strings.TrimSpace(scanner.Text())
				if value == "" {
					continue
				}
				debouncer.Trigger(value)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			debouncer.Flush()
			return nil
		},
	}
}
