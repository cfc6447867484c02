package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thongheng/HashGen/pkg/domain"
	"github.com/Thongheng/HashGen/pkg/engine"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
)

func newGenerateCmd() *cobra.Command {
	var (
		snippetName string
		passcode    string
		apiKey      string
		keyOrder    string
		payloadStr  string
		payloadFile string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Execute a snippet against a JSON payload and print the digest",
		Long: `Resolves the named snippet, executes it against the payload with the
given passcode, api key and key order, and prints the resulting digest.
The payload is read from --payload, --payload-file or stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lgr := logger.Default()

			svc, cleanup, err := openService(ctx, lgr)
			if err != nil {
				return err
			}
			defer cleanup()

			snippet, ok, err := svc.Get(ctx, snippetName)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("snippet %q not found", snippetName)
			}

			raw, err := readPayload(cmd, payloadStr, payloadFile)
			if err != nil {
				return err
			}
			payload, err := domain.ParsePayload(raw)
			if err != nil {
				// Malformed payload gets its own message, distinct from
				// snippet execution failures.
				return errors.New("Invalid JSON Payload")
			}

			eng := engine.New(engine.WithLogger(lgr))
			digest, err := eng.Execute(ctx, snippet.Code, domain.InvocationRequest{
				Payload:  payload,
				Passcode: passcode,
				APIKey:   apiKey,
				KeyOrder: splitKeyOrder(keyOrder),
			})
			if err != nil {
				var execErr *engine.ExecError
				if errors.As(err, &execErr) {
					return errors.New(execErr.Details())
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}

	cmd.Flags().StringVar(&snippetName, "snippet", "", "name of the stored snippet to execute")
	cmd.Flags().StringVar(&passcode, "passcode", "", "combined secret (HMAC key followed by a 16-character IV)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "optional API key prefixed to the signed message")
	cmd.Flags().StringVar(&keyOrder, "key-order", "", "comma separated payload field order (default: payload order)")
	cmd.Flags().StringVar(&payloadStr, "payload", "", "JSON payload")
	cmd.Flags().StringVar(&payloadFile, "payload-file", "", "file containing the JSON payload")
	_ = cmd.MarkFlagRequired("snippet")

	return cmd
}

func readPayload(cmd *cobra.Command, payloadStr, payloadFile string) ([]byte, error) {
	switch {
	case payloadStr != "":
		return []byte(payloadStr), nil
	case payloadFile != "":
		data, err := os.ReadFile(payloadFile)
		if err != nil {
			return nil, fmt.Errorf("read payload file: %w", err)
		}
		return data, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		return data, nil
	}
}

func splitKeyOrder(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
