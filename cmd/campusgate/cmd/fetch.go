package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aussiebroadwan/campusgate/pkg/gatesdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	fetchMethod         string
	fetchData           string
	fetchHeaders        []string
	fetchManualLoginURL string
	fetchOut            string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch URL",
	Short: "Fetch a protected resource through the gateway",
	Long: `Performs one request with the gateway's session for the URL's host and writes
the response body to stdout or --out. Use --data @file to send a file as the body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := gatesdk.FetchRequest{
			URL:            args[0],
			Method:         strings.ToUpper(fetchMethod),
			ManualLoginURL: fetchManualLoginURL,
		}

		body, err := readData(fetchData)
		if err != nil {
			return err
		}
		req.Body = body

		if len(fetchHeaders) > 0 {
			req.Headers = make(map[string]string, len(fetchHeaders))
			for _, h := range fetchHeaders {
				k, v, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("header %q must be \"Name: value\"", h)
				}
				req.Headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}

		out, err := apiClient().Fetch(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		if fetchOut == "" || fetchOut == "-" {
			_, err = os.Stdout.Write(out)
			return err
		}
		if err := os.WriteFile(fetchOut, out, 0o644); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %d bytes to %s\n", len(out), fetchOut)
		return nil
	},
}

func readData(data string) ([]byte, error) {
	switch {
	case data == "":
		return nil, nil
	case data == "@-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(data, "@"):
		return os.ReadFile(data[1:])
	default:
		return []byte(data), nil
	}
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", "GET", "HTTP method")
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "request body, @file or @- for stdin")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, "request header \"Name: value\" (repeatable)")
	fetchCmd.Flags().StringVar(&fetchManualLoginURL, "manual-login-url", "", "log in through this URL before the request")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "write the body to a file instead of stdout")
}
