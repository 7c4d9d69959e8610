package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shirase/yoyaku/internal/config"
	"github.com/shirase/yoyaku/internal/event"
)

// --- summarize ---

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize text, a web page, or a PDF",
	Long: `Summarize text, a web page, or a PDF document.

Examples:
  yoyaku summarize --text "..."
  yoyaku summarize --url https://example.com/article
  yoyaku summarize --file ./paper.pdf
  echo "..." | yoyaku summarize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		url, _ := cmd.Flags().GetString("url")
		file, _ := cmd.Flags().GetString("file")

		req := map[string]any{}
		switch {
		case text != "":
			req["text"] = text
		case url != "":
			req["url"] = url
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			if strings.EqualFold(filepath.Ext(file), ".pdf") {
				req["pdf"] = base64.StdEncoding.EncodeToString(data)
			} else {
				req["text"] = string(data)
			}
		default:
			// Fall back to stdin so the command composes with pipes.
			data, err := readAllStdin()
			if err != nil || strings.TrimSpace(data) == "" {
				return fmt.Errorf("one of --text, --url, or --file is required (or pipe text on stdin)")
			}
			req["text"] = data
		}

		return runSummarize(req)
	},
}

func init() {
	summarizeCmd.Flags().String("text", "", "text to summarize")
	summarizeCmd.Flags().String("url", "", "URL to fetch and summarize")
	summarizeCmd.Flags().String("file", "", "file path to summarize (.pdf or plain text)")
}

func readAllStdin() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return "", fmt.Errorf("no stdin data")
	}
	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 10<<20)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	return sb.String(), scanner.Err()
}

// runSummarize subscribes to a private page stream, fires the trigger, and
// prints lifecycle events until the terminal one arrives. This is the same
// protocol the injected page UI speaks.
func runSummarize(req map[string]any) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}

	page := "cli-" + uuid.NewString()
	req["page"] = page

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Open the event stream before triggering so no event is missed.
	streamReq, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/pages/"+page+"/events", nil)
	if err != nil {
		return err
	}
	streamResp, err := (&http.Client{}).Do(streamReq)
	if err != nil {
		return fmt.Errorf("server not reachable — is yoyaku running? (%w)", err)
	}
	defer streamResp.Body.Close()

	resp, err := client.post(ctx, "/summarize", req)
	if err != nil {
		return err
	}
	var accepted map[string]string
	if err := decodeJSON(resp, &accepted); err != nil {
		return err
	}

	scanner := bufio.NewScanner(streamResp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var ev event.Event
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev); err != nil {
			continue
		}
		if ev.RequestID != accepted["request_id"] {
			continue
		}

		switch ev.Kind {
		case event.KindLoading:
			printStep("Summarizing: %s", ev.Preview)
		case event.KindComplete:
			fmt.Fprintln(os.Stdout, ev.Summary)
			return nil
		default:
			printError("%s", ev.Message)
			return fmt.Errorf("summarization failed")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading event stream: %w", err)
	}
	return fmt.Errorf("event stream closed before a terminal event")
}

// --- key ---

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the summarization API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Store the summarization API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.put(cmd.Context(), "/credential", map[string]string{"api_key": args[0]})
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("API key stored")
		return nil
	},
}

var keyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check the stored API key against the provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/credential/test", nil)
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		switch result["status"] {
		case "valid":
			printSuccess("API key is valid")
		case "missing":
			printWarning("no API key configured")
		default:
			printError("API key is invalid")
		}
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), "/credential")
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}
		printSuccess("API key removed")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyTestCmd)
	keyCmd.AddCommand(keyClearCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage yoyaku configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, info := range config.ShowAll(cfg) {
			printStatus(info.Key, "%s", info.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long:  "Set a configuration key.\n\nValid keys:\n  " + strings.Join(config.ValidKeys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(args[0], args[1]); err != nil {
			return err
		}
		printSuccess("%s = %s", args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration key to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("%s reset to default", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
