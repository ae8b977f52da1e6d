// quizctl is the admin companion for the quiz API: it loads question
// files produced by the authoring tooling, manages tests and dumps
// service counters, talking to the gateway with the static admin key.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/quizbotio/quizbot/internal/quiz"

	"github.com/spf13/cobra"
)

var (
	apiBase string
	apiKey  string
)

var rootCmd = &cobra.Command{
	Use:   "quizctl",
	Short: "Admin CLI for the quiz service",
}

var importCmd = &cobra.Command{
	Use:   "import <questions.json>",
	Short: "Import a question file into a test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		// Authoring exports sometimes arrive with escaped brackets.
		cleaned := strings.NewReplacer(`\[`, "[", `\]`, "]", `\~`, "~").Replace(string(raw))

		var batch []quiz.QuestionInput
		if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		testID, _ := cmd.Flags().GetString("test")
		path := "/admin/questions/import"
		if testID != "" {
			path = "/admin/tests/" + testID + "/questions/import"
		}
		body, _ := json.Marshal(batch)
		return call(http.MethodPost, path, body)
	},
}

var createTestCmd = &cobra.Command{
	Use:   "create-test <name>",
	Short: "Create a new test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		body, _ := json.Marshal(map[string]string{"name": args[0], "description": desc})
		return call(http.MethodPost, "/admin/tests", body)
	},
}

var testsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List tests with question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/public/tests", nil)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodDelete, "/admin/questions/clear", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Dump service counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(http.MethodGet, "/admin/stats", nil)
	},
}

func call(method, path string, body []byte) error {
	req, err := http.NewRequest(method, strings.TrimSuffix(apiBase, "/")+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(out)))
	}
	fmt.Println(strings.TrimSpace(string(out)))
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", envOr("QUIZ_API_URL", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("ADMIN_API_KEY"), "Admin API key")

	importCmd.Flags().String("test", "", "Target test id (default: legacy import into the sentinel test)")
	createTestCmd.Flags().String("description", "", "Test description")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(createTestCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
