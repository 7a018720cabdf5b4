package main

import (
	"bufio"
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voicescribe/voicescribe/internal/client"
	"github.com/voicescribe/voicescribe/internal/recording"
)

var serverURL string

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "voicescribe",
	Short: "Upload or record audio and browse its transcriptions",
}

func init() {
	defaultURL := os.Getenv("API_BASE_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:5000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultURL, "base URL of the transcription API")

	rootCmd.AddCommand(
		uploadCmd(),
		recordCmd(),
		historyCmd(),
		exportCmd(),
	)
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			audio, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read audio file: %w", err)
			}
			if len(audio) == 0 {
				return fmt.Errorf("audio file %s is empty", path)
			}

			c := client.New(serverURL)
			result, err := c.Transcribe(cmd.Context(), filepath.Base(path), mimeForFile(path), bytes.NewReader(audio))
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n%s\n", result.Filename, result.Transcript)
			return nil
		},
	}
}

func recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone and transcribe the capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := recording.NewRecorder(recording.DefaultConfig())
			if err := rec.Start(cmd.Context()); err != nil {
				return fmt.Errorf("start recording: %w", err)
			}

			fmt.Println("Recording... press Enter to stop.")
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

			audio, err := rec.Stop()
			if err != nil {
				return fmt.Errorf("stop recording: %w", err)
			}

			name := fmt.Sprintf("recording-%s.wav", time.Now().Format("20060102-150405"))
			c := client.New(serverURL)
			result, err := c.Transcribe(cmd.Context(), name, "audio/wav", bytes.NewReader(audio))
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n%s\n", result.Filename, result.Transcript)
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past transcriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverURL)
			entries, err := c.History(cmd.Context())
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No transcriptions yet.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("%s  %s  %s\n    %s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.ID,
					e.Filename,
					preview(e.Transcription),
				)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <id>",
		Short: "Write one transcription to a local text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverURL)
			entries, err := c.History(cmd.Context())
			if err != nil {
				return err
			}

			for _, e := range entries {
				if e.ID != args[0] {
					continue
				}
				out := client.ExportFilename(e.Filename)
				if err := os.WriteFile(out, []byte(e.Transcription), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Printf("Saved %s\n", out)
				return nil
			}
			return fmt.Errorf("no transcription with id %s", args[0])
		},
	}
}

func mimeForFile(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 80 {
		return text[:80] + "..."
	}
	return text
}
