package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

type chatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

type chatResponse struct {
	Response  string  `json:"response"`
	SessionID *string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	var (
		baseURL   string
		sessionID string
		messages  []string
		timeout   time.Duration
	)

	root := &cobra.Command{
		Use:   "chatprobe",
		Short: "Send messages to a running chat relay, reusing the returned session",
		Long: "Each --message flag is sent in order. Without --message, lines are read from stdin " +
			"until EOF. The session id returned by the first successful reply is reused.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout)

			var session *string
			if sessionID != "" {
				session = &sessionID
			}

			send := func(message string) error {
				reply, next, err := sendMessage(cmd.Context(), client, message, session)
				if err != nil {
					return err
				}
				if next != nil {
					session = next
				}
				id := "-"
				if next != nil {
					id = *next
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", id, reply)
				return nil
			}

			if len(messages) > 0 {
				for _, message := range messages {
					if err := send(message); err != nil {
						return err
					}
				}
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if err := send(line); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	root.Flags().StringVar(&baseURL, "url", "http://localhost:5000", "base URL of the chat relay")
	root.Flags().StringVar(&sessionID, "session", "", "existing session id to continue")
	root.Flags().StringArrayVarP(&messages, "message", "m", nil, "message to send (repeatable)")
	root.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "per-request timeout")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func sendMessage(ctx context.Context, client *resty.Client, message string, session *string) (string, *string, error) {
	var (
		out    chatResponse
		errOut errorResponse
	)
	res, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{Message: message, SessionID: session}).
		SetResult(&out).
		SetError(&errOut).
		Post("/chat")
	if err != nil {
		return "", nil, fmt.Errorf("request failed: %w", err)
	}
	if !res.IsSuccess() {
		return "", nil, fmt.Errorf("relay returned %d: %s", res.StatusCode(), errOut.Error)
	}
	return out.Response, out.SessionID, nil
}
