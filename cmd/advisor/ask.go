package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/transport/tui"
	"github.com/sandevgo/cropadvisor/pkg/conv"
)

var askImage string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupFileLogger(ctx, os.Stderr)
		defer flushLog()

		in := chat.Input{Text: strings.Join(args, " ")}
		if askImage != "" {
			img, err := tui.LoadImage(askImage)
			if err != nil {
				return err
			}
			in.Image = img
		}

		app := NewApp(ctx)
		defer app.Close(ctx)

		session := app.Sessions.Session(ctx, "ask")
		_, err := session.Submit(ctx, in, printAnswer(cmd.OutOrStdout()))
		if errors.Is(err, chat.ErrCanceled) {
			return nil
		}
		return err
	},
}

// printAnswer streams deltas as they arrive. A completed turn that was not
// streamed, or that replaced streamed text, is printed whole.
func printAnswer(out io.Writer) chat.Observer {
	var streamed strings.Builder
	return func(e chat.Event) {
		switch e.Kind {
		case chat.EventDelta:
			streamed.WriteString(e.Delta)
			fmt.Fprint(out, e.Delta)
		case chat.EventComplete:
			if e.Turn.Role != core.RoleAssistant {
				return
			}
			if streamed.Len() > 0 {
				fmt.Fprintln(out)
				if !e.Fallback && streamed.String() == e.Turn.Text {
					return
				}
			}
			fmt.Fprintln(out, conv.MarkdownToPlainText([]byte(e.Turn.Text)))
		}
	}
}

func init() {
	askCmd.Flags().StringVarP(&askImage, "image", "i", "", "photo of the crop or soil to attach")
	rootCmd.AddCommand(askCmd)
}
