package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"inferdesk/internal/adapter/tui/chat"
	"inferdesk/internal/domain"
	"inferdesk/internal/usecase"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	run := &runOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Chat with the text generator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, root, run, usecase.GenerateVariant, "", "IntelliGen")
		},
	}
	addRunFlags(cmd, run, "message to send with --once")
	return cmd
}

func newCodeCmd(root *rootOptions) *cobra.Command {
	run := &runOptions{}
	var mode string
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Chat with the code assistant",
		Long: `Chat with the code assistant.

Each send carries the current mode: debug, complete or explain.
Tab cycles the mode in the interactive view.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := domain.ParseCodeMode(mode)
			if err != nil {
				return err
			}
			return runChat(cmd, root, run, usecase.CodeVariant, m, "CodeVue")
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(domain.CodeModeDebug), "assistant mode: debug, complete, explain")
	addRunFlags(cmd, run, "code to send with --once")
	return cmd
}

func newHumanizeCmd(root *rootOptions) *cobra.Command {
	run := &runOptions{}
	cmd := &cobra.Command{
		Use:   "humanize",
		Short: "Rewrite text so it reads naturally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingle(cmd, root, run, singleCommand{
				title:       "Humanizer",
				placeholder: "Paste the text to humanize...",
				variant: func(a *app) usecase.Variant {
					return usecase.HumanizeVariant(a.svc, a.cfg.Session.WordLimit)
				},
			})
		},
	}
	addRunFlags(cmd, run, `text to humanize ("-" reads stdin)`)
	return cmd
}

func newSummarizeCmd(root *rootOptions) *cobra.Command {
	run := &runOptions{}
	var file string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a PDF document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			att, err := readAttachment(file)
			if err != nil {
				return err
			}
			return runSingle(cmd, root, run, singleCommand{
				title:       "PDF Summarizer",
				placeholder: "Optional: what should the summary focus on?",
				file:        att,
				variant: func(a *app) usecase.Variant {
					return usecase.SummarizeVariant(a.svc)
				},
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "PDF file to summarize")
	cmd.Flags().StringVar(&run.text, "query", "", "optional focus for the summary")
	cmd.Flags().BoolVar(&run.once, "once", false, "run headless and print the result")
	cmd.Flags().BoolVar(&run.full, "full", false, "print the full result instead of the collapsed one")
	return cmd
}

func newReviewCmd(root *rootOptions) *cobra.Command {
	run := &runOptions{}
	var export bool
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Generate a literature review on a topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingle(cmd, root, run, singleCommand{
				title:       "Literature Review",
				placeholder: "Enter a research topic...",
				export:      true,
				exportOnce:  export,
				variant: func(a *app) usecase.Variant {
					return usecase.LitReviewVariant(a.svc)
				},
			})
		},
	}
	addRunFlags(cmd, run, `review topic ("-" reads stdin)`)
	cmd.Flags().BoolVar(&export, "export", false, "with --once, also write the review as a PDF")
	return cmd
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic search over academic papers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			if len(args) > 0 {
				query = args[0]
			}
			return runSearch(cmd, root, query, once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run headless and print the results")
	return cmd
}

func addRunFlags(cmd *cobra.Command, run *runOptions, textUsage string) {
	cmd.Flags().StringVar(&run.text, "text", "", textUsage)
	cmd.Flags().BoolVar(&run.once, "once", false, "run headless and print the result")
	cmd.Flags().BoolVar(&run.full, "full", false, "print the full result instead of the collapsed one")
}

// readAttachment loads path as a PDF attachment. An empty path yields nil
// so the session reports the missing file itself.
func readAttachment(path string) (*domain.Attachment, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.Attachment{Name: filepath.Base(path), Data: data}, nil
}

func runChat(cmd *cobra.Command, root *rootOptions, run *runOptions, variant func(domain.InferenceService) usecase.Variant, mode domain.CodeMode, title string) error {
	a, cleanup, err := root.bootstrap(cmd.Context(), !run.once)
	if err != nil {
		return err
	}
	defer cleanup()

	newSession := func() *usecase.ChatSession {
		return usecase.NewChatSession(variant(a.svc), a.sessionConfig())
	}
	if run.once {
		text, err := readText(cmd, run.text)
		if err != nil {
			return err
		}
		return chatOnce(a.ctx, cmd.OutOrStdout(), newSession(), domain.Draft{Text: text, Mode: mode})
	}

	speed, err := chat.ParseStreamSpeed(a.cfg.TUI.StreamSpeed)
	if err != nil {
		return err
	}
	return runProgram(chat.NewChatModel(chat.ChatModelDeps{
		NewSession: newSession,
		Ctx:        a.ctx,
		Logger:     a.log,
		Title:      title,
		Mode:       mode,
		Stream:     chat.StreamConfigForSpeed(speed),
		Markdown:   a.cfg.TUI.Markdown,
	}))
}
