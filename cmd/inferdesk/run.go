package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"inferdesk/internal/adapter/export"
	"inferdesk/internal/adapter/tui/components"
	"inferdesk/internal/adapter/tui/search"
	"inferdesk/internal/adapter/tui/single"
	"inferdesk/internal/domain"
	"inferdesk/internal/usecase"
)

// singleCommand describes one single-shot subcommand.
type singleCommand struct {
	title       string
	placeholder string
	file        *domain.Attachment
	export      bool // offer PDF export in the interactive view
	exportOnce  bool // write a PDF after a successful headless run
	variant     func(a *app) usecase.Variant
}

func runProgram(m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// exporter renders and saves documents into the configured export dir.
func exporter(a *app) single.ExportFunc {
	pdf := export.NewPDFExporter(a.cfg.Export)
	return func(fullText, hint string) (string, error) {
		doc, err := pdf.Export(fullText, hint)
		if err != nil {
			return "", err
		}
		return export.Save(a.cfg.Export.Dir, doc)
	}
}

func runSingle(cmd *cobra.Command, root *rootOptions, run *runOptions, sc singleCommand) error {
	a, cleanup, err := root.bootstrap(cmd.Context(), !run.once)
	if err != nil {
		return err
	}
	defer cleanup()

	text, err := readText(cmd, run.text)
	if err != nil {
		return err
	}
	session := usecase.NewSingleShotSession(sc.variant(a), a.sessionConfig())

	if run.once {
		draft := domain.Draft{Text: text}
		if session.Variant().RequireFile {
			draft = domain.Draft{File: sc.file, Query: text}
		}
		var save single.ExportFunc
		if sc.exportOnce {
			save = exporter(a)
		}
		return singleOnce(a.ctx, cmd.OutOrStdout(), session, draft, run.full, save)
	}

	deps := single.Deps{
		Session:     session,
		Ctx:         a.ctx,
		Logger:      a.log,
		Title:       sc.title,
		Placeholder: sc.placeholder,
		File:        sc.file,
		InitialText: text,
	}
	if sc.export {
		deps.Export = exporter(a)
	}
	return runProgram(single.New(deps))
}

func runSearch(cmd *cobra.Command, root *rootOptions, query string, once bool) error {
	a, cleanup, err := root.bootstrap(cmd.Context(), !once)
	if err != nil {
		return err
	}
	defer cleanup()

	session := usecase.NewSearchSession(a.svc, a.sessionConfig())
	if once {
		return searchOnce(a.ctx, cmd.OutOrStdout(), session, query)
	}
	return runProgram(search.New(search.Deps{
		Session:      session,
		Ctx:          a.ctx,
		Logger:       a.log,
		Title:        "Semantic Search",
		InitialQuery: query,
	}))
}

// chatOnce sends one message and prints the assistant's reply. A failed
// request prints the fallback reply and returns the cause.
func chatOnce(ctx context.Context, w io.Writer, s *usecase.ChatSession, draft domain.Draft) error {
	out, err := s.Submit(ctx, draft)
	if err != nil {
		return err
	}
	msgs := s.Messages()
	fmt.Fprintln(w, msgs[len(msgs)-1].Text)
	return out.Err
}

// singleOnce submits draft and prints the collapsed rendering, or the full
// text when full is set. save, when non-nil, exports a successful result.
func singleOnce(ctx context.Context, w io.Writer, s *usecase.SingleShotSession, draft domain.Draft, full bool, save single.ExportFunc) error {
	out, err := s.Submit(ctx, draft)
	if err != nil {
		if hint := s.Variant().EmptyHint; hint != "" && domain.IsValidationError(err) {
			return fmt.Errorf("%s: %w", hint, err)
		}
		return err
	}
	if !out.OK() {
		return fmt.Errorf("%s: %w", s.ErrorText(), out.Err)
	}

	d := s.Disclosure()
	if full {
		fmt.Fprintln(w, d.FullText)
	} else {
		fmt.Fprintln(w, d.Render())
	}
	if save != nil {
		path, err := save(d.FullText, draft.Text)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nSaved %s\n", path)
	}
	return nil
}

func searchOnce(ctx context.Context, w io.Writer, s *usecase.SearchSession, query string) error {
	papers, err := s.Search(ctx, query)
	if err != nil {
		if text := s.ErrorText(); text != "" {
			return fmt.Errorf("%s: %w", text, err)
		}
		return err
	}
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return nil
	}
	for i, p := range papers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, components.FormatPaper(p))
	}
	return nil
}
