package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/catalogbuilder/internal/catalog"
	"git.home.luguber.info/inful/catalogbuilder/internal/config"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
	"git.home.luguber.info/inful/catalogbuilder/internal/pdfsheet"
	"git.home.luguber.info/inful/catalogbuilder/internal/submission"
)

// SubmitCmd implements the 'submit' command.
type SubmitCmd struct {
	Answers string `arg:"" help:"Answers YAML file" type:"existingfile"`
	Out     string `short:"o" help:"Output directory (defaults to submission.output_dir)" type:"path"`
	NoPDF   bool   `name:"no-pdf" help:"Skip the PDF description sheet"`
}

func (s *SubmitCmd) Run(g *Global, root *CLI) error {
	sc := config.SubmissionConfig{OutputDir: "submissions", ProjectTitle: "Educational Resource Catalog"}
	catalogFile := ""
	if _, err := os.Stat(root.Config); err == nil {
		cfg, err := root.loadConfig()
		if err != nil {
			return err
		}
		sc = cfg.Submission
		catalogFile = cfg.Catalog.File
	}

	cat, err := catalog.Load(catalogFile)
	if err != nil {
		return err
	}
	answers, err := submission.LoadAnswers(s.Answers)
	if err != nil {
		return err
	}
	now := time.Now()
	sub, err := submission.Build(cat, answers, now)
	if err != nil {
		return err
	}

	var sheet submission.SheetWriter
	if !s.NoPDF {
		sheet = pdfsheet.New(pdfsheet.Options{
			ProjectTitle:    sc.ProjectTitle,
			ProjectSubtitle: sc.ProjectSubtitle,
			Logo:            sc.Logo,
			CreatedAt:       now,
		})
	}
	dir := s.Out
	if dir == "" {
		dir = sc.OutputDir
	}
	bundle, err := sub.WriteBundle(dir, sheet)
	if err != nil {
		return err
	}
	slog.Info("Submission written", logfields.Resource(sub.Descriptor.ResourceID), logfields.Path(dir),
		slog.String("mode", sub.Mode.String()))

	out := g.out()
	_, _ = fmt.Fprintf(out, "Location: %s (%s)\n", sub.HierarchyBase, sub.Mode)
	for _, f := range bundle.Files() {
		_, _ = fmt.Fprintf(out, "Wrote %s\n", f)
	}
	return nil
}
