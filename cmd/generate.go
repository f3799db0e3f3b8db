package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/blogsmith/internal/knowledge"
	"github.com/ziadkadry99/blogsmith/internal/logging"
	"github.com/ziadkadry99/blogsmith/internal/pipeline"
	"github.com/ziadkadry99/blogsmith/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one blog article from the command line",
	Long: `Runs the article pipeline once without the chat dialogue: the brief is
taken from flags, knowledge sources from --site and --doc, and the finished
article is printed to stdout or written with -o.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "topic the article should be about")
	generateCmd.Flags().String("task", "", "task the article should fulfil (alternative to --topic)")
	generateCmd.Flags().String("length", "Medium", "article length (Short, Medium, Long)")
	generateCmd.Flags().String("language-level", "Intermediate", "language level")
	generateCmd.Flags().String("information-level", "High", "information level")
	generateCmd.Flags().String("language", "English", "article language")
	generateCmd.Flags().String("tone", "Professional", "article tone")
	generateCmd.Flags().String("additional", "", "additional information to include")
	generateCmd.Flags().StringArray("site", nil, "website URL to ground the article in (repeatable)")
	generateCmd.Flags().StringArray("doc", nil, "document path or glob, e.g. 'notes/**/*.pdf' (repeatable)")
	generateCmd.Flags().Bool("no-factcheck", false, "skip the fact verification pass")
	generateCmd.Flags().StringP("output", "o", "", "write the article to this file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogFile, verbose)
	defer log.Sync()

	topic, _ := cmd.Flags().GetString("topic")
	task, _ := cmd.Flags().GetString("task")
	if (topic == "") == (task == "") {
		return fmt.Errorf("exactly one of --topic or --task is required")
	}
	topicOrTask := topic
	if task != "" {
		topicOrTask = "fulfilling task " + task
	}

	length, _ := cmd.Flags().GetString("length")
	langLevel, _ := cmd.Flags().GetString("language-level")
	infoLevel, _ := cmd.Flags().GetString("information-level")
	language, _ := cmd.Flags().GetString("language")
	tone, _ := cmd.Flags().GetString("tone")
	additional, _ := cmd.Flags().GetString("additional")

	brief := pipeline.NewBrief(map[string]string{
		session.FieldTopicOrTask: topicOrTask,
		session.FieldLength:      length,
		session.FieldLangLevel:   langLevel,
		session.FieldInfoLevel:   infoLevel,
		session.FieldLanguage:    language,
		session.FieldTone:        tone,
		session.FieldAdditional:  additional,
	}, nil)

	ctx := context.Background()

	provider, err := newLLMProvider(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	tools, err := collectSources(ctx, cmd, knowledge.NewToolBuilder(embedder), log)
	if err != nil {
		return err
	}

	crew := pipeline.NewCrew(provider, cfg.Model, nil, log)
	if noFC, _ := cmd.Flags().GetBool("no-factcheck"); !noFC {
		verifier, err := newVerifier(cfg, log)
		if err != nil {
			return err
		}
		crew = pipeline.NewCrew(provider, cfg.Model, verifier, log)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Generating article"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	article, err := crew.Generate(ctx, brief, tools)
	bar.Finish()
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		if err := os.WriteFile(out, []byte(article), 0o644); err != nil {
			return fmt.Errorf("writing article: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Article written to %s\n", out)
		return nil
	}
	fmt.Println(article)
	return nil
}

// collectSources indexes the --site URLs and --doc globs into search tools.
func collectSources(ctx context.Context, cmd *cobra.Command, builder *knowledge.ToolBuilder, log *zap.Logger) ([]*knowledge.Tool, error) {
	sites, _ := cmd.Flags().GetStringArray("site")
	docGlobs, _ := cmd.Flags().GetStringArray("doc")

	var sources []knowledge.Source
	for _, url := range sites {
		sources = append(sources, knowledge.WebsiteSource(url))
	}
	for _, glob := range docGlobs {
		matches, err := doublestar.FilepathGlob(glob)
		if err != nil {
			return nil, fmt.Errorf("bad --doc pattern %q: %w", glob, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("--doc pattern %q matched no files", glob)
		}
		for _, path := range matches {
			kind, ok := kindForPath(path)
			if !ok {
				continue
			}
			sources = append(sources, knowledge.DocumentSource(path, kind))
		}
	}
	if len(sources) == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetDescription("Indexing sources"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	registry := knowledge.NewRegistry(builder, log)
	for _, src := range sources {
		bar.Describe("Indexing " + src.Describe())
		if err := registry.Register(ctx, src); err != nil {
			return nil, fmt.Errorf("indexing %s: %w", src.Describe(), err)
		}
		bar.Add(1)
	}
	bar.Finish()
	return registry.Snapshot(), nil
}

func kindForPath(path string) (knowledge.DocKind, bool) {
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return knowledge.DocPDF, true
	case strings.HasSuffix(path, ".docx"):
		return knowledge.DocDOCX, true
	case strings.HasSuffix(path, ".txt"), strings.HasSuffix(path, ".md"):
		return knowledge.DocTXT, true
	default:
		return "", false
	}
}
