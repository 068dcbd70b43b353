package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	sass "github.com/rmon-vfer/sass"
)

func commentMode(name string) (sass.CommentMode, error) {
	switch name {
	case "strip", "":
		return sass.CommentsStrip, nil
	case "loud":
		return sass.CommentsLoud, nil
	case "all":
		return sass.CommentsAll, nil
	}
	return 0, fmt.Errorf("unknown comment mode %q (want strip, loud or all)", name)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("no input files")
	}

	mode, err := commentMode(cmd.String("comments"))
	if err != nil {
		return err
	}
	log, err := buildLogger(cmd.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	opts := &sass.Options{Comments: mode, Logger: log}

	if cmd.Bool("json") {
		return runJSON(files, opts)
	}

	cc := sass.NewConcurrentCompiler(cmd.Int("workers"))
	results, err := cc.CompileFiles(ctx, files, opts)
	if err != nil {
		return err
	}

	outDir := cmd.String("out")
	var failed bool
	for _, res := range results {
		if res.Err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Filename, res.Err)
			continue
		}
		if outDir == "" {
			fmt.Print(res.CSS)
			continue
		}
		base := strings.TrimSuffix(filepath.Base(res.Filename), filepath.Ext(res.Filename)) + ".css"
		target := filepath.Join(outDir, base)
		if err := os.WriteFile(target, []byte(res.CSS), 0o644); err != nil {
			return fmt.Errorf("unable to write %s: %w", target, err)
		}
		log.Info("wrote stylesheet", zap.String("file", target), zap.Int("bytes", len(res.CSS)))
	}
	if failed {
		return fmt.Errorf("compilation failed")
	}
	return nil
}

func runJSON(files []string, opts *sass.Options) error {
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("unable to read %s: %w", file, err)
		}
		fileOpts := *opts
		fileOpts.Filename = file
		fileOpts.Loader = sass.FileLoader(filepath.Dir(file))
		if err := sass.WriteJSON(os.Stdout, string(content), &fileOpts); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "sassc",
		Usage:           "compiles extended stylesheets to plain CSS",
		HideHelpCommand: true,
		Action:          run,
		ArgsUsage:       "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write output files to `DIR` instead of stdout"},
			&cli.BoolFlag{Name: "json", Usage: "emit compiled rules as JSON instead of CSS"},
			&cli.StringFlag{Name: "comments", Value: "strip", Usage: "comment pass-through `MODE`: strip, loud or all"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "number of parallel compiles (0 = one per CPU)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log compile phases to stderr"},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sassc: %v\n", err)
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
