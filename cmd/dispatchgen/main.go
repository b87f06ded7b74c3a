package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/varlund/dispatchgen"
	"github.com/varlund/dispatchgen/internal/cache"
	"github.com/varlund/dispatchgen/internal/config"
	"github.com/varlund/dispatchgen/internal/pipeline"
)

var (
	configPath string
	outputPath string
	printOnly  bool
	noCache    bool
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage is  dispatchgen [-c <file>] [-o <file>] [-print] [-no-cache]")
		flag.PrintDefaults()
	}

	flag.StringVar(&configPath, "c", config.DefaultConfigFile, "project configuration file")
	flag.StringVar(&outputPath, "o", "", "output file name, overrides the configured one")
	flag.BoolVar(&printOnly, "print", false, "write the generated unit to stdout instead of the output file")
	flag.BoolVar(&noCache, "no-cache", false, "bypass the generation cache")
	flag.Parse()

	if err := run(); err != nil {
		fail(err)
	}
}

func run() error {
	project, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputPath != "" {
		project.Output = outputPath
	}

	grammar, err := os.ReadFile(project.GrammarPath())
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}
	key := cache.Key(grammar, project.Fingerprint(), config.Version)

	var store *cache.Store
	if project.CacheEnabled() && !noCache {
		path, err := cachePath(project)
		if err != nil {
			return err
		}
		store, err = cache.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		if artifact, ok, err := store.Lookup(key); err != nil {
			return err
		} else if ok {
			return deliver(project, artifact)
		}
	}

	ctx := dispatchgen.Run(project)
	if ctx.Failed() {
		return ctx.Errors[0]
	}

	if store != nil {
		if err := store.Put(key, ctx.RunID, ctx.Artifact); err != nil {
			return err
		}
	}
	return deliver(project, ctx.Artifact)
}

func deliver(project *config.Project, artifact *pipeline.Artifact) error {
	if printOnly {
		_, err := os.Stdout.WriteString(artifact.Content)
		return err
	}
	return os.WriteFile(project.OutputPath(), []byte(artifact.Content), 0o644)
}

func cachePath(project *config.Project) (string, error) {
	dir := filepath.Join(project.Dir, config.CacheDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	return filepath.Join(dir, config.CacheFileName), nil
}

func fail(err error) {
	msg := err.Error()
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
