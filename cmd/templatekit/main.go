package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	templatekit "github.com/goliatone/go-templatekit"
	"github.com/goliatone/go-templatekit/internal/prompt"
)

func main() {
	flagSet := pflag.NewFlagSet("templatekit", pflag.ContinueOnError)
	kitsDir := flagSet.String("kits-dir", "template-kits", "directory holding installed template kits")
	categories := flagSet.String("categories", "", "YAML or JSON file extending the category table")
	list := flagSet.Bool("list", false, "print kits, or the categories of --kit, and exit")
	kitID := flagSet.String("kit", "", `kit id to list, or "all"`)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("templatekit: %v", err)
	}

	store, err := templatekit.OpenKitsDir(*kitsDir, 0)
	if err != nil {
		log.Fatalf("templatekit: %v", err)
	}
	table, err := templatekit.LoadCategories(*categories)
	if err != nil {
		log.Fatalf("templatekit: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{store: store, table: table, driver: prompt.NewSurvey(), out: os.Stdout}
	if *list {
		err = a.list(ctx, *kitID)
	} else {
		err = a.interactive(ctx)
	}
	if errors.Is(err, prompt.ErrAborted) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("templatekit: %v", err)
	}
}
