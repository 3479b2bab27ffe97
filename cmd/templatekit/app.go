package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	templatekit "github.com/goliatone/go-templatekit"
	"github.com/goliatone/go-templatekit/internal/prompt"
	"github.com/goliatone/go-templatekit/pkg/classify"
	"github.com/goliatone/go-templatekit/pkg/kit"
)

const allKitsLabel = "All Installed Kits"

var errNoKits = errors.New("no template kits installed")

type app struct {
	store  templatekit.KitStore
	table  classify.Table
	driver prompt.Driver
	out    io.Writer
}

// selection is a classified kit plus the kit each template came from.
type selection struct {
	title  string
	result classify.Result
	origin map[int]int
}

func (a *app) load(ctx context.Context, id string) (selection, error) {
	if id == "all" {
		summaries, err := a.store.InstalledKits(ctx)
		if err != nil {
			return selection{}, err
		}
		origin := make(map[int]int)
		kits := make([]kit.Kit, 0, len(summaries))
		for _, summary := range summaries {
			k, err := a.store.InstalledKit(ctx, summary.ID)
			if err != nil {
				continue
			}
			k.Templates.Range(func(tpl kit.Template) bool {
				origin[tpl.ID] = k.ID
				return true
			})
			kits = append(kits, k)
		}
		return selection{
			title:  allKitsLabel,
			result: classify.Classify(classify.MergeKits(kits...), a.table),
			origin: origin,
		}, nil
	}

	kitID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return selection{}, fmt.Errorf("invalid kit id %q", id)
	}
	k, err := a.store.InstalledKit(ctx, kitID)
	if err != nil {
		return selection{}, err
	}
	origin := make(map[int]int, k.Templates.Len())
	for _, templateID := range k.Templates.IDs() {
		origin[templateID] = k.ID
	}
	return selection{
		title:  k.Title,
		result: classify.Classify(k.Templates, a.table),
		origin: origin,
	}, nil
}

// list prints the kit's groups. An empty id lists every installed kit.
func (a *app) list(ctx context.Context, id string) error {
	if id == "" {
		summaries, err := a.store.InstalledKits(ctx)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			return errNoKits
		}
		for _, summary := range summaries {
			fmt.Fprintf(a.out, "%d\t%s\t%d templates\n", summary.ID, summary.Title, summary.TemplateCount)
		}
		return nil
	}

	sel, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, sel.title)
	for _, group := range sel.result.Grouped {
		fmt.Fprintf(a.out, "  %s (%d)\n", group.Title, len(group.Templates))
		for _, tpl := range group.Templates {
			line := fmt.Sprintf("    [%d] %s", tpl.ID, tpl.Name)
			if tpl.ImportedTemplateID != 0 {
				line += fmt.Sprintf(" (imported #%d)", tpl.ImportedTemplateID)
			}
			fmt.Fprintln(a.out, line)
		}
	}
	return nil
}

// interactive walks the user from kit to group to template and imports it.
func (a *app) interactive(ctx context.Context) error {
	summaries, err := a.store.InstalledKits(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return errNoKits
	}

	kitOptions := []string{allKitsLabel}
	for _, summary := range summaries {
		kitOptions = append(kitOptions, fmt.Sprintf("%s [%d]", summary.Title, summary.ID))
	}
	kitIdx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Template kit", Options: kitOptions})
	if err != nil {
		return err
	}
	id := "all"
	if kitIdx > 0 {
		id = strconv.Itoa(summaries[kitIdx-1].ID)
	}

	sel, err := a.load(ctx, id)
	if err != nil {
		return err
	}
	if len(sel.result.Grouped) == 0 {
		return a.driver.Info(ctx, fmt.Sprintf("%s has no categorised templates.", sel.title))
	}

	groupOptions := make([]string, 0, len(sel.result.Grouped))
	for _, group := range sel.result.Grouped {
		groupOptions = append(groupOptions, fmt.Sprintf("%s (%d)", group.Title, len(group.Templates)))
	}
	groupIdx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Category", Options: groupOptions})
	if err != nil {
		return err
	}
	group := sel.result.Grouped[groupIdx]

	templateOptions := make([]string, 0, len(group.Templates))
	for _, tpl := range group.Templates {
		templateOptions = append(templateOptions, fmt.Sprintf("%s [%d]", tpl.Name, tpl.ID))
	}
	tplIdx, err := a.driver.Select(ctx, prompt.SelectConfig{Message: "Template", Options: templateOptions})
	if err != nil {
		return err
	}
	tpl := group.Templates[tplIdx]

	importAgain := false
	if tpl.ImportedTemplateID != 0 {
		again, err := a.driver.Confirm(ctx, prompt.ConfirmConfig{
			Message: fmt.Sprintf("%s was already imported as #%d. Import it again?", tpl.Name, tpl.ImportedTemplateID),
		})
		if err != nil {
			return err
		}
		if !again {
			return a.driver.Info(ctx, fmt.Sprintf("Kept template #%d.", tpl.ImportedTemplateID))
		}
		importAgain = true
	} else {
		ok, err := a.driver.Confirm(ctx, prompt.ConfirmConfig{Message: fmt.Sprintf("Import %s?", tpl.Name), Default: true})
		if err != nil {
			return err
		}
		if !ok {
			return a.driver.Info(ctx, "Nothing imported.")
		}
	}

	res, err := a.store.ImportTemplate(ctx, sel.origin[tpl.ID], tpl.ID, importAgain)
	if err != nil {
		return err
	}
	return a.driver.Info(ctx, fmt.Sprintf("Imported %s as template #%d.", tpl.Name, res.ImportedTemplateID))
}
