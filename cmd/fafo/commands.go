package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aussiemaniacs/FafoV2/internal/catalog"
)

type usageError string

func (e usageError) Error() string { return string(e) }

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commandOrder = []string{
	"categories", "list", "add", "remove", "search",
	"lists", "list-create", "list-rename", "list-delete", "list-add", "list-remove", "list-items",
	"export", "import", "resolve", "yt-search",
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"categories":  {"", cmdCategories},
		"list":        {"<category>", cmdList},
		"add":         {"-category <c> [-type <t>] [-title <t>] <url>", cmdAdd},
		"remove":      {"<category> <url>", cmdRemove},
		"search":      {"[-category <c>] <query>", cmdSearch},
		"lists":       {"", cmdLists},
		"list-create": {"<name> [description]", cmdListCreate},
		"list-rename": {"<list-id> <name>", cmdListRename},
		"list-delete": {"<list-id>", cmdListDelete},
		"list-add":    {"<list-id> <item-id>", cmdListAdd},
		"list-remove": {"<list-id> <item-id>", cmdListRemove},
		"list-items":  {"<list-id>", cmdListItems},
		"export":      {"[path]", cmdExport},
		"import":      {"[path]", cmdImport},
		"resolve":     {"[-quality <q>] <url>", cmdResolve},
		"yt-search":   {"[-limit <n>] <query>", cmdYTSearch},
	}
}

func exactArgs(args []string, n int) error {
	if len(args) != n {
		return usageError(fmt.Sprintf("expected %d argument(s), got %d", n, len(args)))
	}
	return nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	return nil
}

func printItems(w io.Writer, items []catalog.MediaItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no items")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tTYPE\tTITLE\tURL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Category, it.MediaType, it.Title, it.URL)
	}
	_ = tw.Flush()
}

func cmdCategories(ctx context.Context, a *app, args []string) error {
	counts, err := a.svc.CategoryStats(ctx)
	if err != nil {
		return err
	}
	for _, c := range catalog.Categories() {
		fmt.Fprintf(a.out, "%-10s %d\n", c, counts[c])
	}
	return nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	if !catalog.ValidCategory(args[0]) {
		return fmt.Errorf("unknown category %q (want one of %s)", args[0], strings.Join(catalog.Categories(), ", "))
	}
	items, err := a.svc.ListItems(ctx, catalog.ItemFilter{Category: args[0]})
	if err != nil {
		return err
	}
	printItems(a.out, items)
	return nil
}

func cmdAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add")
	category := fs.String("category", "", "category")
	mediaType := fs.String("type", "", "media type; detected from the url when empty")
	title := fs.String("title", "", "title; taken from the url when empty")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs.Args(), 1); err != nil {
		return err
	}
	url := fs.Arg(0)

	in := catalog.CreateItemInput{
		Title:     *title,
		URL:       url,
		MediaType: *mediaType,
		Category:  *category,
	}
	if in.MediaType == "" {
		in.MediaType = detectMediaType(url)
	}
	if in.Title == "" {
		in.Title = url
	}

	item, created, err := a.svc.CreateItem(ctx, in)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(a.out, "already in %s: %s (%s)\n", item.Category, item.Title, item.ID)
		return nil
	}
	fmt.Fprintf(a.out, "added %s: %s (%s)\n", item.Category, item.Title, item.ID)
	return nil
}

func detectMediaType(url string) string {
	switch {
	case catalog.IsYouTubeURL(url) && catalog.IsPlaylistURL(url):
		return catalog.MediaTypePlaylist
	case catalog.IsYouTubeURL(url):
		return catalog.MediaTypeYouTube
	case strings.HasSuffix(strings.ToLower(url), ".m3u8"):
		return catalog.MediaTypeLiveTV
	default:
		return catalog.MediaTypeDirectLink
	}
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	if err := a.svc.RemoveFromCategory(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "removed %s from %s\n", args[1], args[0])
	return nil
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlags("search")
	category := fs.String("category", "", "restrict to one category")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("missing query")
	}
	var cats []string
	if *category != "" {
		cats = []string{*category}
	}
	items, err := a.svc.SearchItems(ctx, strings.Join(fs.Args(), " "), cats)
	if err != nil {
		return err
	}
	printItems(a.out, items)
	return nil
}

func cmdLists(ctx context.Context, a *app, args []string) error {
	lists, err := a.svc.ListLists(ctx)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		fmt.Fprintln(a.out, "no lists")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tITEMS\tUPDATED")
	for _, l := range lists {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ID, l.Name, len(l.Items), l.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func cmdListCreate(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("expected a name and an optional description")
	}
	desc := ""
	if len(args) == 2 {
		desc = args[1]
	}
	l, err := a.svc.CreateList(ctx, args[0], desc)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created list %s (%s)\n", l.Name, l.ID)
	return nil
}

func cmdListRename(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	l, err := a.svc.RenameList(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "renamed list %s to %s\n", l.ID, l.Name)
	return nil
}

func cmdListDelete(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	if err := a.svc.DeleteList(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted list %s\n", args[0])
	return nil
}

func cmdListAdd(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	if err := a.svc.AddItem(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s to list %s\n", args[1], args[0])
	return nil
}

func cmdListRemove(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	if err := a.svc.RemoveItem(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "removed %s from list %s\n", args[1], args[0])
	return nil
}

func cmdListItems(ctx context.Context, a *app, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	items, err := a.svc.GetListItems(ctx, args[0])
	if err != nil {
		return err
	}
	printItems(a.out, items)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return usageError("expected at most one path")
	}
	snap, err := a.svc.Export(ctx)
	if err != nil {
		return err
	}
	path, err := a.store.SaveSnapshot(firstOr(args, ""), snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "exported %d lists to %s\n", len(snap.Lists), path)
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return usageError("expected at most one path")
	}
	snap, err := a.store.LoadSnapshot(firstOr(args, ""))
	if err != nil {
		return err
	}
	n, err := a.svc.Import(ctx, snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "imported %d records\n", n)
	return nil
}

func cmdResolve(ctx context.Context, a *app, args []string) error {
	fs := newFlags("resolve")
	quality := fs.String("quality", "720", "maximum height")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := exactArgs(fs.Args(), 1); err != nil {
		return err
	}
	if a.extractor == nil {
		return errors.New("no extractor configured")
	}
	fmt.Fprintln(a.out, a.extractor.ResolvePlayableURL(ctx, fs.Arg(0), *quality))
	return nil
}

func cmdYTSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlags("yt-search")
	limit := fs.Int("limit", 10, "maximum results (1-50)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError("missing query")
	}
	if a.extractor == nil {
		return errors.New("no extractor configured")
	}
	n := min(max(*limit, 1), 50)

	results, err := a.extractor.Search(ctx, strings.Join(fs.Args(), " "), n)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(a.out, "no results")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tDURATION\tURL")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Title, r.Duration, r.URL)
	}
	return tw.Flush()
}

func firstOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}
