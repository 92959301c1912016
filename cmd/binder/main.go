package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/binderdb/binder/pkg/config"
	"github.com/binderdb/binder/pkg/index"
	"github.com/binderdb/binder/pkg/metrics"
	"github.com/binderdb/binder/pkg/store"
	"github.com/binderdb/binder/pkg/types"
	"github.com/binderdb/binder/util"
	"github.com/google/uuid"
)

const usage = `usage: binder [flags] <command> [args]

commands:
  put [-category c] [-key k] [file]   store a document (stdin if no file)
  get <category> <key>                print a document looked up by key
  load <segment:document>             print a document addressed by pointer
  list                                list every stored document
  info                                print store statistics
`

func main() {
	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		util.Fatal("Failed to load config: %v", err)
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cfg.EnableExporter {
		metrics.StartMetricsServer(cfg.ExporterPort)
	}

	st, err := store.Open(cfg)
	if err != nil {
		util.Fatal("Failed to open store at %s: %v", cfg.StoragePath, err)
	}
	defer st.Close()

	idx, err := index.Open(cfg)
	if err != nil {
		util.Fatal("Failed to open index at %s: %v", cfg.StoragePath, err)
	}
	defer idx.Close()

	switch args[0] {
	case "put":
		err = runPut(st, idx, args[1:])
	case "get":
		err = runGet(st, idx, args[1:])
	case "load":
		err = runLoad(st, args[1:])
	case "list":
		err = runList(st)
	case "info":
		err = runInfo(st, idx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		util.Fatal("%s: %v", args[0], err)
	}
}

func runPut(st *store.Store, idx *index.Index, args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	category := fs.String("category", "documents", "Index category for the stored document")
	key := fs.String("key", "", "Index key (generated when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var data []byte
	var err error
	if fs.NArg() > 0 {
		data, err = os.ReadFile(fs.Arg(0))
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	ptr, err := st.StoreDocument(data)
	if err != nil {
		return err
	}

	k := *key
	if k == "" {
		k = uuid.NewString()
	}
	if err := idx.Put(*category, k, ptr); err != nil {
		return err
	}

	fmt.Printf("stored %d bytes at %s as (%s, %s)\n", len(data), ptr, *category, k)
	return nil
}

func runGet(st *store.Store, idx *index.Index, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <category> <key>")
	}
	ptr, ok := idx.TryGet(args[0], args[1])
	if !ok {
		return fmt.Errorf("no document for (%s, %s)", args[0], args[1])
	}

	data, err := st.LoadDocument(ptr)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runLoad(st *store.Store, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <segment:document>")
	}
	ptr, err := parsePointer(args[0])
	if err != nil {
		return err
	}

	data, err := st.LoadDocument(ptr)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runList(st *store.Store) error {
	it := st.Documents()
	for it.Next() {
		fmt.Printf("%-12s %8d bytes\n", it.Pointer(), len(it.Bytes()))
	}
	return it.Err()
}

func runInfo(st *store.Store, idx *index.Index) error {
	stats := st.Stats()
	fmt.Printf("segments:    %d\n", stats.Segments)
	fmt.Printf("documents:   %d\n", stats.Documents)
	fmt.Printf("bytes used:  %d\n", stats.BytesUsed)
	fmt.Printf("index keys:  %d\n", idx.Len())
	fmt.Printf("categories:  %d\n", len(idx.Categories()))
	return nil
}

func parsePointer(s string) (types.Pointer, error) {
	segStr, docStr, ok := strings.Cut(s, ":")
	if !ok {
		return types.Pointer{}, fmt.Errorf("pointer must look like segment:document, got %q", s)
	}
	seg := util.ParseInt(segStr, -1)
	doc := util.ParseInt(docStr, -1)
	return types.NewPointer(seg, doc)
}
