// Command ledger-transfer moves ledger data between devices as portable JSON
// documents. Exports snapshot the store; imports merge a document in without
// creating duplicates, so re-running an import is safe.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"ledger/internal/config"
	applog "ledger/internal/log"
	"ledger/internal/storage"
	"ledger/internal/transfer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentTransfer,
	})
	applog.SetDefault(logger)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&exportCmd{dbPath: cfg.SQLiteDBPath}, "")
	subcommands.Register(&importCmd{dbPath: cfg.SQLiteDBPath}, "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

type exportCmd struct {
	dbPath string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "snapshot the ledger into a portable JSON document" }
func (*exportCmd) Usage() string {
	return `export [-db path] [-o file]:
  Write every record (and legacy pantry items) as a JSON document.
  Without -o the document goes to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", c.dbPath, "path to the SQLite database")
	f.StringVar(&c.output, "o", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, err := storage.New(c.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	doc, err := transfer.Export(ctx, repo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return subcommands.ExitFailure
	}

	out := os.Stdout
	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", c.output, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "write document: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "exported %d records, %d pantry items\n",
		len(doc.Expenses), len(doc.PantryItems))
	return subcommands.ExitSuccess
}

type importCmd struct {
	dbPath string
	input  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "merge a portable JSON document into the ledger" }
func (*importCmd) Usage() string {
	return `import [-db path] [-i file]:
  Merge a document produced by export. Records already present (matched on
  timestamp, amount and description) are skipped, so importing the same
  document twice changes nothing. Without -i the document is read from stdin.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", c.dbPath, "path to the SQLite database")
	f.StringVar(&c.input, "i", "", "input file (default stdin)")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := os.Stdin
	if c.input != "" {
		f, err := os.Open(c.input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", c.input, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		in = f
	}

	doc, err := transfer.ParseDocument(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}

	repo, err := storage.New(c.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	res, err := transfer.Import(ctx, repo, doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("imported %d, skipped %d", res.Imported, res.Skipped)
	if res.PantryImported > 0 || res.PantrySkipped > 0 {
		fmt.Printf(" (pantry: imported %d, skipped %d)", res.PantryImported, res.PantrySkipped)
	}
	fmt.Println()
	return subcommands.ExitSuccess
}
