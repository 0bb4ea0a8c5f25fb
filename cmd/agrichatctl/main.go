// Command agrichatctl runs maintenance tasks against the agrichat database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"agrichat/internal/app"
	"agrichat/internal/auth"
	"agrichat/internal/config"
	"agrichat/internal/logging"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const usage = `usage: agrichatctl [-config path] <command> [args]

commands:
  config              print the effective configuration
  init <file.yaml>    write the effective configuration, without secrets
  import <file.csv>   import knowledge entries from a CSV file
  seed                create the demo user and sample entries
  prune <substring>   delete entries whose answer contains substring
  count               print the number of knowledge entries
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "agrichatctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("agrichatctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "config.yaml", "path to config.yaml")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cmd, rest := fs.Arg(0), fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	switch cmd {
	case "config":
		return printConfig(cfg, stdout)
	case "init":
		if len(rest) != 1 {
			fs.Usage()
			return errUsage
		}
		if err := cfg.Save(rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s\n", rest[0])
		return nil
	case "import", "prune":
		if len(rest) != 1 {
			fs.Usage()
			return errUsage
		}
	case "seed", "count":
	default:
		fs.Usage()
		return errUsage
	}

	zl, closer, err := logging.Build(logging.Options{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Console: stderr,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	defer zl.Sync()

	// Sessions are never issued here, so Redis is not needed.
	svc, err := app.New(ctx, cfg, zl, app.WithSessionStore(auth.NewMemorySessionStore()))
	if err != nil {
		return err
	}
	defer svc.Close()

	switch cmd {
	case "import":
		res, err := svc.Importer.ImportFile(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %d entries (%d duplicates, %d skipped)\n", res.Added, res.Duplicates, res.Skipped)
	case "seed":
		res, err := svc.Importer.Seed(ctx, svc.Auth)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Seeded %d entries (%d already present)\n", res.Added, res.Duplicates)
	case "prune":
		n, err := svc.Store.DeleteKnowledgeByAnswer(ctx, rest[0])
		if err != nil {
			return err
		}
		zl.Info("pruned knowledge entries", zap.String("substring", rest[0]), zap.Int64("deleted", n))
		fmt.Fprintf(stdout, "Deleted %d entries\n", n)
	case "count":
		n, err := svc.Store.CountKnowledge(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, n)
	}
	return nil
}

func printConfig(cfg *config.Config, w io.Writer) error {
	masked := cfg.Masked()
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	fmt.Fprintf(w, "# admin password: %s\n", secret(masked.Auth.DefaultAdminPassword))
	fmt.Fprintf(w, "# redis password: %s\n", secret(masked.Redis.Password))
	return nil
}

func secret(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
