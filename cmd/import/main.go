// Command import loads buyer and contact CSV files into the directory.
//
//	import --buyers ./data/buyers.csv --contacts ./data/contacts.csv [--clear] [--dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/capitalstack/directory/internal/config"
	"github.com/capitalstack/directory/internal/metrics"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/capitalstack/directory/internal/service"
	"github.com/sirupsen/logrus"
)

var rule = strings.Repeat("=", 50)

func main() {
	buyersFile := flag.String("buyers", "", "path to buyers CSV file")
	contactsFile := flag.String("contacts", "", "path to contacts CSV file")
	clearData := flag.Bool("clear", false, "clear existing data before import")
	dryRun := flag.Bool("dry-run", false, "preview import without saving")
	flag.Parse()

	log := logrus.New()

	if *buyersFile == "" && *contactsFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	im, closeDB := newImporter(ctx, *dryRun, log)
	defer closeDB()
	opts := service.ImportOptions{Clear: *clearData, DryRun: *dryRun}

	fmt.Println(rule)
	fmt.Println("CapitalStack data import")
	fmt.Println(rule)
	if opts.DryRun {
		fmt.Println("DRY RUN: no data will be saved")
	} else if opts.Clear {
		fmt.Println("CLEAR MODE: existing data will be removed")
	}

	var buyers, contacts int
	failed := false

	if *buyersFile != "" {
		fmt.Printf("\nImporting buyers from %s\n", *buyersFile)
		sum, err := runFile(*buyersFile, func(r io.Reader) (*service.ImportSummary, error) {
			return im.ImportBuyers(ctx, r, opts)
		})
		if err != nil {
			log.WithError(err).WithField("file", *buyersFile).Error("buyer import failed")
			failed = true
		} else {
			report(sum, opts.DryRun, false)
			buyers = imported(sum, opts.DryRun)
		}
	}

	// Contacts run after buyers so they can link to freshly imported companies.
	if *contactsFile != "" {
		fmt.Printf("\nImporting contacts from %s\n", *contactsFile)
		sum, err := runFile(*contactsFile, func(r io.Reader) (*service.ImportSummary, error) {
			return im.ImportContacts(ctx, r, opts)
		})
		if err != nil {
			log.WithError(err).WithField("file", *contactsFile).Error("contact import failed")
			failed = true
		} else {
			report(sum, opts.DryRun, true)
			contacts = imported(sum, opts.DryRun)
		}
	}

	fmt.Println("\n" + rule)
	fmt.Println("Import summary")
	fmt.Println(rule)
	fmt.Printf("   Buyers: %d\n", buyers)
	fmt.Printf("   Contacts: %d\n", contacts)
	fmt.Println(rule)

	if failed {
		os.Exit(1)
	}
}

// newImporter wires the importer to Postgres. A dry run only parses and
// previews, so it never loads DATABASE_URL or opens a connection.
func newImporter(ctx context.Context, dryRun bool, log *logrus.Logger) (*service.Importer, func()) {
	if dryRun {
		return service.NewImporter(nil, nil, nil, metrics.Discard(), log), func() {}
	}

	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("config error")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := repository.NewDB(ctx, dbURL)
	if err != nil {
		log.WithError(err).Fatal("database error")
	}
	if err := repository.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		log.WithError(err).Fatal("migration error")
	}

	im := service.NewImporter(
		repository.NewBuyerRepository(db),
		repository.NewContactRepository(db),
		repository.NewSavedRepository(db),
		metrics.Discard(),
		log,
	)
	return im, db.Close
}

func runFile(path string, fn func(io.Reader) (*service.ImportSummary, error)) (*service.ImportSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return fn(f)
}

func report(sum *service.ImportSummary, dryRun, withLinks bool) {
	fmt.Printf("   Found %d records\n", sum.Found)
	if dryRun {
		fmt.Println("   [DRY RUN] Would import:")
		for i, line := range sum.Preview {
			fmt.Printf("     %d. %s\n", i+1, line)
		}
		if more := sum.Found - len(sum.Preview); more > 0 {
			fmt.Printf("     ... and %d more\n", more)
		}
		return
	}
	if withLinks {
		fmt.Printf("   Imported: %d, Linked: %d, Skipped: %d\n", sum.Imported, sum.Linked, sum.Skipped)
		return
	}
	fmt.Printf("   Imported: %d, Skipped: %d\n", sum.Imported, sum.Skipped)
}

// imported is the headline count: rows written, or rows found on a dry run.
func imported(sum *service.ImportSummary, dryRun bool) int {
	if dryRun {
		return sum.Found
	}
	return sum.Imported
}
