// thuvienctl is the operator tool: seed books from CSV, inspect ledger
// statistics, and manage librarian accounts without going through HTTP.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"thuvien-backend/internal/catalog"
	"thuvien-backend/internal/ledger"
	"thuvien-backend/internal/members"
	"thuvien-backend/internal/platform/auth"
	"thuvien-backend/internal/platform/db"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "thuvienctl",
		Short:        "Operator tool for the library lending backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config file")

	root.AddCommand(importCmd(), statsCmd(), accountCreateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*db.Config, *sql.DB, error) {
	cfg, err := db.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, conn, cfg.DB.Driver); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return cfg, conn, nil
}

// importCmd reads a CSV of isbn,title,author,publisher,publish_date,
// page_count,genre,language and registers each row in the catalog.
func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <books.csv>",
		Short: "Import books from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := catalog.NewService(conn)
			r := csv.NewReader(f)
			r.FieldsPerRecord = -1

			var imported, skipped int
			for line := 1; ; line++ {
				row, err := r.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				if len(row) < 3 {
					fmt.Fprintf(os.Stderr, "line %d: want at least isbn,title,author\n", line)
					skipped++
					continue
				}

				req := catalog.CreateBookRequest{
					ISBN:   strings.TrimSpace(row[0]),
					Title:  strings.TrimSpace(row[1]),
					Author: strings.TrimSpace(row[2]),
				}
				if len(row) > 3 && row[3] != "" {
					v := row[3]
					req.Publisher = &v
				}
				if len(row) > 4 && row[4] != "" {
					v := row[4]
					req.PublishDate = &v
				}
				if len(row) > 5 && row[5] != "" {
					if n, err := strconv.Atoi(row[5]); err == nil {
						req.PageCount = n
					}
				}
				if len(row) > 6 && row[6] != "" {
					v := row[6]
					req.Genre = &v
				}
				if len(row) > 7 && row[7] != "" {
					v := row[7]
					req.Language = &v
				}

				if _, err := svc.CreateBook(ctx, req); err != nil {
					fmt.Fprintf(os.Stderr, "line %d: %v\n", line, err)
					skipped++
					continue
				}
				imported++
			}

			fmt.Printf("imported %d book(s), skipped %d\n", imported, skipped)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print lending statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			catalogSvc := catalog.NewService(conn)
			quota := members.Quota{Limited: cfg.Lending.LimitedQuota, Staff: cfg.Lending.StaffQuota}
			memberSvc := members.NewService(conn, quota)
			ledgerSvc := ledger.NewService(conn, catalogSvc.Store(), memberSvc.Store(), ledger.Policy{
				LoanPeriodDays: cfg.Lending.LoanPeriodDays,
				FinePerDay:     cfg.Lending.FinePerDay,
				Quota:          quota,
			})

			stats, err := ledgerSvc.Statistics(ctx)
			if err != nil {
				return err
			}
			counts, err := catalogSvc.Counts(ctx)
			if err != nil {
				return err
			}
			limited, err := memberSvc.Store().CountByCategory(ctx, members.CategoryLimited)
			if err != nil {
				return err
			}
			staff, err := memberSvc.Store().CountByCategory(ctx, members.CategoryStaff)
			if err != nil {
				return err
			}

			fmt.Printf("as of:          %s\n", stats.AsOf.Format("2006-01-02 15:04:05"))
			fmt.Printf("active loans:   %d\n", stats.ActiveLoans)
			fmt.Printf("overdue loans:  %d\n", stats.OverdueLoans)
			fmt.Printf("total fines:    %.0f\n", stats.TotalFines)
			fmt.Printf("books on shelf: %d\n", counts.Available)
			fmt.Printf("books on loan:  %d\n", counts.Borrowed)
			fmt.Printf("active members: %d limited, %d staff\n", limited, staff)
			return nil
		},
	}
}

func accountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account-create <id>",
		Short: "Create a librarian account (prompts for password)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			fmt.Print("Password: ")
			pw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(pw) == 0 {
				return fmt.Errorf("password must not be empty")
			}

			svc := auth.NewService(conn, cfg.Auth.Secret, 0)
			if err := svc.Register(ctx, args[0], string(pw), auth.RoleLibrarian); err != nil {
				return err
			}
			fmt.Printf("account %s created\n", args[0])
			return nil
		},
	}
}
