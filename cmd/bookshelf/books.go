package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/listenupapp/bookshelf-server/internal/api"
)

func (c *cli) booksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the catalog",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				books, err := cl.ListBooks(cmd.Context())
				if err != nil {
					return err
				}
				return c.printBooks(books)
			},
		},
		&cobra.Command{
			Use:   "get ISBN",
			Short: "Show one book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				book, err := cl.GetBook(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "ISBN:    %s\nTitle:   %s\nAuthor:  %s\nReviews: %d\n",
					book.ISBN, book.Title, book.Author, len(book.Reviews))
				return nil
			},
		},
		&cobra.Command{
			Use:   "author NAME...",
			Short: "List books by an author (exact name, any case)",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				books, err := cl.BooksByAuthor(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return c.printBooks(books)
			},
		},
		&cobra.Command{
			Use:   "title TEXT...",
			Short: "List books whose title contains TEXT",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				books, err := cl.BooksByTitle(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				return c.printBooks(books)
			},
		},
	)
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Full-text search over titles and authors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.client()
			if err != nil {
				return err
			}
			result, err := cl.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ISBN\tTITLE\tAUTHOR\tSCORE")
			for _, hit := range result.Hits {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", hit.ISBN, hit.Title, hit.Author, hit.Score)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of hits")
	return cmd
}

func (c *cli) printBooks(books []api.BookResponse) error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ISBN\tTITLE\tAUTHOR\tREVIEWS")
	for _, b := range books {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", b.ISBN, b.Title, b.Author, len(b.Reviews))
	}
	return w.Flush()
}
