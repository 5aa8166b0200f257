package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write book reviews",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list ISBN",
			Short: "Show every review of a book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				reviews, err := cl.Reviews(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(reviews) == 0 {
					fmt.Fprintln(c.out, "No reviews yet.")
					return nil
				}

				users := make([]string, 0, len(reviews))
				for u := range reviews {
					users = append(users, u)
				}
				slices.Sort(users)
				for _, u := range users {
					fmt.Fprintf(c.out, "%s: %s\n", u, reviews[u])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "put ISBN TEXT...",
			Short: "Add or replace your review of a book",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				resp, err := cl.PutReview(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, resp.Message)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ISBN",
			Short: "Delete your review of a book",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cl, err := c.client()
				if err != nil {
					return err
				}
				if err := cl.DeleteReview(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Review deleted successfully")
				return nil
			},
		},
	)
	return cmd
}
