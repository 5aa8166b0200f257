package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/bookshelf-server/internal/client"
)

const (
	defaultServer = "http://localhost:5000"
	tokenEnv      = "BOOKSHELF_TOKEN"
	serverEnv     = "BOOKSHELF_SERVER"
)

// cli holds state shared by every subcommand.
type cli struct {
	server    string
	tokenFile string
	out       io.Writer
	in        io.Reader
	lines     *bufio.Reader
}

func newRootCmd() *cobra.Command {
	return newCLI(os.Stdin, os.Stdout).rootCmd()
}

func newCLI(in io.Reader, out io.Writer) *cli {
	return &cli{in: in, out: out}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Browse the bookshelf catalog and manage your reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)

	server := os.Getenv(serverEnv)
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&c.server, "server", server, "Server base URL (env "+serverEnv+")")
	root.PersistentFlags().StringVar(&c.tokenFile, "token-file", defaultTokenFile(), "Where the access token is cached")

	root.AddCommand(
		c.booksCmd(),
		c.reviewsCmd(),
		c.searchCmd(),
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
	)
	return root
}

// client builds an API client, attaching the cached token when present.
func (c *cli) client() (*client.Client, error) {
	token, err := c.loadToken()
	if err != nil {
		return nil, err
	}
	return client.New(c.server, client.WithToken(token))
}

// loadToken prefers $BOOKSHELF_TOKEN over the token file.
func (c *cli) loadToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		return token, nil
	}
	if c.tokenFile == "" {
		return "", nil
	}

	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *cli) saveToken(token string) error {
	if c.tokenFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.tokenFile), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(c.tokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (c *cli) clearToken() error {
	if c.tokenFile == "" {
		return nil
	}
	if err := os.Remove(c.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bookshelf", "token")
}
