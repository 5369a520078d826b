/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jjudge-oj/glossary/client"
	"github.com/jjudge-oj/glossary/client/search"
	"github.com/jjudge-oj/glossary/config"
	"github.com/jjudge-oj/glossary/internal/view"
	"github.com/spf13/cobra"
)

var (
	clientAPIURL    string
	clientSearch    string
	clientView      string
	clientCategory  string
	clientEmail     string
	clientPassword  string
	clientFirstName string
	clientLastName  string
)

// clientCmd talks to a running glossary server.
var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Browse and search a glossary server",
}

var clientRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		message, err := c.Auth().Register(cmd.Context(), client.RegisterRequest{
			FirstName: clientFirstName,
			LastName:  clientLastName,
			Email:     clientEmail,
			Password:  passwordFromEnv(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	},
}

var clientLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		user, err := c.Auth().Login(cmd.Context(), clientEmail, passwordFromEnv())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, user.Role)
		return nil
	},
}

var clientLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		return c.Auth().Logout()
	},
}

var clientMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		user, err := c.Auth().Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
		return nil
	},
}

var clientTermsCmd = &cobra.Command{
	Use:   "terms [id]",
	Short: "List terms, or show one term",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		renderer, err := newRenderer(cmd)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			term, err := c.Terms().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderer.Term(term)
		}

		if clientCategory != "" {
			terms, err := c.Categories().Terms(cmd.Context(), clientCategory)
			if err != nil {
				return err
			}
			return renderer.Terms(search.FilterTerms(terms, clientSearch))
		}

		glossary := search.NewGlossary(c.Terms(), c.Categories())
		if err := glossary.Load(cmd.Context()); err != nil {
			return err
		}
		glossary.SetQuery(clientSearch)
		return renderer.Terms(glossary.Terms())
	},
}

var clientCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		renderer, err := newRenderer(cmd)
		if err != nil {
			return err
		}

		categories, err := c.Categories().List(cmd.Context(), "")
		if err != nil {
			return err
		}
		return renderer.Categories(search.FilterCategories(categories, clientSearch))
	},
}

func newAPIClient() (*client.Client, error) {
	cfg := config.LoadConfig()
	apiURL := cfg.Client.APIURL
	if clientAPIURL != "" {
		apiURL = clientAPIURL
	}
	return client.New(apiURL, client.WithTokenStore(client.NewFileTokenStore(cfg.Client.TokenFile)))
}

func newRenderer(cmd *cobra.Command) (*view.Renderer, error) {
	mode, err := view.ParseDisplayMode(clientView)
	if err != nil {
		return nil, err
	}
	return view.NewRenderer(cmd.OutOrStdout(), mode), nil
}

// passwordFromEnv prefers --password and falls back to GLOSSARY_PASSWORD.
func passwordFromEnv() string {
	if clientPassword != "" {
		return clientPassword
	}
	return os.Getenv("GLOSSARY_PASSWORD")
}

func requireEmail(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(clientEmail) == "" {
		return errors.New("--email is required")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(clientCmd)
	clientCmd.AddCommand(clientRegisterCmd, clientLoginCmd, clientLogoutCmd, clientMeCmd, clientTermsCmd, clientCategoriesCmd)

	clientCmd.PersistentFlags().StringVar(&clientAPIURL, "api-url", "", "API root (defaults to GLOSSARY_API_URL)")

	for _, c := range []*cobra.Command{clientRegisterCmd, clientLoginCmd} {
		c.Flags().StringVar(&clientEmail, "email", "", "account email")
		c.Flags().StringVar(&clientPassword, "password", "", "account password (or GLOSSARY_PASSWORD)")
		c.PreRunE = requireEmail
	}
	clientRegisterCmd.Flags().StringVar(&clientFirstName, "first-name", "", "first name")
	clientRegisterCmd.Flags().StringVar(&clientLastName, "last-name", "", "last name")

	for _, c := range []*cobra.Command{clientTermsCmd, clientCategoriesCmd} {
		c.Flags().StringVarP(&clientSearch, "search", "s", "", "case-insensitive substring filter")
		c.Flags().StringVar(&clientView, "view", string(view.Compact), "display mode: compact or detailed")
	}
	clientTermsCmd.Flags().StringVar(&clientCategory, "category", "", "only terms in this category id")
}
