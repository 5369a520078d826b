/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jjudge-oj/glossary/client"
	"github.com/spf13/cobra"
)

// termFlags holds the term fields accepted by create and update.
type termFlags struct {
	word       string
	definition string
	category   string
	examples   []string
	related    []string
}

func addTermFlags(c *cobra.Command, f *termFlags) {
	c.Flags().StringVar(&f.word, "word", "", "term word")
	c.Flags().StringVar(&f.definition, "definition", "", "term definition")
	c.Flags().StringVar(&f.category, "category", "", "category id (empty clears it on update)")
	c.Flags().StringArrayVar(&f.examples, "example", nil, "usage example (repeatable)")
	c.Flags().StringSliceVar(&f.related, "related", nil, "comma-separated related term ids")
}

func (f *termFlags) input() (client.TermInput, error) {
	if strings.TrimSpace(f.word) == "" || strings.TrimSpace(f.definition) == "" {
		return client.TermInput{}, errors.New("--word and --definition are required")
	}
	return client.TermInput{
		Word:         f.word,
		Definition:   f.definition,
		Category:     f.category,
		Examples:     f.examples,
		RelatedTerms: f.related,
	}, nil
}

// patch includes only the flags set on cmd.
func (f *termFlags) patch(cmd *cobra.Command) (client.TermPatch, error) {
	var patch client.TermPatch
	flags := cmd.Flags()
	if flags.Changed("word") {
		patch.Word = &f.word
	}
	if flags.Changed("definition") {
		patch.Definition = &f.definition
	}
	if flags.Changed("category") {
		patch.Category = &f.category
	}
	if flags.Changed("example") {
		examples := f.examples
		patch.Examples = &examples
	}
	if flags.Changed("related") {
		related := f.related
		patch.RelatedTerms = &related
	}
	if patch == (client.TermPatch{}) {
		return patch, errors.New("nothing to update")
	}
	return patch, nil
}

// categoryFlags holds the category fields accepted by create and update.
type categoryFlags struct {
	name        string
	description string
}

func addCategoryFlags(c *cobra.Command, f *categoryFlags) {
	c.Flags().StringVar(&f.name, "name", "", "category name")
	c.Flags().StringVar(&f.description, "description", "", "category description")
}

func (f *categoryFlags) input() (client.CategoryInput, error) {
	if strings.TrimSpace(f.name) == "" {
		return client.CategoryInput{}, errors.New("--name is required")
	}
	return client.CategoryInput{Name: f.name, Description: f.description}, nil
}

func (f *categoryFlags) patch(cmd *cobra.Command) (client.CategoryPatch, error) {
	var patch client.CategoryPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &f.name
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &f.description
	}
	if patch == (client.CategoryPatch{}) {
		return patch, errors.New("nothing to update")
	}
	return patch, nil
}

var (
	termCreateFlags     termFlags
	termUpdateFlags     termFlags
	categoryCreateFlags categoryFlags
	categoryUpdateFlags categoryFlags
)

var clientTermCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a term (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := termCreateFlags.input()
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		term, err := c.Terms().Create(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created term %s (%s)\n", term.Word, term.ID)
		return nil
	},
}

var clientTermUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a term (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := termUpdateFlags.patch(cmd)
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		term, err := c.Terms().Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated term %s (%s)\n", term.Word, term.ID)
		return nil
	},
}

var clientTermDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a term (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := c.Terms().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted term %s\n", args[0])
		return nil
	},
}

var clientCategoryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a category (admin)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := categoryCreateFlags.input()
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		category, err := c.Categories().Create(cmd.Context(), input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created category %s (%s)\n", category.Name, category.ID)
		return nil
	},
}

var clientCategoryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a category (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := categoryUpdateFlags.patch(cmd)
		if err != nil {
			return err
		}
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		category, err := c.Categories().Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated category %s (%s)\n", category.Name, category.ID)
		return nil
	},
}

var clientCategoryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a category; its terms become uncategorized (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient()
		if err != nil {
			return err
		}
		if err := c.Categories().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
		return nil
	},
}

func init() {
	clientTermsCmd.AddCommand(clientTermCreateCmd, clientTermUpdateCmd, clientTermDeleteCmd)
	clientCategoriesCmd.AddCommand(clientCategoryCreateCmd, clientCategoryUpdateCmd, clientCategoryDeleteCmd)

	addTermFlags(clientTermCreateCmd, &termCreateFlags)
	addTermFlags(clientTermUpdateCmd, &termUpdateFlags)
	addCategoryFlags(clientCategoryCreateCmd, &categoryCreateFlags)
	addCategoryFlags(clientCategoryUpdateCmd, &categoryUpdateFlags)
}
