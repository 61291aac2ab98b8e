package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headcookai/headcook/internal/client"
	"github.com/headcookai/headcook/internal/types"
)

func newRegisterCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			token, err := a.api.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := a.identity.SignIn(args[0], token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			token, err := a.api.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := a.identity.SignIn(args[0], token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.identity.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var cuisines []string
	cmd := &cobra.Command{
		Use:   "search INGREDIENTS",
		Short: "Suggest recipes for comma-separated ingredients",
		Long:  "Suggest recipes for comma-separated ingredients. Press Ctrl-C to cancel a search in progress.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			session := client.NewSession(a.api, a.cfg.ImageLimit, a.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !session.Start(context.WithoutCancel(ctx), args[0], cuisines) {
				return errors.New(session.State().Error)
			}
			fmt.Fprintln(out, "Please be patient, I am carefully crafting recipes just for you...")

			if err := session.Wait(ctx); err != nil {
				session.Cancel()
				_ = session.Wait(context.Background())
				fmt.Fprintln(out, "Search cancelled")
				return nil
			}

			state := session.State()
			if state.Outcome != client.OutcomeSuccess {
				return errors.New(state.Error)
			}
			if err := client.SaveLastResults(a.lastSearch, state.Recipes); err != nil {
				return err
			}
			printRecipes(out, state.Recipes)
			fmt.Fprintf(out, "Searches used: %d. Save one with: headcook favorites add NAME\n", state.SearchCount)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&cuisines, "cuisine", "c", nil, "restrict to a cuisine (repeatable)")
	return cmd
}

func newFavoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite recipes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show favorite recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := client.LoadFavorites(a.favorites)
			if err != nil {
				return err
			}
			list := favs.List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favorite recipes yet.")
				return nil
			}
			printRecipes(cmd.OutOrStdout(), list)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Save a recipe from the last search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			last, err := client.LoadLastResults(a.lastSearch)
			if err != nil {
				return err
			}
			recipe, ok := findRecipe(last, args[0])
			if !ok {
				return fmt.Errorf("no recipe named %q in the last search", args[0])
			}
			favs, err := client.LoadFavorites(a.favorites)
			if err != nil {
				return err
			}
			added, err := favs.Add(recipe)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already a favorite\n", recipe.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", recipe.Name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a favorite recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := client.LoadFavorites(a.favorites)
			if err != nil {
				return err
			}
			removed, err := favs.Remove(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no favorite named %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest INPUT",
		Short: "Complete the last ingredient of a comma-separated list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range client.Suggest(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), client.ApplySuggestion(args[0], s))
			}
			return nil
		},
	}
}

func newCuisinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cuisines",
		Short: "List the cuisines a search can be restricted to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range client.Cuisines {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newUsageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show how many searches you have used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := a.api.Usage(cmd.Context())
			if err != nil {
				if client.IsAuthError(err) {
					return errors.New("not signed in")
				}
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account: %s\nSearches used: %d\n", usage.Email, usage.SearchCount)
			if usage.Remaining != nil {
				fmt.Fprintf(out, "Free searches left: %d of %d\n", *usage.Remaining, usage.FreeSearches)
			}
			return nil
		},
	}
}

func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func findRecipe(recipes []types.Recipe, name string) (types.Recipe, bool) {
	for _, r := range recipes {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return types.Recipe{}, false
}

func printRecipes(w io.Writer, recipes []types.Recipe) {
	for i, r := range recipes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", r.Name)
		if r.Image != "" {
			fmt.Fprintf(w, "Image: %s\n", r.Image)
		}
		fmt.Fprintln(w, r.Instructions)
	}
}
