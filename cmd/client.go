package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-fixit/pkg/client"
	"github.com/frahmantamala/campus-fixit/pkg/client/store"
)

var (
	clientURL      string
	clientEmail    string
	clientPassword string
	clientAll      bool
	clientFilters  client.Filters
	clientIssue    client.NewIssue
	clientImage    string
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Talk to a running Campus FixIt API",
	Long:  `Log in with --email and --password, then list, report or update issues.`,
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your issues, or every issue with --all (admin)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := loginClient(ctx)
		if err != nil {
			return err
		}
		s := store.New(c, clientAll)
		s.SetFilters(clientFilters)
		snap := s.Fetch(ctx)
		if snap.Err != nil {
			return snap.Err
		}
		return printJSON(snap.Items)
	},
}

var issuesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Report a new issue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := loginClient(ctx)
		if err != nil {
			return err
		}
		in := clientIssue
		if clientImage != "" {
			img, err := readImage(clientImage)
			if err != nil {
				return err
			}
			in.Image = img
		}
		created, err := c.CreateIssue(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(created)
	},
}

var issuesStatusCmd = &cobra.Command{
	Use:   "status [issue-id] [status]",
	Short: "Change an issue's status (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := loginClient(ctx)
		if err != nil {
			return err
		}
		updated, err := c.UpdateStatus(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var issuesRemarkCmd = &cobra.Command{
	Use:   "remark [issue-id] [text]",
	Short: "Append a remark to an issue (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := loginClient(ctx)
		if err != nil {
			return err
		}
		updated, err := c.AddRemark(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var issuesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show issue counts by status and category (admin)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, err := loginClient(ctx)
		if err != nil {
			return err
		}
		stats, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

func loginClient(ctx context.Context) (*client.Client, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c := client.New(clientURL)
	if _, err := c.Login(ctx, clientEmail, clientPassword); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return c, nil
}

func readImage(path string) (*client.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &client.Image{
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	issuesCmd.PersistentFlags().StringVar(&clientURL, "url", "http://localhost:5000/api", "API base url")
	issuesCmd.PersistentFlags().StringVar(&clientEmail, "email", "", "account email")
	issuesCmd.PersistentFlags().StringVar(&clientPassword, "password", "", "account password")
	_ = issuesCmd.MarkPersistentFlagRequired("email")
	_ = issuesCmd.MarkPersistentFlagRequired("password")

	issuesListCmd.Flags().BoolVar(&clientAll, "all", false, "list every issue (admin only)")
	issuesListCmd.Flags().StringVar(&clientFilters.Category, "category", "", "filter by category")
	issuesListCmd.Flags().StringVar(&clientFilters.Status, "status", "", "filter by status")

	issuesCreateCmd.Flags().StringVar(&clientIssue.Title, "title", "", "issue title")
	issuesCreateCmd.Flags().StringVar(&clientIssue.Description, "description", "", "issue description")
	issuesCreateCmd.Flags().StringVar(&clientIssue.Category, "category", "", "issue category")
	issuesCreateCmd.Flags().StringVar(&clientImage, "image", "", "path to a JPEG, PNG or GIF photo")

	issuesCmd.AddCommand(issuesListCmd, issuesCreateCmd, issuesStatusCmd, issuesRemarkCmd, issuesStatsCmd)
}
