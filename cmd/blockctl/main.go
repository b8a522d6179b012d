// Command blockctl renders block payloads offline and manages Strapi permissions.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mx-space/blockpress/internal/app"
	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/config"
	"github.com/mx-space/blockpress/internal/permissions"
	"github.com/mx-space/blockpress/internal/strapi"
)

var errBlocksFailed = errors.New("one or more blocks failed to render")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	strapiURL  string
	token      string
}

// settings loads the config file and lets explicit flags win over it.
func (o *rootOptions) settings() (*config.AppConfig, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(o.strapiURL); v != "" {
		cfg.Strapi.URL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(o.token); v != "" {
		cfg.Strapi.APIToken = v
	}
	return cfg, nil
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "blockctl",
		Short:         "Render Strapi blocks and manage Strapi permissions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.strapiURL, "strapi-url", "", "Strapi base URL, overrides config and STRAPI_URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "Strapi API token, overrides config and STRAPI_API_TOKEN")

	cmd.AddCommand(newRenderCmd(opts), newPermissionsCmd(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blockctl version %s\n", app.Version)
		},
	})
	return cmd
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	var (
		showErrors bool
		markdown   bool
		strict     bool
		format     string
		mediaURL   string
	)
	cmd := &cobra.Command{
		Use:   "render <file.json|->",
		Short: "Render a JSON array of blocks to HTML",
		Long: `Render reads a dynamic-zone payload (a JSON array of blocks, or an object
with a "blocks" field) and writes the joined HTML to stdout. Rejected blocks
are reported on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			list, err := decodeBlocks(data)
			if err != nil {
				return err
			}

			var ropts []blocks.Option
			if mediaURL == "" {
				cfg, err := root.settings()
				switch {
				case err == nil:
					mediaURL = cfg.MediaBaseURL()
				case root.configPath != "":
					return err
				}
			}
			if mediaURL != "" {
				ropts = append(ropts, blocks.WithAssetBaseURL(mediaURL))
			}
			if format != "" {
				f := blocks.Format(format)
				if !f.Valid() {
					return fmt.Errorf("invalid --format %q", format)
				}
				ropts = append(ropts, blocks.WithImageFormat(f))
			}
			if markdown {
				ropts = append(ropts, blocks.WithMarkdown(nil))
			}

			outputs := blocks.New(ropts...).Render(list)
			failed := 0
			for _, o := range outputs {
				if o.Failed() {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "block %d (%s): %v\n", o.ID, o.Kind, o.Err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(blocks.Join(outputs, showErrors)))
			if strict && failed > 0 {
				return fmt.Errorf("%w: %d of %d", errBlocksFailed, failed, len(outputs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showErrors, "show-errors", false, "Render an error notice in place of rejected blocks")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Treat rich-text bodies as Markdown")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any block is rejected")
	cmd.Flags().StringVar(&format, "format", "", "Image format: thumbnail, small, medium or large")
	cmd.Flags().StringVar(&mediaURL, "media-url", "", "Base URL prefixed to relative asset paths")
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

func decodeBlocks(data []byte) (blocks.List, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var wrapper struct {
			Blocks blocks.List `json:"blocks"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("decode blocks: %w", err)
		}
		return wrapper.Blocks, nil
	}
	var list blocks.List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return list, nil
}

func newPermissionsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Manage users-permissions roles",
	}

	var (
		contentTypes []string
		actions      string
		timeout      time.Duration
	)
	grant := &cobra.Command{
		Use:   "grant",
		Short: "Enable actions for the public role",
		Example: `  blockctl permissions grant --content-type tag --actions find,findOne
  blockctl permissions grant --content-type article --content-type category --actions find`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.settings()
			if err != nil {
				return err
			}
			if cfg.Strapi.APIToken == "" {
				return errors.New("a Strapi API token is required, pass --token or set STRAPI_API_TOKEN")
			}
			client, err := strapi.New(cfg.Strapi.URL,
				strapi.WithToken(cfg.Strapi.APIToken),
				strapi.WithTimeout(cfg.StrapiTimeout()),
			)
			if err != nil {
				return err
			}

			acts := permissions.ParseActions(actions)
			grants := make([]permissions.Grant, 0, len(contentTypes))
			for _, ct := range contentTypes {
				grants = append(grants, permissions.Grant{ContentType: ct, Actions: acts})
			}
			if len(grants) == 0 {
				return errors.New("at least one --content-type is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			res, err := permissions.GrantPublic(ctx, client, grants...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, uid := range res.Enabled {
				fmt.Fprintf(w, "enabled   %s\n", uid)
			}
			for _, uid := range res.Unchanged {
				fmt.Fprintf(w, "unchanged %s\n", uid)
			}
			if res.Changed() {
				fmt.Fprintf(w, "public role %d updated\n", res.RoleID)
			} else {
				fmt.Fprintf(w, "public role %d already up to date\n", res.RoleID)
			}
			return nil
		},
	}
	grant.Flags().StringSliceVar(&contentTypes, "content-type", nil, "Content type name, e.g. tag (repeatable)")
	grant.Flags().StringVar(&actions, "actions", "find,findOne", "Comma-separated actions to enable")
	grant.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall request timeout")

	cmd.AddCommand(grant)
	return cmd
}
