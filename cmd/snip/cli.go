package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/mcp"
	"github.com/hpungsan/snip/internal/ops"
	"github.com/hpungsan/snip/internal/prompt"
	"github.com/hpungsan/snip/internal/runner"
	"github.com/hpungsan/snip/internal/web"
)

// appEnv carries the process collaborators every command needs.
type appEnv struct {
	db      *sql.DB
	cfg     *config.Config
	baseDir string

	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	stdinTTY bool

	prompter prompt.Prompter
	engine   *runner.Engine
	edit     func(editorCmd string, initial []byte, ext string) ([]byte, error)
}

// runEngine returns the injected engine, or a real one with signal cleanup installed.
func (a *appEnv) runEngine() *runner.Engine {
	if a.engine == nil {
		a.engine = runner.NewEngine()
	}
	return a.engine
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "snip",
		Usage:   "Store, search and safely run code snippets",
		Version: Version,
		Writer:  env.stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", EnvVars: []string{"SNIP_DEBUG"}, Usage: "Enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			addCmd(env),
			listCmd(env),
			searchCmd(env),
			showCmd(env),
			editCmd(env),
			rmCmd(env),
			runCmd(env),
			execCmd(env),
			checkCmd(env),
			exportCmd(env),
			importCmd(env),
			configCmd(env),
			mcpCmd(env),
			uiCmd(env),
		},
		DisableSliceFlagSeparator: true,
	}
	app.ErrWriter = env.stderr
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a snippet (reads stdin when piped, otherwise opens $EDITOR)",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Language (selects the interpreter)"},
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Name collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			name, err := requireArg(c, "name")
			if err != nil {
				return outputError(err)
			}

			var content string
			if !env.stdinTTY {
				data, err := io.ReadAll(env.stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				content = string(data)
			} else {
				ext := runner.Resolve(c.String("lang"), env.cfg.Shell()).Extension
				data, err := env.edit(env.cfg.EditorCommand(), nil, ext)
				if err != nil {
					return outputError(err)
				}
				content = string(data)
			}
			if strings.TrimSpace(content) == "" {
				return outputError(errors.NewInvalidRequest("content is required"))
			}

			out, err := ops.Add(c.Context, env.db, ops.AddInput{
				Name:     name,
				Content:  content,
				Language: c.String("lang"),
				Tags:     parseTags(c.String("tags")),
				Mode:     ops.AddMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			verb := "Added"
			if out.Replaced {
				verb = "Replaced"
			}
			fmt.Fprintf(env.stdout, "%s snippet %s (%s)\n", verb, out.Name, out.ID)
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List snippets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Filter by language"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: "name", Usage: "Sort: name|usage|recent"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum results (default: all)"},
			&cli.IntFlag{Name: "offset", Usage: "Skip first N results"},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Tag:      optionalString(c, "tag"),
				Language: optionalString(c, "lang"),
				Sort:     c.String("sort"),
				Limit:    c.Int("limit"),
				Offset:   c.Int("offset"),
				All:      !c.IsSet("limit") && !c.IsSet("offset"),
			}

			out, err := ops.List(c.Context, env.db, input)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(env.stdout, out)
			}

			if len(out.Items) == 0 {
				fmt.Fprintln(env.stdout, "No snippets found.")
				return nil
			}
			tw := tabwriter.NewWriter(env.stdout, 0, 0, 2, ' ', 0)
			for _, s := range out.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d runs\n", s.ID, s.Name, languageLabel(s.Language), strings.Join(s.Tags, ", "), s.UsageCount)
			}
			return tw.Flush()
		},
	}
}

// searchCmd creates the search command.
func searchCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"find"},
		Usage:     "Fuzzy search snippet names, tags and content",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Filter by tag"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Filter by language"},
			&cli.IntFlag{Name: "limit", Value: 15, Usage: "Maximum results"},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Search(c.Context, env.db, ops.SearchInput{
				Query:    strings.Join(c.Args().Slice(), " "),
				Tag:      optionalString(c, "tag"),
				Language: optionalString(c, "lang"),
				Limit:    c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(env.stdout, out)
			}

			if len(out.Items) == 0 {
				fmt.Fprintln(env.stdout, "No results")
				return nil
			}
			for i, item := range out.Items {
				fmt.Fprintf(env.stdout, "%d. %s (%s) [%s]", i+1, item.Name, item.ID, strings.Join(item.Tags, ", "))
				if item.Field == ops.MatchContent && item.Match != "" {
					fmt.Fprintf(env.stdout, "  %s", item.Match)
				}
				fmt.Fprintln(env.stdout)
			}
			return nil
		},
	}
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a snippet",
		ArgsUsage: "<id|name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
			&cli.BoolFlag{Name: "raw", Usage: "Print only the content"},
		},
		Action: func(c *cli.Context) error {
			ref, err := requireArg(c, "id or name")
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Fetch(c.Context, env.db, ops.FetchInput{Ref: ref})
			if err != nil {
				return env.notFound(c, ref, err)
			}

			switch {
			case c.Bool("json"):
				return outputJSON(env.stdout, out)
			case c.Bool("raw"):
				_, err := io.WriteString(env.stdout, out.Content)
				return err
			}
			fmt.Fprintf(env.stdout, "--- %s ---\n", out.Name)
			fmt.Fprintln(env.stdout, out.Content)
			return nil
		},
	}
}

// editCmd creates the edit command.
func editCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Aliases:   []string{"update"},
		Usage:     "Edit a snippet's content in $EDITOR, or change its metadata with flags",
		ArgsUsage: "<id|name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Rename the snippet"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Change the language"},
			&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: "Replace tags (comma-separated)"},
		},
		Action: func(c *cli.Context) error {
			ref, err := requireArg(c, "id or name")
			if err != nil {
				return outputError(err)
			}
			s, err := ops.Resolve(c.Context, env.db, ref)
			if err != nil {
				return env.notFound(c, ref, err)
			}

			input := ops.UpdateInput{Ref: s.ID}
			if c.IsSet("name") {
				name := c.String("name")
				input.Name = &name
			}
			if c.IsSet("lang") {
				lang := c.String("lang")
				input.Language = &lang
			}
			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				input.Tags = &tags
			}

			metadataOnly := input.Name != nil || input.Language != nil || input.Tags != nil
			if !metadataOnly {
				ext := runner.Resolve(s.Language, env.cfg.Shell()).Extension
				data, err := env.edit(env.cfg.EditorCommand(), []byte(s.Content), ext)
				if err != nil {
					return outputError(err)
				}
				if string(data) == s.Content {
					fmt.Fprintln(env.stdout, "No changes.")
					return nil
				}
				if strings.TrimSpace(string(data)) == "" {
					return outputError(errors.NewInvalidRequest("content cannot be empty"))
				}
				content := string(data)
				input.Content = &content
			}

			out, err := ops.Update(c.Context, env.db, input)
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintf(env.stdout, "Updated %s (%s)\n", out.Name, out.ID)
			return nil
		},
	}
}

// rmCmd creates the rm command.
func rmCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Permanently delete a snippet",
		ArgsUsage: "<id|name>",
		Action: func(c *cli.Context) error {
			ref, err := requireArg(c, "id or name")
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Delete(c.Context, env.db, ops.DeleteInput{Ref: ref})
			if err != nil {
				return env.notFound(c, ref, err)
			}
			fmt.Fprintf(env.stdout, "Removed %s (%s)\n", out.Name, out.ID)
			return nil
		},
	}
}

func executionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Print the resolved content instead of running it"},
		&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip the dangerous-command confirmation"},
		&cli.StringSliceFlag{Name: "set", Usage: "Template value as name=value (repeatable)"},
	}
}

// runCmd creates the run command.
func runCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Preview, confirm and run a snippet",
		ArgsUsage: "<id|name>",
		Flags: append(executionFlags(),
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the \"Run snippet?\" confirmation"},
		),
		Action: func(c *cli.Context) error {
			return env.executeAction(c, true)
		},
	}
}

// execCmd creates the exec command.
func execCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a snippet immediately, without preview or run confirmation",
		ArgsUsage: "<id|name>",
		Flags:     executionFlags(),
		Action: func(c *cli.Context) error {
			return env.executeAction(c, false)
		},
	}
}

func (a *appEnv) executeAction(c *cli.Context, interactive bool) error {
	ref, err := requireArg(c, "id or name")
	if err != nil {
		return outputError(err)
	}
	set, err := parseSetFlags(c.StringSlice("set"))
	if err != nil {
		return outputError(err)
	}

	status, err := a.execute(c.Context, ref, executeOptions{
		DryRun:  c.Bool("dry-run"),
		Force:   c.Bool("force"),
		Yes:     c.Bool("yes"),
		Preview: interactive,
		Confirm: interactive,
		Values:  set,
	})
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return a.notFound(c, ref, err)
		}
		return outputError(err)
	}
	if status != 0 {
		return cli.Exit("", status)
	}
	return nil
}

// checkCmd creates the check command.
func checkCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Show how a snippet would run without running it",
		ArgsUsage: "<id|name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error {
			ref, err := requireArg(c, "id or name")
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Inspect(c.Context, env.db, env.cfg, ops.InspectInput{Ref: ref})
			if err != nil {
				return env.notFound(c, ref, err)
			}
			if c.Bool("json") {
				return outputJSON(env.stdout, out)
			}

			tw := tabwriter.NewWriter(env.stdout, 0, 0, 1, ' ', 0)
			fmt.Fprintf(tw, "Snippet:\t%s (%s)\n", out.Name, out.ID)
			fmt.Fprintf(tw, "Runner:\t%s (%s, .%s)\n", out.Runner, out.Command, out.Extension)
			if out.Dangerous {
				fmt.Fprintf(tw, "Dangerous:\tyes (rule: %s)\n", out.MatchedRule)
			} else {
				fmt.Fprintf(tw, "Dangerous:\tno\n")
			}
			vars := make([]string, 0, len(out.Variables))
			for _, v := range out.Variables {
				if v.Default != nil {
					vars = append(vars, fmt.Sprintf("%s [%s]", v.Name, *v.Default))
				} else {
					vars = append(vars, v.Name)
				}
			}
			if len(vars) == 0 {
				vars = append(vars, "none")
			}
			fmt.Fprintf(tw, "Variables:\t%s\n", strings.Join(vars, ", "))
			return tw.Flush()
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export snippets to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.snip/exports/<tag|all>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "tag", Usage: "Only export snippets with this tag"},
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Only export snippets with this language"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Export(c.Context, env.db, env.cfg, ops.ExportInput{
				Path:     c.String("path"),
				Tag:      optionalString(c, "tag"),
				Language: optionalString(c, "lang"),
			})
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintf(env.stdout, "Exported %d snippet(s) to %s\n", out.Count, out.Path)
			return nil
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import snippets from a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Input file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|skip|replace"},
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Import(c.Context, env.db, env.cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(env.stdout, out)
			}
			fmt.Fprintf(env.stdout, "Imported %d, skipped %d\n", out.Imported, out.Skipped)
			for _, e := range out.Errors {
				fmt.Fprintf(env.stderr, "  line %d: [%s] %s\n", e.Line, e.Code, e.Message)
			}
			return nil
		},
	}
}

// configCmd creates the config command.
func configCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Read or change settings in ~/.snip/config.json",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print one setting",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key, err := requireArg(c, "key")
					if err != nil {
						return outputError(err)
					}
					value, err := env.cfg.Get(key)
					if err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					fmt.Fprintln(env.stdout, value)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Change one setting",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return outputError(errors.NewInvalidRequest("key is required"))
					}
					key, value := c.Args().Get(0), c.Args().Get(1)
					if err := env.cfg.Set(key, value); err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					if err := config.Save(env.baseDir, env.cfg); err != nil {
						return outputError(errors.NewInternal(err))
					}
					fmt.Fprintln(env.stdout, "OK")
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "Print every setting",
				Action: func(c *cli.Context) error {
					tw := tabwriter.NewWriter(env.stdout, 0, 0, 2, ' ', 0)
					for _, key := range config.Keys {
						value, _ := env.cfg.Get(key)
						fmt.Fprintf(tw, "%s\t%s\n", key, value)
					}
					return tw.Flush()
				},
			},
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the snippet store to MCP clients over stdio",
		Action: func(c *cli.Context) error {
			if err := mcp.Run(env.db, env.cfg, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Browse snippets in a read-only web UI",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8377, Usage: "Listen port"},
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Listen address"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(env.db, env.cfg, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// notFound adds a "did you mean" hint to not-found errors.
func (a *appEnv) notFound(c *cli.Context, ref string, err error) error {
	if errors.Is(err, errors.ErrNotFound) {
		if suggestion, sErr := ops.Suggest(c.Context, a.db, ref); sErr == nil && suggestion != "" {
			fmt.Fprintf(a.stderr, "Did you mean %q?\n", suggestion)
		}
	}
	return outputError(err)
}

// outputJSON marshals v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats err for the CLI with the exit status its code maps to.
func outputError(err error) error {
	if err == nil {
		return nil
	}
	status := errors.ExitStatus(err)
	if sErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), status)
	}
	return cli.Exit(err.Error(), status)
}

func requireArg(c *cli.Context, what string) (string, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return "", errors.NewInvalidRequest(what + " is required")
	}
	return arg, nil
}

func optionalString(c *cli.Context, name string) *string {
	if v := c.String(name); v != "" {
		return &v
	}
	return nil
}

func languageLabel(lang string) string {
	if lang == "" {
		return "-"
	}
	return lang
}

// parseTags splits a comma-separated string into a slice of tags.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseSetFlags turns repeated name=value flags into a value map.
func parseSetFlags(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("--set expects name=value, got %q", p))
		}
		values[name] = value
	}
	return values, nil
}
