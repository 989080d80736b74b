package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"vidlists"
	"vidlists/config"
	"vidlists/playlist"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// errUsage marks errors that should be followed by the command's usage text.
var errUsage = errors.New("usage")

type command struct {
	name    string
	args    string
	summary string
	needs   needs
	run     func(ctx context.Context, env *env, args []string) error
}

type needs int

const (
	needsApp needs = iota
	needsUser
	needsNothing
)

var commands = []command{
	{"fetch", "[-page N]", "Load the whole catalog, or one page", needsApp, cmdFetch},
	{"search", "<query>", "Search video titles", needsApp, cmdSearch},
	{"video", "<id>", "Show one video", needsApp, cmdVideo},
	{"new-user", "", "Print a fresh user id", needsApp, cmdNewUser},
	{"playlists", "", "List your playlists", needsUser, cmdPlaylists},
	{"create", "<name> [video-ids...]", "Create a playlist", needsUser, cmdCreate},
	{"show", "<playlist-id>", "Show a playlist's videos", needsUser, cmdShow},
	{"add", "<playlist-id> <video-ids...>", "Append videos to a playlist", needsUser, cmdAdd},
	{"remove", "<playlist-id> <index>", "Remove the video at a position", needsUser, cmdRemove},
	{"reorder", "<playlist-id> <indices...>", "Reorder by old positions", needsUser, cmdReorder},
	{"rename", "<playlist-id> <name>", "Rename a playlist", needsUser, cmdRename},
	{"delete", "<playlist-id>", "Delete a playlist", needsUser, cmdDelete},
}

// env is what a command runs against.
type env struct {
	app    *vidlists.App
	user   *vidlists.User
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	name, rest := args[0], args[1:]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(stdout)
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		printUsage(stderr)
		return 2
	}

	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Config file (default: vidlists.json, then ~/.config/vidlists/vidlists.json)")
	userID := fs.String("user", os.Getenv("VIDLISTS_USER"), "User id (default: $VIDLISTS_USER)")
	page := new(int)
	if cmd.name == "fetch" {
		page = fs.Int("page", 0, "Fetch only this page and merge it into the cache (0 = whole catalog)")
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: vidlists %s [flags] %s\n\nFlags:\n", cmd.name, cmd.args)
		fs.PrintDefaults()
	}
	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	app, err := vidlists.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer app.Close()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := app.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("write metrics", slog.String("path", cfg.MetricsFile), slog.Any("error", err))
			}
		}()
	}

	e := &env{app: app, stdout: stdout, stderr: stderr}
	if cmd.needs == needsUser {
		id := *userID
		if id == "" {
			id = app.NewUserID()
			fmt.Fprintf(stderr, "Created user %s (pass -user %s or set VIDLISTS_USER to keep using it)\n", id, id)
		}
		if e.user, err = app.User(ctx, id); err != nil {
			fmt.Fprintf(stderr, "Error loading user: %v\n", err)
			return 1
		}
	}

	argv := fs.Args()
	if cmd.name == "fetch" {
		argv = append([]string{strconv.Itoa(*page)}, argv...)
	}
	if err := cmd.run(ctx, e, argv); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "vidlists - personal playlists over a video catalog\n\nUsage:\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  vidlists %s %s\t%s\n", c.name, c.args, c.summary)
	}
	tw.Flush()
	fmt.Fprintf(w, `
Every command accepts -config <file>; playlist commands also accept -user <id>.

Examples:
  vidlists search go tutorial
  vidlists create -user nine-alpha-oxygen-mango-7f3a9c1e "Watch later" 12 7
  vidlists reorder <playlist-id> 2 0 1

For help on specific command: vidlists <command> -h
`)
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func cmdFetch(ctx context.Context, e *env, args []string) error {
	page, _ := strconv.Atoi(args[0])
	var (
		videos []*vidlists.Video
		err    error
	)
	if page > 0 {
		videos, err = e.app.LoadPage(ctx, page)
	} else {
		videos, err = e.app.Refresh(ctx)
	}
	if err != nil {
		return err
	}
	printVideos(e.stdout, videos)
	fmt.Fprintf(e.stderr, "\nTotal: %d videos\n", len(videos))
	return nil
}

func cmdSearch(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing query", errUsage)
	}
	res, err := e.app.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(res.Keywords) > 0 {
		fmt.Fprintf(e.stdout, "Closest keywords: %s\n\n", strings.Join(res.Keywords, ", "))
	}
	if len(res.Videos) == 0 {
		fmt.Fprintln(e.stdout, "No videos found.")
		return nil
	}
	printVideos(e.stdout, res.Videos)
	return nil
}

func cmdVideo(ctx context.Context, e *env, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) != 1 {
		return fmt.Errorf("%w: expected one video id", errUsage)
	}
	v, err := e.app.Video(ctx, ids[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", v.ID)
	fmt.Fprintf(w, "Title:\t%s\n", v.Title)
	fmt.Fprintf(w, "Video:\t%s\n", v.VideoID)
	fmt.Fprintf(w, "Views:\t%d\n", v.Views)
	fmt.Fprintf(w, "Likes:\t%d\n", v.Likes)
	fmt.Fprintf(w, "Comments:\t%d\n", v.Comments)
	if v.ThumbnailURL != "" {
		fmt.Fprintf(w, "Thumbnail:\t%s\n", v.ThumbnailURL)
	}
	if !v.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:\t%s\n", v.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
	if v.Description != "" {
		fmt.Fprintf(e.stdout, "\n%s\n", v.Description)
	}
	return nil
}

func cmdNewUser(_ context.Context, e *env, _ []string) error {
	fmt.Fprintln(e.stdout, e.app.NewUserID())
	return nil
}

func cmdPlaylists(_ context.Context, e *env, _ []string) error {
	all := e.user.Playlists().All()
	if len(all) == 0 {
		fmt.Fprintln(e.stdout, "No playlists.")
		return nil
	}
	w := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVIDEOS")
	for _, p := range all {
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.ID(), p.Name(), p.Len())
	}
	return w.Flush()
}

func cmdCreate(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing name", errUsage)
	}
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	p := e.app.NewPlaylist(args[0], ids)
	if err := e.user.Playlists().Add(ctx, p); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, p.ID())
	return nil
}

func cmdShow(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s (%d videos)\n\n", p.Name(), p.Len())
	if p.Len() == 0 {
		return nil
	}

	w := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tVIEWS")
	err = e.app.PlaylistVideos(ctx, p, func(entry playlist.Entry) error {
		if entry.Err != nil {
			fmt.Fprintf(w, "%d\t%d\t(no longer in catalog)\t\n", entry.Index, entry.VideoID)
			return nil
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", entry.Index, entry.VideoID, truncate(entry.Video.Title, 50), entry.Video.Views)
		return nil
	})
	w.Flush()
	return err
}

func cmdAdd(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: missing video ids", errUsage)
	}
	return p.Add(ctx, ids...)
}

func cmdRemove(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	idx, err := parseIndices(args[1:])
	if err != nil {
		return err
	}
	if len(idx) != 1 {
		return fmt.Errorf("%w: expected one index", errUsage)
	}
	return p.RemoveAt(ctx, idx[0])
}

func cmdReorder(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	idx, err := parseIndices(args[1:])
	if err != nil {
		return err
	}
	return p.Reorder(ctx, idx)
}

func cmdRename(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: missing name", errUsage)
	}
	return p.Rename(ctx, strings.Join(args[1:], " "))
}

func cmdDelete(ctx context.Context, e *env, args []string) error {
	p, err := playlistArg(e, args)
	if err != nil {
		return err
	}
	return e.user.Playlists().Delete(ctx, p)
}

func playlistArg(e *env, args []string) (*vidlists.Playlist, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: missing playlist id", errUsage)
	}
	return e.user.Playlists().Get(args[0])
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid video id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseIndices(args []string) ([]int, error) {
	idx := make([]int, 0, len(args))
	for _, a := range args {
		i, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", a)
		}
		idx = append(idx, i)
	}
	return idx, nil
}

func printVideos(w io.Writer, videos []*vidlists.Video) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tVIEWS\tLIKES\tCOMMENTS")
	for _, v := range videos {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", v.ID, truncate(v.Title, 50), v.Views, v.Likes, v.Comments)
	}
	tw.Flush()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
