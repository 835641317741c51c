package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/directory-locator/internal/locate"
	"github.com/sells-group/directory-locator/internal/present"
	"github.com/sells-group/directory-locator/internal/search"
)

const shellHelp = `Type an address, city or ZIP code to search around it.
  :locate          search around this machine's location
  :radius <miles>  set the radius ("any" for unbounded)
  :sort <mode>     distance, name or none
  :help            show this help
  :quit            exit
An empty line repeats the last search.`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive search session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("shell"); err != nil {
			return err
		}
		q, err := queryDefaults(cfg.Search)
		if err != nil {
			return err
		}
		formatFlag, _ := cmd.Flags().GetString("format")
		format, err := present.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		sess, cleanup, err := initSession(ctx)
		defer cleanup()
		if err != nil {
			return err
		}

		sh := &shell{sess: sess, query: q, format: format, mv: present.NewMapView(cfg.Map.StylePath)}
		return sh.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	shellCmd.Flags().String("format", "cards", "output format: cards, json or geojson")
	rootCmd.AddCommand(shellCmd)
}

// shell is a line-oriented front end over one search session.
type shell struct {
	sess   *search.Session
	query  search.Query
	format present.Format
	mv     *present.MapView
}

func (s *shell) run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, shellHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return eris.Wrap(scanner.Err(), "shell: read input")
		}
		if ctx.Err() != nil {
			return nil
		}
		quit, err := s.handle(ctx, strings.TrimSpace(scanner.Text()), out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *shell) handle(ctx context.Context, line string, out io.Writer) (quit bool, err error) {
	if !strings.HasPrefix(line, ":") {
		if line != "" {
			s.query.Intent = locate.UseTypedText
			s.query.RawText = line
		}
		return false, s.search(ctx, out)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q", "quit", "exit":
		return true, nil
	case "help", "h":
		fmt.Fprintln(out, shellHelp)
		return false, nil
	case "locate":
		fix, err := s.sess.OnDeviceLocationRequested(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Using your location: %s\n", fix.Label)
		s.query.Intent = locate.UseDeviceLocation
		s.query.RawText = ""
		return false, s.search(ctx, out)
	case "radius":
		r, err := search.ParseRadius(arg)
		if err != nil {
			return false, err
		}
		s.query.RadiusMiles = r
		return false, s.search(ctx, out)
	case "sort":
		m, err := search.ParseSortMode(arg)
		if err != nil {
			return false, err
		}
		s.query.Sort = m
		return false, s.search(ctx, out)
	default:
		return false, eris.Errorf("unknown command :%s", name)
	}
}

func (s *shell) search(ctx context.Context, out io.Writer) error {
	resp := s.sess.OnSearchRequested(ctx, s.query)
	return render(ctx, out, s.format, resp, s.mv)
}
