package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/heapq"
	"github.com/creachadair/mds/slice"
	"github.com/creachadair/taskgroup"
	"github.com/danderson/obsipc"
	"github.com/danderson/obsipc/crash"
	"github.com/danderson/obsipc/engine"
	"github.com/danderson/obsipc/internal/config"
	"github.com/danderson/obsipc/osn"
	"github.com/danderson/obsipc/osn/client"
	"github.com/danderson/obsipc/transport"
	"github.com/kr/pretty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var globalArgs struct {
	Config string `flag:"config,Path to the TOML configuration file"`
	Socket string `flag:"socket,Path to the server socket (overrides config)"`
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(globalArgs.Config)
	if err != nil {
		return nil, err
	}
	if globalArgs.Socket != "" {
		cfg.Socket = globalArgs.Socket
	}
	return cfg, nil
}

func dial(ctx context.Context) (*obsipc.Conn, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := obsipc.Dial(ctx, cfg.Socket, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Socket, err)
	}
	return conn, nil
}

func main() {
	root := &command.C{
		Name:     "osn",
		Usage:    "command args...",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "serve",
				Usage: "serve",
				Help: `Run the engine and serve it on the configured socket.

The server exits on SIGINT or SIGTERM. Exiting before a client has
called API.Shutdown is recorded as a failure by the crash handler.`,
				Run: command.Adapt(runServe),
			},
			{
				Name:  "call",
				Usage: "call Collection.Function [arg...]",
				Help: `Call a function on the server and print its reply.

Each argument is written as kind:value, where kind is a signature
letter:
  n        null (no value)
  f, d     float, double
  i, x     int32, int64
  u, t     uint32, uint64 (handles are t)
  s        string
  b        binary, as hex

For example:
  osn call SceneItem.SetPosition t:0x0100000000000001 f:12.5 f:-3`,
				Run: runCall,
			},
			{
				Name:  "list",
				Usage: "list [regexp]",
				Help: `List the server's functions and their signatures.

With an argument, list only functions whose Collection.Function name
matches the regular expression.`,
				Run: runList,
			},
			{
				Name:  "sources",
				Usage: "sources",
				Help:  "List the source types the server can create.",
				Run:   command.Adapt(runSources),
			},
			{
				Name:  "reports",
				Usage: "reports args...",
				Commands: []*command.C{
					{
						Name:  "list",
						Usage: "list",
						Help:  "List crash reports in the configured crash directory, newest first.",
						Run:   command.Adapt(runReportsList),
					},
					{
						Name:  "show",
						Usage: "show path",
						Help:  "Print a crash report.",
						Run:   command.Adapt(runReportsShow),
					},
				},
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

func runServe(env *command.Env) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var sup *crash.Supervisor
	log, err := cfg.Logger(func(e zapcore.Entry) error {
		if sup == nil {
			return nil
		}
		return sup.Hook(e)
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	e, err := engine.New(cfg.Engine(), log.Named("engine"))
	if err != nil {
		return err
	}
	var srv *osn.Server
	sup = crash.New(crash.Config{
		Dir:            cfg.Crash.Dir,
		HandledCrashes: cfg.Crash.HandledCrashes,
		LogDepth:       cfg.Crash.LogDepth,
		Logger:         log.Named("crash"),
		Exit:           os.Exit,
		Initialized:    func() bool { return srv.Initialized() },
	})
	sup.Annotate("socket", cfg.Socket)
	sup.Annotate("pid", fmt.Sprint(os.Getpid()))
	srv = osn.New(e, sup, log.Named("osn"))

	l, err := transport.Listen(cfg.Socket, &transport.ListenOptions{
		SameUser: cfg.SameUser,
		Logger:   log.Named("transport"),
	})
	if err != nil {
		return err
	}

	ipc := &obsipc.Server{
		Dispatcher: srv.Dispatcher(),
		Logger:     log.Named("server"),
	}
	ctx, cancel := context.WithCancel(env.Context())
	defer cancel()
	g := taskgroup.New(nil)
	g.Go(func() error {
		if err := e.Video().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("video: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return ipc.Serve(ctx, l)
	})
	err = g.Wait()
	log.Info("shutting down", zap.Bool("clean", !srv.Initialized()))
	sup.CheckExit(srv.Initialized())
	return err
}

func runCall(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("call requires a function name.")
	}
	coll, fn, ok := strings.Cut(env.Args[0], ".")
	if !ok || coll == "" || fn == "" {
		return env.Usagef("function name %q is not of the form Collection.Function", env.Args[0])
	}
	args, err := parseArgs(env.Args[1:])
	if err != nil {
		return err
	}

	conn, err := dial(env.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(env.Context(), 30*time.Second)
	defer cancel()
	vals, err := conn.Call(ctx, coll, fn, args...)
	if err != nil {
		return fmt.Errorf("calling %s: %w", env.Args[0], err)
	}
	res, err := obsipc.ParseResult(vals)
	if err != nil {
		fmt.Printf("Raw reply: %# v\n", pretty.Formatter(vals))
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}
	fmt.Println(res.Status)
	for i, v := range res.Values {
		fmt.Printf("  %d: %v\n", i, v)
	}
	return nil
}

func runList(env *command.Env) error {
	var filter string
	switch len(env.Args) {
	case 0:
	case 1:
		filter = env.Args[0]
	default:
		return env.Usagef("too many arguments")
	}
	re, err := regexp.Compile(filter)
	if err != nil {
		return err
	}

	conn, err := dial(env.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	fns, err := client.New(conn).Functions(env.Context())
	if err != nil {
		return fmt.Errorf("listing functions: %w", err)
	}
	matched := slice.Select(fns, func(f client.FunctionInfo) bool {
		return re.MatchString(f.Name)
	})
	q := heapq.New(func(a, b client.FunctionInfo) int {
		return cmp.Compare(a.Name, b.Name)
	})
	for f := range matched {
		q.Add(f)
	}

	var out indenter
	var prev string
	for !q.IsEmpty() {
		f, _ := q.Pop()
		coll, name, _ := strings.Cut(f.Name, ".")
		if coll != prev {
			out.indent(0)
			out.v(coll)
			out.indent(1)
			prev = coll
		}
		out.f("%s(%s)", name, f.Signature)
	}
	return nil
}

func runSources(env *command.Env) error {
	conn, err := dial(env.Context())
	if err != nil {
		return err
	}
	defer conn.Close()

	types, err := client.New(conn).SourceTypes(env.Context())
	if err != nil {
		return fmt.Errorf("listing source types: %w", err)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Println(t)
	}
	return nil
}

func runReportsList(env *command.Env) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Crash.Dir == "" {
		return errors.New("no crash directory configured")
	}
	paths, err := crash.ListReports(cfg.Crash.Dir)
	if err != nil {
		return err
	}
	var reports []*crash.Report
	for _, p := range paths {
		r, err := crash.ReadReport(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", p, err)
			continue
		}
		reports = append(reports, r)
	}
	slices.SortFunc(reports, func(a, b *crash.Report) int {
		return b.Time.Compare(a.Time)
	})
	for _, r := range reports {
		fmt.Printf("%s  %s  %s  %s\n", r.Time.Local().Format(time.DateTime), r.ID, r.Call, r.Info)
	}
	return nil
}

func runReportsShow(env *command.Env, path string) error {
	r, err := crash.ReadReport(path)
	if err != nil {
		return err
	}
	fmt.Printf("%# v\n", pretty.Formatter(r))
	return nil
}
