// Command reqcount counts HTTP/1.x request heads in a file, or in whatever arrives over TCP.
//
//	reqcount [-dump] [-read-buffer N] [-max-buffer N] FILE
//	reqcount [-dump] -listen ADDR
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/indigo-web/reqscan/config"
	"github.com/indigo-web/reqscan/errors"
	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/reqscan/internal/dump"
	"github.com/indigo-web/reqscan/internal/server/tcp"
	"github.com/indigo-web/reqscan/internal/source"
	"github.com/indigo-web/reqscan/stream"
	pkgerrors "github.com/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	dump   bool
	listen string
	file   string
	cfg    *config.Config
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{cfg: config.Default()}
	fs := flag.NewFlagSet("reqcount", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.dump, "dump", false, "write every message to stdout as a JSON line")
	fs.StringVar(&opts.listen, "listen", "", "accept TCP connections on the address instead of reading a file")
	fs.IntVar(&opts.cfg.Stream.ReadBufferSize, "read-buffer", opts.cfg.Stream.ReadBufferSize, "size of a single read")
	fs.IntVar(&opts.cfg.Stream.Buffer.Maximal, "max-buffer", opts.cfg.Stream.Buffer.Maximal, "maximal size of a request head")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.cfg.Stream.ReadBufferSize <= 0 || opts.cfg.Stream.Buffer.Maximal <= 0:
		return opts, fmt.Errorf("buffer sizes must be positive")
	case opts.listen != "":
		if fs.NArg() != 0 {
			return opts, fmt.Errorf("no file is expected with -listen")
		}
	case fs.NArg() != 1:
		return opts, fmt.Errorf("exactly one file is expected")
	default:
		opts.file = fs.Arg(0)
	}

	if opts.cfg.Stream.Buffer.Default > opts.cfg.Stream.Buffer.Maximal {
		opts.cfg.Stream.Buffer.Default = opts.cfg.Stream.Buffer.Maximal
	}

	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "reqcount: ", 0)

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			logger.Print(err)
		}

		return 2
	}

	if opts.listen != "" {
		return serve(ctx, opts, stdout, logger)
	}

	return count(ctx, opts, stdout, stderr, logger)
}

func count(ctx context.Context, opts options, stdout, stderr io.Writer, logger *log.Logger) int {
	file, err := os.Open(opts.file)
	if err != nil {
		logger.Print(err)
		return 1
	}

	s := stream.New(source.NewReader(file, make([]byte, opts.cfg.Stream.ReadBufferSize)), opts.cfg)
	defer s.Close()

	n, err := s.Each(ctx, dumper(opts.dump, stdout, new(sync.Mutex)))
	if err != nil {
		var merr *errors.MessageError
		if errors.As(err, &merr) {
			fmt.Fprintf(stderr, "%d: %s\n", merr.Seq, merr.Err)
		} else {
			logger.Print(err)
		}

		return 1
	}

	fmt.Fprintf(stdout, "num: %d\n", n)
	return 0
}

// serve runs the TCP sink until the context is done. Every connection is a separate
// stream, its messages are counted and the result is logged once it's closed.
func serve(ctx context.Context, opts options, stdout io.Writer, logger *log.Logger) int {
	sock, err := net.Listen("tcp", opts.listen)
	if err != nil {
		logger.Print(err)
		return 1
	}

	onMessage := dumper(opts.dump, stdout, new(sync.Mutex))
	server := tcp.NewServer(sock, func(conn net.Conn) {
		client := source.NewClient(conn, opts.cfg.NET.ReadTimeout, make([]byte, opts.cfg.Stream.ReadBufferSize))
		n, err := stream.New(client, opts.cfg).Each(ctx, onMessage)
		if err != nil {
			logger.Printf("%s: %d messages, then %s", conn.RemoteAddr(), n, err)
			return
		}

		logger.Printf("%s: %d messages", conn.RemoteAddr(), n)
	})

	go func() {
		<-ctx.Done()
		_ = server.Stop()
	}()

	logger.Printf("listening on %s", server.Addr())

	if err = server.Start(); err != nil && !errors.Is(err, errors.ErrShutdown) {
		logger.Print(pkgerrors.Wrap(err, "accept"))
		return 1
	}

	return 0
}

func dumper(enabled bool, out io.Writer, mu *sync.Mutex) func(int, http.Message) error {
	if !enabled {
		return nil
	}

	return func(seq int, msg http.Message) error {
		mu.Lock()
		defer mu.Unlock()

		return dump.JSON(out, seq, msg)
	}
}
