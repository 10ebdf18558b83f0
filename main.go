package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"

	"InkBoard/internal/board"
	"InkBoard/internal/config"
	"InkBoard/internal/export"
	mirror "InkBoard/internal/net"
	"InkBoard/internal/ui"
)

const appID = "io.inkboard.app"

func main() {
	var (
		configPath = flag.String("config", "inkboard.toml", "settings file")
		watch      = flag.String("watch", "", "share link of a mirror to watch instead of drawing")
		out        = flag.String("out", "page.png", "where -watch writes the latest frame")
		browse     = flag.Bool("browse", false, "list mirrors on the local network and exit")
		serve      = flag.Bool("mirror", false, "serve the page to viewers even if the settings file does not")
		verbose    = flag.Bool("v", false, "verbose board logging")
	)
	flag.Parse()

	if *verbose {
		board.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		board.SetLogger(slog.Default())
	}

	switch {
	case *browse:
		runBrowse()
	case *watch != "":
		runWatch(*watch, *out)
	default:
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		cfg.Mirror.Enabled = cfg.Mirror.Enabled || *serve
		runHost(cfg)
	}
}

func runHost(cfg config.Config) {
	log.Println("Starting as HOST")
	a := app.NewWithID(appID)

	tools := ui.NewToolState(cfg.ToolConfig())
	b := board.New(board.Options{
		Size:      cfg.Size(),
		Debounce:  cfg.Debounce(),
		Scheduler: export.RealScheduler{},
		Tools:     tools,
	})
	if err := b.LoadInitial(ui.LoadPage(a.Preferences(), cfg.Page.Key)); err != nil {
		log.Printf("[HOST] Starting with a blank page: %v", err)
	}
	b.AddSink(ui.NewPrefsSink(a.Preferences(), cfg.Page.Key, b))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var shareLink string
	if cfg.Mirror.Enabled {
		shareLink = startMirror(ctx, cfg, b)
	}

	ui.RunApp(a, b, tools, shareLink)

	if cfg.Export.Dir != "" {
		path := filepath.Join(cfg.Export.Dir, cfg.Page.Key+".pdf")
		if err := b.SavePDF(path); err != nil {
			log.Printf("[HOST] Failed to export %s: %v", path, err)
		} else {
			log.Printf("[HOST] Exported %s", path)
		}
	}
}

// startMirror serves the page to viewers and returns the link they open.
func startMirror(ctx context.Context, cfg config.Config, b *board.Board) string {
	m := mirror.NewMirror(b.ID().String())
	b.AddSink(m)
	if uri := b.LastExport(); uri != "" {
		m.OnChange(uri)
	} else if uri, err := b.Export(); err == nil {
		m.OnChange(uri)
	}

	addr := fmt.Sprintf(":%d", cfg.Mirror.Port)
	go func() {
		if err := m.ListenAndServe(ctx, addr); err != nil {
			log.Printf("[MIRROR] Server stopped: %v", err)
		}
	}()

	if cfg.Mirror.Advertise {
		server, err := mirror.Advertise(cfg.Mirror.Instance, cfg.Mirror.Port, b.ID().String())
		if err != nil {
			log.Printf("[MIRROR] Not advertising: %v", err)
		} else {
			go func() {
				<-ctx.Done()
				server.Shutdown()
			}()
		}
	}
	return mirror.ShareLink(mirror.GetOutgoingIP(), cfg.Mirror.Port)
}

func runWatch(link, out string) {
	url, err := mirror.ParseShareLink(link)
	if err != nil {
		log.Fatalf("Bad share link: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("[CLIENT] Watching %s, writing frames to %s", url, out)
	err = mirror.Watch(ctx, url, func(f mirror.Frame) {
		if err := writeFrame(out, f); err != nil {
			log.Printf("[CLIENT] Frame %d: %v", f.Seq, err)
			return
		}
		log.Printf("[CLIENT] Frame %d written", f.Seq)
	})
	if err != nil {
		log.Fatalf("Watch ended: %v", err)
	}
}

func writeFrame(path string, f mirror.Frame) error {
	img, err := export.DecodeDataURI(f.Image)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := export.EncodePNG(file, img); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func runBrowse() {
	log.Println("Looking for mirrors...")
	err := mirror.Browse(3*time.Second, func(url string) {
		fmt.Println(url)
	})
	if err != nil {
		log.Fatalf("Browse failed: %v", err)
	}
}
