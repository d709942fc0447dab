package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"CanvasBoard/internal/config"
	"CanvasBoard/internal/engine"
	cbnet "CanvasBoard/internal/net"
	"CanvasBoard/internal/realtime"
	"CanvasBoard/internal/session"
	"CanvasBoard/internal/storage"
	"CanvasBoard/internal/ui"
)

const browseTimeout = 3 * time.Second

type flags struct {
	configPath string
	name       string
	color      string
	port       int
	board      string
	database   string
	key        string
	offline    bool
	noDiscover bool
	browse     bool
	list       bool
	remove     string
}

func parseFlags() (flags, []string) {
	var f flags
	fs := flag.NewFlagSet("canvasboard", flag.ExitOnError)
	fs.StringVar(&f.configPath, "config", "", "settings file (default $CANVASBOARD_CONFIG or ~/.canvasboard.toml)")
	fs.StringVar(&f.name, "name", "", "name shown to collaborators")
	fs.StringVar(&f.color, "color", "", "cursor colour, e.g. #2563EB")
	fs.IntVar(&f.port, "port", -1, "port the host listens on (0 picks a free one)")
	fs.StringVar(&f.board, "board", "", "board to open")
	fs.StringVar(&f.database, "db", "", "SQLite database file")
	fs.StringVar(&f.key, "key", "", "room key when hosting (default random)")
	fs.BoolVar(&f.offline, "offline", false, "do not host; edit the board alone")
	fs.BoolVar(&f.noDiscover, "no-discover", false, "do not advertise the host on the local network")
	fs.BoolVar(&f.browse, "browse", false, "list hosts on the local network and exit")
	fs.BoolVar(&f.list, "list", false, "list saved boards and exit")
	fs.StringVar(&f.remove, "delete", "", "delete a saved board and exit")
	fs.Parse(os.Args[1:])
	return f, fs.Args()
}

func loadConfig(f flags) (config.Config, error) {
	path := f.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if f.name != "" {
		cfg.Name = f.name
	}
	if f.color != "" {
		cfg.Color = f.color
	}
	if f.port >= 0 {
		cfg.Port = f.port
	}
	if f.board != "" {
		cfg.Board = f.board
	}
	if f.database != "" {
		cfg.Database = f.database
	}
	if f.noDiscover {
		cfg.Discover = false
	}
	return cfg, cfg.Validate()
}

func main() {
	f, args := parseFlags()
	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if f.browse {
		runBrowse(ctx)
		return
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	switch {
	case f.list:
		listBoards(ctx, store)
	case f.remove != "":
		if err := store.DeleteBoard(ctx, f.remove); err != nil {
			log.Fatalf("Failed to delete board: %v", err)
		}
		fmt.Printf("Deleted board %s\n", f.remove)
	case len(args) > 0 && strings.HasPrefix(args[0], cfg.Scheme+"://"):
		runClient(ctx, cfg, store, args[0])
	default:
		runHost(ctx, cfg, store, f)
	}
}

func newSession(cfg config.Config, store *storage.SQLiteStore, board string) *session.Session {
	return session.New(engine.New(), store, session.Options{
		Board:    board,
		Identity: realtime.NewIdentity(cfg.Name, cfg.Color),
		Sync:     realtime.Options{CursorThrottle: cfg.CursorThrottle.Duration},
		Autosave: cfg.Autosave.Duration,
	})
}

func openBoard(ctx context.Context, cfg config.Config, store *storage.SQLiteStore, board string) *session.Session {
	if err := store.CreateBoard(ctx, board, board); err != nil {
		log.Fatalf("Failed to create board: %v", err)
	}
	s := newSession(cfg, store, board)
	if err := s.Load(ctx); err != nil {
		log.Fatalf("Failed to load board: %v", err)
	}
	return s
}

func runHost(ctx context.Context, cfg config.Config, store *storage.SQLiteStore, f flags) {
	s := openBoard(ctx, cfg, store, cfg.Board)
	go s.Run(ctx)

	if f.offline {
		log.Println("Starting OFFLINE")
		ui.RunApp(ctx, s, ui.Options{Title: "CanvasBoard - " + cfg.Board, Status: "Board: " + cfg.Board})
		return
	}

	log.Println("Starting as HOST")
	srv, err := cbnet.Listen(cfg.Port, cbnet.NewHub())
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	go func() {
		if err := srv.Serve(ctx); err != nil {
			log.Printf("[HUB] server stopped: %v", err)
		}
	}()

	if cfg.Discover {
		adv, err := cbnet.Advertise(srv.Port(), cfg.Board)
		if err != nil {
			log.Printf("[HUB] not advertising on the local network: %v", err)
		} else {
			defer adv.Shutdown()
		}
	}

	key := f.key
	if key == "" {
		key = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	dialer := &cbnet.Dialer{
		Addr:    fmt.Sprintf("127.0.0.1:%d", srv.Port()),
		OnClose: func(error) { s.Leave() },
	}
	if err := s.Join(ctx, dialer, cfg.Board, key); err != nil {
		log.Printf("[SYNC] could not join own room: %v", err)
	}

	link := cbnet.ShareLink(cfg.Scheme, cbnet.Invite{
		Addr: fmt.Sprintf("%s:%d", cbnet.OutgoingIP(), srv.Port()),
		Room: cfg.Board,
		Key:  key,
	})
	log.Printf("Share link: %s", link)
	ui.RunApp(ctx, s, ui.Options{
		Title:     "CanvasBoard - " + cfg.Board,
		ShareLink: link,
		Status:    "Share: " + link,
	})
}

func runClient(ctx context.Context, cfg config.Config, store *storage.SQLiteStore, link string) {
	log.Println("Starting as CLIENT")
	inv, err := cbnet.ParseShareLink(cfg.Scheme, link)
	if err != nil {
		log.Fatalf("Bad share link: %v", err)
	}
	s := openBoard(ctx, cfg, store, inv.Room)
	go s.Run(ctx)

	status := "Connected to " + inv.Addr
	dialer := &cbnet.Dialer{
		Addr:    inv.Addr,
		OnClose: func(error) { s.Leave() },
	}
	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := s.Join(joinCtx, dialer, inv.Room, inv.Key); err != nil {
		log.Printf("[SYNC] %v", err)
		status = fmt.Sprintf("Connection failed: %v", err)
	}
	cancel()

	ui.RunApp(ctx, s, ui.Options{Title: "CanvasBoard - " + inv.Room, ShareLink: link, Status: status})
}

func runBrowse(ctx context.Context) {
	found := 0
	err := cbnet.Browse(ctx, browseTimeout, func(h cbnet.Host) {
		found++
		fmt.Printf("%s\t%s\troom %s\n", h.Name, h.Addr, h.Room)
	})
	if err != nil {
		log.Fatalf("Browsing failed: %v", err)
	}
	if found == 0 {
		fmt.Println("No hosts found")
	}
}

func listBoards(ctx context.Context, store *storage.SQLiteStore) {
	boards, err := store.ListBoards(ctx)
	if err != nil {
		log.Fatalf("Failed to list boards: %v", err)
	}
	for _, b := range boards {
		fmt.Printf("%s\t%s\t%s\n", b.ID, b.Name, b.UpdatedAt.Format(time.DateTime))
	}
}
