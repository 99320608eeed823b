package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Prasanna-Nadrajan/mlreview/internal/api"
	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
	"github.com/Prasanna-Nadrajan/mlreview/internal/reporting"
	"github.com/Prasanna-Nadrajan/mlreview/internal/rules"
	"github.com/Prasanna-Nadrajan/mlreview/internal/rulesdsl"
	"github.com/Prasanna-Nadrajan/mlreview/internal/security"
	"github.com/Prasanna-Nadrajan/mlreview/internal/shared"
	"github.com/Prasanna-Nadrajan/mlreview/internal/stats"
	"github.com/Prasanna-Nadrajan/mlreview/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user-add":
		userAddCmd(os.Args[2:])
	case "version":
		fmt.Println("mlreview IR:", ir.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `mlreview – static reviewer for ML pipeline code

Usage:
  mlreview analyze --file <script.py> [--out <reports-dir>] [--db ./mlreview.db] [--rules pack.yaml] [--min-severity info] [--config ./mlreview.yaml]
  mlreview report  --run <run-id>     [--out <reports-dir>] [--db ./mlreview.db] [--config ./mlreview.yaml]
  mlreview diff    --base <run-id> --head <run-id> [--out <reports-dir>] [--db ./mlreview.db] [--config ./mlreview.yaml]
  mlreview serve   [--addr :8080] [--db ./mlreview.db] [--rules pack.yaml] [--config ./mlreview.yaml]
  mlreview user-add --username <name> --password <pw> [--role viewer|admin] [--db ./mlreview.db]
  mlreview version
`)
}

// buildEngine assembles the engine from the built-in registry, an
// optional YAML pack, and evaluation settings.
func buildEngine(packPath, minSeverity string, disabled []string) (*rules.Engine, error) {
	reg := rules.DefaultRegistry()
	if packPath != "" {
		var err error
		reg, err = rulesdsl.Load(packPath)
		if err != nil {
			return nil, err
		}
	}
	eng, err := rules.NewEngine(reg)
	if err != nil {
		return nil, err
	}
	dis := map[string]bool{}
	for _, name := range disabled {
		dis[name] = true
	}
	eng.SetSettings(rules.Settings{
		SeverityThreshold:  ir.NormalizeSeverity(minSeverity),
		DisabledCategories: dis,
	})
	return eng, nil
}

func analyzeCmd(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	file := fs.String("file", "", "Python source file to review")
	outDir := fs.String("out", "", "Output directory for reports")
	dbPath := fs.String("db", "", "SQLite database path")
	packPath := fs.String("rules", "", "YAML rule pack path (optional)")
	minSev := fs.String("min-severity", "", "Minimum severity to report")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *packPath == "" {
		*packPath = cfg.Analysis.RulePack
	}
	if *minSev == "" {
		*minSev = cfg.Analysis.SeverityThreshold
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "analyze: --file is required")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "analyze: cannot create out dir:", err)
		os.Exit(1)
	}

	code, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "analyze: read source:", err)
		os.Exit(1)
	}

	eng, err := buildEngine(*packPath, *minSev, cfg.Analysis.DisabledRules)
	if err != nil {
		slog.Error("engine build error", "err", err)
		os.Exit(1)
	}

	var run ir.Run
	run.ID = fmt.Sprintf("run-%d", time.Now().Unix())
	run.StartedAt = time.Now().UTC()
	run.Source = filepath.Clean(*file)
	run.IRVersion = ir.Version
	run.Context.SeverityThreshold = ir.NormalizeSeverity(*minSev)
	run.Context.DisabledCategories = cfg.Analysis.DisabledRules
	run.Context.RulePack = *packPath

	run.Issues = eng.Review(string(code))

	// Persist & report
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	if active, err := db.ListWaivers(true); err == nil && len(active) > 0 {
		var waived int
		run.Issues, waived = rules.ApplyWaivers(run.Issues, active)
		if waived > 0 {
			slog.Info("waivers applied", "waived", waived)
		}
	}
	run.Summary = stats.Summarize(run.Issues)

	if err := db.SaveRun(&run); err != nil {
		slog.Error("db save run error", "err", err)
		os.Exit(1)
	}

	jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
	htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
	slog.Info("analyze complete",
		"run", run.ID,
		"issues", len(run.Issues),
		"score", run.Summary.Score,
		"json", jsonPath,
		"html", htmlPath,
		"db", filepath.Clean(*dbPath),
	)
	fmt.Printf("Analyze OK\n  Run: %s\n  Issues: %d  Score: %.0f/100\n  JSON: %s\n  HTML: %s\n  DB: %s\n",
		run.ID, len(run.Issues), run.Summary.Score, jsonPath, htmlPath, filepath.Clean(*dbPath))
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "", "Run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "report: --run is required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	run, err := db.LoadRun(*runID)
	if err != nil {
		slog.Error("load run error", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
	htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
	fmt.Printf("Report OK\n  Run: %s\n  JSON: %s\n  HTML: %s\n", run.ID, jsonPath, htmlPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	path, _ := reporting.WriteDiffJSON(*base, *head, *outDir, &br, &hr)
	fmt.Printf("Diff OK\n  %s\n", path)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	packPath := fs.String("rules", "", "YAML rule pack path (optional)")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.Server.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *packPath == "" {
		*packPath = cfg.Analysis.RulePack
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	eng, err := buildEngine(*packPath, cfg.Analysis.SeverityThreshold, cfg.Analysis.DisabledRules)
	if err != nil {
		slog.Error("engine build error", "err", err)
		os.Exit(1)
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Engine:          eng,
		Logger:          logger,
		SessionDuration: time.Duration(cfg.Server.SessionHours) * time.Hour,
	}
	slog.Info("serving", "addr", *addr, "db", filepath.Clean(*dbPath))
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func userAddCmd(args []string) {
	fs := flag.NewFlagSet("user-add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "viewer", "Role (viewer|admin)")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "user-add: --username and --password are required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(1)
	}
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User OK\n  ID: %d  Username: %s  Role: %s\n", id, *username, *role)
}
