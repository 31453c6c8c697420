// Package main is the entry point for the EduBase terminal client.
//
// The binary wires the full client stack: credential store, request
// pipeline, session manager, navigation guard, and the resource services,
// then dispatches one subcommand per invocation. State between invocations
// is the persisted bearer credential; everything else is rebuilt from the
// platform on each run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edubase/edubase-client/config"
	"github.com/edubase/edubase-client/internal/application/session"
	"github.com/edubase/edubase-client/internal/domain/content"
	"github.com/edubase/edubase-client/internal/domain/user"
	"github.com/edubase/edubase-client/internal/infrastructure/api"
	"github.com/edubase/edubase-client/internal/infrastructure/credentials"
	"github.com/edubase/edubase-client/internal/infrastructure/messaging"
	"github.com/edubase/edubase-client/internal/infrastructure/service"
	"github.com/edubase/edubase-client/internal/interface/navigator"
	"github.com/edubase/edubase-client/pkg/circuitbreaker"
)

const usage = `edubase - terminal client for the EduBase learning platform

Usage:
  edubase <command> [arguments]

Commands:
  login      -u <username> -p <password>     authenticate and store the credential
  logout                                     discard the stored credential
  register   -u <name> -e <email> -p <pass>  create an account and sign in
  whoami                                     show the current user profile
  subjects   [-id <id>] [--map]              list subjects, or show one subject
  questions  [-subject <id>] [-type <t>] [-difficulty <n>] [-keyword <s>] [-page <n>] [-size <n>]
  points     -subject <id>                   list knowledge points of a subject
  dashboard                                  show the landing summary
  open       <path>                          resolve a route the way the UI would
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired client stack handed to each subcommand.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	sess      *session.Manager
	router    *navigator.Router
	subjects  *service.SubjectService
	questions *service.QuestionService
	points    *service.KnowledgePointService
	dashboard *service.DashboardService
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Print(usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)
	log.Debug("starting edubase client",
		"env", string(cfg.App.Environment),
		"api_url", cfg.API.BaseURL,
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// Credential store
	// ─────────────────────────────────────────────────────────────────────────
	creds, err := credentials.NewFileStore(cfg.Credentials.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Notification bus: notices go to stderr so command output stays clean.
	// ─────────────────────────────────────────────────────────────────────────
	bus := messaging.NewBus(log)
	bus.Subscribe(func(n messaging.Notice) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
	})

	// ─────────────────────────────────────────────────────────────────────────
	// Request pipeline
	// ─────────────────────────────────────────────────────────────────────────
	apiCfg := api.DefaultConfig(cfg.API.BaseURL)
	apiCfg.Timeout = cfg.API.Timeout
	apiCfg.Retry = cfg.API.Retry
	apiCfg.Logger = log
	apiCfg.Metrics = api.NewMetrics(prometheus.DefaultRegisterer)

	breakerCfg := circuitbreaker.DefaultConfig("edubase-api")
	breakerCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
	apiCfg.Breaker = circuitbreaker.New(breakerCfg)

	client := api.NewClient(apiCfg, creds, bus)

	// ─────────────────────────────────────────────────────────────────────────
	// Session, navigation, resource services
	// ─────────────────────────────────────────────────────────────────────────
	sess := session.NewManager(client, creds, log)

	routes := navigator.DefaultRoutes()
	guard := navigator.NewGuard(sess, routes, log)
	router := navigator.NewRouter(routes, guard, log)

	// A rejected credential invalidates the session and lands on login.
	client.OnUnauthorized(func() {
		sess.Logout()
		router.ForceLogin()
	})

	subjects := service.NewSubjectService(client)
	questions := service.NewQuestionService(client)
	points := service.NewKnowledgePointService(client)
	dashboard := service.NewDashboardService(sess, subjects, questions)

	a := &app{
		cfg:       cfg,
		log:       log,
		sess:      sess,
		router:    router,
		subjects:  subjects,
		questions: questions,
		points:    points,
		dashboard: dashboard,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.cmdLogin(ctx, rest)
	case "logout":
		return a.cmdLogout(rest)
	case "register":
		return a.cmdRegister(ctx, rest)
	case "whoami":
		return a.cmdWhoami(ctx, rest)
	case "subjects":
		return a.cmdSubjects(ctx, rest)
	case "questions":
		return a.cmdQuestions(ctx, rest)
	case "points":
		return a.cmdPoints(ctx, rest)
	case "dashboard":
		return a.cmdDashboard(ctx, rest)
	case "open":
		return a.cmdOpen(ctx, rest)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username or email")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.sess.Login(ctx, *username, *password); err != nil {
		return err
	}

	u := a.sess.CurrentUser()
	fmt.Printf("logged in as %s (%s)\n", u.DisplayName(), u.Role)
	return nil
}

func (a *app) cmdLogout(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("logout takes no arguments")
	}
	a.sess.Logout()
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email address")
	password := fs.String("p", "", "password")
	role := fs.String("role", string(user.RoleStudent), "account role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identity, err := a.sess.Register(ctx, session.Registration{
		Username: *username,
		Email:    *email,
		Password: *password,
		Role:     user.Role(*role),
	})
	if err != nil {
		return err
	}

	fmt.Printf("registered and logged in as %s (%s)\n", identity.DisplayName(), identity.Role)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("whoami takes no arguments")
	}

	if err := a.navigate(ctx, "/profile"); err != nil {
		return err
	}

	u := a.sess.CurrentUser()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id:\t%d\n", u.ID)
	fmt.Fprintf(w, "username:\t%s\n", u.Username)
	fmt.Fprintf(w, "email:\t%s\n", u.Email)
	fmt.Fprintf(w, "role:\t%s\n", u.Role)
	fmt.Fprintf(w, "active:\t%t\n", u.IsActive)
	if u.LastLogin != nil {
		fmt.Fprintf(w, "last login:\t%s\n", u.LastLogin.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

func (a *app) cmdSubjects(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("subjects", flag.ContinueOnError)
	id := fs.Int64("id", 0, "show a single subject")
	showMap := fs.Bool("map", false, "include the knowledge map (requires -id)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.navigate(ctx, "/subjects"); err != nil {
		return err
	}

	if *id > 0 {
		subject, err := a.subjects.Get(ctx, *id)
		if err != nil {
			return err
		}
		printSubject(subject)

		if *showMap {
			kmap, err := a.subjects.KnowledgeMap(ctx, *id)
			if err != nil {
				return err
			}
			printKnowledgeMap(kmap)
		}
		return nil
	}

	if *showMap {
		return fmt.Errorf("-map requires -id")
	}

	list, err := a.subjects.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPOINTS\tDESCRIPTION")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", s.ID, s.Name, s.KnowledgePointsCount, s.Description)
	}
	return w.Flush()
}

func (a *app) cmdQuestions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("questions", flag.ContinueOnError)
	subjectID := fs.Int64("subject", 0, "filter by subject id")
	qtype := fs.String("type", "", "filter by question type")
	difficulty := fs.Int("difficulty", 0, "filter by difficulty (1-5)")
	keyword := fs.String("keyword", "", "search keyword")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 20, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.navigate(ctx, "/questions"); err != nil {
		return err
	}

	list, meta, err := a.questions.List(ctx, service.QuestionFilter{
		SubjectID:  *subjectID,
		Type:       content.QuestionType(*qtype),
		Difficulty: *difficulty,
		Keyword:    *keyword,
		Page:       *page,
		Size:       *size,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDIFFICULTY\tSTATUS")
	for _, q := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", q.ID, q.Title, q.Type, q.Difficulty, q.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if meta != nil {
		fmt.Printf("page %d/%d, %d total\n", meta.Page, meta.Pages, meta.Total)
	}
	return nil
}

func (a *app) cmdPoints(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("points", flag.ContinueOnError)
	subjectID := fs.Int64("subject", 0, "subject id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subjectID <= 0 {
		return fmt.Errorf("points requires -subject <id>")
	}

	if err := a.navigate(ctx, "/subjects/"+strconv.FormatInt(*subjectID, 10)); err != nil {
		return err
	}

	list, err := a.points.ListBySubject(ctx, *subjectID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDIFFICULTY\tDESCRIPTION")
	for _, p := range list {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Difficulty, p.Description)
	}
	return w.Flush()
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("dashboard takes no arguments")
	}

	if err := a.navigate(ctx, "/"); err != nil {
		return err
	}

	summary, err := a.dashboard.Summary(ctx)
	if err != nil {
		return err
	}

	if summary.User != nil {
		fmt.Printf("welcome back, %s\n\n", summary.User.DisplayName())
	}
	fmt.Printf("subjects: %d\n", len(summary.Subjects))
	for _, s := range summary.Subjects {
		fmt.Printf("  %d  %s (%d points)\n", s.ID, s.Name, s.KnowledgePointsCount)
	}
	fmt.Printf("\nquestions: %d total, most recent:\n", summary.QuestionTotal)
	for _, q := range summary.RecentQuestions {
		fmt.Printf("  %d  %s [%s]\n", q.ID, q.Title, q.Type)
	}
	return nil
}

// cmdOpen resolves a path through the guard and reports where navigation
// lands, without fetching any resource.
func (a *app) cmdOpen(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("open requires exactly one path argument")
	}

	target := a.router.Navigate(ctx, args[0])
	out := map[string]any{
		"route": target.Route.Name,
		"path":  target.FullPath(),
	}
	if len(target.Params) > 0 {
		out["params"] = target.Params
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// navigate routes through the guard to the given path and fails when the
// guard redirects away, mirroring how the UI would refuse the screen.
func (a *app) navigate(ctx context.Context, path string) error {
	target := a.router.Navigate(ctx, path)
	if target.Route.Name == navigator.RouteLogin {
		return fmt.Errorf("not logged in, run: edubase login -u <username> -p <password>")
	}
	return nil
}

func printSubject(s *content.Subject) {
	fmt.Printf("%s (id %d)\n", s.Name, s.ID)
	if s.Description != "" {
		fmt.Printf("  %s\n", s.Description)
	}
	fmt.Printf("  knowledge points: %d\n", s.KnowledgePointsCount)
	fmt.Printf("  created: %s\n", s.CreatedAt.Format("2006-01-02"))
}

func printKnowledgeMap(m *content.KnowledgeMap) {
	fmt.Printf("\nknowledge map: %d points, %d edges\n", len(m.Points), len(m.Edges))
	for _, p := range m.Points {
		fmt.Printf("  [%d] %s\n", p.ID, p.Name)
	}
	for _, e := range m.Edges {
		fmt.Printf("  %d -> %d (%s)\n", e.FromID, e.ToID, e.Relation)
	}
}

// setupLogger configures structured logging per the loaded config.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	} else if !cfg.IsDevelopment() {
		opts.Level = slog.LevelWarn
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logging.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
