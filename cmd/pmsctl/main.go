package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/approver"
	"github.com/worksite/pms-workflow/internal/application/authz"
	"github.com/worksite/pms-workflow/internal/application/service"
	appworkflow "github.com/worksite/pms-workflow/internal/application/workflow"
	"github.com/worksite/pms-workflow/internal/config"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/infrastructure/persistence/repository"
	"github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
	"github.com/worksite/pms-workflow/internal/report"
	"github.com/worksite/pms-workflow/pkg/database"
	"github.com/worksite/pms-workflow/pkg/utils"
)

const usage = `Usage: pmsctl <command> [flags]

Commands:
  migrate       apply pending database migrations
  seed-user     insert or update a directory user
  draft         create a draft request
  submit        submit a draft (or resubmit after revision)
  decide        approve, reject or request revision
  advance       advance purchasing (ordered, delivered, completed)
  show          print a request and its history
  export        export completed requests to an xlsx archive
`

// app bundles the wired components each subcommand picks from
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *sqlite.DB
	users     *repository.UserRepository
	engine    appworkflow.Engine
	requests  service.RequestService
	documents service.DocumentService
	archiver  *report.Archiver
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "pmsctl: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	_ = gotenv.Load()

	configPath := os.Getenv("PMS_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := sqlite.NewDB(sqlDB, logger)
	requestRepo := repository.NewRequestRepository(store, logger)
	historyRepo := repository.NewHistoryRepository(store, logger)
	documentRepo := repository.NewDocumentRepository(store, logger)
	userRepo := repository.NewUserRepository(store, logger)

	gate := authz.NewGate()
	resolver := approver.NewResolver(userRepo, logger)
	engine := appworkflow.NewEngine(requestRepo, userRepo, gate, resolver, logger)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		users:     userRepo,
		engine:    engine,
		requests:  service.NewRequestService(requestRepo, historyRepo, userRepo, gate, resolver, logger),
		documents: service.NewDocumentService(documentRepo, requestRepo, userRepo, gate, resolver, logger),
		archiver:  report.NewArchiver(requestRepo, historyRepo, logger),
	}

	ctx := context.Background()

	switch command {
	case "migrate":
		// migrations already ran above
		return nil
	case "seed-user":
		return a.seedUser(ctx, args)
	case "draft":
		return a.draft(ctx, args)
	case "submit":
		return a.submit(ctx, args)
	case "decide":
		return a.decide(ctx, args)
	case "advance":
		return a.advance(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "export":
		return a.export(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) seedUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed-user", flag.ExitOnError)
	id := fs.String("id", "", "user id")
	name := fs.String("name", "", "display name")
	supervisor := fs.String("supervisor", "", "supervisor user id")
	admin := fs.Bool("admin", false, "grant admin role")
	purchase := fs.Bool("purchase", false, "grant purchasing role")
	worksite := fs.String("worksite", "", "worksite id")
	fs.Parse(args)

	if *id == "" || *name == "" {
		return fmt.Errorf("seed-user requires -id and -name")
	}

	user := &entity.User{
		ID:          *id,
		Name:        *name,
		IsAdmin:     *admin,
		CanPurchase: *purchase,
		WorksiteID:  *worksite,
	}
	if *supervisor != "" {
		user.SupervisorID = supervisor
	}

	if err := a.users.UpsertUser(ctx, user); err != nil {
		return err
	}

	fmt.Printf("user %s saved\n", user.ID)
	return nil
}

func (a *app) draft(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	actor := fs.String("actor", "", "acting user id")
	item := fs.String("item", "", "item name")
	description := fs.String("description", "", "item description")
	quantity := fs.String("quantity", "1", "quantity")
	unit := fs.String("unit", entity.UnitPieces, "unit of measure")
	category := fs.String("category", "", "category")
	address := fs.String("address", "", "delivery address")
	reason := fs.String("reason", "", "reason for the request")
	fs.Parse(args)

	request, err := a.engine.CreateDraft(ctx, appworkflow.CreateDraftInput{
		CreatedBy:       *actor,
		Item:            *item,
		Description:     *description,
		Quantity:        *quantity,
		Unit:            *unit,
		Category:        *category,
		DeliveryAddress: *address,
		Reason:          *reason,
	})
	if err != nil {
		return err
	}

	fmt.Printf("draft %s created (id %d)\n", request.RequestNumber, request.ID)
	return nil
}

func (a *app) submit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	actor := fs.String("actor", "", "acting user id")
	id := fs.Int64("id", 0, "request id")
	fs.Parse(args)

	request, err := a.engine.SubmitRequest(ctx, *id, *actor)
	if err != nil {
		return err
	}

	next := "-"
	if request.NextApprover != nil {
		next = *request.NextApprover
	}
	fmt.Printf("request %s is %s, next approver %s\n", request.RequestNumber, request.Status, next)
	return nil
}

func (a *app) decide(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decide", flag.ExitOnError)
	actor := fs.String("actor", "", "acting user id")
	id := fs.Int64("id", 0, "request id")
	verdict := fs.String("verdict", "", "approve, reject or revise")
	notes := fs.String("notes", "", "decision notes")
	fs.Parse(args)

	var decision appworkflow.Decision
	switch *verdict {
	case "approve":
		decision = appworkflow.DecisionApprove
	case "reject":
		decision = appworkflow.DecisionReject
	case "revise":
		decision = appworkflow.DecisionRequestRevision
	default:
		return fmt.Errorf("unknown verdict %q (approve, reject, revise)", *verdict)
	}

	request, err := a.engine.Decide(ctx, *id, *actor, decision, *notes)
	if err != nil {
		return err
	}

	fmt.Printf("request %s is now %s\n", request.RequestNumber, request.Status)
	return nil
}

func (a *app) advance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("advance", flag.ExitOnError)
	actor := fs.String("actor", "", "acting user id")
	id := fs.Int64("id", 0, "request id")
	stageName := fs.String("stage", "", "ordered, delivered or completed")
	notes := fs.String("notes", "", "stage notes")
	fs.Parse(args)

	var stage appworkflow.PurchasingStage
	switch *stageName {
	case "ordered":
		stage = appworkflow.StageMarkOrdered
	case "delivered":
		stage = appworkflow.StageMarkDelivered
	case "completed":
		stage = appworkflow.StageMarkCompleted
	default:
		return fmt.Errorf("unknown stage %q (ordered, delivered, completed)", *stageName)
	}

	request, err := a.engine.AdvancePurchasing(ctx, *id, *actor, stage, *notes)
	if err != nil {
		return err
	}

	fmt.Printf("request %s is now %s\n", request.RequestNumber, request.Status)
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	actor := fs.String("actor", "", "acting user id")
	id := fs.Int64("id", 0, "request id")
	fs.Parse(args)

	request, err := a.requests.GetRequest(ctx, *id, *actor)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s\n", request.RequestNumber, request.Status)
	fmt.Printf("  item: %s x %s %s\n", request.Item, request.Quantity.String(), request.Unit)
	fmt.Printf("  created by: %s  revisions: %d  version: %d\n", request.CreatedBy, request.RevisionCount, request.Version)
	if request.NextApprover != nil {
		fmt.Printf("  next approver: %s\n", *request.NextApprover)
	}

	entries, err := a.requests.History(ctx, *id, *actor)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Printf("  %s  %-18s %s -> %s  by %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.Action, entry.PreviousStatus, entry.NewStatus, entry.ActorID)
	}

	docs, err := a.documents.ListDocuments(ctx, *id, *actor)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Printf("  doc %s (%s) uploaded by %s\n", doc.FileName, doc.Type, doc.UploadedBy)
	}

	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fromArg := fs.String("from", "", "period start (YYYY-MM-DD)")
	toArg := fs.String("to", "", "period end (YYYY-MM-DD, exclusive)")
	fs.Parse(args)

	from, err := time.Parse("2006-01-02", *fromArg)
	if err != nil {
		return fmt.Errorf("invalid -from: %w", err)
	}
	to, err := time.Parse("2006-01-02", *toArg)
	if err != nil {
		return fmt.Errorf("invalid -to: %w", err)
	}

	if err := os.MkdirAll(a.cfg.Archive.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(a.cfg.Archive.OutputDir,
		fmt.Sprintf("completed_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102")))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	count, err := a.archiver.Export(ctx, from, to, f)
	if err != nil {
		return err
	}

	fmt.Printf("exported %d completed requests to %s\n", count, path)
	return nil
}
