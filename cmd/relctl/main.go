// Command relctl lists and edits relation lists from a terminal.
//
//	relctl -config relations.yaml -fixtures records.json list shop 1
//	relctl ... attach shop 1 [related-id...]
//	relctl ... detach shop 1 7
//
// The relation argument is a relation name such as shop/order_product, or a
// prefix when only one relation uses it. attach without ids opens a picker
// over the related records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	relations "github.com/goliatone/go-relations"
	"github.com/goliatone/go-relations/internal/cliutil"
	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/crud"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/render"
	"github.com/goliatone/go-relations/pkg/renderers/tui"
)

var errUsage = errors.New("usage: relctl [flags] list|attach|detach <relation> <primary-id> [related-id...]")

func main() {
	var (
		configFlag   = flag.String("config", "relations.yaml", "relation config file or directory")
		fixturesFlag = flag.String("fixtures", "", "JSON file seeding the record store")
		metaFlag     = flag.String("meta", cliutil.MetaBolt, "metadata store: memory, bolt or redis")
		boltFlag     = flag.String("bolt", "relations.db", "bolt database path")
		redisFlag    = flag.String("redis", "localhost:6379", "redis address")
		secretFlag   = flag.String("secret", "", "token signing secret (defaults to $"+cliutil.SecretEnv+")")
		verboseFlag  = flag.Bool("v", false, "development logging")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := zap.NewNop()
	if *verboseFlag {
		dev, err := cliutil.Logger(true)
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		logger = dev
	}

	rels, err := cliutil.LoadConfig(*configFlag)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	records, err := cliutil.LoadFixtures(*fixturesFlag)
	if err != nil {
		log.Fatalf("fixtures: %v", err)
	}
	meta, closer, err := cliutil.OpenMeta(cliutil.MetaOptions{Kind: *metaFlag, BoltPath: *boltFlag, RedisAddr: *redisFlag})
	if err != nil {
		log.Fatalf("meta store: %v", err)
	}
	defer closer.Close()
	signer, err := cliutil.Signer(*secretFlag)
	if err != nil {
		log.Fatalf("signer: %v", err)
	}

	engine, err := relations.New(rels,
		relations.WithRecords(records),
		relations.WithMetaStore(meta),
		relations.WithSigner(signer),
		relations.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	cli := &app{engine: engine, records: records, prompt: tui.New(), out: os.Stdout}
	if err := cli.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			return
		}
		log.Fatal(err)
	}
}

type app struct {
	engine  *relations.Engine
	records record.Store
	prompt  *tui.Renderer
	out     io.Writer
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errUsage
	}
	handler, err := a.engine.Find(args[1])
	if err != nil {
		return err
	}
	primary, err := record.ParseID(args[2])
	if err != nil || primary.IsZero() {
		return fmt.Errorf("relctl: invalid primary id %q", args[2])
	}
	nonce, err := handler.IssueToken(ctx, handler.Descriptor().PrimaryScope())
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		return a.list(ctx, handler, primary, nonce)
	case "attach":
		return a.attach(ctx, handler, primary, nonce, args[3:])
	case "detach":
		return a.detach(ctx, handler, primary, nonce, args[3:])
	default:
		return errUsage
	}
}

func (a *app) list(ctx context.Context, handler *crud.Handler, primary record.ID, nonce string) error {
	useTextFormat(handler.Config())
	result, err := handler.ListAttached(ctx, crud.ListRequest{Primary: primary, Token: nonce})
	if err != nil {
		return err
	}
	if result.Empty() {
		return a.prompt.Info(ctx, "Nothing attached.")
	}
	_, err = io.WriteString(a.out, result.HTML)
	return err
}

func (a *app) attach(ctx context.Context, handler *crud.Handler, primary record.ID, nonce string, raw []string) error {
	candidates, err := a.candidates(ctx, handler, raw)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		candidates, err = a.prompt.Pick(ctx, "Attach to "+primary.String(), candidates)
		if err != nil {
			return err
		}
	}
	if len(candidates) == 0 {
		return a.prompt.Info(ctx, "Nothing selected.")
	}

	for _, rec := range candidates {
		if _, err := handler.Attach(ctx, crud.AttachRequest{
			Primary: primary,
			Token:   nonce,
			ID:      rec.ID,
			Title:   rec.Title,
			Type:    rec.Type,
		}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "attached %s\n", tui.OptionLabel(rec))
	}
	return nil
}

func (a *app) detach(ctx context.Context, handler *crud.Handler, primary record.ID, nonce string, raw []string) error {
	if len(raw) == 0 {
		return errUsage
	}
	ids, err := parseIDs(raw)
	if err != nil {
		return err
	}
	if len(ids) > 1 {
		ok, err := a.prompt.Confirm(ctx, fmt.Sprintf("Detach %d records?", len(ids)))
		if err != nil || !ok {
			return err
		}
	}
	for _, id := range ids {
		if _, err := handler.Detach(ctx, crud.DetachRequest{Primary: primary, Token: nonce, ID: id}); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "detached #%s\n", id)
	}
	return nil
}

// candidates returns the related records named by raw, or every related
// record when raw is empty.
func (a *app) candidates(ctx context.Context, handler *crud.Handler, raw []string) ([]record.Record, error) {
	ids, err := parseIDs(raw)
	if err != nil {
		return nil, err
	}
	found, err := a.records.Query(ctx, record.Query{Types: handler.Descriptor().Related(), IDs: ids})
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 && len(found) != len(ids) {
		return nil, fmt.Errorf("relctl: %d of %d ids are not %v records", len(ids)-len(found), len(ids), handler.Descriptor().Related())
	}
	return found, nil
}

func parseIDs(raw []string) ([]record.ID, error) {
	ids := make([]record.ID, 0, len(raw))
	for _, value := range raw {
		id, err := record.ParseID(value)
		if err != nil || id.IsZero() {
			return nil, fmt.Errorf("relctl: invalid id %q", value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// useTextFormat switches the attached listing of every type to plain text.
func useTextFormat(registry *config.Registry) {
	format := render.Named(tui.FormatText)
	_ = registry.SetPostListFormat(config.Default, format)
	for _, name := range registry.Types() {
		_ = registry.SetPostListFormat(name, format)
	}
}
