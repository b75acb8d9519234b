// pos-terminal is a line-mode demo of the transaction core: it wires the
// catalog gateway, cart engine, code resolver, paginator and scan
// coordinator together and drives them from stdin commands.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/binhetc/pos-ai/internal/cart"
	"github.com/binhetc/pos-ai/internal/catalog"
	"github.com/binhetc/pos-ai/internal/config"
	"github.com/binhetc/pos-ai/internal/logging"
	"github.com/binhetc/pos-ai/internal/resolver"
	"github.com/binhetc/pos-ai/internal/scan"
	"github.com/binhetc/pos-ai/internal/token"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tokens, err := token.Open(cfg.TokenPath)
	if err != nil {
		logger.Fatal("token store", zap.Error(err))
	}
	defer tokens.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := catalog.NewClient("catalog", cfg.APIBaseURL, httpClient, tokens, logger)

	engine := cart.NewEngine(logger)
	pager := catalog.NewPaginator(gateway, cfg.PageSize, logger)
	res := resolver.New(gateway, logger)
	// No camera on a line-mode terminal; every scan goes through manual entry.
	scanner := scan.NewCoordinator(res, engine, false, logger)

	unsubscribe := engine.Subscribe(func(s cart.Snapshot) {
		fmt.Printf("cart: %d item(s), total %s\n", s.ItemCount, s.Total.StringFixed(2))
	})
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("pos terminal ready", zap.String("api", cfg.APIBaseURL))
	fmt.Println("commands: scan <code> | list [search] | more | filter <category-id> | categories | cart | qty <id> <n> | rm <id> | clear | quit")

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() || ctx.Err() != nil {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			break
		}
		if err := run(ctx, cmd, args, engine, pager, gateway, scanner); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}

	logger.Info("pos terminal shut down")
}

func run(ctx context.Context, cmd string, args []string, engine *cart.Engine, pager *catalog.Paginator, gateway *catalog.Client, scanner *scan.Coordinator) error {
	switch cmd {
	case "scan":
		if len(args) == 0 {
			return errors.New("usage: scan <code>")
		}
		if err := scanner.OpenManualEntry(); err != nil {
			return err
		}
		out, ok := scanner.SubmitCode(ctx, strings.Join(args, " "))
		if !ok {
			return errors.New("scan session was cancelled")
		}
		switch out.Kind {
		case scan.OutcomeAdded:
			fmt.Printf("added %s (%s)\n", out.Product.Name, out.Product.Price.StringFixed(2))
		case scan.OutcomeNotFound:
			fmt.Println("no product matches that code")
		case scan.OutcomeLookupFailed:
			return out.Err
		}
		return nil

	case "list":
		if err := pager.SetFilter(ctx, strings.Join(args, " "), ""); err != nil {
			return err
		}
		printItems(pager)
		return nil

	case "more":
		if err := pager.LoadNext(ctx); err != nil {
			return err
		}
		printItems(pager)
		return nil

	case "filter":
		if len(args) == 0 {
			return errors.New("usage: filter <category-id>")
		}
		search, _ := pager.Filter()
		if err := pager.SetFilter(ctx, search, args[0]); err != nil {
			return err
		}
		printItems(pager)
		return nil

	case "categories":
		cats, err := gateway.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Printf("%s  %s\n", c.ID, c.Name)
		}
		return nil

	case "cart":
		snap := engine.Snapshot()
		for _, l := range snap.Lines {
			fmt.Printf("%dx %s @ %s = %s\n", l.Quantity, l.Product.Name, l.Product.Price.StringFixed(2), l.Subtotal().StringFixed(2))
		}
		fmt.Printf("total: %s\n", snap.Total.StringFixed(2))
		return nil

	case "qty":
		if len(args) != 2 {
			return errors.New("usage: qty <product-id> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad quantity %q", args[1])
		}
		engine.SetQuantity(args[0], n)
		return nil

	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <product-id>")
		}
		engine.RemoveItem(args[0])
		return nil

	case "clear":
		engine.Clear()
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printItems(pager *catalog.Paginator) {
	for _, p := range pager.Items() {
		fmt.Printf("%s  %-30s %10s  [%s]\n", p.ID, p.Name, p.Price.StringFixed(2), p.SKU)
	}
	if pager.HasMore() {
		fmt.Println("(more available — type 'more')")
	}
}
