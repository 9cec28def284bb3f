package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	relations "github.com/goliatone/go-relations"
	"github.com/goliatone/go-relations/pkg/config"
	"github.com/goliatone/go-relations/pkg/record"
	"github.com/goliatone/go-relations/pkg/renderers/tui"
	"github.com/goliatone/go-relations/pkg/token"
)

type fakeDriver struct {
	picked  []int
	confirm bool
	infos   []string
}

func (f *fakeDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return f.confirm, nil
}

func (f *fakeDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return f.picked, nil
}

func (f *fakeDriver) Info(_ context.Context, msg string) error {
	f.infos = append(f.infos, msg)
	return nil
}

func newApp(t *testing.T, driver *fakeDriver) (*app, *bytes.Buffer) {
	t.Helper()
	rels, err := config.Load([]byte("relations:\n  - prefix: shop\n    primary: order\n    related: [product]\n"), "shop.yaml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	records := record.NewMemory(record.WithRecords(
		record.Record{ID: 1, Type: "order", Title: "Order #1"},
		record.Record{ID: 7, Type: "product", Title: "Widget"},
		record.Record{ID: 8, Type: "product", Title: "Gadget"},
	))
	signer, err := token.NewSigner([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	engine, err := relations.New(rels, relations.WithRecords(records), relations.WithSigner(signer))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	var out bytes.Buffer
	return &app{
		engine:  engine,
		records: records,
		prompt:  tui.New(tui.WithPromptDriver(driver)),
		out:     &out,
	}, &out
}

func TestApp_AttachListDetach(t *testing.T) {
	ctx := context.Background()
	driver := &fakeDriver{picked: []int{1}, confirm: true}
	cli, out := newApp(t, driver)

	if err := cli.run(ctx, []string{"attach", "shop", "1"}); err != nil {
		t.Fatalf("attach picked: %v", err)
	}
	if err := cli.run(ctx, []string{"attach", "shop", "1", "7"}); err != nil {
		t.Fatalf("attach by id: %v", err)
	}
	if !strings.Contains(out.String(), "attached #8 Gadget (product)") {
		t.Fatalf("expected picked record to be attached, got %q", out.String())
	}

	out.Reset()
	if err := cli.run(ctx, []string{"list", "shop", "1"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	want := "[product #8] ID: 8; Post Title: Gadget\n[product #7] ID: 7; Post Title: Widget\n"
	if out.String() != want {
		t.Fatalf("list output = %q, want %q", out.String(), want)
	}

	if err := cli.run(ctx, []string{"detach", "shop", "1", "7", "8"}); err != nil {
		t.Fatalf("detach: %v", err)
	}
	out.Reset()
	if err := cli.run(ctx, []string{"list", "shop", "1"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Len() != 0 || len(driver.infos) == 0 || driver.infos[len(driver.infos)-1] != "Nothing attached." {
		t.Fatalf("expected empty list notice, out=%q infos=%v", out.String(), driver.infos)
	}
}

func TestApp_RelationName(t *testing.T) {
	driver := &fakeDriver{}
	cli, out := newApp(t, driver)
	ctx := context.Background()

	if err := cli.run(ctx, []string{"attach", "shop/order_product", "1", "7"}); err != nil {
		t.Fatalf("attach by name: %v", err)
	}
	out.Reset()
	if err := cli.run(ctx, []string{"list", "shop/order_product", "1"}); err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if !strings.Contains(out.String(), "ID: 7") {
		t.Fatalf("expected attached product, got %q", out.String())
	}
}

func TestApp_Errors(t *testing.T) {
	cli, _ := newApp(t, &fakeDriver{})
	cases := map[string][]string{
		"too few args":    {"list", "shop"},
		"unknown prefix":  {"list", "blog", "1"},
		"unknown name":    {"list", "shop/cart_product", "1"},
		"bad primary":     {"list", "shop", "x"},
		"unknown command": {"purge", "shop", "1"},
		"detach no ids":   {"detach", "shop", "1"},
		"wrong type":      {"attach", "shop", "1", "1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cli.run(context.Background(), args); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
