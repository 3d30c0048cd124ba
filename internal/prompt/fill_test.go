package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubDriver struct {
	answers map[string]string
	choice  int
	asked   []string
	infos   []string
	err     error
}

func (d *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.asked = append(d.asked, cfg.Message)
	if d.err != nil {
		return "", d.err
	}
	return d.answers[cfg.Message], nil
}

func (d *stubDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	d.asked = append(d.asked, cfg.Message)
	return d.choice, d.err
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestFillAsksOnlyForMissingKeys(t *testing.T) {
	driver := &stubDriver{answers: map[string]string{
		"title": "Hello",
		"show":  "true",
		"count": "3",
	}}
	data := map[string]any{"name": "Ada"}

	got, err := Fill(context.Background(), driver, []string{"name", "title", "show", "count", "skipped"}, data)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := map[string]any{"name": "Ada", "title": "Hello", "show": true, "count": 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title", "show", "count", "skipped"}, driver.asked); diff != "" {
		t.Fatalf("asked mismatch (-want +got):\n%s", diff)
	}
	if len(data) != 1 {
		t.Fatalf("input map was modified: %v", data)
	}
}

func TestFillNothingMissing(t *testing.T) {
	driver := &stubDriver{}
	if _, err := Fill(context.Background(), driver, []string{"a"}, map[string]any{"a": 1}); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if len(driver.asked) != 0 || len(driver.infos) != 0 {
		t.Fatalf("driver should be idle: %+v", driver)
	}
}

func TestFillPropagatesAbort(t *testing.T) {
	driver := &stubDriver{err: ErrAborted}
	_, err := Fill(context.Background(), driver, []string{"a"}, nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
}

func TestChoose(t *testing.T) {
	driver := &stubDriver{choice: 1}
	got, err := Choose(context.Background(), driver, "backend", []string{"html", "vtree"}, "html")
	if err != nil || got != "vtree" {
		t.Fatalf("Choose = %q, %v", got, err)
	}

	single := &stubDriver{}
	got, err = Choose(context.Background(), single, "backend", []string{"html"}, "")
	if err != nil || got != "html" || len(single.asked) != 0 {
		t.Fatalf("single option: %q, %v, asked %v", got, err, single.asked)
	}

	if _, err := Choose(context.Background(), &stubDriver{choice: 5}, "backend", []string{"a", "b"}, ""); err == nil {
		t.Fatal("expected invalid choice error")
	}
}
